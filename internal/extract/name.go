package extract

import (
	"strings"
	"unicode"
)

// HeuristicNameParser accepts short all-alphabetic phrases as client names.
type HeuristicNameParser struct{}

// ParseName accepts text as a name only if it has no digits, is 4-60 runes
// long, splits into 2-5 alphabetic tokens, and is not a greeting or booking
// phrase.
func (HeuristicNameParser) ParseName(text string) (string, bool) {
	candidate := strings.TrimSpace(text)
	n := len([]rune(candidate))
	if n < 4 || n > 60 {
		return "", false
	}
	if IsGreeting(candidate) || HasBookingIntent(candidate) || IsCancelCommand(candidate) {
		return "", false
	}

	tokens := strings.Fields(candidate)
	if len(tokens) < 2 || len(tokens) > 5 {
		return "", false
	}
	for _, tok := range tokens {
		for _, r := range tok {
			if unicode.IsDigit(r) {
				return "", false
			}
			if !unicode.IsLetter(r) {
				return "", false
			}
		}
	}
	return candidate, true
}
