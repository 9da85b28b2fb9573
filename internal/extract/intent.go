package extract

import "strings"

var bookingIntentKeywords = []string{
	"agendar",
	"agendamento",
	"marcar",
	"reservar",
	"horário",
	"horario",
}

var cancelKeywords = []string{
	"cancelar",
	"cancela",
	"desmarcar",
}

var greetingPhrases = map[string]struct{}{
	"oi":          {},
	"olá":         {},
	"ola":         {},
	"bom dia":     {},
	"boa tarde":   {},
	"boa noite":   {},
	"tudo bem":    {},
	"tudo bem?":   {},
	"e aí":        {},
	"e ai":        {},
	"obrigado":    {},
	"obrigada":    {},
	"valeu":       {},
	"oi tudo bem": {},
}

// HasBookingIntent reports whether the message contains a booking keyword.
// This gates the intake machine so it never hijacks unrelated chat.
func HasBookingIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bookingIntentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsCancelCommand reports whether the message is a bare cancel request.
func IsCancelCommand(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range cancelKeywords {
		if lower == kw || strings.HasPrefix(lower, kw+" ") {
			return true
		}
	}
	return false
}

// IsGreeting reports whether the trimmed message is a known greeting or
// courtesy phrase.
func IsGreeting(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = strings.TrimRight(lower, "!.")
	_, ok := greetingPhrases[lower]
	return ok
}
