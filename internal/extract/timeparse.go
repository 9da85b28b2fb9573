package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// PortugueseTimeParser recognizes "14:30", "14h", "14h30", "às 14 horas",
// "14 horas", spelled-out hours ("duas horas") and a bare hour when the
// message is nothing but the number.
type PortugueseTimeParser struct{}

var (
	colonTimePattern  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	hSuffixPattern    = regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`)
	horasPattern      = regexp.MustCompile(`\b(\d{1,2})\s*horas?\b`)
	spelledPattern    = regexp.MustCompile(`\b(uma|duas|três|tres|quatro|cinco|seis|sete|oito|nove|dezesseis|dezessete|dezenove|dezoito|dez|onze|doze|treze|quatorze|catorze|quinze|vinte)\b\s*horas?\b`)
	bareNumberPattern = regexp.MustCompile(`^\d{1,2}$`)
)

var spelledHours = map[string]int{
	"uma":       1,
	"duas":      2,
	"três":      3,
	"tres":      3,
	"quatro":    4,
	"cinco":     5,
	"seis":      6,
	"sete":      7,
	"oito":      8,
	"nove":      9,
	"dez":       10,
	"onze":      11,
	"doze":      12,
	"treze":     13,
	"quatorze":  14,
	"catorze":   14,
	"quinze":    15,
	"dezesseis": 16,
	"dezessete": 17,
	"dezoito":   18,
	"dezenove":  19,
	"vinte":     20,
}

// ParseTime extracts the first recognizable time expression.
func (PortugueseTimeParser) ParseTime(text string) (Clock, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if m := colonTimePattern.FindStringSubmatch(lower); m != nil {
		return makeClock(m[1], m[2])
	}
	if m := hSuffixPattern.FindStringSubmatch(lower); m != nil {
		return makeClock(m[1], m[2])
	}
	if m := horasPattern.FindStringSubmatch(lower); m != nil {
		return makeClock(m[1], "")
	}
	if m := spelledPattern.FindStringSubmatch(lower); m != nil {
		if hour, ok := spelledHours[m[1]]; ok {
			return Clock{Hour: hour}, true
		}
	}
	if bareNumberPattern.MatchString(lower) {
		return makeClock(lower, "")
	}
	return Clock{}, false
}

func makeClock(hourStr, minuteStr string) (Clock, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, false
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute < 0 || minute > 59 {
			return Clock{}, false
		}
	}
	return Clock{Hour: hour, Minute: minute}, true
}
