package extract

import (
	"regexp"
	"strings"
	"time"
)

// PortugueseDateParser recognizes ISO dates, "hoje"/"amanhã" and weekday
// names mapped to their next future occurrence.
type PortugueseDateParser struct{}

var isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

var weekdayNames = map[string]time.Weekday{
	"domingo": time.Sunday,
	"segunda": time.Monday,
	"terça":   time.Tuesday,
	"terca":   time.Tuesday,
	"quarta":  time.Wednesday,
	"quinta":  time.Thursday,
	"sexta":   time.Friday,
	"sábado":  time.Saturday,
	"sabado":  time.Saturday,
}

// ParseDate returns the referenced calendar date at midnight in loc. A
// weekday matching today's rolls to next week.
func (PortugueseDateParser) ParseDate(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	lower := strings.ToLower(text)

	if m := isoDatePattern.FindStringSubmatch(lower); m != nil {
		parsed, err := time.ParseInLocation("2006-01-02", m[0], loc)
		if err == nil {
			return parsed, true
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if strings.Contains(lower, "hoje") {
		return today, true
	}
	if strings.Contains(lower, "amanhã") || strings.Contains(lower, "amanha") {
		return today.AddDate(0, 0, 1), true
	}

	for name, wd := range weekdayNames {
		if !strings.Contains(lower, name) {
			continue
		}
		delta := (int(wd) - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, delta), true
	}

	return time.Time{}, false
}
