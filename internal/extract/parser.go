// Package extract implements the heuristic parsers that pull a client name,
// service, date and time out of free-form Portuguese chat text. Each concern
// sits behind a small strategy interface so stricter or locale-aware grammars
// can replace the defaults without touching the intake state machine.
package extract

import "time"

// NameParser extracts a client name candidate from a message.
type NameParser interface {
	ParseName(text string) (string, bool)
}

// ServiceParser matches a message against the tenant's service catalog.
type ServiceParser interface {
	ParseService(text string, catalog []string) (string, bool)
}

// DateParser extracts a calendar date relative to a reference instant.
type DateParser interface {
	ParseDate(text string, now time.Time, loc *time.Location) (time.Time, bool)
}

// TimeParser extracts an hour/minute pair from a message.
type TimeParser interface {
	ParseTime(text string) (Clock, bool)
}

// Clock is an extracted hour/minute pair.
type Clock struct {
	Hour   int
	Minute int
}

// Set bundles the four parsers the intake machine consumes.
type Set struct {
	Name    NameParser
	Service ServiceParser
	Date    DateParser
	Time    TimeParser
}

// DefaultSet returns the Portuguese heuristic parsers.
func DefaultSet() Set {
	return Set{
		Name:    HeuristicNameParser{},
		Service: CatalogServiceParser{},
		Date:    PortugueseDateParser{},
		Time:    PortugueseTimeParser{},
	}
}
