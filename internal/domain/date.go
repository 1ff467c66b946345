package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateFormat is the canonical calendar-date layout used everywhere a
// date is persisted or displayed.
const DateFormat = "2006-01-02"

// dateFormats is the ordered list of layouts tried when parsing a date
// from external input. The first layout that yields a valid calendar
// date wins, so ambiguous values like 1/5/2024 resolve month-first.
var dateFormats = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"02/01/2006",
	"1-2-2006",
	"01-02-2006",
	"2006/01/02",
	"02.01.2006",
}

// Date is a calendar date with no time component.
type Date struct {
	civil.Date
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// DateOf returns the calendar date of t.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses s against the ordered layout list. It returns an
// error only when no layout matches.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("ParseDate: unrecognized date %q", s)
}

// IsZero reports whether d is the zero date, i.e. no valid date was ever
// assigned.
func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// DaysApart returns the absolute number of days between d and o.
func (d Date) DaysApart(o Date) int {
	n := d.Date.DaysSince(o.Date)
	if n < 0 {
		n = -n
	}
	return n
}

// MarshalJSON encodes the date as a canonical "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Date.String())
}

// UnmarshalJSON is deliberately lenient: persisted records with a
// malformed date decode to the zero date instead of failing the whole
// collection. The ledger store's normalize pass coerces zero dates to
// today, so a bad date never rejects a record.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)
