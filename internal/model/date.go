package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// ISODateLayout is the storage and wire format (yyyy-MM-dd).
	ISODateLayout = "2006-01-02"
	// FormDateLayout is the entry form's input format (MM/dd/yyyy); single
	// digit months and days are accepted.
	FormDateLayout = "1/2/2006"
)

// Date is a calendar date without time of day, always held at UTC midnight.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func Today() Date { return DateOf(time.Now()) }

// ParseISODate parses a zero padded yyyy-MM-dd date.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(ISODateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want yyyy-MM-dd", s)
	}
	return DateOf(t), nil
}

// ParseFormDate parses the entry form's MM/dd/yyyy date.
func ParseFormDate(s string) (Date, error) {
	t, err := time.Parse(FormDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want MM/dd/yyyy", s)
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time   { return d.t }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Year() int         { return d.t.Year() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(ISODateLayout)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }

// Between reports whether d lies in [start, end]; a zero bound is open.
func (d Date) Between(start, end Date) bool {
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the date part matters.
	v := *s
	if len(v) > len(ISODateLayout) {
		v = v[:len(ISODateLayout)]
	}
	parsed, err := ParseISODate(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// YearRange is the inclusive range covering the whole calendar year.
func YearRange(year int) (Date, Date) {
	return NewDate(year, time.January, 1), NewDate(year, time.December, 31)
}
