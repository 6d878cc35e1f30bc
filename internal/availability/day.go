package availability

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day
const DayLayout = "2006-01-02"

// Day is a UTC civil date. The zero Day is "no date".
type Day struct {
	t time.Time
}

// DayOf returns the UTC calendar day containing t
func DayOf(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	u := t.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Date builds a Day from its components
func Date(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD string. Full RFC 3339 timestamps are accepted and truncated.
func ParseDay(s string) (Day, error) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DayOf(t), nil
	}
	return Day{}, fmt.Errorf("invalid day %q, expected YYYY-MM-DD", s)
}

// MustParseDay is ParseDay for literals known to be valid
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current UTC calendar day according to clock
func Today(clock func() time.Time) Day {
	if clock == nil {
		clock = time.Now
	}
	return DayOf(clock())
}

func (d Day) IsZero() bool                 { return d.t.IsZero() }
func (d Day) Before(o Day) bool            { return d.t.Before(o.t) }
func (d Day) After(o Day) bool             { return d.t.After(o.t) }
func (d Day) Equal(o Day) bool             { return d.t.Equal(o.t) }
func (d Day) AddDays(n int) Day            { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) Time() time.Time              { return d.t }
func (d Day) Compare(o Day) int            { return d.t.Compare(o.t) }
func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// EndOfDay returns the last representable millisecond of the day
func (d Day) EndOfDay() time.Time {
	return d.t.Add(24*time.Hour - time.Millisecond)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

// UnmarshalText parses YYYY-MM-DD
func (d *Day) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
