package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used by survey dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day. The wrapped time is always UTC midnight.
	Date struct {
		time.Time
	}

	// Record is one survey observation.
	Record struct {
		ID       string
		Date     Date
		Quantity int64
		Status   string // Live, Dead, Remnant, Redd...
		Category string // species label
	}
)

var (
	ErrEmptyID         = errors.New("empty record id")
	ErrInvalidDate     = errors.New("invalid survey date")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownCategory = errors.New("unknown category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and truncates to the day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// CalendarDay drops any time-of-day component.
func (d Date) CalendarDay() Date {
	if d.IsZero() {
		return d
	}
	return NewDate(d.Year(), int(d.Month()), d.Time.Day())
}

// Before compares calendar days.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// Equal reports whether both dates are the same instant.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if err := r.Date.Validate(); err != nil {
		return fmt.Errorf("record %s: %w", r.ID, err)
	}
	if r.Quantity < 0 {
		return fmt.Errorf("record %s: %w: %d", r.ID, ErrInvalidQuantity, r.Quantity)
	}
	return nil
}
