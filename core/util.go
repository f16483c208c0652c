package core

import (
	"database/sql/driver"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanUpper trims `s` and upper-cases it.
func CleanUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RoundMoney rounds an amount to cents.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Date is a calendar date without time of day, (un)marshalled as "2006-01-02".
// The zero Date is rendered as null.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// Today returns the current date (UTC).
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// SameMonth reports whether d falls in the given month of the given year.
func (d Date) SameMonth(month, year int) bool {
	return !d.IsZero() && int(d.Month()) == month && d.Year() == year
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// accept full timestamps too
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return errors.Wrapf(err, "invalid date %q", s)
	}
	*d = parsed
	return nil
}

// UnmarshalParam lets echo bind dates from query params.
func (d *Date) UnmarshalParam(param string) error {
	return d.UnmarshalJSON([]byte(param))
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	default:
		return errors.Errorf("cannot scan %T into Date", src)
	}
	return nil
}
