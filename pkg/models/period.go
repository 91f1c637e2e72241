package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by the accounting API.
const DateLayout = "2006-01-02"

// Period identifies a monthly VAT filing window.
type Period struct {
	Year  int `json:"year" mapstructure:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" mapstructure:"month" validate:"required,min=1,max=12"`
}

// ParsePeriod parses a period in YYYY-MM form.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected YYYY-MM: %w", s, err)
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// Validate checks that the month is within 1-12 and the year is set.
func (p Period) Validate() error {
	if p.Year <= 0 {
		return fmt.Errorf("invalid period year: %d", p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid period month: %d", p.Month)
	}
	return nil
}

// Contains reports whether the calendar date falls into the period.
func (p Period) Contains(date time.Time) bool {
	return date.Year() == p.Year && int(date.Month()) == p.Month
}

// String returns the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Key returns the {year}_{month} form used for output naming, e.g. 2023_6.
func (p Period) Key() string {
	return fmt.Sprintf("%d_%d", p.Year, p.Month)
}

// FilingDeadline returns the 25th day of the month following the period,
// the statutory due date for both the return and the payment.
func (p Period) FilingDeadline() time.Time {
	return time.Date(p.Year, time.Month(p.Month)+1, 25, 0, 0, 0, 0, time.UTC)
}
