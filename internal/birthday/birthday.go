// Package birthday computes distances to annually recurring dates.
//
// All functions are pure: the reference date is always passed in, never read
// from the system clock, and no call has side effects. The recurrence is the
// (month, day) pair of the birth date; the birth year only matters for age.
package birthday

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-cumple/internal/config"
)

// InvalidDateError reports a value that is not a real calendar date
// (e.g., "31/04/1990"). It is the only error kind this package produces.
// Retrying with the same input cannot succeed; the offending source row
// must be corrected upstream.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("%s: %q", config.ErrDateParse, e.Value)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// MessageFunc renders the human-readable status line of an Info.
// Implementations must be total: any (name, days, age) combination renders.
type MessageFunc func(name string, days, age int) string

// Info is the computed birthday record for one person against one
// reference date. It is constructed fresh per call and never persisted
// by this package; the caller decides whether to log or act on it.
type Info struct {
	Name           string
	DaysRemaining  int
	NextOccurrence time.Time
	Age            int
	IsToday        bool
	Message        string
}

// ParseDMY parses a day/month/year date string (the row format of
// spreadsheet exports and the persona table). Values that are not real
// calendar dates yield an *InvalidDateError.
func ParseDMY(value string) (time.Time, error) {
	t, err := time.Parse(config.DateFormatDMY, value)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: value, Err: err}
	}
	return t, nil
}

// NextOccurrence returns the concrete date on which the (month, day) pair of
// birth next falls, measured from ref. If the occurrence in ref's year is
// strictly before ref it rolls over to the following year; if it equals ref
// it is today's date.
//
// A February 29 anniversary is observed on February 28 in non-leap target
// years. The substitution is deterministic and never falls through to
// March 1.
func NextOccurrence(birth, ref time.Time) time.Time {
	ref = midnight(ref)

	candidate := OccurrenceIn(ref.Year(), birth, ref.Location())
	if candidate.Before(ref) {
		candidate = OccurrenceIn(ref.Year()+1, birth, ref.Location())
	}
	return candidate
}

// DaysUntilNext returns the number of days from ref to the next occurrence
// of birth's (month, day) pair. The result is in [0, 366]; 0 means the
// occurrence is today.
func DaysUntilNext(birth, ref time.Time) int {
	ref = midnight(ref)
	next := NextOccurrence(birth, ref)

	// Count calendar days, not 24h periods: DST transitions make some local
	// days 23 or 25 hours long, so round the division.
	hours := next.Sub(ref).Hours()
	return int((hours + 12) / 24)
}

// Age returns the number of full years elapsed between birth and ref,
// subtracting one when the anniversary has not yet occurred in ref's year.
//
// The result may be negative when birth lies after ref. This is deliberate:
// the calculator is reused for arbitrary recurring events (due dates,
// appointments) where a future base date is the normal case, so no
// past-date validation is performed here.
func Age(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()

	refMonth, refDay := ref.Month(), ref.Day()
	bMonth, bDay := birth.Month(), birth.Day()

	if refMonth < bMonth || (refMonth == bMonth && refDay < bDay) {
		years--
	}
	return years
}

// Build combines the distance and age computations into an Info record.
// IsToday holds exactly when DaysRemaining is zero. The message is rendered
// by format; a nil format falls back to DefaultMessage. Build is total for
// valid dates: it cannot fail.
func Build(name string, birth, ref time.Time, format MessageFunc) Info {
	if format == nil {
		format = DefaultMessage
	}

	days := DaysUntilNext(birth, ref)
	age := Age(birth, ref)

	return Info{
		Name:           name,
		DaysRemaining:  days,
		NextOccurrence: NextOccurrence(birth, ref),
		Age:            age,
		IsToday:        days == 0,
		Message:        format(name, days, age),
	}
}

// DefaultMessage is the locale-free fallback rendering used when no
// localized formatter is injected. Tiers mirror the notification wording:
// today, tomorrow, within a week, within a month, further out.
func DefaultMessage(name string, days, age int) string {
	switch {
	case days == 0:
		return fmt.Sprintf("Today is %s's birthday!", name)
	case days == 1:
		return fmt.Sprintf("Tomorrow is %s's birthday!", name)
	case days <= 7:
		return fmt.Sprintf("%s's birthday is very soon (%d days)", name, days)
	case days <= 30:
		return fmt.Sprintf("%s's birthday is this month (%d days)", name, days)
	default:
		return fmt.Sprintf("%d days until %s's birthday", days, name)
	}
}

// OccurrenceIn places birth's (month, day) pair in the given year,
// applying the Feb 29 -> Feb 28 rule for non-leap years.
func OccurrenceIn(year int, birth time.Time, loc *time.Location) time.Time {
	month, day := birth.Month(), birth.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// midnight truncates t to the start of its calendar day, preserving the
// location. time.Truncate operates on absolute time and breaks across DST,
// so the date is reconstructed instead.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
