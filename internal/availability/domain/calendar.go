package domain

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CalendarDate is a YYYY-MM-DD label on the local calendar. It is never
// interpreted as a UTC instant, so the weekday of "2026-03-02" is Monday
// in every zone.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// ParseCalendarDate reads the year, month and day as local calendar
// components.
func ParseCalendarDate(s string) (CalendarDate, error) {
	// Parse only validates and splits; the UTC instant is discarded.
	parsed, err := time.Parse(dateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewCalendarDate(parsed.Year(), parsed.Month(), parsed.Day()), nil
}

// NewCalendarDate normalises overflowing components the way time.Date does.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.Local))
}

// Today is the local calendar date of now.
func Today(now time.Time) CalendarDate {
	return dateOf(now.In(time.Local))
}

func dateOf(t time.Time) CalendarDate {
	return CalendarDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

// Time is local midnight of the date.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.Local)
}

func (d CalendarDate) Weekday() time.Weekday { return d.Time().Weekday() }

// WeekdayName is the template key for the date, e.g. "Monday".
func (d CalendarDate) WeekdayName() string { return d.Weekday().String() }

func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.year, d.month, d.day+n)
}

func (d CalendarDate) IsZero() bool { return d.year == 0 }

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// ParseWeekday maps "Monday".."Sunday" (any case) to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), strings.TrimSpace(name)) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}
