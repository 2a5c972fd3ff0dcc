package core

import (
	"strings"
	"time"
)

// PeriodKind distinguishes the three shapes of a period-of-week token.
type PeriodKind int

const (
	PeriodWeekend PeriodKind = iota + 1
	PeriodWeekday
	PeriodDay
)

// Period is a validated period-of-week selection.
type Period struct {
	kind PeriodKind
	day  time.Weekday
}

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParsePeriod accepts "weekend", "weekday" or a day name, in any case.
func ParsePeriod(s string) (Period, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "weekend":
		return Period{kind: PeriodWeekend}, nil
	case "weekday":
		return Period{kind: PeriodWeekday}, nil
	}
	if d, ok := weekdaysByName[key]; ok {
		return Period{kind: PeriodDay, day: d}, nil
	}
	return Period{}, &InvalidPeriodError{Token: s}
}

// DayPeriod selects a single day of the week.
func DayPeriod(d time.Weekday) Period {
	return Period{kind: PeriodDay, day: d}
}

func (p Period) Kind() PeriodKind {
	return p.kind
}

// Days returns the weekdays covered by the period, Sunday first.
func (p Period) Days() []time.Weekday {
	switch p.kind {
	case PeriodWeekend:
		return []time.Weekday{time.Sunday, time.Saturday}
	case PeriodWeekday:
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	case PeriodDay:
		return []time.Weekday{p.day}
	}
	return nil
}

// Contains reports whether d falls in the period.
func (p Period) Contains(d time.Weekday) bool {
	for _, day := range p.Days() {
		if day == d {
			return true
		}
	}
	return false
}

func (p Period) String() string {
	switch p.kind {
	case PeriodWeekend:
		return "weekend"
	case PeriodWeekday:
		return "weekday"
	case PeriodDay:
		return strings.ToLower(p.day.String())
	}
	return ""
}
