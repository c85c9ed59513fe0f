package temporal

import (
	"fmt"
	"regexp"
	"time"
)

// NamedWeekday pairs a weekday name with its index counted from Monday = 0
type NamedWeekday struct {
	Name  string
	Index int
}

// NamedMonth pairs a month name or abbreviation with its month
type NamedMonth struct {
	Name  string
	Month time.Month
}

// Calendar holds the name tables the resolver matches against. Order matters: the first
// weekday or month whose name occurs in the phrase is used.
type Calendar struct {
	Weekdays []NamedWeekday
	Months   []NamedMonth
}

// DefaultCalendar returns the English weekday and month tables
func DefaultCalendar() Calendar {
	return Calendar{
		Weekdays: []NamedWeekday{
			{"monday", 0}, {"tuesday", 1}, {"wednesday", 2}, {"thursday", 3},
			{"friday", 4}, {"saturday", 5}, {"sunday", 6},
		},
		Months: []NamedMonth{
			{"january", time.January}, {"jan", time.January},
			{"february", time.February}, {"feb", time.February},
			{"march", time.March}, {"mar", time.March},
			{"april", time.April}, {"apr", time.April},
			{"may", time.May},
			{"june", time.June}, {"jun", time.June},
			{"july", time.July}, {"jul", time.July},
			{"august", time.August}, {"aug", time.August},
			{"september", time.September}, {"sep", time.September},
			{"october", time.October}, {"oct", time.October},
			{"november", time.November}, {"nov", time.November},
			{"december", time.December}, {"dec", time.December},
		},
	}
}

type monthPattern struct {
	month time.Month
	re    *regexp.Regexp
}

func compileMonths(months []NamedMonth) ([]monthPattern, error) {
	out := make([]monthPattern, 0, len(months))
	for _, m := range months {
		if m.Month < time.January || m.Month > time.December {
			return nil, fmt.Errorf("month %q has invalid number %d", m.Name, m.Month)
		}
		re, err := regexp.Compile(regexp.QuoteMeta(m.Name) + `\s+(\d{1,2})`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile month pattern %q: %w", m.Name, err)
		}
		out = append(out, monthPattern{month: m.Month, re: re})
	}
	return out, nil
}

// mondayIndex converts a time.Weekday (Sunday = 0) to a Monday = 0 index
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// validDate reports whether year/month/day names a real calendar day
func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
