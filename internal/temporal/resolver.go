// Package temporal turns free-text time phrases into absolute times relative to a
// caller-supplied reference instant.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rule names reported in a Resolution
const (
	RuleRelativeOffset = "relative_offset"
	RuleTomorrow       = "tomorrow"
	RuleToday          = "today"
	RuleWeekday        = "weekday"
	RuleNextWeek       = "next_week"
	RuleNextMonth      = "next_month"
	RuleMonthDay       = "month_day"
	RuleISODate        = "iso_date"
	RuleFallback       = "fallback"
)

// maxOffsetAmount bounds "in N <unit>" so duration arithmetic cannot overflow
const maxOffsetAmount = 100000

var (
	relativeOffset = regexp.MustCompile(`in (\d+)\s*(minute|hour|day|week)s?`)
	isoDate        = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// Resolution is a resolved time and the name of the rule that produced it
type Resolution struct {
	Time time.Time `json:"time"`
	Rule string    `json:"rule"`
}

// input is the per-call state shared by every rule
type input struct {
	phrase string
	now    time.Time
	clock  clock
}

type rule struct {
	name  string
	apply func(in input) (time.Time, bool)
}

// Resolver applies an ordered cascade of rules. The first rule that matches wins and the
// fallback always matches, so Resolve is total.
type Resolver struct {
	weekdays []NamedWeekday
	months   []monthPattern
	rules    []rule
}

// NewResolver builds a resolver over the given calendar tables
func NewResolver(cal Calendar) (*Resolver, error) {
	months, err := compileMonths(cal.Months)
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		weekdays: append([]NamedWeekday(nil), cal.Weekdays...),
		months:   months,
	}
	r.rules = []rule{
		{RuleRelativeOffset, resolveRelativeOffset},
		{RuleTomorrow, resolveTomorrow},
		{RuleToday, resolveToday},
		{RuleWeekday, r.resolveWeekday},
		{RuleNextWeek, resolveNextWeek},
		{RuleNextMonth, resolveNextMonth},
		{RuleMonthDay, r.resolveMonthDay},
		{RuleISODate, resolveISODate},
	}
	return r, nil
}

var defaultResolver = mustNewResolver(DefaultCalendar())

func mustNewResolver(cal Calendar) *Resolver {
	r, err := NewResolver(cal)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the resolver built from DefaultCalendar
func Default() *Resolver {
	return defaultResolver
}

// ResolveTime resolves a phrase with the default calendar
func ResolveTime(phrase string, now time.Time) time.Time {
	return defaultResolver.ResolveTime(phrase, now)
}

// ResolveTime is Resolve without the rule name
func (r *Resolver) ResolveTime(phrase string, now time.Time) time.Time {
	return r.Resolve(phrase, now).Time
}

// Resolve maps a phrase onto an absolute time in now's location. Seconds and sub-second
// fields of the result are zero except for relative offsets, which keep now's.
func (r *Resolver) Resolve(phrase string, now time.Time) Resolution {
	lowered := strings.ToLower(strings.TrimSpace(phrase))
	c, _ := findClock(lowered)
	in := input{phrase: lowered, now: now, clock: c}

	for _, rl := range r.rules {
		if t, ok := rl.apply(in); ok {
			return Resolution{Time: t, Rule: rl.name}
		}
	}
	// the clock token is not applied here
	return Resolution{Time: atClock(now.AddDate(0, 0, 1), defaultClock, now.Location()), Rule: RuleFallback}
}

func atClock(day time.Time, c clock, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, loc)
}

func resolveRelativeOffset(in input) (time.Time, bool) {
	m := relativeOffset.FindStringSubmatch(in.phrase)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxOffsetAmount {
		return time.Time{}, false
	}
	switch m[2] {
	case "minute":
		return in.now.Add(time.Duration(n) * time.Minute), true
	case "hour":
		return in.now.Add(time.Duration(n) * time.Hour), true
	case "day":
		return in.now.AddDate(0, 0, n), true
	default:
		return in.now.AddDate(0, 0, 7*n), true
	}
}

func resolveTomorrow(in input) (time.Time, bool) {
	if !strings.Contains(in.phrase, "tomorrow") {
		return time.Time{}, false
	}
	return atClock(in.now.AddDate(0, 0, 1), in.clock, in.now.Location()), true
}

func resolveToday(in input) (time.Time, bool) {
	if !strings.Contains(in.phrase, "today") {
		return time.Time{}, false
	}
	t := atClock(in.now, in.clock, in.now.Location())
	if !t.After(in.now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

func (r *Resolver) resolveWeekday(in input) (time.Time, bool) {
	for _, wd := range r.weekdays {
		if !strings.Contains(in.phrase, wd.Name) {
			continue
		}
		daysAhead := wd.Index - mondayIndex(in.now.Weekday())
		if daysAhead <= 0 {
			daysAhead += 7
		}
		return atClock(in.now.AddDate(0, 0, daysAhead), in.clock, in.now.Location()), true
	}
	return time.Time{}, false
}

func resolveNextWeek(in input) (time.Time, bool) {
	if !strings.Contains(in.phrase, "next week") {
		return time.Time{}, false
	}
	return atClock(in.now.AddDate(0, 0, 7), in.clock, in.now.Location()), true
}

func resolveNextMonth(in input) (time.Time, bool) {
	if !strings.Contains(in.phrase, "next month") {
		return time.Time{}, false
	}
	return atClock(in.now.AddDate(0, 0, 30), in.clock, in.now.Location()), true
}

// resolveMonthDay handles "<month> <day>". Impossible dates such as "feb 30" are skipped
// and the next month name is tried.
func (r *Resolver) resolveMonthDay(in input) (time.Time, bool) {
	loc := in.now.Location()
	for _, mp := range r.months {
		m := mp.re.FindStringSubmatch(in.phrase)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		year := in.now.Year()
		if !validDate(year, mp.month, day) {
			continue
		}
		t := time.Date(year, mp.month, day, in.clock.hour, in.clock.minute, 0, 0, loc)
		if !t.After(in.now) {
			year++
			if !validDate(year, mp.month, day) {
				continue
			}
			t = time.Date(year, mp.month, day, in.clock.hour, in.clock.minute, 0, 0, loc)
		}
		return t, true
	}
	return time.Time{}, false
}

func resolveISODate(in input) (time.Time, bool) {
	m := isoDate.FindStringSubmatch(in.phrase)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if !validDate(year, time.Month(month), day) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, in.clock.hour, in.clock.minute, 0, 0, in.now.Location()), true
}
