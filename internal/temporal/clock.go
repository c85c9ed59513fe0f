package temporal

import (
	"regexp"
	"strconv"
)

// DefaultHour is the time of day used when a phrase carries no clock time
const DefaultHour = 9

// clockPattern deliberately accepts a bare number, so "week 2" reads as 02:00.
var clockPattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// clock is a wall-clock time of day
type clock struct {
	hour   int
	minute int
}

var defaultClock = clock{hour: DefaultHour}

// findClock returns the first clock token in a lowercased phrase converted to 24-hour time.
// Out-of-range values such as "45" or "7:75" are ignored.
func findClock(phrase string) (clock, bool) {
	m := clockPattern.FindStringSubmatch(phrase)
	if m == nil {
		return defaultClock, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch {
	case m[3] == "pm" && hour != 12:
		hour += 12
	case m[3] == "am" && hour == 12:
		hour = 0
	}

	if hour > 23 || minute > 59 {
		return defaultClock, false
	}
	return clock{hour: hour, minute: minute}, true
}
