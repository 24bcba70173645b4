package engine

import (
	"strings"
	"time"
)

// ShouldRunNow reports whether the local time in tzName matches one of the
// allowed HH:MM run times. An empty run-times list means always run, and an
// unloadable timezone falls back to UTC rather than blocking the run.
func ShouldRunNow(tzName, runTimes string, now time.Time) bool {
	allowed := allowedTimes(runTimes)
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[now.In(location(tzName)).Format("15:04")]
	return ok
}

// IsWeeklyTime reports whether now matches the configured weekly day and
// HH:MM in the given timezone.
func IsWeeklyTime(tzName, weeklyDay, weeklyTime string, now time.Time) bool {
	local := now.In(location(tzName))
	hm := strings.TrimSpace(weeklyTime)
	if hm == "" {
		hm = "19:00"
	}
	return local.Weekday() == ParseWeekday(weeklyDay) && local.Format("15:04") == hm
}

// ParseWeekday maps MON..SUN to a weekday, defaulting to Sunday.
func ParseWeekday(s string) time.Weekday {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MON":
		return time.Monday
	case "TUE":
		return time.Tuesday
	case "WED":
		return time.Wednesday
	case "THU":
		return time.Thursday
	case "FRI":
		return time.Friday
	case "SAT":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func location(tzName string) *time.Location {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.UTC
	}
	return loc
}

func allowedTimes(runTimes string) map[string]struct{} {
	allowed := make(map[string]struct{})
	for _, t := range strings.Split(runTimes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			allowed[t] = struct{}{}
		}
	}
	return allowed
}
