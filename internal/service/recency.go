package service

import (
	"fmt"
	"time"
)

func pluralUnit(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// RelativeLabel renders how long ago then happened, relative to now. Bands:
// under 5 minutes "Just now", under an hour minutes, under a day hours,
// exactly one day "Yesterday", under a week days, under 30 days weeks
// (days/7), beyond that months (days/30).
func RelativeLabel(now, then time.Time) string {
	diff := now.Sub(then)
	if diff < 0 {
		diff = 0
	}

	days := int(diff.Hours()) / 24
	secs := int(diff.Seconds()) - days*86400

	switch {
	case days == 0 && secs < 300:
		return "Just now"
	case days == 0 && secs < 3600:
		return pluralUnit(secs/60, "minute")
	case days == 0:
		return pluralUnit(secs/3600, "hour")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return pluralUnit(days, "day")
	case days < 30:
		return pluralUnit(days/7, "week")
	default:
		return pluralUnit(days/30, "month")
	}
}
