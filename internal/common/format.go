package common

import (
	"fmt"
	"math"
	"time"
)

// DistanceText renders meters the way the directions API does: "850 m", "5.2 km".
func DistanceText(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int64(math.Round(meters)))
	}
	km := meters / 1000
	if km >= 100 {
		return fmt.Sprintf("%d km", int64(math.Round(km)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// DurationText renders a travel time as "1 min", "12 mins", "1 hour 5 mins",
// "2 days 3 hours". Anything under a minute rounds up to "1 min".
func DurationText(d time.Duration) string {
	mins := int64(math.Round(d.Minutes()))
	if mins < 1 {
		mins = 1
	}

	days := mins / (24 * 60)
	hours := (mins % (24 * 60)) / 60
	mins = mins % 60

	switch {
	case days > 0:
		if hours == 0 {
			return plural(days, "day")
		}
		return plural(days, "day") + " " + plural(hours, "hour")
	case hours > 0:
		if mins == 0 {
			return plural(hours, "hour")
		}
		return plural(hours, "hour") + " " + plural(mins, "min")
	default:
		return plural(mins, "min")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
