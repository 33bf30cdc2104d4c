package utils

import (
	"fmt"
	"time"
)

// ToIST converts a time to Indian Standard Time (IST)
func ToIST(t time.Time) time.Time {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return t // Fallback to UTC if IST is not available
	}
	return t.In(ist)
}

// Now returns the current wall-clock time in IST. All booking cutoffs and
// working-hours checks are evaluated against center-local time.
func Now() time.Time {
	return ToIST(time.Now())
}

// TimeAgo renders a human "x ago" label for dashboard activity feeds.
func TimeAgo(t, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 3600:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	default:
		return fmt.Sprintf("%d days ago", seconds/86400)
	}
}
