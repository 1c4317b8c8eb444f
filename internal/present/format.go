package present

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// RelativeTime describes how long before now ts happened: "3h ago" within
// a day, "Yesterday" for one whole day, otherwise "N days ago". Future
// timestamps read as "0h ago".
func RelativeTime(ts, now time.Time) string {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = 0
	}
	hours := int(diff / time.Hour)
	days := hours / 24

	switch {
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days == 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// DetailTime formats ts in loc for the alert detail view, e.g.
// "Fri, Jan 30, 2:15 AM".
func DetailTime(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format("Mon, Jan 2, 3:04 PM")
}

// Playtime formats minutes as "Xh Ym".
func Playtime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Members formats a group member count with thousands separators.
func Members(n int) string {
	return humanize.Comma(int64(n)) + " members"
}

// SinceSync reports how long ago data was last refreshed, e.g.
// "15 minutes ago".
func SinceSync(last, now time.Time) string {
	return humanize.RelTime(last, now, "ago", "from now")
}
