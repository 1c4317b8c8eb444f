package summary

import "time"

// DayLabels are the chart slots in display order.
var DayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayBucket is one bar of the weekly chart.
type DayBucket struct {
	Day     string `json:"day"`
	Date    string `json:"date"` // local calendar date, YYYY-MM-DD
	Minutes int    `json:"minutes"`
}

// ActivitySummary is the weekly overview for one child. It is derived
// entirely from the event log and can be rebuilt at any time.
//
// TotalPlaytime always equals the sum of ChartData minutes, and ChartData
// always holds seven entries, Monday first.
type ActivitySummary struct {
	ChildID       string       `json:"childId"`
	TotalPlaytime int          `json:"totalPlaytime"` // minutes
	GamesPlayed   int          `json:"gamesPlayed"`
	NewFriends    int          `json:"newFriends"`
	NewGroups     int          `json:"newGroups"`
	ChartData     [7]DayBucket `json:"chartData"`

	// WindowStart is local midnight six days before WindowEnd's day;
	// WindowEnd is the exclusive bound at the following midnight.
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
}

// Busiest returns the largest daily total in the chart.
func (s ActivitySummary) Busiest() int {
	m := 0
	for _, b := range s.ChartData {
		m = max(m, b.Minutes)
	}
	return m
}
