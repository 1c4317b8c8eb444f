package present

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/game-guardian/internal/summary"
)

// Bar colors for days with and without play.
const (
	BarActive   = "#3B82F6"
	BarInactive = "#E5E7EB"
)

// Bar is one normalized column of the weekly chart.
type Bar struct {
	Day     string `json:"day"`
	Minutes int    `json:"minutes"`
	Height  int    `json:"height"`
	Color   string `json:"color"`
}

// BarHeights scales each day against the busiest one so that the busiest
// day is maxHeight tall. Days that would round to zero, including every
// day of an empty week, get minHeight so the slot stays visible.
func BarHeights(chart [7]summary.DayBucket, maxHeight, minHeight int) [7]Bar {
	busiest := 0
	for _, b := range chart {
		busiest = max(busiest, b.Minutes)
	}

	var bars [7]Bar
	for i, b := range chart {
		h := 0
		if busiest > 0 {
			h = b.Minutes * maxHeight / busiest
		}
		if h == 0 {
			h = minHeight
		}
		color := BarInactive
		if b.Minutes > 0 {
			color = BarActive
		}
		bars[i] = Bar{Day: b.Day, Minutes: b.Minutes, Height: h, Color: color}
	}
	return bars
}

// RenderChart draws the bars as rows of block characters, tallest row
// first, with day labels underneath.
func RenderChart(chart [7]summary.DayBucket, rows int) string {
	bars := BarHeights(chart, rows, 0)
	active := lipgloss.NewStyle().Foreground(lipgloss.Color(BarActive))

	var sb strings.Builder
	for r := rows; r >= 1; r-- {
		for i, b := range bars {
			if i > 0 {
				sb.WriteString(" ")
			}
			if b.Height >= r {
				sb.WriteString(active.Render("███"))
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString("\n")
	}
	for i, b := range bars {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(b.Day)
	}
	return sb.String()
}
