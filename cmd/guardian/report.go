package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/game-guardian/internal/alerts"
	"github.com/nixlim/game-guardian/internal/events"
	"github.com/nixlim/game-guardian/internal/present"
	"github.com/nixlim/game-guardian/internal/summary"
)

const (
	feedCapacity = 500
	recentLimit  = 5
	chartRows    = 6
)

// childReport is everything the dashboard shows for one child.
type childReport struct {
	Child       events.MonitoredChild   `json:"child"`
	UnreadCount int                     `json:"unreadCount"`
	Alerts      []alerts.Alert          `json:"alerts"`
	Summary     summary.ActivitySummary `json:"summary"`
	Recent      []events.FeedEntry      `json:"recent"`
}

// feedTo returns a log listener that adds a described entry to feed.
func feedTo(feed *events.Feed, games alerts.GameLookup) func(events.Event) {
	return func(e events.Event) {
		feed.Add(events.FeedEntry{
			ChildID:    e.Owner(),
			Kind:       e.Kind(),
			OccurredAt: e.OccurredAt(),
			Text:       present.DescribeEvent(e, games),
		})
	}
}

func buildReport(engine *alerts.Engine, feed *events.Feed, child events.MonitoredChild, asOf time.Time, unreadOnly bool) (childReport, error) {
	s, err := engine.Summary(child.ID, asOf)
	if err != nil {
		return childReport{}, fmt.Errorf("summary for %s: %w", child.ID, err)
	}

	inbox := engine.Inbox()
	return childReport{
		Child:       child,
		UnreadCount: inbox.UnreadCount(child.ID),
		Alerts:      inbox.List(alerts.AlertFilter{ChildID: child.ID, UnreadOnly: unreadOnly}),
		Summary:     s,
		Recent:      feed.ListByChild(child.ID, recentLimit),
	}, nil
}

var (
	nameStyle    = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func renderReport(r childReport, now time.Time) string {
	loc, err := r.Child.Location()
	if err != nil {
		loc = time.UTC
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", nameStyle.Render(r.Child.Name),
		dimStyle.Render(fmt.Sprintf("(%s, age %d)", r.Child.Username, r.Child.Age)))

	fmt.Fprintf(&sb, "\n%s %s\n", sectionStyle.Render("Alerts"), dimStyle.Render(fmt.Sprintf("%d unread", r.UnreadCount)))
	if len(r.Alerts) == 0 {
		sb.WriteString("  No alerts.\n")
	}
	for _, a := range r.Alerts {
		badge := present.BadgeStyle(a.Severity).Render(strings.ToUpper(string(a.Severity)))
		fmt.Fprintf(&sb, "  %s %s  %s\n", badge, present.Headline(a),
			dimStyle.Render(present.DetailTime(a.Timestamp, loc)+" · "+present.RelativeTime(a.Timestamp, now)))
		fmt.Fprintf(&sb, "      %s\n", a.Message)
	}

	s := r.Summary
	fmt.Fprintf(&sb, "\n%s %s\n", sectionStyle.Render("This week"),
		dimStyle.Render(s.WindowStart.Format("Jan 2")+" to "+s.WindowEnd.AddDate(0, 0, -1).Format("Jan 2")))
	fmt.Fprintf(&sb, "  Playtime %s · %d games · %d new friends · %d new groups\n\n",
		present.Playtime(s.TotalPlaytime), s.GamesPlayed, s.NewFriends, s.NewGroups)
	for _, line := range strings.Split(present.RenderChart(s.ChartData, chartRows), "\n") {
		sb.WriteString("  " + line + "\n")
	}

	if len(r.Recent) > 0 {
		last := r.Recent[len(r.Recent)-1].OccurredAt
		fmt.Fprintf(&sb, "\n%s %s\n", sectionStyle.Render("Recent activity"),
			dimStyle.Render("last recorded "+present.SinceSync(last, now)))
		for i := len(r.Recent) - 1; i >= 0; i-- {
			e := r.Recent[i]
			fmt.Fprintf(&sb, "  %s  %s\n", dimStyle.Render(present.DetailTime(e.OccurredAt, loc)), e.Text)
		}
	}
	return sb.String()
}
