// Package filter applies period, role and team filters uniformly across the
// campaign and sales record streams. All filters are pure and
// order-preserving, so any application order yields the same result set.
package filter

import (
	"fmt"
	"time"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
)

type Window string

const (
	WindowToday  Window = "today"
	WindowLast7  Window = "7d"
	WindowLast30 Window = "30d"
	WindowAll    Window = "all"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowToday, WindowLast7, WindowLast30, WindowAll:
		return Window(s), nil
	case "":
		return WindowAll, nil
	}
	return "", fmt.Errorf("unknown period %q (want today, 7d, 30d or all)", s)
}

// Dated is any record carrying a calendar day.
type Dated interface {
	Day() models.Date
}

// ByPeriod keeps records whose calendar day falls inside the window ending
// today. Comparison is on calendar date, not wall-clock instant, so same-day
// records are never excluded at timezone edges.
func ByPeriod[T Dated](recs []T, w Window, now time.Time) []T {
	today := models.DateOf(now)
	var from models.Date
	switch w {
	case WindowToday:
		from = today
	case WindowLast7:
		from = models.DateOf(now.AddDate(0, 0, -7))
	case WindowLast30:
		from = models.DateOf(now.AddDate(0, 0, -30))
	default:
		out := make([]T, len(recs))
		copy(out, recs)
		return out
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		d := r.Day()
		if !d.Before(from.Time) && !d.After(today.Time) {
			out = append(out, r)
		}
	}
	return out
}

// ByRole keeps records matching role exactly; an empty role is a no-op.
func ByRole(recs []models.SalesActivityRecord, role models.Role) []models.SalesActivityRecord {
	if role == "" {
		out := make([]models.SalesActivityRecord, len(recs))
		copy(out, recs)
		return out
	}
	out := make([]models.SalesActivityRecord, 0, len(recs))
	for _, r := range recs {
		if r.Role == role {
			out = append(out, r)
		}
	}
	return out
}

// TeamSwitch is a stream-level switch, not a row filter: selecting one team
// empties the other team's stream wholesale. An empty selection keeps both.
func TeamSwitch(sel models.Team, teamA, teamB []models.SalesActivityRecord) ([]models.SalesActivityRecord, []models.SalesActivityRecord) {
	switch sel {
	case models.TeamA:
		return teamA, []models.SalesActivityRecord{}
	case models.TeamB:
		return []models.SalesActivityRecord{}, teamB
	}
	return teamA, teamB
}
