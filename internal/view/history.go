// Package view turns server collections into render-ready records. Every
// function is pure.
package view

import (
	"strings"
	"time"

	"github.com/claude/atlas/internal/models"
)

// DateLayout is how workout dates are shown.
const DateLayout = "Jan 2, 2006"

// NoHistoryText is shown when the history list is empty.
const NoHistoryText = "No recent workouts found."

// dateLayouts are the timestamp shapes the backend is known to send.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	dayLayout,
}

const dayLayout = "2006-01-02"

// HistoryRecord is one display line of a past workout.
type HistoryRecord struct {
	ID       int    `json:"id"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Muscles  string `json:"muscles"`
	FullText string `json:"full_text"`
}

// HistoryGroup is the records logged on one calendar day.
type HistoryGroup struct {
	Date    string          `json:"date"`
	Records []HistoryRecord `json:"records"`
}

// FormatHistory groups entries by calendar day in loc, keeping the server's
// order within and across groups.
func FormatHistory(entries []models.HistoryEntry, loc *time.Location) []HistoryGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []HistoryGroup
	index := make(map[string]int)
	for _, e := range entries {
		date := FormatDate(e.WorkoutDate, loc)
		rec := HistoryRecord{
			ID:       e.ID,
			Date:     date,
			Title:    date + " - " + e.Pillar + ": " + e.Focus,
			Muscles:  JoinMuscles(e.MusclesWorked),
			FullText: e.FullWorkoutText,
		}
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, HistoryGroup{Date: date})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// FormatDate renders a backend timestamp as a display date in loc.
// Timestamps without a zone are UTC; a bare date is already a calendar day.
// Unparseable input is returned unchanged.
func FormatDate(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if layout == dayLayout {
			return t.Format(DateLayout)
		}
		return t.In(loc).Format(DateLayout)
	}
	return raw
}

// JoinMuscles joins muscle names for display, or "N/A" when there are none.
func JoinMuscles(muscles []string) string {
	cleaned := models.CleanList(muscles)
	if len(cleaned) == 0 {
		return "N/A"
	}
	return strings.Join(cleaned, ", ")
}
