package view

import (
	"slices"

	"github.com/claude/atlas/internal/models"
)

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// PlanRow is one rendered day of the weekly plan.
type PlanRow struct {
	Day         int    `json:"day_of_week"`
	DayName     string `json:"day"`
	PillarFocus string `json:"pillar_focus"`
	Status      string `json:"status"`
}

// DayName returns the weekday for a plan index, Monday being 0.
func DayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return "Unknown"
	}
	return dayNames[day]
}

// SortPlan orders entries by day ascending regardless of arrival order.
// Entries sharing a day keep their relative order.
func SortPlan(entries []models.WeeklyPlanEntry) []PlanRow {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b models.WeeklyPlanEntry) int {
		return a.DayOfWeek - b.DayOfWeek
	})

	rows := make([]PlanRow, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, PlanRow{
			Day:         e.DayOfWeek,
			DayName:     DayName(e.DayOfWeek),
			PillarFocus: e.PillarFocus,
			Status:      e.Status,
		})
	}
	return rows
}
