package view

import (
	"testing"
	"time"

	"github.com/claude/atlas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSortPlan verifies rows come out ordered by day whatever the arrival order.
func TestSortPlan(t *testing.T) {
	rows := SortPlan([]models.WeeklyPlanEntry{
		{DayOfWeek: 3, PillarFocus: "HIIT", Status: "Planned"},
		{DayOfWeek: 0, PillarFocus: "Strength - Upper Body", Status: "Completed"},
		{DayOfWeek: 6, PillarFocus: "Rest", Status: "Planned"},
	})

	require.Len(t, rows, 3)
	var days []int
	for _, r := range rows {
		days = append(days, r.Day)
	}
	assert.Equal(t, []int{0, 3, 6}, days)
	assert.Equal(t, "Monday", rows[0].DayName)
	assert.Equal(t, "Thursday", rows[1].DayName)
	assert.Equal(t, "Sunday", rows[2].DayName)
	assert.Equal(t, "Completed", rows[0].Status)
}

func TestSortPlanDoesNotMutateInput(t *testing.T) {
	in := []models.WeeklyPlanEntry{{DayOfWeek: 2}, {DayOfWeek: 1}}
	SortPlan(in)
	assert.Equal(t, 2, in[0].DayOfWeek)
	assert.Empty(t, SortPlan(nil))
	assert.Equal(t, "Unknown", DayName(7))
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2026-10-18":                 "Oct 18, 2026",
		"2026-10-18 07:30:00":        "Oct 18, 2026",
		"2026-10-18 07:30:00.123456": "Oct 18, 2026",
		"2026-10-18T07:30:00Z":       "Oct 18, 2026",
		"yesterday":                  "yesterday",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(in, time.UTC), in)
	}
}

// TestFormatDateZoneless verifies zone-less timestamps are read as UTC and
// shown on the local calendar day.
func TestFormatDateZoneless(t *testing.T) {
	eastern := time.FixedZone("EDT", -4*60*60)
	assert.Equal(t, "Oct 18, 2026", FormatDate("2026-10-19 00:00:00", eastern))
	assert.Equal(t, "Oct 18, 2026", FormatDate("2026-10-19T00:00:00Z", eastern))
	assert.Equal(t, "Oct 19, 2026", FormatDate("2026-10-19 04:00:00", eastern))
	assert.Equal(t, "Oct 19, 2026", FormatDate("2026-10-19", eastern))

	groups := FormatHistory([]models.HistoryEntry{
		{ID: 2, WorkoutDate: "2026-10-19 03:30:00", Pillar: "HIIT", Focus: "Full Body"},
		{ID: 1, WorkoutDate: "2026-10-18 22:00:00", Pillar: "Zone2", Focus: "Cardio"},
	}, eastern)
	require.Len(t, groups, 1)
	assert.Equal(t, "Oct 18, 2026", groups[0].Date)
	assert.Len(t, groups[0].Records, 2)
}

// TestFormatHistory verifies day grouping, titles, and the muscle fallback.
func TestFormatHistory(t *testing.T) {
	groups := FormatHistory([]models.HistoryEntry{
		{ID: 3, WorkoutDate: "2026-10-18 18:00:00", Pillar: "HIIT", Focus: "Full Body", MusclesWorked: []string{"Legs", "Core"}},
		{ID: 2, WorkoutDate: "2026-10-18 07:00:00", Pillar: "Strength", Focus: "Push"},
		{ID: 1, WorkoutDate: "2026-10-16 07:00:00", Pillar: "Zone2", Focus: "Cardio", FullWorkoutText: "Run"},
	}, time.UTC)

	require.Len(t, groups, 2)
	assert.Equal(t, "Oct 18, 2026", groups[0].Date)
	require.Len(t, groups[0].Records, 2)
	assert.Equal(t, "Oct 18, 2026 - HIIT: Full Body", groups[0].Records[0].Title)
	assert.Equal(t, "Legs, Core", groups[0].Records[0].Muscles)
	assert.Equal(t, "N/A", groups[0].Records[1].Muscles)
	assert.Equal(t, 2, groups[0].Records[1].ID)

	assert.Equal(t, "Oct 16, 2026", groups[1].Date)
	assert.Equal(t, "Run", groups[1].Records[0].FullText)

	assert.Empty(t, FormatHistory(nil, nil))
}

// TestMergeSettings verifies absent fields fall back and present ones win,
// including explicit zeros.
func TestMergeSettings(t *testing.T) {
	zero := 0
	model := "gemini-2.0-pro"
	empty := ""
	got := MergeSettings(&models.UserSettingsPayload{
		StrengthFreq:              &zero,
		AIModelID:                 &model,
		WorkoutDurationPreference: &empty,
		FocusRotation:             []string{"Push", "Pull"},
	})

	assert.Equal(t, 0, got.StrengthFreq)
	assert.Equal(t, 1, got.HIITFreq)
	assert.Equal(t, "gemini-2.0-pro", got.AIModelID)
	assert.Equal(t, DefaultDuration, got.WorkoutDurationPreference)
	assert.Equal(t, DefaultGoal, got.PrimaryGoal)
	assert.Equal(t, []string{"Push", "Pull"}, got.FocusRotation)

	assert.Equal(t, DefaultSettings(), MergeSettings(nil))
}

func TestParseRotation(t *testing.T) {
	assert.Equal(t, []string{"Upper Body", "Lower Body"}, ParseRotation(" Upper Body, Lower Body ,,"))
	assert.Equal(t, []string{}, ParseRotation(""))
	assert.Equal(t, "Push, Pull", FormatRotation([]string{"Push", "Pull"}))
}
