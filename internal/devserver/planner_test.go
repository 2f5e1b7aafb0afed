package devserver

import (
	"slices"
	"testing"
	"time"

	"github.com/claude/atlas/internal/models"
)

func count(days []string, pillar string) int {
	n := 0
	for _, d := range days {
		if d == pillar {
			n++
		}
	}
	return n
}

// TestPlanWeekExactFit verifies seven sessions fill the week with no rest day.
func TestPlanWeekExactFit(t *testing.T) {
	days := PlanWeek(models.UserSettings{StrengthFreq: 3, Zone2Freq: 2, HIITFreq: 1, StabilityFreq: 1})
	want := []string{"Strength", "Strength", "Strength", "Zone2", "Zone2", "HIIT", "Stability"}
	if !slices.Equal(days, want) {
		t.Errorf("days = %v, want %v", days, want)
	}
}

// TestPlanWeekOverflow verifies more than seven sessions are cut in
// Strength, HIIT, Zone2, Stability priority order.
func TestPlanWeekOverflow(t *testing.T) {
	days := PlanWeek(models.UserSettings{StrengthFreq: 4, Zone2Freq: 2, HIITFreq: 2, StabilityFreq: 1})
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7", len(days))
	}
	if got := count(days, models.PillarStrength); got != 4 {
		t.Errorf("strength = %d, want 4", got)
	}
	if got := count(days, models.PillarHIIT); got != 2 {
		t.Errorf("hiit = %d, want 2", got)
	}
	if got := count(days, models.PillarZone2); got != 1 {
		t.Errorf("zone2 = %d, want 1", got)
	}
	if got := count(days, models.PillarStability); got != 0 {
		t.Errorf("stability = %d, want 0", got)
	}
}

// TestPlanWeekRestPadding verifies unused days become Rest.
func TestPlanWeekRestPadding(t *testing.T) {
	days := PlanWeek(models.UserSettings{StrengthFreq: 1, Zone2Freq: 1, StabilityFreq: 1})
	if got := count(days, models.PillarRest); got != 4 {
		t.Errorf("rest = %d, want 4 (days %v)", got, days)
	}
	if days[6] != models.PillarRest {
		t.Errorf("sunday = %q, want Rest", days[6])
	}
}

// TestWeekStart verifies every day maps back to its Monday.
func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	for i := range 7 {
		day := monday.AddDate(0, 0, i).Add(15 * time.Hour)
		if got := WeekStart(day); !got.Equal(monday) {
			t.Errorf("WeekStart(%s) = %s, want %s", day.Weekday(), got, monday)
		}
		if got := DayIndex(day); got != i {
			t.Errorf("DayIndex(%s) = %d, want %d", day.Weekday(), got, i)
		}
	}
}
