package devserver

import (
	"time"

	"github.com/claude/atlas/internal/models"
)

// StatusPlanned marks a plan day with no logged workout yet.
const StatusPlanned = "Planned"

// PlanWeek distributes the weekly frequencies over seven days, Monday
// first. More than seven sessions are cut in priority order Strength, HIIT,
// Zone2, Stability; leftover days are Rest.
func PlanWeek(s models.UserSettings) []string {
	total := max(s.StrengthFreq, 0) + max(s.Zone2Freq, 0) + max(s.HIITFreq, 0) + max(s.StabilityFreq, 0)

	type slot struct {
		pillar string
		count  int
	}
	order := []slot{
		{models.PillarStrength, s.StrengthFreq},
		{models.PillarZone2, s.Zone2Freq},
		{models.PillarHIIT, s.HIITFreq},
		{models.PillarStability, s.StabilityFreq},
	}
	if total > 7 {
		order = []slot{
			{models.PillarStrength, s.StrengthFreq},
			{models.PillarHIIT, s.HIITFreq},
			{models.PillarZone2, s.Zone2Freq},
			{models.PillarStability, s.StabilityFreq},
		}
	}

	days := make([]string, 0, 7)
	for _, sl := range order {
		for i := 0; i < sl.count && len(days) < 7; i++ {
			days = append(days, sl.pillar)
		}
	}
	for len(days) < 7 {
		days = append(days, models.PillarRest)
	}
	return days
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayIndex returns t's plan index, Monday being 0.
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
