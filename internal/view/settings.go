package view

import (
	"slices"
	"strings"

	"github.com/claude/atlas/internal/models"
)

// Fallbacks used for any settings field the server leaves out.
const (
	DefaultAIModelID = "gemini-1.5-flash-latest"
	DefaultDuration  = "Any"
	DefaultGoal      = "Balanced Fitness"
)

// DefaultSettings returns the settings a fresh account starts with.
func DefaultSettings() models.UserSettings {
	return models.UserSettings{
		StrengthFreq:              2,
		HIITFreq:                  1,
		Zone2Freq:                 2,
		RecoveryFreq:              1,
		StabilityFreq:             0,
		FocusRotation:             []string{"Upper Body", "Lower Body", "Push", "Pull"},
		PrimaryGoal:               DefaultGoal,
		AIModelID:                 DefaultAIModelID,
		WorkoutDurationPreference: DefaultDuration,
	}
}

// MergeSettings fills every field missing from p with its default.
func MergeSettings(p *models.UserSettingsPayload) models.UserSettings {
	s := DefaultSettings()
	if p == nil {
		return s
	}
	setInt(&s.StrengthFreq, p.StrengthFreq)
	setInt(&s.HIITFreq, p.HIITFreq)
	setInt(&s.Zone2Freq, p.Zone2Freq)
	setInt(&s.RecoveryFreq, p.RecoveryFreq)
	setInt(&s.StabilityFreq, p.StabilityFreq)
	if p.FocusRotation != nil {
		s.FocusRotation = slices.Clone(p.FocusRotation)
	}
	setString(&s.PrimaryGoal, p.PrimaryGoal)
	setString(&s.AIModelID, p.AIModelID)
	setString(&s.WorkoutDurationPreference, p.WorkoutDurationPreference)
	return s
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

// ParseRotation splits a comma-separated rotation as typed in the form.
func ParseRotation(s string) []string {
	return models.CleanList(strings.Split(s, ","))
}

// FormatRotation is the inverse of ParseRotation.
func FormatRotation(r []string) string {
	return strings.Join(r, ", ")
}
