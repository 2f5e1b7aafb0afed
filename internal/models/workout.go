package models

import "strings"

// Training pillars known to the backend.
const (
	PillarStrength  = "Strength"
	PillarHIIT      = "HIIT"
	PillarZone2     = "Zone2"
	PillarStability = "Stability"
	PillarRecovery  = "Recovery"
	PillarRest      = "Rest"
)

// WorkoutRequest is the body of POST /generate_workout. A fresh value is built
// for every submission.
type WorkoutRequest struct {
	Pillar        string   `json:"workout_pillar"`
	StrengthStyle string   `json:"strength_style,omitempty"`
	Experience    string   `json:"experience"`
	Equipment     []string `json:"equipment"`
	Focus         string   `json:"focus,omitempty"`
	Notes         string   `json:"userNotes,omitempty"`
	Stream        bool     `json:"stream,omitempty"`
}

// Validate checks the request before any network call is made.
func (r *WorkoutRequest) Validate() error {
	r.Equipment = CleanList(r.Equipment)
	if len(r.Equipment) == 0 {
		return &ValidationError{Field: "equipment", Message: "Please select at least one piece of equipment."}
	}
	return nil
}

// CleanList trims entries and drops blanks and duplicates, keeping
// the first occurrence order.
func CleanList(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// WorkoutResult is a generated workout that has not been saved yet.
type WorkoutResult struct {
	Pillar        string   `json:"pillar"`
	Focus         string   `json:"focus"`
	MusclesWorked []string `json:"muscles_worked"`
	WorkoutText   string   `json:"workout_text"`
}

// SaveRequest converts the result into the POST /save_workout body.
func (w WorkoutResult) SaveRequest() SaveWorkoutRequest {
	muscles := w.MusclesWorked
	if muscles == nil {
		muscles = []string{}
	}
	return SaveWorkoutRequest{
		Pillar:          w.Pillar,
		Focus:           w.Focus,
		MusclesWorked:   muscles,
		FullWorkoutText: w.WorkoutText,
	}
}

// SaveWorkoutRequest is the wire shape the backend persists.
type SaveWorkoutRequest struct {
	Pillar          string   `json:"pillar"`
	Focus           string   `json:"focus"`
	MusclesWorked   []string `json:"muscles_worked"`
	FullWorkoutText string   `json:"full_workout_text"`
}

// MessageResponse is the success body of every mutating endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of any non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
