package models

import "encoding/json"

// Envelope types sent on the streamed /generate_workout response.
const (
	EnvelopeText  = "text"
	EnvelopeError = "error"
	EnvelopeUsage = "usage"
)

// StreamEnvelope is one line of the line-delimited generation stream.
type StreamEnvelope struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`

	// Usage fields are carried but not interpreted by the client.
	InputTokens  *int     `json:"inputTokens,omitempty"`
	OutputTokens *int     `json:"outputTokens,omitempty"`
	TotalCost    *float64 `json:"totalCost,omitempty"`
}

// GeneratedWorkout is the JSON document the model produces inside the stream.
type GeneratedWorkout struct {
	WorkoutText   string          `json:"workout_text"`
	MusclesWorked json.RawMessage `json:"muscles_worked"`
}
