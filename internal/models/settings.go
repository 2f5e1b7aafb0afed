package models

// UserSettings are the training preferences edited through the settings form.
type UserSettings struct {
	StrengthFreq              int      `json:"strength_freq"`
	HIITFreq                  int      `json:"hiit_freq"`
	Zone2Freq                 int      `json:"zone2_freq"`
	RecoveryFreq              int      `json:"recovery_freq"`
	StabilityFreq             int      `json:"stability_freq"`
	FocusRotation             []string `json:"focus_rotation"`
	PrimaryGoal               string   `json:"primary_goal"`
	AIModelID                 string   `json:"ai_model_id"`
	WorkoutDurationPreference string   `json:"workout_duration_preference"`
}

// UserSettingsPayload mirrors UserSettings as fetched from the server, where
// any field may be missing. A nil field means the server did not send it.
type UserSettingsPayload struct {
	StrengthFreq              *int     `json:"strength_freq"`
	HIITFreq                  *int     `json:"hiit_freq"`
	Zone2Freq                 *int     `json:"zone2_freq"`
	RecoveryFreq              *int     `json:"recovery_freq"`
	StabilityFreq             *int     `json:"stability_freq"`
	FocusRotation             []string `json:"focus_rotation"`
	PrimaryGoal               *string  `json:"primary_goal"`
	AIModelID                 *string  `json:"ai_model_id"`
	WorkoutDurationPreference *string  `json:"workout_duration_preference"`
}

// CredentialRequest is the body of POST /save_settings.
type CredentialRequest struct {
	GeminiAPIKey string `json:"geminiApiKey"`
}
