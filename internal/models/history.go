package models

// HistoryEntry is a persisted past workout as returned by GET /get_workout_history.
type HistoryEntry struct {
	ID              int      `json:"id"`
	WorkoutDate     string   `json:"workout_date"`
	Pillar          string   `json:"pillar"`
	Focus           string   `json:"focus"`
	MusclesWorked   []string `json:"muscles_worked"`
	FullWorkoutText string   `json:"full_workout_text"`
}

// WeeklyPlanEntry is one day of the current week's plan. DayOfWeek counts
// from Monday (0) to Sunday (6).
type WeeklyPlanEntry struct {
	DayOfWeek     int    `json:"day_of_week"`
	PillarFocus   string `json:"pillar_focus"`
	Status        string `json:"status"`
	WeekStartDate string `json:"week_start_date,omitempty"`
	WorkoutID     *int   `json:"workout_id,omitempty"`
}
