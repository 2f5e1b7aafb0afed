package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/view"
	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored; lexical order matches time order.
const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS workout_history (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           INTEGER NOT NULL,
	workout_date      TEXT NOT NULL,
	pillar            TEXT NOT NULL,
	focus             TEXT NOT NULL,
	muscles_worked    TEXT NOT NULL DEFAULT '[]',
	full_workout_text TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_workout_history_user_date ON workout_history (user_id, workout_date);

CREATE TABLE IF NOT EXISTS user_settings (
	user_id                     INTEGER PRIMARY KEY,
	strength_freq               INTEGER NOT NULL,
	hiit_freq                   INTEGER NOT NULL,
	zone2_freq                  INTEGER NOT NULL,
	recovery_freq               INTEGER NOT NULL,
	stability_freq              INTEGER NOT NULL DEFAULT 0,
	focus_rotation              TEXT NOT NULL,
	primary_goal                TEXT NOT NULL,
	ai_model_id                 TEXT NOT NULL,
	workout_duration_preference TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS weekly_plan (
	user_id         INTEGER NOT NULL,
	week_start_date TEXT NOT NULL,
	day_of_week     INTEGER NOT NULL,
	pillar_focus    TEXT NOT NULL,
	status          TEXT NOT NULL,
	workout_id      INTEGER,
	PRIMARY KEY (user_id, week_start_date, day_of_week)
);

CREATE TABLE IF NOT EXISTS app_config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store persists the development backend's data in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path. ":memory:" is allowed.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertWorkout appends a workout to the user's history and returns its id.
func (s *Store) InsertWorkout(ctx context.Context, userID int, w models.SaveWorkoutRequest, at time.Time) (int, error) {
	muscles, err := json.Marshal(models.CleanList(w.MusclesWorked))
	if err != nil {
		return 0, fmt.Errorf("encoding muscles: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO workout_history (user_id, workout_date, pillar, focus, muscles_worked, full_workout_text)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, at.UTC().Format(timeLayout), w.Pillar, w.Focus, string(muscles), w.FullWorkoutText,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading workout id: %w", err)
	}
	return int(id), nil
}

// WorkoutHistory returns workouts logged at or after since, newest first.
func (s *Store) WorkoutHistory(ctx context.Context, userID int, since time.Time) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workout_date, pillar, focus, muscles_worked, full_workout_text
		 FROM workout_history
		 WHERE user_id = ? AND workout_date >= ?
		 ORDER BY workout_date DESC, id DESC`,
		userID, since.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e       models.HistoryEntry
			muscles string
		)
		if err := rows.Scan(&e.ID, &e.WorkoutDate, &e.Pillar, &e.Focus, &muscles, &e.FullWorkoutText); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.WorkoutDate = zonedDate(e.WorkoutDate)
		if err := json.Unmarshal([]byte(muscles), &e.MusclesWorked); err != nil || e.MusclesWorked == nil {
			e.MusclesWorked = []string{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// zonedDate turns a stored UTC timestamp into RFC 3339 so clients can place
// it on their own calendar day.
func zonedDate(stored string) string {
	t, err := time.Parse(timeLayout, stored)
	if err != nil {
		return stored
	}
	return t.UTC().Format(time.RFC3339)
}

// DeleteWorkout removes a workout by id. It returns ErrNotFound if no row matched.
func (s *Store) DeleteWorkout(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workout_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserSettings returns the stored settings, or the defaults when none exist.
func (s *Store) UserSettings(ctx context.Context, userID int) (models.UserSettings, error) {
	var (
		st       models.UserSettings
		rotation string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT strength_freq, hiit_freq, zone2_freq, recovery_freq, stability_freq,
		        focus_rotation, primary_goal, ai_model_id, workout_duration_preference
		 FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&st.StrengthFreq, &st.HIITFreq, &st.Zone2Freq, &st.RecoveryFreq, &st.StabilityFreq,
		&rotation, &st.PrimaryGoal, &st.AIModelID, &st.WorkoutDurationPreference)
	if errors.Is(err, sql.ErrNoRows) {
		return view.DefaultSettings(), nil
	}
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("querying settings: %w", err)
	}
	if err := json.Unmarshal([]byte(rotation), &st.FocusRotation); err != nil {
		st.FocusRotation = view.DefaultSettings().FocusRotation
	}
	return st, nil
}

// SaveUserSettings replaces the user's settings.
func (s *Store) SaveUserSettings(ctx context.Context, userID int, st models.UserSettings) error {
	rotation, err := json.Marshal(models.CleanList(st.FocusRotation))
	if err != nil {
		return fmt.Errorf("encoding rotation: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_settings
		 (user_id, strength_freq, hiit_freq, zone2_freq, recovery_freq, stability_freq,
		  focus_rotation, primary_goal, ai_model_id, workout_duration_preference)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, st.StrengthFreq, st.HIITFreq, st.Zone2Freq, st.RecoveryFreq, st.StabilityFreq,
		string(rotation), st.PrimaryGoal, st.AIModelID, st.WorkoutDurationPreference,
	)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// ReplaceWeeklyPlan clears the week's plan and writes one Planned entry per day.
func (s *Store) ReplaceWeeklyPlan(ctx context.Context, userID int, weekStart time.Time, days []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning plan tx: %w", err)
	}
	defer tx.Rollback()

	week := weekStart.Format(dateLayout)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM weekly_plan WHERE user_id = ? AND week_start_date = ?`, userID, week,
	); err != nil {
		return fmt.Errorf("clearing plan: %w", err)
	}
	for day, pillar := range days {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO weekly_plan (user_id, week_start_date, day_of_week, pillar_focus, status)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, week, day, pillar, StatusPlanned,
		); err != nil {
			return fmt.Errorf("saving plan day %d: %w", day, err)
		}
	}
	return tx.Commit()
}

// WeeklyPlan returns the plan for the week starting at weekStart. Rows come
// back in storage order; clients sort by day.
func (s *Store) WeeklyPlan(ctx context.Context, userID int, weekStart time.Time) ([]models.WeeklyPlanEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day_of_week, pillar_focus, status, week_start_date, workout_id
		 FROM weekly_plan WHERE user_id = ? AND week_start_date = ?`,
		userID, weekStart.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	defer rows.Close()

	entries := []models.WeeklyPlanEntry{}
	for rows.Next() {
		var (
			e         models.WeeklyPlanEntry
			workoutID sql.NullInt64
		)
		if err := rows.Scan(&e.DayOfWeek, &e.PillarFocus, &e.Status, &e.WeekStartDate, &workoutID); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		if workoutID.Valid {
			id := int(workoutID.Int64)
			e.WorkoutID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// APIKey returns the stored AI provider key, or "" when none is saved.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE key = 'gemini_api_key'`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading api key: %w", err)
	}
	return key, nil
}

// SetAPIKey stores the AI provider key.
func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO app_config (key, value) VALUES ('gemini_api_key', ?)`, key)
	if err != nil {
		return fmt.Errorf("saving api key: %w", err)
	}
	return nil
}
