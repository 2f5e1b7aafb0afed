package devserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/view"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenStore(filepath.Join(t.TempDir(), "workouts.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestStoreHistoryWindow verifies history is filtered by date and returned
// newest first.
func TestStoreHistoryWindow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	w := models.SaveWorkoutRequest{Pillar: "Strength", Focus: "Push", MusclesWorked: []string{"Chest"}, FullWorkoutText: "x"}
	if _, err := st.InsertWorkout(ctx, 1, w, now.AddDate(0, 0, -20)); err != nil {
		t.Fatal(err)
	}
	older, err := st.InsertWorkout(ctx, 1, w, now.AddDate(0, 0, -2))
	if err != nil {
		t.Fatal(err)
	}
	newer, err := st.InsertWorkout(ctx, 1, w, now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}

	entries, err := st.WorkoutHistory(ctx, 1, now.AddDate(0, 0, -14))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != newer || entries[1].ID != older {
		t.Errorf("order = [%d %d], want [%d %d]", entries[0].ID, entries[1].ID, newer, older)
	}
	if entries[0].MusclesWorked[0] != "Chest" {
		t.Errorf("muscles = %v", entries[0].MusclesWorked)
	}
}

// TestStoreHistoryLocalDay verifies a workout logged late in the evening west
// of UTC is returned with its zone and shown on the day it was logged.
func TestStoreHistoryLocalDay(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	eastern := time.FixedZone("EDT", -4*60*60)
	at := time.Date(2026, 10, 18, 20, 0, 0, 0, eastern)

	w := models.SaveWorkoutRequest{Pillar: "HIIT", Focus: "Full Body", FullWorkoutText: "x"}
	if _, err := st.InsertWorkout(ctx, 1, w, at); err != nil {
		t.Fatal(err)
	}
	entries, err := st.WorkoutHistory(ctx, 1, at.AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if got, want := entries[0].WorkoutDate, "2026-10-19T00:00:00Z"; got != want {
		t.Errorf("WorkoutDate = %q, want %q", got, want)
	}
	groups := view.FormatHistory(entries, eastern)
	if len(groups) != 1 || groups[0].Date != "Oct 18, 2026" {
		t.Errorf("groups = %+v, want one group on Oct 18, 2026", groups)
	}
}

// TestStoreDeleteMissing verifies deleting an unknown id reports ErrNotFound.
func TestStoreDeleteMissing(t *testing.T) {
	st := openTestStore(t)
	if err := st.DeleteWorkout(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestStoreSettingsDefaults verifies defaults are served until settings are saved.
func TestStoreSettingsDefaults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	got, err := st.UserSettings(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.StrengthFreq != 2 || len(got.FocusRotation) != 4 {
		t.Errorf("defaults = %+v", got)
	}

	got.StrengthFreq = 5
	got.FocusRotation = []string{"Push", " ", "Pull"}
	if err := st.SaveUserSettings(ctx, 1, got); err != nil {
		t.Fatal(err)
	}
	saved, err := st.UserSettings(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if saved.StrengthFreq != 5 {
		t.Errorf("strength_freq = %d, want 5", saved.StrengthFreq)
	}
	if len(saved.FocusRotation) != 2 {
		t.Errorf("rotation = %v, want [Push Pull]", saved.FocusRotation)
	}
}

// TestStoreReplaceWeeklyPlan verifies a rebuild replaces the whole week.
func TestStoreReplaceWeeklyPlan(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	week := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	first := []string{"Strength", "Rest", "Rest", "Rest", "Rest", "Rest", "Rest"}
	if err := st.ReplaceWeeklyPlan(ctx, 1, week, first); err != nil {
		t.Fatal(err)
	}
	second := []string{"HIIT", "HIIT", "Rest", "Rest", "Rest", "Rest", "Rest"}
	if err := st.ReplaceWeeklyPlan(ctx, 1, week, second); err != nil {
		t.Fatal(err)
	}

	plan, err := st.WeeklyPlan(ctx, 1, week)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 7 {
		t.Fatalf("len = %d, want 7", len(plan))
	}
	for _, e := range plan {
		if e.PillarFocus != second[e.DayOfWeek] {
			t.Errorf("day %d = %q, want %q", e.DayOfWeek, e.PillarFocus, second[e.DayOfWeek])
		}
		if e.Status != StatusPlanned {
			t.Errorf("status = %q, want %q", e.Status, StatusPlanned)
		}
		if e.WeekStartDate != "2026-10-19" {
			t.Errorf("week_start_date = %q", e.WeekStartDate)
		}
	}
}

// TestStoreAPIKey verifies the key round-trips and is empty when unset.
func TestStoreAPIKey(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if key, err := st.APIKey(ctx); err != nil || key != "" {
		t.Fatalf("APIKey = %q, %v; want empty", key, err)
	}
	if err := st.SetAPIKey(ctx, "k-1"); err != nil {
		t.Fatal(err)
	}
	if key, _ := st.APIKey(ctx); key != "k-1" {
		t.Errorf("APIKey = %q, want k-1", key)
	}
}
