package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/claude/atlas/internal/client"
	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

type stubBackend struct {
	generated  *models.WorkoutResult
	genErr     error
	saved      []models.WorkoutResult
	deleted    []int
	history    []models.HistoryEntry
	plan       []models.WeeklyPlanEntry
	streamUsed bool
}

func (b *stubBackend) GetWorkoutHistory(context.Context, int) ([]models.HistoryEntry, error) {
	return b.history, nil
}

func (b *stubBackend) GetCurrentWeeklyPlan(context.Context) ([]models.WeeklyPlanEntry, error) {
	return b.plan, nil
}

func (b *stubBackend) GetUserSettings(context.Context) (*models.UserSettingsPayload, error) {
	return &models.UserSettingsPayload{}, nil
}

func (b *stubBackend) GenerateWorkout(_ context.Context, req models.WorkoutRequest) (*models.WorkoutResult, error) {
	return b.generated, b.genErr
}

func (b *stubBackend) GenerateWorkoutStream(_ context.Context, req models.WorkoutRequest, _ func(string)) (*models.WorkoutResult, error) {
	b.streamUsed = true
	return b.generated, b.genErr
}

func (b *stubBackend) SaveWorkout(_ context.Context, w models.WorkoutResult) (string, error) {
	b.saved = append(b.saved, w)
	return "Workout saved successfully!", nil
}

func (b *stubBackend) DeleteWorkout(_ context.Context, id int) (string, error) {
	b.deleted = append(b.deleted, id)
	return "Workout deleted successfully!", nil
}

func discardLog() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newHandlers(b *stubBackend, opts Options) *handlers {
	return &handlers{backend: b, session: session.New(nil, nil), opts: opts, log: discardLog()}
}

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestSaveWithoutWorkout verifies save_workout refuses when nothing was generated.
func TestSaveWithoutWorkout(t *testing.T) {
	b := &stubBackend{}
	h := newHandlers(b, Options{})

	res, err := h.saveWorkout(context.Background(), callReq("save_workout", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if got := resultText(t, res); got != session.ErrNoWorkoutToSave.Error() {
		t.Errorf("text = %q", got)
	}
	if len(b.saved) != 0 {
		t.Errorf("saved = %d, want 0", len(b.saved))
	}
}

// TestGenerateThenSave verifies a generated workout is held until saved and
// cleared afterwards.
func TestGenerateThenSave(t *testing.T) {
	b := &stubBackend{generated: &models.WorkoutResult{
		Pillar: "HIIT", Focus: "Full Body", MusclesWorked: []string{"Cardiovascular System"}, WorkoutText: "go",
	}}
	h := newHandlers(b, Options{Streaming: true})
	ctx := context.Background()

	res, _ := h.generateWorkout(ctx, callReq("generate_workout", map[string]any{
		"pillar": "HIIT", "experience": "Beginner", "equipment": "Rower, ,Rower",
	}))
	if res.IsError {
		t.Fatalf("generate failed: %s", resultText(t, res))
	}
	if !b.streamUsed {
		t.Error("expected streaming generation")
	}
	var got models.WorkoutResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got.WorkoutText != "go" {
		t.Errorf("workout_text = %q", got.WorkoutText)
	}

	res, _ = h.saveWorkout(ctx, callReq("save_workout", nil))
	if res.IsError {
		t.Fatalf("save failed: %s", resultText(t, res))
	}
	if len(b.saved) != 1 || b.saved[0].Pillar != "HIIT" {
		t.Fatalf("saved = %+v", b.saved)
	}
	if _, ok := h.session.Current(); ok {
		t.Error("session should be empty after save")
	}
}

// TestGenerateValidation verifies an empty equipment list never reaches the
// backend and still discards the previous workout.
func TestGenerateValidation(t *testing.T) {
	b := &stubBackend{}
	h := newHandlers(b, Options{})
	_ = h.session.Set(models.WorkoutResult{Pillar: "Zone2", WorkoutText: "old"})

	res, _ := h.generateWorkout(context.Background(), callReq("generate_workout", map[string]any{
		"pillar": "Strength", "experience": "Beginner", "equipment": " , ",
	}))
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if got := resultText(t, res); got != "Please select at least one piece of equipment." {
		t.Errorf("text = %q", got)
	}
	if _, ok := h.session.Current(); ok {
		t.Error("invalid attempt should discard the previous workout")
	}
}

// TestGenerateServerError verifies backend messages are passed through and
// the previous workout is dropped.
func TestGenerateServerError(t *testing.T) {
	b := &stubBackend{genErr: &client.RequestError{Path: "/generate_workout", Status: 400, Message: "bad input"}}
	h := newHandlers(b, Options{})
	_ = h.session.Set(models.WorkoutResult{Pillar: "Zone2", WorkoutText: "old"})

	res, _ := h.generateWorkout(context.Background(), callReq("generate_workout", map[string]any{
		"pillar": "Zone2", "experience": "Beginner", "equipment": "Treadmill",
	}))
	if !res.IsError || resultText(t, res) != "bad input" {
		t.Fatalf("result = %+v", res)
	}
	if _, ok := h.session.Current(); ok {
		t.Error("stale workout should be cleared")
	}

	b.genErr = errors.New("connection refused")
	res, _ = h.generateWorkout(context.Background(), callReq("generate_workout", map[string]any{
		"pillar": "Zone2", "experience": "Beginner", "equipment": "Treadmill",
	}))
	if resultText(t, res) != generateFailed {
		t.Errorf("text = %q, want fallback", resultText(t, res))
	}
}

// TestDeleteRequiresConfirm verifies delete_workout only calls the backend
// when confirmed.
func TestDeleteRequiresConfirm(t *testing.T) {
	b := &stubBackend{}
	h := newHandlers(b, Options{AllowDelete: true})
	ctx := context.Background()

	res, _ := h.deleteWorkout(ctx, callReq("delete_workout", map[string]any{"id": "7", "confirm": "no"}))
	if !res.IsError {
		t.Error("expected cancellation error")
	}
	if len(b.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", b.deleted)
	}

	res, _ = h.deleteWorkout(ctx, callReq("delete_workout", map[string]any{"id": "7", "confirm": "yes"}))
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}
	if len(b.deleted) != 1 || b.deleted[0] != 7 {
		t.Errorf("deleted = %v, want [7]", b.deleted)
	}
}

// TestWeeklyPlanSorted verifies the plan tool orders days Monday first.
func TestWeeklyPlanSorted(t *testing.T) {
	b := &stubBackend{plan: []models.WeeklyPlanEntry{
		{DayOfWeek: 6, PillarFocus: "Rest"},
		{DayOfWeek: 0, PillarFocus: "Strength"},
	}}
	h := newHandlers(b, Options{})

	res, _ := h.getWeeklyPlan(context.Background(), callReq("get_weekly_plan", nil))
	var rows []struct {
		Day     int    `json:"day_of_week"`
		DayName string `json:"day"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 || rows[0].DayName != "Monday" || rows[1].DayName != "Sunday" {
		t.Errorf("rows = %+v", rows)
	}
}

// TestHistoryDaysArgument verifies a malformed days argument is rejected.
func TestHistoryDaysArgument(t *testing.T) {
	h := newHandlers(&stubBackend{}, Options{HistoryDays: 14})

	res, _ := h.getWorkoutHistory(context.Background(), callReq("get_workout_history", map[string]any{"days": "soon"}))
	if !res.IsError {
		t.Error("expected error for non-numeric days")
	}
}
