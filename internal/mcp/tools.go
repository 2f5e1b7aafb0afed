package mcp

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/claude/atlas/internal/client"
	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/session"
	"github.com/claude/atlas/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

const generateFailed = "A network error occurred. Please try again."

// splitList parses a comma-separated list argument.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return models.CleanList(strings.Split(s, ","))
}

// --- Tool definitions ---

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Generate a workout for one training pillar. The result is held as the current workout until save_workout is called; generating again replaces it."),
	mcp.WithString("pillar", mcp.Required(), mcp.Description("Training pillar"), mcp.Enum("Strength", "HIIT", "Zone2", "Stability", "Recovery")),
	mcp.WithString("experience", mcp.Required(), mcp.Description("Experience level"), mcp.Enum("Beginner", "Intermediate", "Advanced")),
	mcp.WithString("equipment", mcp.Required(), mcp.Description("Comma-separated equipment list (e.g. 'Dumbbells, Bench')")),
	mcp.WithString("strength_style", mcp.Description("Strength style, only used for the Strength pillar"), mcp.Enum("Build Muscle", "Get Stronger", "General Fitness")),
	mcp.WithString("focus", mcp.Description("Body focus (e.g. 'Upper Body', 'Push')")),
	mcp.WithString("notes", mcp.Description("Free-form notes such as soreness or time limits")),
)

var toolSaveWorkout = mcp.NewTool("save_workout",
	mcp.WithDescription("Save the current generated workout to the training history."),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Saved workouts grouped by day, newest first."),
	mcp.WithString("days", mcp.Description("Look-back window in days. Defaults to the configured history window.")),
)

var toolGetWeeklyPlan = mcp.NewTool("get_weekly_plan",
	mcp.WithDescription("This week's training plan, one entry per day from Monday to Sunday."),
)

var toolGetUserSettings = mcp.NewTool("get_user_settings",
	mcp.WithDescription("Training preferences: weekly pillar frequencies, focus rotation, goal and duration preference."),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Permanently delete one saved workout by id. Requires confirm='yes'."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id from get_workout_history")),
	mcp.WithString("confirm", mcp.Required(), mcp.Description("Must be 'yes' to delete")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Any attempt, valid or not, discards the previous unsaved workout.
	if err := h.session.Begin(); err != nil {
		h.log.Warn("mcp clearing current workout", "error", err)
	}

	pillar, err := req.RequireString("pillar")
	if err != nil {
		return mcp.NewToolResultError("pillar parameter is required"), nil
	}
	experience, err := req.RequireString("experience")
	if err != nil {
		return mcp.NewToolResultError("experience parameter is required"), nil
	}

	wr := models.WorkoutRequest{
		Pillar:     pillar,
		Experience: experience,
		Equipment:  splitList(req.GetString("equipment", "")),
		Focus:      req.GetString("focus", ""),
		Notes:      req.GetString("notes", ""),
	}
	if pillar == models.PillarStrength {
		wr.StrengthStyle = req.GetString("strength_style", "")
	}
	if err := wr.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result *models.WorkoutResult
	if h.opts.Streaming {
		result, err = h.backend.GenerateWorkoutStream(ctx, wr, nil)
	} else {
		result, err = h.backend.GenerateWorkout(ctx, wr)
	}
	if err != nil {
		h.log.Error("mcp generate_workout", "error", err)
		return mcp.NewToolResultError(client.UserMessage(err, generateFailed)), nil
	}
	if err := h.session.Set(*result); err != nil {
		h.log.Warn("mcp persisting current workout", "error", err)
	}

	res, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return res, nil
}

func (h *handlers) saveWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := h.session.ForSave()
	if errors.Is(err, session.ErrNoWorkoutToSave) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError("reading current workout: " + err.Error()), nil
	}

	msg, err := h.backend.SaveWorkout(ctx, w)
	if err != nil {
		h.log.Error("mcp save_workout", "error", err)
		return mcp.NewToolResultError(client.UserMessage(err, "A network error occurred while saving.")), nil
	}
	if err := h.session.Clear(); err != nil {
		h.log.Warn("mcp clearing current workout", "error", err)
	}
	return mcp.NewToolResultText(msg), nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := h.opts.HistoryDays
	if v := req.GetString("days", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("days must be a positive integer"), nil
		}
		days = n
	}

	entries, err := h.backend.GetWorkoutHistory(ctx, days)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError(client.UserMessage(err, "Could not load workout history.")), nil
	}

	result, err := mcp.NewToolResultJSON(view.FormatHistory(entries, nil))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeeklyPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.backend.GetCurrentWeeklyPlan(ctx)
	if err != nil {
		h.log.Error("mcp get_weekly_plan", "error", err)
		return mcp.NewToolResultError(client.UserMessage(err, "Could not load weekly plan.")), nil
	}

	result, err := mcp.NewToolResultJSON(view.SortPlan(entries))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getUserSettings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := h.backend.GetUserSettings(ctx)
	if err != nil {
		h.log.Error("mcp get_user_settings", "error", err)
		return mcp.NewToolResultError(client.UserMessage(err, "Could not load user settings.")), nil
	}

	result, err := mcp.NewToolResultJSON(view.MergeSettings(payload))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return mcp.NewToolResultError("id must be an integer"), nil
	}
	if !strings.EqualFold(req.GetString("confirm", ""), "yes") {
		return mcp.NewToolResultError("Deletion cancelled."), nil
	}

	msg, err := h.backend.DeleteWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp delete_workout", "id", id, "error", err)
		return mcp.NewToolResultError(client.UserMessage(err, "Failed to delete workout.")), nil
	}
	return mcp.NewToolResultText(msg), nil
}
