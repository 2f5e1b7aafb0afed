package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/claude/atlas/internal/models"
)

// GetWorkoutHistory returns the workouts logged in the last days days.
func (c *Client) GetWorkoutHistory(ctx context.Context, days int) ([]models.HistoryEntry, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	var entries []models.HistoryEntry
	if err := c.get(ctx, "/get_workout_history", params, "Could not load workout history.", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetCurrentWeeklyPlan returns this week's plan entries in server order.
func (c *Client) GetCurrentWeeklyPlan(ctx context.Context) ([]models.WeeklyPlanEntry, error) {
	var entries []models.WeeklyPlanEntry
	if err := c.get(ctx, "/get_current_weekly_plan", nil, "Could not load weekly plan.", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetUserSettings returns the stored settings. Fields the server omits stay nil.
func (c *Client) GetUserSettings(ctx context.Context) (*models.UserSettingsPayload, error) {
	var settings models.UserSettingsPayload
	if err := c.get(ctx, "/get_user_settings", nil, "Could not load user settings.", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GenerateWorkout requests a workout and waits for the single JSON response.
func (c *Client) GenerateWorkout(ctx context.Context, req models.WorkoutRequest) (*models.WorkoutResult, error) {
	req.Stream = false
	var result models.WorkoutResult
	if err := c.postJSON(ctx, "/generate_workout", req, generateFallback, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveWorkout persists a generated workout and returns the server message.
func (c *Client) SaveWorkout(ctx context.Context, w models.WorkoutResult) (string, error) {
	var resp models.MessageResponse
	if err := c.postJSON(ctx, "/save_workout", w.SaveRequest(), "Failed to save workout.", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// DeleteWorkout removes one history entry by identifier.
func (c *Client) DeleteWorkout(ctx context.Context, id int) (string, error) {
	var resp models.MessageResponse
	path := fmt.Sprintf("/delete_workout/%d", id)
	if err := c.delete(ctx, path, "Failed to delete workout.", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SaveCredential stores the AI provider API key on the server.
func (c *Client) SaveCredential(ctx context.Context, apiKey string) (string, error) {
	var resp models.MessageResponse
	body := models.CredentialRequest{GeminiAPIKey: apiKey}
	if err := c.postJSON(ctx, "/save_settings", body, "Failed to save API key.", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SaveUserSettings stores the training preferences.
func (c *Client) SaveUserSettings(ctx context.Context, s models.UserSettings) (string, error) {
	var resp models.MessageResponse
	if err := c.postJSON(ctx, "/save_user_settings", s, "Failed to save user settings.", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
