package mcp

import (
	"context"

	"github.com/claude/atlas/internal/client"
	"github.com/claude/atlas/internal/models"
)

// Backend is the workout API the MCP tools call. *client.Client satisfies it.
type Backend interface {
	GetWorkoutHistory(ctx context.Context, days int) ([]models.HistoryEntry, error)
	GetCurrentWeeklyPlan(ctx context.Context) ([]models.WeeklyPlanEntry, error)
	GetUserSettings(ctx context.Context) (*models.UserSettingsPayload, error)
	GenerateWorkout(ctx context.Context, req models.WorkoutRequest) (*models.WorkoutResult, error)
	GenerateWorkoutStream(ctx context.Context, req models.WorkoutRequest, onText func(string)) (*models.WorkoutResult, error)
	SaveWorkout(ctx context.Context, w models.WorkoutResult) (string, error)
	DeleteWorkout(ctx context.Context, id int) (string, error)
}

// Compile-time check: *client.Client satisfies Backend.
var _ Backend = (*client.Client)(nil)
