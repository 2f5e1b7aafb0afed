// Package mcp exposes the workout assistant as Model Context Protocol tools
// and resources.
package mcp

import (
	"log/slog"

	"github.com/claude/atlas/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures the MCP server.
type Options struct {
	Streaming   bool
	HistoryDays int
	AllowDelete bool
}

// New creates an MCP server with all tools and resources registered.
// Generated workouts are held in sess until saved.
func New(backend Backend, sess *session.Session, version string, opts Options, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Atlas", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Atlas workout assistant. Generate a workout for a training pillar, review it, then save it to the training history. Weekly plan and settings are read-only here."),
	)

	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 14
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &handlers{backend: backend, session: sess, opts: opts, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolSaveWorkout, Handler: h.saveWorkout},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetWeeklyPlan, Handler: h.getWeeklyPlan},
		server.ServerTool{Tool: toolGetUserSettings, Handler: h.getUserSettings},
	)
	if opts.AllowDelete {
		s.AddTool(toolDeleteWorkout, h.deleteWorkout)
	}

	s.AddResources(
		server.ServerResource{Resource: resCurrentWorkout, Handler: h.currentWorkout},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resWeeklyPlan, Handler: h.weeklyPlan},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	backend Backend
	session *session.Session
	opts    Options
	log     *slog.Logger
}

// --- Resource definitions ---

var resCurrentWorkout = mcp.NewResource(
	"atlas://current_workout",
	"Current Workout",
	mcp.WithResourceDescription("The most recently generated workout that has not been saved yet"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"atlas://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Saved workouts from the configured history window"),
	mcp.WithMIMEType("application/json"),
)

var resWeeklyPlan = mcp.NewResource(
	"atlas://weekly_plan",
	"Weekly Plan",
	mcp.WithResourceDescription("This week's plan ordered Monday to Sunday"),
	mcp.WithMIMEType("application/json"),
)
