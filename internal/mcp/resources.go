package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/atlas/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) currentWorkout(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	w, ok := h.session.Current()
	if !ok {
		return jsonContents(req.Params.URI, nil)
	}
	return jsonContents(req.Params.URI, w)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := h.backend.GetWorkoutHistory(ctx, h.opts.HistoryDays)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, entries)
}

func (h *handlers) weeklyPlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := h.backend.GetCurrentWeeklyPlan(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, view.SortPlan(entries))
}
