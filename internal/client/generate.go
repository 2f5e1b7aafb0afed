package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/stream"
)

const (
	generateFallback = "An unknown error occurred during workout generation."
	ndjsonType       = "application/x-ndjson"
)

// fencedJSON matches a JSON object inside a markdown code block.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// GenerateWorkoutStream requests a streamed workout. onText is called with
// the accumulated text after every fragment. The result is returned once the
// stream has ended; an error envelope fails the attempt with a StreamError
// after the remaining envelopes have been consumed.
func (c *Client) GenerateWorkoutStream(ctx context.Context, req models.WorkoutRequest, onText func(string)) (*models.WorkoutResult, error) {
	req.Stream = true
	const path = "/generate_workout"

	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", ndjsonType+", application/json")

	resp, err := c.send(httpReq, path, generateFallback)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// A backend without streaming support answers with one JSON object.
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "application/json" {
		var result models.WorkoutResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("client: decode %s: %w", path, err)
		}
		if onText != nil {
			onText(result.WorkoutText)
		}
		return &result, nil
	}

	var firstErr string
	handler := stream.HandlerFuncs{
		Text: onText,
		Error: func(msg string) {
			if firstErr == "" {
				firstErr = msg
			}
		},
	}
	dec, err := stream.Decode(ctx, resp.Body, handler, c.log)
	if err != nil {
		if errors.Is(err, stream.ErrIncompleteStream) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &NetworkError{Path: path, Err: err}
	}
	if firstErr != "" || len(dec.Errors()) > 0 {
		return nil, &StreamError{Message: firstErr}
	}

	return assembleResult(req, dec.Text()), nil
}

// assembleResult turns the streamed text into a WorkoutResult. The model is
// asked for a JSON document; plain markdown is accepted as the workout text.
func assembleResult(req models.WorkoutRequest, text string) *models.WorkoutResult {
	result := &models.WorkoutResult{
		Pillar:        req.Pillar,
		Focus:         req.Focus,
		MusclesWorked: []string{},
		WorkoutText:   text,
	}

	raw := extractJSONObject(text)
	if raw == "" {
		return result
	}
	var gw models.GeneratedWorkout
	if err := json.Unmarshal([]byte(raw), &gw); err != nil || gw.WorkoutText == "" {
		return result
	}
	result.WorkoutText = gw.WorkoutText
	result.MusclesWorked = parseMuscles(gw.MusclesWorked)
	return result
}

func extractJSONObject(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}
	return ""
}

// parseMuscles accepts either a JSON array of strings or a comma-separated string.
func parseMuscles(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return models.CleanList(list)
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return models.CleanList(strings.Split(joined, ","))
	}
	return []string{}
}
