package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/claude/atlas/internal/models"
	"github.com/go-chi/chi/v5"
)

const (
	msgInvalidJSON        = "Invalid request: No data provided or data is not valid JSON."
	msgPillarRequired     = "Invalid request: 'workout_pillar' is a required field."
	msgMissingFields      = "Invalid request: Missing one or more required fields (experience, equipment)."
	msgAINotConfigured    = "AI service is not configured. Please save your Gemini API key in User Settings."
	msgGenerateFailed     = "An unexpected error occurred. Please try again."
	msgMissingWorkout     = "Missing required workout data."
	msgWorkoutSaved       = "Workout saved successfully!"
	msgWorkoutDeleted     = "Workout deleted successfully!"
	msgWorkoutNotFound    = "Workout not found."
	msgAPIKeyRequired     = "API key is required."
	msgAPIKeySaved        = "API Key saved successfully!"
	msgSettingsSaved      = "Settings saved successfully! Weekly plan updated."
	msgSettingsSaveFailed = "An unexpected error occurred while saving settings."
)

// historyContextDays is how far back generation looks for recent workouts.
const historyContextDays = 7

func (s *Server) handleWorkoutHistory(w http.ResponseWriter, r *http.Request) {
	days := 14
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days parameter"})
			return
		}
		days = n
	}

	since := s.now().AddDate(0, 0, -days)
	entries, err := s.store.WorkoutHistory(r.Context(), defaultUserID, since)
	if err != nil {
		s.log.Error("workout history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not retrieve workout history."})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCurrentWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.WeeklyPlan(r.Context(), defaultUserID, WeekStart(s.now()))
	if err != nil {
		s.log.Error("weekly plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not retrieve weekly plan."})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetUserSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.UserSettings(r.Context(), defaultUserID)
	if err != nil {
		s.log.Error("user settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not retrieve user settings."})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveUserSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidJSON})
		return
	}

	ctx := r.Context()
	if err := s.store.SaveUserSettings(ctx, defaultUserID, settings); err != nil {
		s.log.Error("saving user settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgSettingsSaveFailed})
		return
	}

	// A failed plan rebuild does not fail the save.
	if err := s.store.ReplaceWeeklyPlan(ctx, defaultUserID, WeekStart(s.now()), PlanWeek(settings)); err != nil {
		s.log.Error("rebuilding weekly plan", "error", err)
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: msgSettingsSaved})
}

func (s *Server) handleSaveCredential(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidJSON})
		return
	}
	key := strings.TrimSpace(req.GeminiAPIKey)
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgAPIKeyRequired})
		return
	}
	if err := s.store.SetAPIKey(r.Context(), key); err != nil {
		s.log.Error("saving api key", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgSettingsSaveFailed})
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: msgAPIKeySaved})
}

func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	var req models.SaveWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidJSON})
		return
	}
	req.MusclesWorked = models.CleanList(req.MusclesWorked)
	if req.Pillar == "" || req.Focus == "" || len(req.MusclesWorked) == 0 || req.FullWorkoutText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgMissingWorkout})
		return
	}

	if _, err := s.store.InsertWorkout(r.Context(), defaultUserID, req, s.now()); err != nil {
		s.log.Error("saving workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not save workout."})
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: msgWorkoutSaved})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout id"})
		return
	}

	err = s.store.DeleteWorkout(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": msgWorkoutNotFound})
		return
	}
	if err != nil {
		s.log.Error("deleting workout", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not delete workout."})
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: msgWorkoutDeleted})
}

func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	var req models.WorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidJSON})
		return
	}
	if req.Pillar == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgPillarRequired})
		return
	}
	req.Equipment = models.CleanList(req.Equipment)
	if req.Experience == "" || len(req.Equipment) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgMissingFields})
		return
	}

	ctx := r.Context()
	key, err := s.store.APIKey(ctx)
	if err != nil {
		s.log.Error("reading api key", "error", err)
	}
	if key == "" {
		key = s.apiKey
	}
	if key == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgAINotConfigured})
		return
	}

	in := GenerateInput{Request: req}
	if in.Settings, err = s.store.UserSettings(ctx, defaultUserID); err != nil {
		s.log.Warn("loading settings for generation", "error", err)
	}
	now := s.now()
	if plan, err := s.store.WeeklyPlan(ctx, defaultUserID, WeekStart(now)); err == nil {
		for _, e := range plan {
			if e.DayOfWeek == DayIndex(now) {
				in.PlannedDay = e.PillarFocus
			}
		}
	}
	if recent, err := s.store.WorkoutHistory(ctx, defaultUserID, now.AddDate(0, 0, -historyContextDays)); err == nil {
		in.RecentCount = len(recent)
	}

	workout, usage, genErr := s.gen.Generate(in)
	if !req.Stream {
		if genErr != nil {
			s.log.Error("generating workout", "error", genErr)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgGenerateFailed})
			return
		}
		var muscles []string
		if err := json.Unmarshal(workout.MusclesWorked, &muscles); err != nil {
			muscles = []string{}
		}
		writeJSON(w, http.StatusOK, models.WorkoutResult{
			Pillar:        req.Pillar,
			Focus:         req.Focus,
			MusclesWorked: muscles,
			WorkoutText:   workout.WorkoutText,
		})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	enc := &envelopeWriter{w: w}

	if genErr != nil {
		s.log.Error("generating workout", "error", genErr)
		enc.write(models.StreamEnvelope{Type: models.EnvelopeError, Message: genErr.Error()})
		return
	}

	doc, err := json.Marshal(workout)
	if err != nil {
		enc.write(models.StreamEnvelope{Type: models.EnvelopeError, Message: msgGenerateFailed})
		return
	}
	for _, chunk := range splitRunes(string(doc), s.chunkSize) {
		if ctx.Err() != nil {
			return
		}
		enc.write(models.StreamEnvelope{Type: models.EnvelopeText, Text: chunk})
	}
	enc.write(models.StreamEnvelope{
		Type:         models.EnvelopeUsage,
		InputTokens:  &usage.InputTokens,
		OutputTokens: &usage.OutputTokens,
		TotalCost:    &usage.TotalCost,
	})
}

// envelopeWriter writes one JSON envelope per line and flushes after each.
type envelopeWriter struct {
	w   http.ResponseWriter
	err error
}

func (e *envelopeWriter) write(env models.StreamEnvelope) {
	if e.err != nil {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		e.err = err
		return
	}
	if _, e.err = e.w.Write(append(data, '\n')); e.err != nil {
		return
	}
	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
}

// splitRunes cuts s into pieces of about size bytes without splitting runes.
func splitRunes(s string, size int) []string {
	var chunks []string
	for len(s) > 0 {
		n := min(size, len(s))
		for n < len(s) && !utf8.RuneStart(s[n]) {
			n++
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return chunks
}

func jsonStrings(items []string) (json.RawMessage, error) {
	return json.Marshal(items)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
