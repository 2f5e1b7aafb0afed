// Package session owns the single "current workout" slot: the most recent
// generated result that has not been saved yet.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/state"
)

// ErrNoWorkoutToSave is returned when a save is attempted with an empty slot.
var ErrNoWorkoutToSave = errors.New("No workout data to save.")

// Store persists the slot between process runs. state.DB and state.Memory
// both satisfy it.
type Store interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Delete(key string) error
}

// Session holds at most one WorkoutResult. Concurrent setters are
// serialized; the last one to finish wins.
type Session struct {
	mu      sync.Mutex
	current *models.WorkoutResult
	store   Store
	log     *slog.Logger
}

// New creates a session. A nil store keeps the slot in memory only. A
// previously persisted workout is restored from the store.
func New(store Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{store: store, log: log}
	s.restore()
	return s
}

func (s *Session) restore() {
	if s.store == nil {
		return
	}
	raw, ok, err := s.store.Get(state.KeyCurrentWorkout)
	if err != nil {
		s.log.Warn("restoring current workout", "error", err)
		return
	}
	if !ok {
		return
	}
	var w models.WorkoutResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		s.log.Warn("discarding unreadable current workout", "error", err)
		_ = s.store.Delete(state.KeyCurrentWorkout)
		return
	}
	s.current = &w
}

// Begin marks the start of a generation attempt, invalidating any prior
// result even if it was never saved.
func (s *Session) Begin() error {
	return s.Clear()
}

// Set records a successful generation.
func (s *Session) Set(w models.WorkoutResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &w
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding current workout: %w", err)
	}
	return s.store.Put(state.KeyCurrentWorkout, string(data))
}

// Current returns a copy of the current workout, if any.
func (s *Session) Current() (models.WorkoutResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.WorkoutResult{}, false
	}
	return *s.current, true
}

// ForSave returns the workout to save, or ErrNoWorkoutToSave.
func (s *Session) ForSave() (models.WorkoutResult, error) {
	w, ok := s.Current()
	if !ok {
		return models.WorkoutResult{}, ErrNoWorkoutToSave
	}
	return w, nil
}

// Clear empties the slot.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.store == nil {
		return nil
	}
	return s.store.Delete(state.KeyCurrentWorkout)
}
