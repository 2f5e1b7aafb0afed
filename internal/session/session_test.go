package session

import (
	"sync"
	"testing"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySessionCannotSave(t *testing.T) {
	s := New(nil, nil)
	_, err := s.ForSave()
	require.ErrorIs(t, err, ErrNoWorkoutToSave)
	assert.Equal(t, "No workout data to save.", err.Error())
}

// TestBeginInvalidatesUnsaved verifies a new attempt drops the previous result.
func TestBeginInvalidatesUnsaved(t *testing.T) {
	s := New(state.NewMemory(), nil)
	require.NoError(t, s.Set(models.WorkoutResult{Pillar: models.PillarHIIT}))

	w, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, models.PillarHIIT, w.Pillar)

	require.NoError(t, s.Begin())
	_, ok = s.Current()
	assert.False(t, ok)
}

// TestCurrentReturnsCopy verifies callers cannot mutate the slot.
func TestCurrentReturnsCopy(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.Set(models.WorkoutResult{Pillar: models.PillarZone2}))

	w, _ := s.Current()
	w.Pillar = "mutated"

	again, _ := s.Current()
	assert.Equal(t, models.PillarZone2, again.Pillar)
}

// TestSessionRestoresFromStore verifies an unsaved workout survives a restart.
func TestSessionRestoresFromStore(t *testing.T) {
	store := state.NewMemory()
	first := New(store, nil)
	require.NoError(t, first.Set(models.WorkoutResult{
		Pillar: models.PillarStrength, Focus: "Push", MusclesWorked: []string{"Chest"}, WorkoutText: "Bench",
	}))

	second := New(store, nil)
	w, err := second.ForSave()
	require.NoError(t, err)
	assert.Equal(t, "Bench", w.WorkoutText)
	assert.Equal(t, []string{"Chest"}, w.MusclesWorked)

	require.NoError(t, second.Clear())
	_, ok, _ := store.Get(state.KeyCurrentWorkout)
	assert.False(t, ok)
}

func TestSessionDiscardsCorruptStore(t *testing.T) {
	store := state.NewMemory()
	require.NoError(t, store.Put(state.KeyCurrentWorkout, "{not json"))

	s := New(store, nil)
	_, ok := s.Current()
	assert.False(t, ok)
	_, ok, _ = store.Get(state.KeyCurrentWorkout)
	assert.False(t, ok)
}

// TestConcurrentSetLastWriterWins verifies the slot is always one complete value.
func TestConcurrentSetLastWriterWins(t *testing.T) {
	s := New(nil, nil)
	var wg sync.WaitGroup
	for _, p := range []string{models.PillarStrength, models.PillarHIIT, models.PillarZone2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(models.WorkoutResult{Pillar: p, Focus: p})
		}()
	}
	wg.Wait()

	w, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, w.Pillar, w.Focus)
}
