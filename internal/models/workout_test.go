package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresEquipment(t *testing.T) {
	tests := []struct {
		name      string
		equipment []string
		wantErr   bool
		want      []string
	}{
		{name: "nil", equipment: nil, wantErr: true},
		{name: "blank only", equipment: []string{"", "  "}, wantErr: true},
		{name: "one", equipment: []string{"Dumbbells"}, want: []string{"Dumbbells"}},
		{name: "dedup and trim", equipment: []string{" Kettlebell", "Kettlebell", "Bands "}, want: []string{"Kettlebell", "Bands"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := WorkoutRequest{Pillar: PillarStrength, Equipment: tt.equipment}
			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.Equal(t, "Please select at least one piece of equipment.", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Equipment)
		})
	}
}

func TestCleanListKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"Chest", "Back", "Legs"}, CleanList([]string{"Chest", " Back", "", "Chest", "Legs"}))
	assert.Equal(t, []string{}, CleanList(nil))
}

// TestSaveRequestWireShape verifies the saved body never sends a null muscle list.
func TestSaveRequestWireShape(t *testing.T) {
	data, err := json.Marshal(WorkoutResult{Pillar: PillarHIIT, Focus: "Full Body", WorkoutText: "Burpees"}.SaveRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"pillar":"HIIT","focus":"Full Body","muscles_worked":[],"full_workout_text":"Burpees"}`, string(data))
}

// TestWorkoutRequestWireNames verifies the form field names the backend reads.
func TestWorkoutRequestWireNames(t *testing.T) {
	data, err := json.Marshal(WorkoutRequest{
		Pillar:        PillarStrength,
		StrengthStyle: "Hypertrophy",
		Experience:    "Beginner",
		Equipment:     []string{"Barbell"},
		Notes:         "sore knee",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"workout_pillar":"Strength",
		"strength_style":"Hypertrophy",
		"experience":"Beginner",
		"equipment":["Barbell"],
		"userNotes":"sore knee"
	}`, string(data))
}
