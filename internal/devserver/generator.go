package devserver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/claude/atlas/internal/models"
)

// Generator produces a workout for a request. The development backend ships
// a deterministic template generator so the client can run without an AI
// provider.
type Generator interface {
	Generate(req GenerateInput) (models.GeneratedWorkout, Usage, error)
}

// GenerateInput is a validated generation request with its context.
type GenerateInput struct {
	Request     models.WorkoutRequest
	Settings    models.UserSettings
	PlannedDay  string
	RecentCount int
}

// Usage reports token accounting for one generation.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64
}

var cardioMachines = []string{"Treadmill", "Stationary Bike", "Rower", "Elliptical", "Stair Climber", "Assault Bike"}

// TemplateGenerator renders workouts from fixed per-pillar templates.
type TemplateGenerator struct{}

// Generate implements Generator.
func (TemplateGenerator) Generate(in GenerateInput) (models.GeneratedWorkout, Usage, error) {
	req := in.Request
	var (
		b       strings.Builder
		muscles []string
	)

	title := req.Pillar
	if req.Focus != "" {
		title += " - " + req.Focus
	}
	fmt.Fprintf(&b, "### %s\n\n", title)
	fmt.Fprintf(&b, "**Experience:** %s  \n**Equipment:** %s\n", req.Experience, strings.Join(req.Equipment, ", "))
	if d := in.Settings.WorkoutDurationPreference; d != "" && d != "Any" {
		fmt.Fprintf(&b, "**Duration:** %s\n", d)
	}
	if in.PlannedDay != "" && in.PlannedDay != req.Pillar {
		fmt.Fprintf(&b, "\n> Today's plan called for %s.\n", in.PlannedDay)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "\n> Notes: %s\n", req.Notes)
	}

	b.WriteString("\n#### Warm-up\n- 5 minutes easy movement\n- Dynamic mobility for the working joints\n\n#### Main Set\n")

	switch req.Pillar {
	case models.PillarStrength:
		method, lines := strengthMethod(req.StrengthStyle)
		fmt.Fprintf(&b, "*Methodology: %s*\n\n", method)
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
		muscles = strengthMuscles(req.Focus)
	case models.PillarZone2, "Zone2 Cardio":
		machine := "Brisk walk or easy jog"
		for _, e := range req.Equipment {
			if slices.Contains(cardioMachines, e) {
				machine = e
				break
			}
		}
		fmt.Fprintf(&b, "- %s, 30-45 minutes at RPE 3-4 (conversational pace)\n", machine)
		muscles = []string{"Cardiovascular System", "Lower Body (general)"}
	case models.PillarHIIT:
		b.WriteString("- Tabata: 8 rounds of 20s on / 10s off\n- Alternate burpees and mountain climbers\n- Rest 2 minutes, repeat once\n")
		muscles = []string{"Cardiovascular System", "Full Body (general)"}
	case models.PillarStability:
		b.WriteString("- Dead bug, 3x10 per side\n- Single-leg Romanian deadlift, 3x8 per side\n- Side plank, 3x30s per side\n")
		muscles = []string{"Core", "Glutes", "Hip Stabilizers"}
	default:
		b.WriteString("- Foam roll major muscle groups, 10 minutes\n- Gentle yoga flow, 15 minutes\n")
		muscles = []string{"Full Body (general)"}
	}

	b.WriteString("\n#### Cool-down\n- 5 minutes walking\n- Static stretching\n")

	encoded, err := jsonStrings(muscles)
	if err != nil {
		return models.GeneratedWorkout{}, Usage{}, err
	}
	text := b.String()
	usage := Usage{
		InputTokens:  len(strings.Fields(req.Notes)) + 200 + 10*in.RecentCount,
		OutputTokens: len(strings.Fields(text)),
	}
	return models.GeneratedWorkout{WorkoutText: text, MusclesWorked: encoded}, usage, nil
}

func strengthMethod(style string) (string, []string) {
	switch style {
	case "Build Muscle":
		return "Antagonist/Agonist Supersets", []string{
			"- A1: Press variation, 3x8-12 (RPE 8-9)",
			"- A2: Row variation, 3x8-12 (RPE 8-9)",
			"- Rest 90-120s after each pair",
		}
	case "Get Stronger":
		return "Top Set / Back-off Sets", []string{
			"- Main lift top set: 1x3-5 (RPE 9)",
			"- Back-off sets: 3x6-8 (RPE 7-8)",
			"- Rest 3-5 minutes after the top set",
		}
	default:
		return "Full-Body Circuit Training", []string{
			"- 4 exercises, 10-15 reps each (RPE 7-8)",
			"- 15-30s transition, 3 rounds",
		}
	}
}

func strengthMuscles(focus string) []string {
	switch focus {
	case "Upper Body":
		return []string{"Chest", "Back", "Shoulders", "Arms"}
	case "Lower Body":
		return []string{"Quadriceps", "Hamstrings", "Glutes", "Calves"}
	case "Push":
		return []string{"Chest", "Anterior Deltoids", "Triceps"}
	case "Pull":
		return []string{"Lats", "Rhomboids", "Biceps"}
	case "Core":
		return []string{"Rectus Abdominis", "Obliques"}
	default:
		return []string{"Full Body (general)"}
	}
}
