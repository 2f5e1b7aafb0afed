package main

import (
	"fmt"
	"strconv"

	"github.com/claude/atlas/internal/app"
	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/view"
	"github.com/spf13/cobra"
)

func newRootCmd(rt *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atlas",
		Short: "Adaptive workout assistant",
		Long: `Atlas generates workouts for a training pillar, keeps the most recent
result until you save it, and shows your history, weekly plan and settings.

Run "atlas shell" for an interactive session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return rt.setup()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&rt.flags.configPath, "config", "c", "", "Config file path (YAML); defaults to $ATLAS_CONFIG")
	pf.StringVar(&rt.flags.serverURL, "server", "", "Backend base URL, overrides the config file")
	pf.StringVar(&rt.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&rt.flags.plain, "plain", false, "Disable colors and markdown styling")

	cmd.AddCommand(
		generateCmd(rt),
		saveCmd(rt),
		historyCmd(rt),
		deleteCmd(rt),
		planCmd(rt),
		settingsCmd(rt),
		themeCmd(rt),
		shellCmd(rt),
		mcpCmd(rt),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "atlas version %s\n", Version)
		},
	}
}

func generateCmd(rt *cli) *cobra.Command {
	var req models.WorkoutRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a workout",
		Example: `  atlas generate --pillar Strength --style "Build Muscle" --experience Intermediate \
      --equipment Dumbbells --equipment Bench --focus Push`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Pillar != models.PillarStrength {
				req.StrengthStyle = ""
			}
			return rt.dispatch(cmd.Context(), app.Command{Action: app.ActionGenerate, Workout: req})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Pillar, "pillar", "p", models.PillarStrength, "Training pillar (Strength, HIIT, Zone2, Stability, Recovery)")
	f.StringVar(&req.StrengthStyle, "style", "Build Muscle", "Strength style (Build Muscle, Get Stronger, General Fitness)")
	f.StringVarP(&req.Experience, "experience", "x", "Beginner", "Experience level (Beginner, Intermediate, Advanced)")
	f.StringSliceVarP(&req.Equipment, "equipment", "e", nil, "Available equipment; repeat or comma-separate")
	f.StringVarP(&req.Focus, "focus", "f", "", "Body focus (e.g. Upper Body, Push)")
	f.StringVarP(&req.Notes, "notes", "n", "", "Notes such as soreness or time limits")
	return cmd
}

func saveCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the most recently generated workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.dispatch(cmd.Context(), app.Command{Action: app.ActionSave})
		},
	}
}

func historyCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.dispatch(cmd.Context(), app.Command{Action: app.ActionHistory})
		},
	}
}

func deleteCmd(rt *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid workout id %q", args[0])
			}
			rt.confirm.assumeYes = yes
			defer func() { rt.confirm.assumeYes = false }()
			return rt.dispatch(cmd.Context(), app.Command{Action: app.ActionDelete, WorkoutID: id})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func planCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show this week's training plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.dispatch(cmd.Context(), app.Command{Action: app.ActionPlan})
		},
	}
}

func settingsCmd(rt *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show training settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.dispatch(cmd.Context(), app.Command{Action: app.ActionSettings})
		},
	}
	cmd.AddCommand(settingsSetCmd(rt))
	return cmd
}

func settingsSetCmd(rt *cli) *cobra.Command {
	var (
		strength, hiit, zone2, recovery, stability int
		rotation, goal, model, duration, apiKey    string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update training settings",
		Long: `Update training settings. Only the flags you pass change; everything else
keeps its current value. Saving settings rebuilds this week's plan.`,
		Example: `  atlas settings set --strength 3 --zone2 2 --rotation "Push, Pull, Legs"
  atlas settings set --api-key "$GEMINI_API_KEY"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			p := &models.UserSettingsPayload{}
			setInt := func(name string, v int, dst **int) {
				if f.Changed(name) {
					*dst = &v
				}
			}
			setString := func(name, v string, dst **string) {
				if f.Changed(name) {
					*dst = &v
				}
			}
			setInt("strength", strength, &p.StrengthFreq)
			setInt("hiit", hiit, &p.HIITFreq)
			setInt("zone2", zone2, &p.Zone2Freq)
			setInt("recovery", recovery, &p.RecoveryFreq)
			setInt("stability", stability, &p.StabilityFreq)
			if f.Changed("rotation") {
				p.FocusRotation = view.ParseRotation(rotation)
			}
			setString("goal", goal, &p.PrimaryGoal)
			setString("model", model, &p.AIModelID)
			setString("duration", duration, &p.WorkoutDurationPreference)

			return rt.dispatch(cmd.Context(), app.Command{
				Action:   app.ActionSaveSettings,
				Settings: p,
				APIKey:   apiKey,
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&strength, "strength", 0, "Strength sessions per week")
	f.IntVar(&hiit, "hiit", 0, "HIIT sessions per week")
	f.IntVar(&zone2, "zone2", 0, "Zone 2 sessions per week")
	f.IntVar(&recovery, "recovery", 0, "Recovery sessions per week")
	f.IntVar(&stability, "stability", 0, "Stability sessions per week")
	f.StringVar(&rotation, "rotation", "", "Comma-separated focus rotation")
	f.StringVar(&goal, "goal", "", "Primary goal")
	f.StringVar(&model, "model", "", "AI model id")
	f.StringVar(&duration, "duration", "", "Preferred workout duration")
	f.StringVar(&apiKey, "api-key", "", "AI provider API key, saved before the settings")
	return cmd
}

func themeCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Set or toggle the display theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"light", "dark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.Command{Action: app.ActionTheme}
			if len(args) == 1 {
				c.Theme = args[0]
			}
			return rt.dispatch(cmd.Context(), c)
		},
	}
}
