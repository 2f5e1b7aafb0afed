package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/atlas/internal/client"
	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/render"
	"github.com/claude/atlas/internal/state"
	"github.com/claude/atlas/internal/view"
)

// Action identifies a user-triggered operation.
type Action string

const (
	ActionGenerate     Action = "generate"
	ActionSave         Action = "save"
	ActionHistory      Action = "history"
	ActionDelete       Action = "delete"
	ActionPlan         Action = "plan"
	ActionSettings     Action = "settings"
	ActionSaveSettings Action = "save-settings"
	ActionTheme        Action = "theme"
)

// Messages shown to the user.
const (
	MsgGenerating      = "Generating your adaptive workout..."
	MsgSaving          = "Saving workout..."
	MsgSettingsSaving  = "Saving..."
	MsgSettingsSaved   = "Settings saved successfully!"
	MsgGenerateNetwork = "A network error occurred. Please try again."
	MsgSaveNetwork     = "A network error occurred while saving."
	MsgDeleteFailed    = "Failed to delete workout."
	MsgDeleteCancelled = "Deletion cancelled."
	MsgHistoryFailed   = "Could not load workout history."
	MsgPlanFailed      = "Could not load weekly plan."
	MsgSettingsFailed  = "Could not load user settings."
	MsgAPIKeyNetwork   = "A network error occurred while saving API key."
	MsgSettingsNetwork = "A network error occurred while saving settings."
)

const confirmDeletePrompt = "Are you sure you want to delete this workout?"

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// Command is one user action with its inputs. Only the fields relevant to
// Action are read.
type Command struct {
	Action Action

	// ActionGenerate
	Workout models.WorkoutRequest

	// ActionDelete
	WorkoutID int

	// ActionSaveSettings: Settings overlays the current form values; APIKey
	// is saved first when non-blank.
	Settings *models.UserSettingsPayload
	APIKey   string

	// ActionTheme: empty toggles.
	Theme string
}

func (a *App) generate(ctx context.Context, cmd Command) error {
	a.sink.ClearStatus()
	a.sink.Status(MsgGenerating)
	a.sink.ClearWorkout()
	a.sink.SaveAvailable(false)
	if err := a.session.Begin(); err != nil {
		a.log.Warn("clearing current workout", "error", err)
	}

	req := cmd.Workout
	if err := req.Validate(); err != nil {
		a.sink.Error(err.Error())
		a.sink.Status("")
		return err
	}

	var (
		result *models.WorkoutResult
		err    error
	)
	if a.features.Streaming {
		result, err = a.backend.GenerateWorkoutStream(ctx, req, a.sink.WorkoutLive)
	} else {
		result, err = a.backend.GenerateWorkout(ctx, req)
	}
	if err != nil {
		a.log.Error("generating workout", "error", err)
		a.sink.Error(client.UserMessage(err, MsgGenerateNetwork))
		a.sink.Status("")
		return err
	}

	if err := a.session.Set(*result); err != nil {
		a.log.Warn("persisting current workout", "error", err)
	}
	a.sink.Workout(*result)
	a.sink.SaveAvailable(true)
	a.sink.Status("")
	return nil
}

func (a *App) save(ctx context.Context, _ Command) error {
	w, err := a.session.ForSave()
	if err != nil {
		a.sink.Error(err.Error())
		return err
	}

	a.sink.ClearStatus()
	a.sink.Status(MsgSaving)
	defer a.scheduleStatusClear()

	msg, err := a.backend.SaveWorkout(ctx, w)
	if err != nil {
		a.log.Error("saving workout", "error", err)
		a.sink.Error(client.UserMessage(err, MsgSaveNetwork))
		return err
	}

	a.sink.Status(msg)
	if err := a.session.Clear(); err != nil {
		a.log.Warn("clearing current workout", "error", err)
	}
	a.sink.SaveAvailable(false)
	_ = a.history(ctx, Command{Action: ActionHistory})
	return nil
}

func (a *App) history(ctx context.Context, _ Command) error {
	entries, err := a.backend.GetWorkoutHistory(ctx, a.days)
	if err != nil {
		a.log.Error("fetching workout history", "error", err)
		a.sink.HistoryError(client.UserMessage(err, MsgHistoryFailed))
		return err
	}
	a.sink.History(view.FormatHistory(entries, a.loc))
	return nil
}

func (a *App) deleteWorkout(ctx context.Context, cmd Command) error {
	if !a.features.Delete {
		return errors.New("delete is disabled")
	}

	ok, err := a.confirm.Confirm(confirmDeletePrompt)
	if err != nil {
		return fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		a.sink.Status(MsgDeleteCancelled)
		a.scheduleStatusClear()
		return ErrCancelled
	}

	defer a.scheduleStatusClear()
	msg, err := a.backend.DeleteWorkout(ctx, cmd.WorkoutID)
	if err != nil {
		a.log.Error("deleting workout", "id", cmd.WorkoutID, "error", err)
		a.sink.Error(client.UserMessage(err, MsgDeleteFailed))
		return err
	}

	a.sink.Status(msg)
	_ = a.history(ctx, Command{Action: ActionHistory})
	return nil
}

func (a *App) plan(ctx context.Context, _ Command) error {
	if !a.features.WeeklyPlan {
		return errors.New("weekly plan is disabled")
	}
	entries, err := a.backend.GetCurrentWeeklyPlan(ctx)
	if err != nil {
		a.log.Error("fetching weekly plan", "error", err)
		a.sink.PlanError(client.UserMessage(err, MsgPlanFailed))
		return err
	}
	a.sink.Plan(view.SortPlan(entries))
	return nil
}

// loadSettings fetches settings into the form and renders them.
func (a *App) loadSettings(ctx context.Context) (models.UserSettings, error) {
	payload, err := a.backend.GetUserSettings(ctx)
	if err != nil {
		return models.UserSettings{}, err
	}
	s := view.MergeSettings(payload)

	a.mu.Lock()
	a.form = &s
	a.mu.Unlock()

	a.sink.Settings(s)
	return s, nil
}

func (a *App) settings(ctx context.Context, _ Command) error {
	if _, err := a.loadSettings(ctx); err != nil {
		a.log.Error("fetching user settings", "error", err)
		a.sink.SettingsMessage(client.UserMessage(err, MsgSettingsFailed), true)
		return err
	}
	return nil
}

// currentForm returns the form values, fetching them when never loaded.
func (a *App) currentForm(ctx context.Context) (models.UserSettings, error) {
	a.mu.Lock()
	form := a.form
	a.mu.Unlock()
	if form != nil {
		return *form, nil
	}

	payload, err := a.backend.GetUserSettings(ctx)
	if err != nil {
		return models.UserSettings{}, err
	}
	return view.MergeSettings(payload), nil
}

func (a *App) saveSettings(ctx context.Context, cmd Command) error {
	a.sink.SettingsMessage(MsgSettingsSaving, false)

	if key := strings.TrimSpace(cmd.APIKey); key != "" {
		if _, err := a.backend.SaveCredential(ctx, key); err != nil {
			a.log.Error("saving api key", "error", err)
			a.sink.SettingsMessage(client.UserMessage(err, MsgAPIKeyNetwork), true)
			return err
		}
	}

	form, err := a.currentForm(ctx)
	if err != nil {
		a.log.Error("fetching user settings", "error", err)
		a.sink.SettingsMessage(client.UserMessage(err, MsgSettingsFailed), true)
		return err
	}
	form = applyPatch(form, cmd.Settings)

	msg, err := a.backend.SaveUserSettings(ctx, form)
	if err != nil {
		a.log.Error("saving user settings", "error", err)
		a.sink.SettingsMessage(client.UserMessage(err, MsgSettingsNetwork), true)
		return err
	}

	a.mu.Lock()
	a.form = &form
	a.mu.Unlock()

	if msg == "" {
		msg = MsgSettingsSaved
	}
	a.sink.SettingsMessage(msg, false)

	// Saving settings regenerates the plan server-side.
	if a.features.WeeklyPlan {
		_ = a.plan(ctx, Command{Action: ActionPlan})
	}
	return nil
}

// applyPatch overlays the non-nil fields of p onto s.
func applyPatch(s models.UserSettings, p *models.UserSettingsPayload) models.UserSettings {
	if p == nil {
		return s
	}
	patchInt(&s.StrengthFreq, p.StrengthFreq)
	patchInt(&s.HIITFreq, p.HIITFreq)
	patchInt(&s.Zone2Freq, p.Zone2Freq)
	patchInt(&s.RecoveryFreq, p.RecoveryFreq)
	patchInt(&s.StabilityFreq, p.StabilityFreq)
	if p.FocusRotation != nil {
		s.FocusRotation = models.CleanList(p.FocusRotation)
	}
	patchString(&s.PrimaryGoal, p.PrimaryGoal)
	patchString(&s.AIModelID, p.AIModelID)
	patchString(&s.WorkoutDurationPreference, p.WorkoutDurationPreference)
	return s
}

func patchInt(dst, src *int) {
	if src != nil {
		*dst = *src
	}
}

func patchString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (a *App) loadTheme() string {
	if a.prefs == nil {
		return render.ThemeLight
	}
	v, ok, err := a.prefs.Get(state.KeyTheme)
	if err != nil {
		a.log.Warn("reading theme preference", "error", err)
		return render.ThemeLight
	}
	if !ok {
		return render.ThemeLight
	}
	return render.NormalizeTheme(v)
}

// applyTheme renders and persists theme.
func (a *App) applyTheme(theme string) {
	theme = render.NormalizeTheme(theme)
	a.mu.Lock()
	a.theme = theme
	a.mu.Unlock()

	a.sink.Theme(theme)
	if a.prefs != nil {
		if err := a.prefs.Put(state.KeyTheme, theme); err != nil {
			a.log.Warn("saving theme preference", "error", err)
		}
	}
}

func (a *App) toggleTheme(_ context.Context, cmd Command) error {
	next := cmd.Theme
	if next == "" {
		a.mu.Lock()
		current := a.theme
		a.mu.Unlock()
		if current == "" {
			current = a.loadTheme()
		}
		next = render.ThemeDark
		if current == render.ThemeDark {
			next = render.ThemeLight
		}
	}
	a.applyTheme(next)
	a.sink.Status(fmt.Sprintf("Theme set to %s.", render.NormalizeTheme(next)))
	a.scheduleStatusClear()
	return nil
}

// Theme returns the active theme.
func (a *App) Theme() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.theme == "" {
		return render.ThemeLight
	}
	return a.theme
}
