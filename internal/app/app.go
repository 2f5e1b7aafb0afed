// Package app wires user actions to the backend, the session slot and the
// presentation sink through an explicit dispatch table.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/session"
	"github.com/claude/atlas/internal/view"
)

// Backend is the subset of client.Client the app calls.
type Backend interface {
	GetWorkoutHistory(ctx context.Context, days int) ([]models.HistoryEntry, error)
	GetCurrentWeeklyPlan(ctx context.Context) ([]models.WeeklyPlanEntry, error)
	GetUserSettings(ctx context.Context) (*models.UserSettingsPayload, error)
	GenerateWorkout(ctx context.Context, req models.WorkoutRequest) (*models.WorkoutResult, error)
	GenerateWorkoutStream(ctx context.Context, req models.WorkoutRequest, onText func(string)) (*models.WorkoutResult, error)
	SaveWorkout(ctx context.Context, w models.WorkoutResult) (string, error)
	DeleteWorkout(ctx context.Context, id int) (string, error)
	SaveCredential(ctx context.Context, apiKey string) (string, error)
	SaveUserSettings(ctx context.Context, s models.UserSettings) (string, error)
}

// Sink receives everything the user sees. It must not block.
type Sink interface {
	Status(msg string)
	ClearStatus()
	Error(msg string)
	WorkoutLive(accumulated string)
	Workout(w models.WorkoutResult)
	ClearWorkout()
	SaveAvailable(ok bool)
	History(groups []view.HistoryGroup)
	HistoryError(msg string)
	Plan(rows []view.PlanRow)
	PlanError(msg string)
	Settings(s models.UserSettings)
	SettingsMessage(msg string, isErr bool)
	Theme(theme string)
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// KV persists small preferences such as the theme.
type KV interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// Features selects optional behaviors.
type Features struct {
	Streaming  bool
	WeeklyPlan bool
	Delete     bool
}

// Options configures an App. Zero values fall back to sensible defaults.
type Options struct {
	Features         Features
	HistoryDays      int
	StatusClearDelay time.Duration
	Prefs            KV
	Confirmer        Confirmer
	Location         *time.Location
	Logger           *slog.Logger

	// AfterFunc schedules f after d and returns a cancel func. Defaults to
	// time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) (stop func() bool)
}

type handlerFunc func(ctx context.Context, cmd Command) error

// App executes Commands. Handlers run one at a time per caller; a second
// concurrent generation overwrites the session when it completes.
type App struct {
	backend  Backend
	sink     Sink
	session  *session.Session
	prefs    KV
	confirm  Confirmer
	features Features
	days     int
	delay    time.Duration
	loc      *time.Location
	log      *slog.Logger
	after    func(time.Duration, func()) func() bool

	handlers map[Action]handlerFunc

	mu         sync.Mutex
	stopStatus func() bool
	form       *models.UserSettings
	theme      string
}

// New creates an App.
func New(backend Backend, sink Sink, sess *session.Session, opts Options) *App {
	a := &App{
		backend:  backend,
		sink:     sink,
		session:  sess,
		prefs:    opts.Prefs,
		confirm:  opts.Confirmer,
		features: opts.Features,
		days:     opts.HistoryDays,
		delay:    opts.StatusClearDelay,
		loc:      opts.Location,
		log:      opts.Logger,
		after:    opts.AfterFunc,
	}
	if a.session == nil {
		a.session = session.New(nil, opts.Logger)
	}
	if a.days <= 0 {
		a.days = 14
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.log == nil {
		a.log = slog.New(slog.DiscardHandler)
	}
	if a.after == nil {
		a.after = func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		}
	}
	if a.confirm == nil {
		a.confirm = denyAll{}
	}

	a.handlers = map[Action]handlerFunc{
		ActionGenerate:     a.generate,
		ActionSave:         a.save,
		ActionHistory:      a.history,
		ActionDelete:       a.deleteWorkout,
		ActionPlan:         a.plan,
		ActionSettings:     a.settings,
		ActionSaveSettings: a.saveSettings,
		ActionTheme:        a.toggleTheme,
	}
	return a
}

// Session returns the app's session slot.
func (a *App) Session() *session.Session {
	return a.session
}

// Dispatch runs the handler registered for cmd.Action.
func (a *App) Dispatch(ctx context.Context, cmd Command) error {
	h, ok := a.handlers[cmd.Action]
	if !ok {
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	a.log.Debug("dispatch", "action", cmd.Action)
	return h(ctx, cmd)
}

// Init performs the page-load sequence: theme, settings, history and, when
// enabled, the weekly plan. Load failures are rendered, not returned.
func (a *App) Init(ctx context.Context) {
	a.applyTheme(a.loadTheme())

	if _, err := a.loadSettings(ctx); err != nil {
		a.log.Warn("loading user settings", "error", err)
	}
	_ = a.history(ctx, Command{Action: ActionHistory})
	if a.features.WeeklyPlan {
		_ = a.plan(ctx, Command{Action: ActionPlan})
	}
}

// scheduleStatusClear clears the status line after the configured delay,
// replacing any pending clear.
func (a *App) scheduleStatusClear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopStatus != nil {
		a.stopStatus()
	}
	if a.delay <= 0 {
		a.stopStatus = nil
		a.sink.ClearStatus()
		return
	}
	a.stopStatus = a.after(a.delay, a.sink.ClearStatus)
}

type denyAll struct{}

func (denyAll) Confirm(string) (bool, error) { return false, nil }
