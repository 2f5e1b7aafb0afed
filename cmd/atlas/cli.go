package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/claude/atlas/internal/app"
	"github.com/claude/atlas/internal/client"
	"github.com/claude/atlas/internal/config"
	"github.com/claude/atlas/internal/render"
	"github.com/claude/atlas/internal/session"
	"github.com/claude/atlas/internal/state"
	"tailscale.com/tsnet"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	serverURL  string
	logLevel   string
	plain      bool
}

// cli is built once per process and shared by every command,
// including the ones run from the interactive shell.
type cli struct {
	flags rootFlags

	cfg     *config.Config
	log     *slog.Logger
	state   state.Store
	client  *client.Client
	session *session.Session
	term    *render.Terminal
	confirm *stdinConfirmer
	app     *app.App
	ts      *tsnet.Server
}

// shownError marks a failure the terminal has already displayed.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// dispatch runs cmd through the app. Cancellation is not a failure.
func (rt *cli) dispatch(ctx context.Context, cmd app.Command) error {
	err := rt.app.Dispatch(ctx, cmd)
	switch {
	case err == nil, errors.Is(err, app.ErrCancelled):
		return nil
	default:
		return &shownError{err: err}
	}
}

// setup loads configuration and wires the app. It is idempotent.
func (rt *cli) setup() error {
	if rt.app != nil {
		return nil
	}

	path := rt.flags.configPath
	if path == "" {
		path = os.Getenv("ATLAS_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rt.flags.serverURL != "" {
		cfg.Server.URL = rt.flags.serverURL
	}
	if rt.flags.logLevel != "" {
		cfg.Log.Level = rt.flags.logLevel
	}
	rt.cfg = cfg
	rt.log = newLogger(cfg.Log.Level)

	rt.state, err = state.OpenOrMemory(cfg.State.Dir)
	if err != nil {
		rt.log.Warn("state file unavailable, preferences last for this run only", "dir", cfg.State.Dir, "error", err)
	}

	hc, err := rt.httpClient()
	if err != nil {
		return err
	}
	rt.client = client.New(cfg.Server.URL,
		client.WithHTTPClient(hc),
		client.WithTimeout(cfg.Server.Timeout),
		client.WithLogger(rt.log),
	)

	theme, _, err := rt.state.Get(state.KeyTheme)
	if err != nil {
		rt.log.Warn("reading theme preference", "error", err)
	}
	rt.term = render.NewTerminal(os.Stdout, render.Options{
		Theme:    theme,
		WordWrap: cfg.UI.WordWrap,
		Plain:    rt.flags.plain || os.Getenv("NO_COLOR") != "",
	})

	rt.session = session.New(rt.state, rt.log)
	rt.confirm = &stdinConfirmer{in: os.Stdin, out: os.Stderr}
	rt.app = app.New(rt.client, rt.term, rt.session, app.Options{
		Features: app.Features{
			Streaming:  cfg.Features.Streaming,
			WeeklyPlan: cfg.Features.WeeklyPlan,
			Delete:     cfg.Features.Delete,
		},
		HistoryDays:      cfg.History.Days,
		StatusClearDelay: cfg.UI.StatusClearDelay,
		Prefs:            rt.state,
		Confirmer:        rt.confirm,
		Logger:           rt.log,
	})

	rt.log.Debug("atlas ready", "version", Version, "server", cfg.Server.URL)
	return nil
}

// httpClient returns the transport for backend calls: a tailnet client when
// Tailscale is enabled, the default client otherwise.
func (rt *cli) httpClient() (*http.Client, error) {
	if !rt.cfg.Tailscale.Enabled {
		return &http.Client{}, nil
	}
	rt.ts = &tsnet.Server{
		Hostname: rt.cfg.Tailscale.Hostname + "-client",
		Dir:      rt.cfg.Tailscale.StateDir,
		Logf:     func(format string, args ...any) { rt.log.Debug(fmt.Sprintf(format, args...)) },
	}
	if err := rt.ts.Start(); err != nil {
		return nil, fmt.Errorf("tsnet start: %w", err)
	}
	rt.log.Info("tsnet client started", "hostname", rt.ts.Hostname)
	return rt.ts.HTTPClient(), nil
}

// Close releases the state database and the tailnet node.
func (rt *cli) Close() {
	if rt.ts != nil {
		rt.ts.Close()
	}
	if rt.state != nil {
		if err := rt.state.Close(); err != nil && rt.log != nil {
			rt.log.Warn("closing state", "error", err)
		}
	}
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
