package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/atlas/internal/client"
	"github.com/claude/atlas/internal/devserver"
	"github.com/claude/atlas/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfirmer verifies only y/yes (any case) confirm, and --yes skips the prompt.
func TestConfirmer(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false}
	for input, want := range cases {
		var out bytes.Buffer
		c := &stdinConfirmer{in: strings.NewReader(input), out: &out}
		got, err := c.Confirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Delete? [y/N]")
	}

	var out bytes.Buffer
	c := &stdinConfirmer{in: strings.NewReader(""), out: &out, assumeYes: true}
	got, err := c.Confirm("Delete?")
	require.NoError(t, err)
	assert.True(t, got)
	assert.Empty(t, out.String())
}

// TestShellLineBuiltins verifies exit handling and quoting errors.
func TestShellLineBuiltins(t *testing.T) {
	var out bytes.Buffer
	rt := &cli{}

	assert.True(t, runShellLine(context.Background(), rt, "exit\n", &out))
	assert.True(t, runShellLine(context.Background(), rt, "  quit ", &out))
	assert.False(t, runShellLine(context.Background(), rt, "   ", &out))

	assert.False(t, runShellLine(context.Background(), rt, `generate --notes "unterminated`, &out))
	assert.Contains(t, out.String(), "Error:")

	out.Reset()
	assert.False(t, runShellLine(context.Background(), rt, "shell", &out))
	assert.Contains(t, out.String(), "not available inside the shell")
}

// TestShellGenerateAndSave runs a shell session against a local backend and
// checks the workout was logged once.
func TestShellGenerateAndSave(t *testing.T) {
	store, err := devserver.OpenStore(filepath.Join(t.TempDir(), "workouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ts := httptest.NewServer(devserver.New(store, slog.New(slog.DiscardHandler), devserver.WithAPIKey("k")))
	t.Cleanup(ts.Close)

	t.Setenv("ATLAS_CONFIG", "")
	t.Setenv("ATLAS_STATE_DIR", t.TempDir())
	t.Setenv("ATLAS_LOG_LEVEL", "error")

	rt := &cli{flags: rootFlags{serverURL: ts.URL, plain: true}}
	require.NoError(t, rt.setup())
	t.Cleanup(rt.Close)

	input := strings.Join([]string{
		`generate -p HIIT -x Beginner -e Rower -f "Full Body"`,
		`save`,
		`save`,
		`exit`,
	}, "\n") + "\n"
	var prompt bytes.Buffer
	require.NoError(t, runShell(context.Background(), rt, strings.NewReader(input), &prompt))
	assert.Contains(t, prompt.String(), "atlas> ")

	history, err := client.New(ts.URL).GetWorkoutHistory(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "HIIT", history[0].Pillar)
	assert.Equal(t, "Full Body", history[0].Focus)

	_, ok := rt.session.Current()
	assert.False(t, ok, "session should be empty after save")
}

// TestSetupWithoutStateDir verifies the CLI still starts when the state
// directory cannot be created, keeping preferences in memory.
func TestSetupWithoutStateDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	t.Setenv("ATLAS_CONFIG", "")
	t.Setenv("ATLAS_STATE_DIR", filepath.Join(file, "state"))
	t.Setenv("ATLAS_LOG_LEVEL", "error")

	rt := &cli{flags: rootFlags{serverURL: "http://127.0.0.1:1", plain: true}}
	require.NoError(t, rt.setup())
	t.Cleanup(rt.Close)

	assert.IsType(t, &state.Memory{}, rt.state)
	require.NoError(t, rt.state.Put(state.KeyTheme, "dark"))
	v, ok, err := rt.state.Get(state.KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}
