// Package render writes application state to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/claude/atlas/internal/models"
	"github.com/claude/atlas/internal/view"
)

// Display themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NormalizeTheme maps anything unrecognized to the light theme.
func NormalizeTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// Options configures a Terminal.
type Options struct {
	Theme    string
	WordWrap int
	// Plain disables colors and markdown styling, e.g. when output is not a TTY.
	Plain bool
}

type styles struct {
	title   lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
	label   lipgloss.Style
	box     lipgloss.Style
}

// Terminal is an append-only presentation sink. It is safe for concurrent use.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	opts   Options
	lg     *lipgloss.Renderer
	styles styles
	md     *glamour.TermRenderer

	status string
	live   string
}

// NewTerminal creates a sink writing to out.
func NewTerminal(out io.Writer, opts Options) *Terminal {
	if opts.WordWrap <= 0 {
		opts.WordWrap = 100
	}
	opts.Theme = NormalizeTheme(opts.Theme)
	t := &Terminal{out: out, opts: opts, lg: lipgloss.NewRenderer(out)}
	t.applyTheme()
	return t
}

// applyTheme rebuilds styles and the markdown renderer. Callers hold mu or
// own t exclusively.
func (t *Terminal) applyTheme() {
	dark := t.opts.Theme == ThemeDark
	t.lg.SetHasDarkBackground(dark)

	accent := lipgloss.AdaptiveColor{Light: "25", Dark: "81"}
	muted := lipgloss.AdaptiveColor{Light: "244", Dark: "245"}
	t.styles = styles{
		title:   t.lg.NewStyle().Bold(true).Foreground(accent),
		status:  t.lg.NewStyle().Foreground(muted),
		err:     t.lg.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		success: t.lg.NewStyle().Foreground(lipgloss.Color("34")),
		muted:   t.lg.NewStyle().Foreground(muted),
		label:   t.lg.NewStyle().Bold(true),
		box:     t.lg.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
	}

	style := t.opts.Theme
	if t.opts.Plain {
		style = "notty"
	}
	// A nil renderer falls back to raw markdown.
	t.md, _ = glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(t.opts.WordWrap),
	)
}

func (t *Terminal) println(s string) {
	fmt.Fprintln(t.out, s)
}

// Theme switches the display theme.
func (t *Terminal) Theme(theme string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts.Theme = NormalizeTheme(theme)
	t.applyTheme()
}

// Status shows a transient progress message. An empty message prints nothing.
func (t *Terminal) Status(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = msg
	if msg == "" {
		return
	}
	t.println(t.styles.status.Render(msg))
}

// ClearStatus drops the current status message.
func (t *Terminal) ClearStatus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = ""
}

// CurrentStatus returns the status message that has not been cleared yet.
func (t *Terminal) CurrentStatus() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Error shows an inline error.
func (t *Terminal) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLive()
	t.println(t.styles.err.Render("Error: " + msg))
}

// WorkoutLive prints whatever part of the accumulated text has not been
// printed yet.
func (t *Terminal) WorkoutLive(accumulated string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if strings.HasPrefix(accumulated, t.live) {
		fmt.Fprint(t.out, accumulated[len(t.live):])
	} else {
		fmt.Fprint(t.out, "\n"+accumulated)
	}
	t.live = accumulated
}

func (t *Terminal) endLive() {
	if t.live != "" {
		fmt.Fprintln(t.out)
		t.live = ""
	}
}

// Workout renders a finished workout under its title.
func (t *Terminal) Workout(w models.WorkoutResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLive()

	t.println(t.styles.title.Render(WorkoutTitle(w)))
	t.println(t.markdown(w.WorkoutText))
	if len(w.MusclesWorked) > 0 {
		t.println(t.styles.label.Render("Muscles: ") + view.JoinMuscles(w.MusclesWorked))
	}
}

// WorkoutTitle is the heading shown above a generated workout.
func WorkoutTitle(w models.WorkoutResult) string {
	return fmt.Sprintf("## Today's Workout: %s - %s", w.Pillar, w.Focus)
}

func (t *Terminal) markdown(text string) string {
	if t.md == nil {
		return text
	}
	out, err := t.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// ClearWorkout resets the live output area.
func (t *Terminal) ClearWorkout() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = ""
}

// SaveAvailable tells the user whether the current workout can be saved.
func (t *Terminal) SaveAvailable(ok bool) {
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(t.styles.muted.Render("Run `atlas save` to log this workout."))
}

// History renders grouped past workouts.
func (t *Terminal) History(groups []view.HistoryGroup) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.println(t.styles.title.Render("Workout History"))
	if len(groups) == 0 {
		t.println(t.styles.muted.Render(view.NoHistoryText))
		return
	}
	for _, g := range groups {
		t.println(t.styles.label.Render(g.Date))
		for _, r := range g.Records {
			t.println(fmt.Sprintf("  [%d] %s", r.ID, r.Title))
			t.println(t.styles.muted.Render("      Muscles: " + r.Muscles))
		}
	}
}

// HistoryError shows a history load failure in place of the list.
func (t *Terminal) HistoryError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(t.styles.err.Render(msg))
}

// Plan renders the weekly plan in day order.
func (t *Terminal) Plan(rows []view.PlanRow) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.println(t.styles.title.Render("This Week"))
	if len(rows) == 0 {
		t.println(t.styles.muted.Render("No plan for this week."))
		return
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-9s  %-28s  %s", r.DayName, r.PillarFocus, r.Status)
	}
	t.println(t.styles.box.Render(b.String()))
}

// PlanError shows a plan load failure.
func (t *Terminal) PlanError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(t.styles.err.Render(msg))
}

// Settings renders the merged user settings.
func (t *Terminal) Settings(s models.UserSettings) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.println(t.styles.title.Render("User Settings"))
	rows := [][2]string{
		{"Strength / week", fmt.Sprint(s.StrengthFreq)},
		{"HIIT / week", fmt.Sprint(s.HIITFreq)},
		{"Zone 2 / week", fmt.Sprint(s.Zone2Freq)},
		{"Recovery / week", fmt.Sprint(s.RecoveryFreq)},
		{"Stability / week", fmt.Sprint(s.StabilityFreq)},
		{"Focus rotation", view.FormatRotation(s.FocusRotation)},
		{"Primary goal", s.PrimaryGoal},
		{"AI model", s.AIModelID},
		{"Duration", s.WorkoutDurationPreference},
	}
	for _, r := range rows {
		t.println(t.styles.label.Render(fmt.Sprintf("%-17s", r[0])) + " " + r[1])
	}
}

// SettingsMessage shows the outcome of a settings save.
func (t *Terminal) SettingsMessage(msg string, isErr bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if isErr {
		t.println(t.styles.err.Render(msg))
		return
	}
	t.println(t.styles.success.Render(msg))
}
