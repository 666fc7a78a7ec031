package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/player"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/shared"
)

const (
	seekStep       = 0.05
	volumeStep     = 0.1
	defaultBarSize = 40
)

// PlayerConfig describes what to play and how.
type PlayerConfig struct {
	Title           string
	Target          models.Target
	Tracker         player.Options
	ControlsTimeout time.Duration
	TickInterval    time.Duration // Simulated clock step (default: 1s)
	Standalone      bool          // Quit the program on esc instead of returning to the browser
}

// PlayerModel is the player view. It owns the progress tracker, the simulated
// media clock and the controls inactivity timer for as long as it is mounted.
type PlayerModel struct {
	cfg      PlayerConfig
	tracker  *player.Tracker
	clock    *player.Clock
	controls *player.ControlsTimer
	changes  chan bool
	done     chan struct{}
	visible  bool
	closed   bool
	keys     playerKeyMap
	help     help.Model
	width    int
}

// NewPlayerModel mounts a player for cfg.Target. Progress goes to reporter.
func NewPlayerModel(ctx context.Context, reporter services.ProgressReporter, cfg PlayerConfig) *PlayerModel {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	m := &PlayerModel{
		cfg:     cfg,
		clock:   player.NewClock(cfg.Tracker.Duration),
		changes: make(chan bool, 1),
		done:    make(chan struct{}),
		visible: true,
		keys:    newPlayerKeyMap(),
		help:    help.New(),
	}
	m.tracker = player.NewTracker(ctx, cfg.Target, reporter, m.clock, cfg.Tracker)
	m.controls = player.NewControlsTimer(cfg.ControlsTimeout, m.onControls)
	return m
}

// onControls runs on the timer goroutine and hands the change to the event loop.
func (m *PlayerModel) onControls(visible bool) {
	select {
	case m.changes <- visible:
	case <-m.done:
	}
}

// Init starts the clock and the controls countdown.
func (m *PlayerModel) Init() tea.Cmd {
	m.controls.Reset()
	return tea.Batch(m.tick(), m.waitForControls())
}

// Update handles incoming messages and updates the player state.
func (m *PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if msg.player != m {
			return m, nil
		}
		m.advance()
		return m, m.tick()

	case controlsMsg:
		m.visible = msg.visible
		return m, m.waitForControls()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			m.activity()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m *PlayerModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.activity()

	switch {
	case key.Matches(msg, m.keys.quit):
		m.unmount()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.unmount()
		if m.cfg.Standalone {
			return m, tea.Quit
		}
		state := m.tracker.State()
		target := m.cfg.Target
		return m, func() tea.Msg { return playerClosedMsg{target: target, state: state} }
	case key.Matches(msg, m.keys.toggle):
		m.tracker.TogglePlayPause()
	case key.Matches(msg, m.keys.mute):
		m.tracker.ToggleMute()
	case key.Matches(msg, m.keys.back5):
		m.tracker.SeekBy(-seekStep)
	case key.Matches(msg, m.keys.fwd5):
		m.tracker.SeekBy(seekStep)
	case key.Matches(msg, m.keys.volUp):
		m.tracker.SetVolume(m.tracker.State().VolumeFraction + volumeStep)
	case key.Matches(msg, m.keys.volDown):
		m.tracker.SetVolume(m.tracker.State().VolumeFraction - volumeStep)
	case key.Matches(msg, m.keys.jump):
		n := int(msg.String()[0] - '0')
		m.tracker.Seek(float64(n) / 10)
	}
	return m, nil
}

// advance moves the clock one step while playing and feeds the tracker.
func (m *PlayerModel) advance() {
	if !m.tracker.State().Playing || m.clock.Ended() {
		return
	}

	fraction, seconds := m.clock.Advance(m.cfg.TickInterval)
	m.tracker.OnProgressTick(fraction, seconds)
	if m.clock.Ended() {
		m.tracker.Pause()
	}
}

func (m *PlayerModel) activity() {
	m.controls.Reset()
	m.visible = true
}

// unmount stops the timers. Reports already in flight are left to finish.
func (m *PlayerModel) unmount() {
	if m.closed {
		return
	}
	m.closed = true
	m.controls.Stop()
	close(m.done)
}

func (m *PlayerModel) tick() tea.Cmd {
	return tea.Tick(m.cfg.TickInterval, func(t time.Time) tea.Msg { return tickMsg{player: m, at: t} })
}

func (m *PlayerModel) waitForControls() tea.Cmd {
	return func() tea.Msg {
		select {
		case v := <-m.changes:
			return controlsMsg{visible: v}
		case <-m.done:
			return nil
		}
	}
}

// Tracker exposes the tracker for callers that outlive the view.
func (m *PlayerModel) Tracker() *player.Tracker { return m.tracker }

// ControlsVisible reports whether the on-screen controls are shown.
func (m *PlayerModel) ControlsVisible() bool { return m.visible }

// View renders the player.
func (m *PlayerModel) View() string {
	state := m.tracker.State()

	var b strings.Builder
	b.WriteString(styles.title.Render(m.cfg.Title))
	b.WriteString("\n")

	status := styles.ok.Render("▶ Playing")
	if !state.Playing {
		status = styles.warn.Render("⏸ Paused")
	}
	b.WriteString(status)
	b.WriteString("\n\n")

	b.WriteString(progressBar(state.PositionFraction, m.barWidth()))
	b.WriteString(fmt.Sprintf("  %s / %s\n", shared.FormatTime(state.Elapsed()), shared.FormatTime(state.DurationSeconds)))

	if !m.visible {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(volumeLabel(state))
	if state.LastReportedSecond > 0 {
		b.WriteString(styles.help.Render(fmt.Sprintf("   synced at %s", shared.FormatTime(float64(state.LastReportedSecond)))))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *PlayerModel) barWidth() int {
	if m.width <= 0 {
		return defaultBarSize
	}
	return max(10, m.width-20)
}

func progressBar(fraction float64, width int) string {
	filled := int(math.Round(shared.Clamp01(fraction) * float64(width)))
	return styles.filled.Render(strings.Repeat("█", filled)) + styles.empty.Render(strings.Repeat("░", width-filled))
}

func volumeLabel(state player.State) string {
	if state.Muted {
		return styles.warn.Render("🔇 Muted")
	}
	return fmt.Sprintf("🔊 %s %3.0f%%", progressBar(state.VolumeFraction, 10), state.VolumeFraction*100)
}
