package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/five82/parkdash/internal/prefs"
	"github.com/five82/parkdash/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCards View = iota
	ViewLogs
)

// Refresher runs an out-of-band poll cycle.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context       context.Context
	Refresher     Refresher
	Store         *state.Store
	PollTick      time.Duration
	ThemeName     string
	ShowTimestamp bool
	PrefsPath     string
	// LogPath is the file the log view tails; empty disables the view.
	LogPath  string
	Location *time.Location
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	refresher Refresher
	store     *state.Store
	prefsPath string
	logPath   string
	pollTick  time.Duration
	location  *time.Location
	keys      keyMap

	theme         Theme
	currentView   View
	width         int
	height        int
	ready         bool
	showHelp      bool
	showTimestamp bool
	refreshing    bool

	snapshot state.Snapshot
	content  viewport.Model

	logLines    []string
	logErr      error
	logMinLevel zerolog.Level
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return Model{
		ctx:           ctx,
		refresher:     opts.Refresher,
		store:         opts.Store,
		prefsPath:     opts.PrefsPath,
		logPath:       opts.LogPath,
		pollTick:      pollTick,
		location:      loc,
		keys:          DefaultKeyMap(),
		theme:         GetTheme(opts.ThemeName),
		showTimestamp: opts.ShowTimestamp,
		logMinLevel:   zerolog.InfoLevel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.content = viewport.New(m.width, m.contentHeight())
			m.ready = true
		} else {
			m.content.Width = m.width
			m.content.Height = m.contentHeight()
		}
		m.syncContent()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.syncContent()
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case logLinesMsg:
		m.logLines = []string(msg)
		m.logErr = nil
		atBottom := m.content.AtBottom()
		m.syncContent()
		if atBottom {
			m.content.GotoBottom()
		}
		return m, nil

	case logErrorMsg:
		m.logErr = msg.err
		m.syncContent()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.content.View())
	return b.String()
}

func (m Model) contentHeight() int {
	return max(m.height-2, 1)
}

// syncContent re-renders the active view into the viewport.
func (m *Model) syncContent() {
	if !m.ready {
		return
	}
	switch m.currentView {
	case ViewLogs:
		m.content.SetContent(m.renderLogs())
	default:
		m.content.SetContent(m.renderCards())
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.syncContent()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing || m.refresher == nil {
			return m, nil
		}
		m.refreshing = true
		cmd := refreshCmd(m.ctx, m.refresher)
		if m.currentView == ViewLogs {
			return m, tea.Batch(cmd, m.refreshLogs())
		}
		return m, cmd

	case key.Matches(msg, m.keys.ToggleTimestamp):
		m.showTimestamp = !m.showTimestamp
		m.savePrefs()
		m.syncContent()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewCards
			m.syncContent()
			m.content.GotoTop()
			return m, nil
		}
		m.currentView = ViewLogs
		m.syncContent()
		m.content.GotoBottom()
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Escape):
		if m.currentView != ViewCards {
			m.currentView = ViewCards
			m.syncContent()
			m.content.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.LogLevel):
		if m.currentView != ViewLogs {
			return m, nil
		}
		if m.logMinLevel <= zerolog.DebugLevel {
			m.logMinLevel = zerolog.InfoLevel
		} else {
			m.logMinLevel = zerolog.DebugLevel
		}
		m.syncContent()
		return m, nil
	}

	m.handleScrollKey(msg)
	return m, nil
}

func (m *Model) handleScrollKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.content.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.content.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.content.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.content.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.content.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.content.HalfViewUp()
	}
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name}.WithTimestamp(m.showTimestamp)
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Warn().Err(err).Msg("save preferences")
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type refreshDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func refreshCmd(ctx context.Context, r Refresher) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: r.Refresh(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
