package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/session"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/desertthunder/streamz/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	DetailView
	PlayerView
)

// sessionBuffer holds transitions not yet seen by the event loop.
const sessionBuffer = 8

// Deps groups the collaborators of the browse TUI.
type Deps struct {
	Catalog         services.Catalog
	Reporter        services.ProgressReporter
	Session         *session.Manager // Optional; personal rows are loaded when signed in
	Home            tasks.HomeOpts
	Player          PlayerConfig // Template; title, target and duration are set per selection
	DefaultDuration float64      // Length assumed for titles that do not carry one
	Logger          *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	deps        Deps
	loader      *tasks.HomeLoader
	view        ViewState
	width       int
	height      int
	homeList    list.Model
	home        *tasks.HomePage
	loading     bool
	progress    tasks.ProgressUpdate
	detail      *models.Content
	episodeList list.Model
	player      *PlayerModel
	status      string
	help        help.Model
	keys        keyMap

	sessionCh   chan session.Snapshot
	unsubscribe func()
	account     session.Snapshot
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}
	m := &Model{
		ctx:         ctx,
		deps:        deps,
		loader:      tasks.NewHomeLoader(deps.Catalog, deps.Logger),
		view:        HomeView,
		homeList:    newList(nil, "streamz"),
		episodeList: newList(nil, "Episodes"),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	if deps.Session != nil {
		m.sessionCh = make(chan session.Snapshot, sessionBuffer)
		m.account = deps.Session.Snapshot()
		m.unsubscribe = deps.Session.Subscribe(func(snap session.Snapshot) {
			sendLatest(m.sessionCh, snap)
		})
	}
	return m
}

// Close stops following session transitions.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts loading the home page and, with a session, listening for sign-in changes.
func (m *Model) Init() tea.Cmd {
	if m.sessionCh != nil {
		return tea.Batch(m.loadHome(), waitForSession(m.sessionCh))
	}
	return m.loadHome()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.homeList.SetSize(inset(msg.Width, 4), inset(msg.Height, 8))
		m.episodeList.SetSize(inset(msg.Width, 4), inset(msg.Height, 14))
		if m.player != nil {
			m.player.Update(msg)
		}
		return m, nil

	case homeProgressMsg:
		m.progress = msg.update
		return m, waitForProgress(msg.progress)

	case homeLoadedMsg:
		return m.handleHomeLoaded(msg)

	case sessionMsg:
		return m.handleSession(msg.snap)

	case contentLoadedMsg:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not load title: %v", msg.err))
			return m, nil
		}
		m.openDetail(msg.content)
		return m, nil

	case playerClosedMsg:
		m.player = nil
		m.view = HomeView
		if m.detail != nil {
			m.view = DetailView
		}
		m.status = fmt.Sprintf("Stopped at %s", shared.FormatTime(msg.state.Elapsed()))
		return m, m.loadHome()

	case tickMsg, controlsMsg, tea.MouseMsg:
		if m.view == PlayerView && m.player != nil {
			_, cmd := m.player.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case HomeView:
			return m.handleHomeKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case PlayerView:
			_, cmd := m.player.Update(msg)
			return m, cmd
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleHomeLoaded(msg homeLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.status = styles.err.Render(fmt.Sprintf("Home failed to load: %v", msg.err))
		return m, nil
	}

	m.home = msg.page
	index := m.homeList.Index()
	items := homeItems(msg.page)
	m.homeList = newList(items, m.heading())
	m.homeList.SetSize(inset(m.width, 4), inset(m.height, 8))
	if index < len(items) {
		m.homeList.Select(index)
	}

	if msg.page.Failed > 0 {
		m.status = styles.warn.Render(fmt.Sprintf("%d section(s) could not be loaded", msg.page.Failed))
	}
	return m, nil
}

// handleSession tracks sign-in changes and reloads the home rows when the personal ones come or go.
func (m *Model) handleSession(snap session.Snapshot) (tea.Model, tea.Cmd) {
	if snap.State == session.Invalid {
		m.status = styles.warn.Render("Session expired, signed out")
	}
	changed := snap.IsAuthenticated() != m.account.IsAuthenticated()
	m.account = snap

	next := waitForSession(m.sessionCh)
	if changed && m.view == HomeView {
		return m, tea.Batch(next, m.loadHome())
	}
	return m, next
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.homeList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadHome()
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.play):
		item, ok := m.homeList.SelectedItem().(homeItem)
		if !ok {
			return m, nil
		}
		if id := item.contentID(); id > 0 {
			m.status = "Loading..."
			return m, m.fetchContent(id)
		}
		if item.history != nil && item.history.Episode != nil {
			e := item.history.EpisodeDetails
			target := models.Target{EpisodeID: *item.history.Episode}
			duration := m.deps.DefaultDuration
			if e != nil {
				duration = e.DurationSeconds()
			}
			return m, m.play(item.Title(), target, duration)
		}
	}
	return m.updateLists(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = HomeView
		m.detail = nil
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.play):
		return m, m.playSelection()
	}
	return m.updateLists(msg)
}

// playSelection plays the highlighted episode, or the title itself when it has none.
func (m *Model) playSelection() tea.Cmd {
	c := m.detail
	if c == nil {
		return nil
	}
	if len(c.Episodes) == 0 {
		return m.play(c.Title, models.Target{ContentID: c.ID}, m.deps.DefaultDuration)
	}

	item, ok := m.episodeList.SelectedItem().(episodeItem)
	if !ok {
		return nil
	}
	e := item.episode
	title := fmt.Sprintf("%s - %s %s", c.Title, e.Code(), e.Title)
	return m.play(title, models.Target{ContentID: c.ID, EpisodeID: e.ID}, e.DurationSeconds())
}

// play mounts a fresh player view.
func (m *Model) play(title string, target models.Target, duration float64) tea.Cmd {
	cfg := m.deps.Player
	cfg.Title = title
	cfg.Target = target
	cfg.Standalone = false
	if duration > 0 {
		cfg.Tracker.Duration = duration
	}
	if cfg.Tracker.Logger == nil {
		cfg.Tracker.Logger = m.deps.Logger
	}

	m.player = NewPlayerModel(m.ctx, m.deps.Reporter, cfg)
	m.player.width = m.width
	m.view = PlayerView
	m.status = ""
	return m.player.Init()
}

func (m *Model) openDetail(c *models.Content) {
	m.detail = c
	m.status = ""
	m.episodeList = newList(episodeItems(c), "Episodes")
	m.episodeList.SetSize(inset(m.width, 4), inset(m.height, 14))
	m.view = DetailView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case HomeView:
		m.homeList, cmd = m.homeList.Update(msg)
	case DetailView:
		m.episodeList, cmd = m.episodeList.Update(msg)
	}
	return m, cmd
}

// loadHome runs the loader in the background and streams its progress back.
func (m *Model) loadHome() tea.Cmd {
	opts := m.deps.Home
	if m.deps.Session != nil {
		opts.Authenticated = m.account.IsAuthenticated()
	}

	m.loading = true
	progress := make(chan tasks.ProgressUpdate, 16)

	run := func() tea.Msg {
		page, err := m.loader.Load(m.ctx, progress, opts)
		close(progress)
		return homeLoadedMsg{page: page, err: err}
	}
	return tea.Batch(run, waitForProgress(progress))
}

func waitForProgress(progress <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return homeProgressMsg{update: update, progress: progress}
	}
}

// sendLatest queues snap without blocking the session, dropping the oldest queued snapshot when full.
func sendLatest(ch chan session.Snapshot, snap session.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForSession(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{snap: <-ch}
	}
}

func (m *Model) fetchContent(id int) tea.Cmd {
	return func() tea.Msg {
		content, err := m.deps.Catalog.Content(m.ctx, id)
		return contentLoadedMsg{content: content, err: err}
	}
}

func (m *Model) heading() string {
	if m.account.User != nil {
		return fmt.Sprintf("streamz • %s", m.account.User.DisplayName())
	}
	return "streamz"
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case HomeView:
		return m.renderHome()
	case DetailView:
		return m.renderDetail()
	case PlayerView:
		if m.player != nil {
			return m.player.View()
		}
	}
	return ""
}

func (m *Model) renderHome() string {
	if m.home == nil {
		msg := "Loading..."
		if m.progress.Message != "" {
			msg = m.progress.Message
		}
		return fmt.Sprintf("%s\n%s\n%s", styles.title.Render("streamz"), msg, m.status)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", m.homeList.View(), m.status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	c := m.detail
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("%s (%d)", c.Title, c.ReleaseYear)))
	b.WriteString("\n")
	meta := c.ContentType.Label()
	if genres := c.GenreNames(); genres != "" {
		meta += " • " + genres
	}
	b.WriteString(styles.help.Render(meta))
	b.WriteString("\n\n")
	if c.Description != "" {
		b.WriteString(c.Description)
		b.WriteString("\n\n")
	}

	if len(c.Episodes) > 0 {
		b.WriteString(m.episodeList.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.play, m.keys.back, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

func inset(size, by int) int {
	return max(0, size-by)
}
