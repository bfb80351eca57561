package app

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/keymap"
	"github.com/llehouerou/wavecast/internal/playback"
	"github.com/llehouerou/wavecast/internal/player"
	"github.com/llehouerou/wavecast/internal/session"
)

// Focus is the list receiving list keys.
type Focus int

const (
	FocusEpisodes Focus = iota
	FocusFeeds
)

// Options configures the model. Session is required.
type Options struct {
	Context context.Context
	Session Session
	Sink    player.Interface       // read for position and state; may be nil
	Events  *playback.Subscription // may be nil
	Stderr  <-chan string          // captured audio backend output; may be nil
	Logger  zerolog.Logger
}

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	session Session
	sink    player.Interface
	events  *playback.Subscription
	stderr  <-chan string
	keys    *keymap.Resolver
	log     zerolog.Logger

	snap  session.Snapshot
	feeds []feed.Known

	focus      Focus
	feedCursor int
	epCursor   int
	lastID     string
	lastIndex  int

	input     textinput.Model
	inputOpen bool
	help      help.Model

	status    string
	statusErr bool

	width  int
	height int
}

// New creates the model and loads the current session state.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	input := textinput.New()
	input.Prompt = "open: "
	input.Placeholder = "feed address or shared link"

	m := Model{
		ctx:       ctx,
		session:   opts.Session,
		sink:      opts.Sink,
		events:    opts.Events,
		stderr:    opts.Stderr,
		keys:      keymap.Default(),
		log:       opts.Logger.With().Str("component", "app").Logger(),
		input:     input,
		help:      help.New(),
		lastIndex: -1,
	}
	m.refresh()
	if len(m.snap.Episodes) == 0 && m.snap.Address == "" && len(m.feeds) > 0 {
		m.focus = FocusFeeds
	}
	return m
}

// Init starts the background watchers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		TickCmd(),
		WatchSession(m.session),
		WatchPlaybackEvents(m.events),
		WatchStderr(m.stderr),
	)
}

// Focus returns the focused list.
func (m Model) Focus() Focus {
	return m.focus
}

// Status returns the status line and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// refresh re-reads the session. The episode cursor follows the selection
// whenever the selection moves.
func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
	m.feeds = m.session.KnownFeeds()

	if m.snap.SelectedID != m.lastID || m.snap.Index != m.lastIndex {
		m.lastID = m.snap.SelectedID
		m.lastIndex = m.snap.Index
		if m.snap.Index >= 0 {
			m.epCursor = m.snap.Index
		}
	}
	m.epCursor = clampCursor(m.epCursor, len(m.snap.Episodes))
	m.feedCursor = clampCursor(m.feedCursor, len(m.feeds))
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(cursor, 0), n-1)
}
