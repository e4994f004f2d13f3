package tui

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/core"
	engine "github.com/agora-sh/agora/internal/sync"
	"github.com/agora-sh/agora/internal/types"
)

type screenKind int

const (
	screenChat screenKind = iota
	screenFeed
)

// Options configure the hub UI.
type Options struct {
	Client      *api.Client
	Identity    core.IdentityProvider
	Channels    []string
	Channel     string
	StartOnFeed bool
	Config      engine.Config
	Logger      *log.Logger
}

// Run starts the hub UI and blocks until exit.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	fmt.Printf("\033]0;agora\007")
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	model.Close()
	return err
}

// Model implements the hub UI: a chat screen over the polling engine and
// a feed screen over the pager, with the report dialog layered on top.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	client *api.Client
	store  *engine.StreamStore
	poller *engine.Poller
	unread *engine.UnreadTracker
	feed   *engine.FeedPager
	rec    *engine.Reconciler
	dialog *engine.ReportDialog
	gate   *engine.ModerationGate
	sender *engine.Sender

	identity core.IdentityProvider
	logger   *log.Logger

	screen      screenKind
	width       int
	height      int
	status      string
	statusIsErr bool

	// Chat state
	channels     []string
	channelIndex int
	viewport     viewport.Model
	input        textarea.Model
	lastChat     string
	sending      bool

	// Feed state
	feedIndex   int
	feedLoading bool
	pickerOpen  bool
	pickerGroup int
	pickerIndex int
	detailOpen  bool
	detailPost  types.Post

	// Report dialog input
	reasonInput textinput.Model

	// Compose state
	composeOpen bool
	composeBody bool
	titleInput  textinput.Model
	bodyInput   textarea.Model
}

// NewModel wires the engine and creates the UI model. The poll loop is
// started here and stopped in Close.
func NewModel(opts Options) (*Model, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("tui: client is required")
	}
	if len(opts.Channels) == 0 {
		opts.Channels = []string{"general"}
	}
	channelIndex := 0
	for i, ch := range opts.Channels {
		if ch == opts.Channel {
			channelIndex = i
		}
	}

	cursors := engine.NewCursorStore()
	store := engine.NewStreamStore(cursors)
	unread := engine.NewUnreadTracker()
	poller := engine.NewPoller(opts.Client, store, unread, opts.Config)
	poller.SetLogger(opts.Logger)
	feed := engine.NewFeedPager(opts.Client, opts.Config.PageSize, types.SortLatest)
	feed.SetLogger(opts.Logger)
	rec := engine.NewReconciler(opts.Client, feed)
	rec.SetLogger(opts.Logger)

	author := ""
	if opts.Identity != nil {
		author = opts.Identity.Identity().Name
	}

	input := textarea.New()
	input.Placeholder = "Message"
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetHeight(1)
	input.Focus()

	reasonInput := textinput.New()
	reasonInput.Placeholder = "Reason"
	reasonInput.CharLimit = 300

	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = 200

	bodyInput := textarea.New()
	bodyInput.Placeholder = "Body (optional)"
	bodyInput.ShowLineNumbers = false
	bodyInput.SetHeight(4)

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		ctx:          ctx,
		cancel:       cancel,
		client:       opts.Client,
		store:        store,
		poller:       poller,
		unread:       unread,
		feed:         feed,
		rec:          rec,
		dialog:       engine.NewReportDialog(rec),
		gate:         engine.NewModerationGate(),
		sender:       engine.NewSender(opts.Client, store, author),
		identity:     opts.Identity,
		logger:       opts.Logger,
		channels:     opts.Channels,
		channelIndex: channelIndex,
		viewport:     viewport.New(0, 0),
		input:        input,
		reasonInput:  reasonInput,
		titleInput:   titleInput,
		bodyInput:    bodyInput,
	}

	if opts.StartOnFeed {
		m.screen = screenFeed
		m.input.Blur()
	}

	active := m.channel()
	poller.SetActive(active)
	unread.SetVisible(active, true)
	for _, ch := range opts.Channels {
		if ch != active {
			poller.Watch(ch)
		}
	}
	poller.Start(ctx)
	return m, nil
}

// Close stops the poll loop and releases the pager.
func (m *Model) Close() {
	m.poller.Stop()
	m.feed.Cancel()
	m.cancel()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadChannelCmd(m.channel()),
		m.loadFeedCmd(1),
		m.tickCmd(),
		textarea.Blink,
	)
}

func (m *Model) channel() string {
	return m.channels[m.channelIndex]
}

// switchChannel moves the active stream by delta, wrapping. The previous
// channel drops to the background watch rotation; the new one becomes
// visible and resets its unread count.
func (m *Model) switchChannel(delta int) tea.Cmd {
	previous := m.channel()
	m.channelIndex = (m.channelIndex + delta + len(m.channels)) % len(m.channels)
	next := m.channel()
	if next == previous {
		return nil
	}
	m.unread.SetVisible(previous, false)
	m.poller.Watch(previous)
	m.poller.Unwatch(next)
	m.poller.SetActive(next)
	m.unread.SetVisible(next, true)
	m.refreshChat(true)
	if m.store.Cursors().Get(next) == engine.CursorNone {
		return m.loadChannelCmd(next)
	}
	return nil
}

func (m *Model) setStatus(s string) { m.status = s; m.statusIsErr = false }

func (m *Model) setError(s string) { m.status = s; m.statusIsErr = true }

func (m *Model) clearStatus() { m.status = ""; m.statusIsErr = false }
