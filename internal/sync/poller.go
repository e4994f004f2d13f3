package sync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/agora-sh/agora/internal/api"
)

// ChatLister is the read side of the chat API consumed by the poller.
type ChatLister interface {
	ListMessages(ctx context.Context, channel string, after int64, limit int) (api.MessagesPage, error)
}

// Config holds engine timing and sizing knobs.
type Config struct {
	PollInterval       time.Duration // active stream cadence
	BackgroundInterval time.Duration // unread-only cadence for watched streams
	InitialLimit       int           // item cap for the initial full fetch
	PageSize           int           // feed page size
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:       3 * time.Second,
		BackgroundInterval: 15 * time.Second,
		InitialLimit:       100,
		PageSize:           20,
	}
}

// Poller keeps streams converged with the server by incremental
// after-cursor fetches. The active stream is polled on the fast cadence;
// watched background streams are polled slowly for unread counting only.
//
// At most one request is outstanding per stream at any time. A tick that
// fires while a request is in flight is dropped, not queued. Guard
// release happens on success, failure, and cancellation alike.
type Poller struct {
	mu        sync.Mutex
	client    ChatLister
	store     *StreamStore
	unread    *UnreadTracker
	inflight  map[string]bool
	active    string
	watched   map[string]bool
	cancelled bool

	cfg    Config
	logger *log.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPoller creates a poller over the given store and tracker.
func NewPoller(client ChatLister, store *StreamStore, unread *UnreadTracker, cfg Config) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.BackgroundInterval <= 0 {
		cfg.BackgroundInterval = DefaultConfig().BackgroundInterval
	}
	if cfg.InitialLimit <= 0 {
		cfg.InitialLimit = DefaultConfig().InitialLimit
	}
	return &Poller{
		client:   client,
		store:    store,
		unread:   unread,
		inflight: make(map[string]bool),
		watched:  make(map[string]bool),
		cfg:      cfg,
		stopCh:   make(chan struct{}),
	}
}

// SetLogger installs an optional debug logger.
func (p *Poller) SetLogger(logger *log.Logger) {
	p.logger = logger
}

// SetActive marks the stream polled on the fast cadence. It does not
// fetch; callers run LoadInitial when opening a fresh stream.
func (p *Poller) SetActive(streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = streamID
}

// Active returns the currently active stream ID.
func (p *Poller) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Watch adds a stream to the background unread-counting rotation.
func (p *Poller) Watch(streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watched[streamID] = true
}

// Unwatch removes a stream from the background rotation.
func (p *Poller) Unwatch(streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.watched, streamID)
}

// Start launches the poll loop. Stop shuts it down.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop halts the loop and prevents any still-in-flight completion from
// writing into discarded state.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	p.mu.Unlock()
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	active := time.NewTicker(p.cfg.PollInterval)
	defer active.Stop()
	background := time.NewTicker(p.cfg.BackgroundInterval)
	defer background.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-active.C:
			if stream := p.Active(); stream != "" {
				p.PollOnce(ctx, stream)
			}
		case <-background.C:
			p.pollBackground(ctx)
		}
	}
}

// LoadInitial performs the full first fetch for a stream, replacing any
// prior local state and seeding the cursor. Incremental polling only
// fires once this has happened.
func (p *Poller) LoadInitial(ctx context.Context, streamID string) error {
	if !p.acquire(streamID) {
		return ErrBusy
	}
	defer p.release(streamID)

	page, err := p.client.ListMessages(ctx, streamID, 0, p.cfg.InitialLimit)
	if err != nil {
		return err
	}
	if p.isCancelled() {
		return nil
	}
	p.store.Replace(streamID, page.Messages)
	p.unread.Observe(streamID, len(page.Messages))
	return nil
}

// PollOnce runs one incremental tick for a stream. Errors are returned
// for callers that care; the loop itself skips failed ticks silently and
// relies on the next tick as the retry mechanism.
func (p *Poller) PollOnce(ctx context.Context, streamID string) (int, error) {
	cursor := p.store.Cursors().Get(streamID)
	if cursor == CursorNone {
		// Initial fetch has not happened; nothing to poll after.
		return 0, nil
	}
	if !p.acquire(streamID) {
		return 0, ErrBusy
	}
	defer p.release(streamID)

	page, err := p.client.ListMessages(ctx, streamID, cursor, 0)
	if err != nil {
		p.logf("poll %s: %v", streamID, err)
		return 0, err
	}
	if p.isCancelled() {
		return 0, nil
	}
	if len(page.Messages) == 0 {
		return 0, nil
	}
	appended := p.store.Append(streamID, page.Messages)
	p.unread.Observe(streamID, appended)
	return appended, nil
}

func (p *Poller) pollBackground(ctx context.Context) {
	p.mu.Lock()
	streams := make([]string, 0, len(p.watched))
	for stream := range p.watched {
		if stream != p.active {
			streams = append(streams, stream)
		}
	}
	p.mu.Unlock()

	for _, stream := range streams {
		if p.store.Cursors().Get(stream) == CursorNone {
			if err := p.LoadInitial(ctx, stream); err != nil {
				p.logf("background load %s: %v", stream, err)
			}
			continue
		}
		p.PollOnce(ctx, stream)
	}
}

func (p *Poller) acquire(streamID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflight[streamID] {
		return false
	}
	p.inflight[streamID] = true
	return true
}

func (p *Poller) release(streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, streamID)
}

func (p *Poller) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

func (p *Poller) logf(format string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Printf(format, args...)
}
