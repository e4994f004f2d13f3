package sync

import "sync"

// UnreadTracker counts items that arrived while a stream's view was not
// visible. Opening the view clears the count immediately (read-on-open,
// not read-on-scroll-to-bottom).
type UnreadTracker struct {
	mu      sync.Mutex
	visible map[string]bool
	counts  map[string]int
}

// NewUnreadTracker creates an empty tracker. Streams start not visible.
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{
		visible: make(map[string]bool),
		counts:  make(map[string]int),
	}
}

// SetVisible records whether the stream's view is on screen. Becoming
// visible resets the unread count to zero.
func (t *UnreadTracker) SetVisible(streamID string, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible[streamID] = visible
	if visible {
		t.counts[streamID] = 0
	}
}

// Visible reports whether the stream's view is on screen.
func (t *UnreadTracker) Visible(streamID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible[streamID]
}

// Observe adds newly fetched items to the unread count when the stream
// is not visible. Visible streams accumulate nothing.
func (t *UnreadTracker) Observe(streamID string, n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visible[streamID] {
		return
	}
	t.counts[streamID] += n
}

// Count returns the stream's current unread count.
func (t *UnreadTracker) Count(streamID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[streamID]
}
