package sync

import (
	"sync"

	"github.com/agora-sh/agora/internal/types"
)

// StreamStore holds the locally ordered message sequence per stream and
// the cursors that guard appends. Appends are idempotent: items at or
// below the stream's cursor are dropped, so a duplicate network
// response cannot double-deliver.
type StreamStore struct {
	mu      sync.Mutex
	cursors *CursorStore
	streams map[string]*streamState
}

type streamState struct {
	messages []types.Message
	pending  []types.PendingMessage
}

// NewStreamStore creates a stream store backed by the given cursors.
func NewStreamStore(cursors *CursorStore) *StreamStore {
	return &StreamStore{
		cursors: cursors,
		streams: make(map[string]*streamState),
	}
}

// Cursors exposes the backing cursor store.
func (s *StreamStore) Cursors() *CursorStore {
	return s.cursors
}

// Replace installs the result of an initial full fetch, discarding any
// prior items, and seeds the cursor so incremental polling can begin.
// An empty result still initializes the cursor (to 0).
func (s *StreamStore) Replace(streamID string, msgs []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(streamID)
	state.messages = append([]types.Message(nil), msgs...)
	last := int64(0)
	if n := len(msgs); n > 0 {
		last = msgs[n-1].ID
	}
	s.cursors.Advance(streamID, last)
}

// Append merges an ascending-ordered poll result into the stream and
// advances the cursor past the last accepted item. Items whose ID is at
// or below the cursor are dropped. Returns the number of items actually
// appended.
func (s *StreamStore) Append(streamID string, msgs []types.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(streamID)
	appended := 0
	for _, msg := range msgs {
		if !s.cursors.Advance(streamID, msg.ID) {
			continue
		}
		state.messages = append(state.messages, msg)
		appended++
	}
	return appended
}

// Messages returns a copy of the stream's confirmed messages in
// insertion order (ascending by ID).
func (s *StreamStore) Messages(streamID string) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.streams[streamID]
	if !ok {
		return nil
	}
	return append([]types.Message(nil), state.messages...)
}

// Len returns the number of confirmed messages held for a stream.
func (s *StreamStore) Len(streamID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.streams[streamID]
	if !ok {
		return 0
	}
	return len(state.messages)
}

// Remove deletes a message from the stream after a confirmed server-side
// deletion. The cursor is untouched; deletion never regresses it.
func (s *StreamStore) Remove(streamID string, messageID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.streams[streamID]
	if !ok {
		return false
	}
	for i, msg := range state.messages {
		if msg.ID == messageID {
			state.messages = append(state.messages[:i], state.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Drop discards all local state for a stream, cursor included. Used on
// stream switch; the next open re-fetches from scratch.
func (s *StreamStore) Drop(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streams, streamID)
	s.cursors.Reset(streamID)
}

// AddPending records an optimistic placeholder for a sent-but-unconfirmed
// message.
func (s *StreamStore) AddPending(pending types.PendingMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(pending.ChannelID)
	state.pending = append(state.pending, pending)
}

// ResolvePending replaces the placeholder identified by ref with the
// server-confirmed message. If a poll already delivered the message the
// append is a no-op and only the placeholder is cleared.
func (s *StreamStore) ResolvePending(streamID, ref string, msg types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state(streamID)
	s.removePending(state, ref)
	if !s.cursors.Advance(streamID, msg.ID) {
		return
	}
	state.messages = append(state.messages, msg)
}

// FailPending discards the placeholder identified by ref after a failed
// send.
func (s *StreamStore) FailPending(streamID, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.streams[streamID]
	if !ok {
		return
	}
	s.removePending(state, ref)
}

// Pending returns a copy of the stream's unconfirmed placeholders in
// queue order.
func (s *StreamStore) Pending(streamID string) []types.PendingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.streams[streamID]
	if !ok {
		return nil
	}
	return append([]types.PendingMessage(nil), state.pending...)
}

func (s *StreamStore) state(streamID string) *streamState {
	state, ok := s.streams[streamID]
	if !ok {
		state = &streamState{}
		s.streams[streamID] = state
	}
	return state
}

func (s *StreamStore) removePending(state *streamState, ref string) {
	for i, p := range state.pending {
		if p.Ref == ref {
			state.pending = append(state.pending[:i], state.pending[i+1:]...)
			return
		}
	}
}
