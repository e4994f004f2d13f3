package sync

import "sync"

// CursorNone is the sentinel for a stream whose initial fetch has not
// happened yet. Server IDs start at 1, so 0 is a valid post-initial
// cursor for an empty stream.
const CursorNone int64 = -1

// CursorStore tracks the highest item ID observed per stream. It never
// fetches; it only holds state.
type CursorStore struct {
	mu      sync.Mutex
	cursors map[string]int64
}

// NewCursorStore creates an empty cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{cursors: make(map[string]int64)}
}

// Get returns the stream's cursor, or CursorNone if the stream has not
// been initialized.
func (s *CursorStore) Get(streamID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor, ok := s.cursors[streamID]
	if !ok {
		return CursorNone
	}
	return cursor
}

// Advance moves the stream's cursor to itemID if and only if itemID is
// strictly greater than the current cursor. It reports whether the
// cursor moved. The cursor never regresses.
func (s *CursorStore) Advance(streamID string, itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor, ok := s.cursors[streamID]
	if !ok {
		cursor = CursorNone
	}
	if itemID <= cursor {
		return false
	}
	s.cursors[streamID] = itemID
	return true
}

// Reset clears the stream's cursor back to CursorNone. Used when
// switching streams so the next open performs a full initial fetch.
func (s *CursorStore) Reset(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, streamID)
}
