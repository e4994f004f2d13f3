package sync

import (
	"sync"

	"github.com/agora-sh/agora/internal/types"
)

// ReportThreshold is the report count at which a post is gated.
const ReportThreshold = 10

// ModerationGate derives a hidden state for posts whose report count
// crossed the threshold, with a per-session reveal override. Reveals are
// one-directional: once revealed, a post cannot be re-hidden by the
// viewer, no matter how its report count changes on re-fetch.
type ModerationGate struct {
	mu        sync.Mutex
	threshold int
	revealed  map[int64]bool
}

// NewModerationGate creates a gate with the default threshold.
func NewModerationGate() *ModerationGate {
	return &ModerationGate{
		threshold: ReportThreshold,
		revealed:  make(map[int64]bool),
	}
}

// Hidden reports whether the post is gated for this session. Callers at
// the UI boundary must check this before dispatching navigation or
// enabling any control inside the post.
func (g *ModerationGate) Hidden(post types.Post) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return post.ReportCount >= g.threshold && !g.revealed[post.ID]
}

// Reveal overrides the gate for one post for the rest of the session.
func (g *ModerationGate) Reveal(postID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revealed[postID] = true
}

// Revealed reports whether the viewer has overridden the gate for a post.
func (g *ModerationGate) Revealed(postID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.revealed[postID]
}
