package core

import (
	"sync"

	"github.com/agora-sh/agora/internal/types"
)

// IdentityProvider supplies the credential pair attached to outgoing
// mutation calls. The engine never reads credentials from ambient
// storage; one provider instance owns them.
type IdentityProvider interface {
	Identity() types.Identity
}

// StaticIdentity is a fixed credential pair.
type StaticIdentity types.Identity

func (s StaticIdentity) Identity() types.Identity {
	return types.Identity(s)
}

// IdentityHolder is a swappable credential pair, updated when the
// identity store reloads after an external change.
type IdentityHolder struct {
	mu sync.Mutex
	id types.Identity
}

// NewIdentityHolder creates a holder seeded with the given identity.
func NewIdentityHolder(id types.Identity) *IdentityHolder {
	return &IdentityHolder{id: id}
}

func (h *IdentityHolder) Identity() types.Identity {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

// Set replaces the held identity.
func (h *IdentityHolder) Set(id types.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = id
}
