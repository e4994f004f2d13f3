package sync

import (
	"testing"

	"github.com/agora-sh/agora/internal/types"
)

func TestModerationThreshold(t *testing.T) {
	tests := []struct {
		reports int
		hidden  bool
	}{
		{0, false},
		{9, false},
		{10, true},
		{11, true},
		{100, true},
	}

	for _, tt := range tests {
		gate := NewModerationGate()
		post := types.Post{ID: 1, ReportCount: tt.reports}
		if got := gate.Hidden(post); got != tt.hidden {
			t.Errorf("Hidden(reports=%d) = %v, want %v", tt.reports, got, tt.hidden)
		}
	}
}

func TestModerationRevealPersistsAcrossRefetch(t *testing.T) {
	gate := NewModerationGate()
	post := types.Post{ID: 1, ReportCount: 10}
	if !gate.Hidden(post) {
		t.Fatal("post should start hidden")
	}

	gate.Reveal(1)
	if gate.Hidden(post) {
		t.Error("post should be visible after reveal")
	}

	// Re-fetch bumps the count; the override persists for the session.
	post.ReportCount = 11
	if gate.Hidden(post) {
		t.Error("reveal must persist across re-fetch within the session")
	}
}

func TestModerationRevealIsPerPost(t *testing.T) {
	gate := NewModerationGate()
	gate.Reveal(1)
	other := types.Post{ID: 2, ReportCount: 12}
	if !gate.Hidden(other) {
		t.Error("reveal of one post must not leak to another")
	}
	if gate.Revealed(2) {
		t.Error("Revealed(2) = true, want false")
	}
}
