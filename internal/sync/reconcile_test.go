package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/types"
)

// fakeBackend implements server-side toggle semantics so reconciliation
// can be checked against authoritative responses: the same vote twice
// cancels, the opposite vote switches, reactions are a set per identity.
type fakeBackend struct {
	posts     map[int64]*types.Post
	votes     map[int64]types.VoteType // this identity's vote
	reacted   map[int64]map[string]bool
	failNext  error
	reportErr error
}

func newFakeBackend(posts ...types.Post) *fakeBackend {
	b := &fakeBackend{
		posts:   make(map[int64]*types.Post),
		votes:   make(map[int64]types.VoteType),
		reacted: make(map[int64]map[string]bool),
	}
	for i := range posts {
		p := posts[i]
		b.posts[p.ID] = &p
		b.votes[p.ID] = p.UserVote
	}
	return b
}

func (b *fakeBackend) ToggleVote(ctx context.Context, postID int64, vote types.VoteType) (api.VoteResult, error) {
	if b.failNext != nil {
		err := b.failNext
		b.failNext = nil
		return api.VoteResult{}, err
	}
	post := b.posts[postID]
	current := b.votes[postID]
	switch {
	case current == vote:
		// Same direction cancels.
		if vote == types.VoteUp {
			post.Upvotes--
		} else {
			post.Downvotes--
		}
		b.votes[postID] = types.VoteNone
	case current == types.VoteNone:
		if vote == types.VoteUp {
			post.Upvotes++
		} else {
			post.Downvotes++
		}
		b.votes[postID] = vote
	default:
		// Opposite direction switches.
		if vote == types.VoteUp {
			post.Upvotes++
			post.Downvotes--
		} else {
			post.Downvotes++
			post.Upvotes--
		}
		b.votes[postID] = vote
	}
	return api.VoteResult{Upvotes: post.Upvotes, Downvotes: post.Downvotes, UserVote: b.votes[postID]}, nil
}

func (b *fakeBackend) ToggleReaction(ctx context.Context, postID int64, emoji string) ([]types.Reaction, error) {
	if b.failNext != nil {
		err := b.failNext
		b.failNext = nil
		return nil, err
	}
	post := b.posts[postID]
	if b.reacted[postID] == nil {
		b.reacted[postID] = make(map[string]bool)
	}
	mine := b.reacted[postID]
	found := false
	out := make([]types.Reaction, 0, len(post.Reactions)+1)
	for _, reaction := range post.Reactions {
		if reaction.Emoji == emoji {
			found = true
			if mine[emoji] {
				reaction.Count--
				reaction.Reacted = false
				mine[emoji] = false
			} else {
				reaction.Count++
				reaction.Reacted = true
				mine[emoji] = true
			}
			if reaction.Count <= 0 {
				continue
			}
		}
		out = append(out, reaction)
	}
	if !found {
		mine[emoji] = true
		out = append(out, types.Reaction{Emoji: emoji, Count: 1, Reacted: true})
	}
	post.Reactions = out
	return append([]types.Reaction(nil), out...), nil
}

func (b *fakeBackend) ReportPost(ctx context.Context, postID int64, reason string) (int, error) {
	if b.reportErr != nil {
		return 0, b.reportErr
	}
	post := b.posts[postID]
	post.ReportCount++
	return post.ReportCount, nil
}

// memPosts is a minimal PostStore for reconciler tests.
type memPosts struct {
	posts map[int64]*types.Post
}

func newMemPosts(posts ...types.Post) *memPosts {
	m := &memPosts{posts: make(map[int64]*types.Post)}
	for i := range posts {
		p := posts[i]
		m.posts[p.ID] = &p
	}
	return m
}

func (m *memPosts) Post(id int64) (types.Post, bool) {
	p, ok := m.posts[id]
	if !ok {
		return types.Post{}, false
	}
	return *p, true
}

func (m *memPosts) UpdatePost(id int64, fn func(*types.Post)) bool {
	p, ok := m.posts[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}

func TestVoteSameDirectionTwiceCancels(t *testing.T) {
	seed := types.Post{ID: 1, Upvotes: 5, Downvotes: 2}
	backend := newFakeBackend(seed)
	local := newMemPosts(seed)
	rec := NewReconciler(backend, local)

	if err := rec.ToggleVote(context.Background(), 1, types.VoteUp); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	post, _ := local.Post(1)
	if post.Upvotes != 6 || post.UserVote != types.VoteUp {
		t.Fatalf("after first vote: up=%d vote=%q, want up=6 vote=up", post.Upvotes, post.UserVote)
	}

	if err := rec.ToggleVote(context.Background(), 1, types.VoteUp); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	post, _ = local.Post(1)
	if post.UserVote != types.VoteNone {
		t.Errorf("userVote = %q, want none (idempotent cancel)", post.UserVote)
	}
	if post.Upvotes != 5 || post.Downvotes != 2 {
		t.Errorf("tallies = (%d,%d), want (5,2): cancel semantics, not double-increment", post.Upvotes, post.Downvotes)
	}
}

func TestVoteOppositeDirectionSwitches(t *testing.T) {
	seed := types.Post{ID: 1, Upvotes: 5, Downvotes: 2, UserVote: types.VoteUp}
	backend := newFakeBackend(seed)
	local := newMemPosts(seed)
	rec := NewReconciler(backend, local)

	if err := rec.ToggleVote(context.Background(), 1, types.VoteDown); err != nil {
		t.Fatalf("ToggleVote: %v", err)
	}
	post, _ := local.Post(1)
	if post.Upvotes != 4 || post.Downvotes != 3 || post.UserVote != types.VoteDown {
		t.Errorf("post = up=%d down=%d vote=%q, want 4/3/down", post.Upvotes, post.Downvotes, post.UserVote)
	}
}

func TestVoteFailureRollsBackOptimisticFlip(t *testing.T) {
	seed := types.Post{ID: 1, Upvotes: 5, Downvotes: 2, UserVote: types.VoteNone}
	backend := newFakeBackend(seed)
	backend.failNext = errors.New("network down")
	local := newMemPosts(seed)
	rec := NewReconciler(backend, local)

	if err := rec.ToggleVote(context.Background(), 1, types.VoteUp); err == nil {
		t.Fatal("expected error")
	}
	post, _ := local.Post(1)
	if post.UserVote != types.VoteNone {
		t.Errorf("userVote = %q, want none (rolled back)", post.UserVote)
	}
	if post.Upvotes != 5 || post.Downvotes != 2 {
		t.Errorf("tallies changed without server confirmation: (%d,%d)", post.Upvotes, post.Downvotes)
	}
}

func TestVoteUnknownPost(t *testing.T) {
	rec := NewReconciler(newFakeBackend(), newMemPosts())
	if err := rec.ToggleVote(context.Background(), 7, types.VoteUp); err != ErrUnknownPost {
		t.Fatalf("err = %v, want ErrUnknownPost", err)
	}
}

func TestReactionToggleIsSetReplace(t *testing.T) {
	seed := types.Post{ID: 1, Reactions: []types.Reaction{{Emoji: "👍", Count: 3, Reacted: false}}}
	backend := newFakeBackend(seed)
	local := newMemPosts(seed)
	rec := NewReconciler(backend, local)

	if err := rec.ToggleReaction(context.Background(), 1, "👍"); err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	post, _ := local.Post(1)
	if len(post.Reactions) != 1 {
		t.Fatalf("reactions = %d, want 1", len(post.Reactions))
	}
	got := post.Reactions[0]
	if got.Count != 4 || !got.Reacted {
		t.Errorf("reaction = %+v, want count=4 reacted=true (server's set, no client merge)", got)
	}

	// Toggle again: the identity's contribution is removed, count drops
	// by exactly one.
	if err := rec.ToggleReaction(context.Background(), 1, "👍"); err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	post, _ = local.Post(1)
	got = post.Reactions[0]
	if got.Count != 3 || got.Reacted {
		t.Errorf("reaction = %+v, want count=3 reacted=false", got)
	}
}

func TestReactionFailureIsNoop(t *testing.T) {
	seed := types.Post{ID: 1, Reactions: []types.Reaction{{Emoji: "👍", Count: 3}}}
	backend := newFakeBackend(seed)
	backend.failNext = errors.New("network down")
	local := newMemPosts(seed)
	rec := NewReconciler(backend, local)

	if err := rec.ToggleReaction(context.Background(), 1, "👍"); err == nil {
		t.Fatal("expected error")
	}
	post, _ := local.Post(1)
	if post.Reactions[0].Count != 3 || post.Reactions[0].Reacted {
		t.Errorf("reactions changed on failure: %+v", post.Reactions[0])
	}
}

func TestReportUpdatesCount(t *testing.T) {
	seed := types.Post{ID: 1, ReportCount: 4}
	backend := newFakeBackend(seed)
	local := newMemPosts(seed)
	rec := NewReconciler(backend, local)

	count, err := rec.Report(context.Background(), 1, "  spam  ")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
	post, _ := local.Post(1)
	if post.ReportCount != 5 {
		t.Errorf("local reportCount = %d, want 5", post.ReportCount)
	}
}

func TestReportEmptyReasonValidatedBeforeCall(t *testing.T) {
	seed := types.Post{ID: 1}
	backend := newFakeBackend(seed)
	backend.reportErr = errors.New("server should never see this")
	rec := NewReconciler(backend, newMemPosts(seed))

	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := rec.Report(context.Background(), 1, reason); err != ErrEmptyReason {
			t.Errorf("Report(%q) = %v, want ErrEmptyReason", reason, err)
		}
	}
}
