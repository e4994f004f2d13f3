package sync

import (
	"context"
	"log"
	"strings"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/types"
)

// Mutator is the write side of the post API consumed by the reconciler.
type Mutator interface {
	ToggleVote(ctx context.Context, postID int64, vote types.VoteType) (api.VoteResult, error)
	ToggleReaction(ctx context.Context, postID int64, emoji string) ([]types.Reaction, error)
	ReportPost(ctx context.Context, postID int64, reason string) (int, error)
}

// PostStore is the slice of local state the reconciler mutates.
// *FeedPager satisfies it.
type PostStore interface {
	Post(id int64) (types.Post, bool)
	UpdatePost(id int64, fn func(*types.Post)) bool
}

// Reconciler applies optimistic local mutations and reconciles them with
// the server's authoritative response. The shared shape: apply locally,
// call the server, overwrite guessed fields from the response, roll the
// guess back on error.
type Reconciler struct {
	client Mutator
	posts  PostStore
	logger *log.Logger
}

// NewReconciler creates a reconciler over the given post store.
func NewReconciler(client Mutator, posts PostStore) *Reconciler {
	return &Reconciler{client: client, posts: posts}
}

// SetLogger installs an optional debug logger.
func (r *Reconciler) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// ToggleVote flips the user's vote optimistically, then installs the
// server's tallies. The numeric tallies are never guessed locally. On
// failure the optimistic flip is rolled back to the previous value.
//
// Server semantics are idempotent toggles: the same direction twice
// cancels, the opposite direction switches.
func (r *Reconciler) ToggleVote(ctx context.Context, postID int64, vote types.VoteType) error {
	post, ok := r.posts.Post(postID)
	if !ok {
		return ErrUnknownPost
	}
	previous := post.UserVote
	optimistic := vote
	if previous == vote {
		optimistic = types.VoteNone
	}
	r.posts.UpdatePost(postID, func(p *types.Post) {
		p.UserVote = optimistic
	})

	result, err := r.client.ToggleVote(ctx, postID, vote)
	if err != nil {
		r.posts.UpdatePost(postID, func(p *types.Post) {
			p.UserVote = previous
		})
		r.logf("vote %d: %v", postID, err)
		return err
	}
	r.posts.UpdatePost(postID, func(p *types.Post) {
		p.Upvotes = result.Upvotes
		p.Downvotes = result.Downvotes
		p.UserVote = result.UserVote
	})
	return nil
}

// ToggleReaction toggles the identity's contribution to one emoji. No
// optimistic flip is applied: on success the post's reaction set is
// replaced verbatim by the server response, on failure nothing changes.
func (r *Reconciler) ToggleReaction(ctx context.Context, postID int64, emoji string) error {
	if _, ok := r.posts.Post(postID); !ok {
		return ErrUnknownPost
	}
	reactions, err := r.client.ToggleReaction(ctx, postID, emoji)
	if err != nil {
		r.logf("reaction %d %s: %v", postID, emoji, err)
		return err
	}
	r.posts.UpdatePost(postID, func(p *types.Post) {
		p.Reactions = reactions
	})
	return nil
}

// Report submits a report. The reason must be non-empty after trimming;
// that is validated before any call is made. On success the post's
// report count is replaced by the server-reported value.
func (r *Reconciler) Report(ctx context.Context, postID int64, reason string) (int, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, ErrEmptyReason
	}
	if _, ok := r.posts.Post(postID); !ok {
		return 0, ErrUnknownPost
	}
	count, err := r.client.ReportPost(ctx, postID, reason)
	if err != nil {
		return 0, err
	}
	r.posts.UpdatePost(postID, func(p *types.Post) {
		p.ReportCount = count
	})
	return count, nil
}

func (r *Reconciler) logf(format string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
