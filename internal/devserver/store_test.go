package devserver

import (
	"errors"
	"testing"

	"github.com/agora-sh/agora/internal/types"
)

var (
	ada   = types.Identity{Name: "ada", Password: "pw-ada"}
	grace = types.Identity{Name: "grace", Password: "pw-grace"}
)

func TestVerifyRegistersAndRejects(t *testing.T) {
	s := NewStore()
	if _, err := s.AddMessage(ada, "general", "hi"); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if _, err := s.AddMessage(ada, "general", "again"); err != nil {
		t.Fatalf("same password: %v", err)
	}
	imposter := types.Identity{Name: "ada", Password: "other"}
	if _, err := s.AddMessage(imposter, "general", "nope"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("wrong password: got %v, want ErrNameTaken", err)
	}
	if _, err := s.AddMessage(types.Identity{}, "general", "anon"); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("missing identity: got %v, want ErrMissingIdentity", err)
	}
}

func TestMessagesAfterCursor(t *testing.T) {
	s := NewStore()
	var ids []int64
	for _, body := range []string{"one", "two", "three", "four"} {
		msg, err := s.AddMessage(ada, "general", body)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, msg.ID)
	}

	msgs, hasMore := s.MessagesAfter("general", ids[1], 0)
	if len(msgs) != 2 || hasMore {
		t.Fatalf("after %d: got %d messages hasMore=%v, want 2 false", ids[1], len(msgs), hasMore)
	}
	if msgs[0].Body != "three" || msgs[1].Body != "four" {
		t.Errorf("got %q %q, want three four", msgs[0].Body, msgs[1].Body)
	}

	msgs, hasMore = s.MessagesAfter("general", 0, 3)
	if len(msgs) != 3 || !hasMore {
		t.Errorf("limited: got %d hasMore=%v, want 3 true", len(msgs), hasMore)
	}

	msgs, hasMore = s.MessagesAfter("empty", 0, 0)
	if len(msgs) != 0 || hasMore {
		t.Errorf("unknown channel: got %d hasMore=%v", len(msgs), hasMore)
	}
}

func TestDeleteMessageAuthorOnly(t *testing.T) {
	s := NewStore()
	msg, err := s.AddMessage(ada, "general", "mine")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.DeleteMessage(grace, msg.ID); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("delete by other: got %v, want ErrWrongPassword", err)
	}
	if err := s.DeleteMessage(ada, msg.ID); err != nil {
		t.Fatalf("delete by author: %v", err)
	}
	if err := s.DeleteMessage(ada, msg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestToggleVoteIdempotent(t *testing.T) {
	s := NewStore()
	created, err := s.CreatePost(ada, "t", "b", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := s.ToggleVote(grace, created.ID, types.VoteUp)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if p.Upvotes != 1 || p.UserVote != types.VoteUp {
		t.Fatalf("after up: %d up, user %q", p.Upvotes, p.UserVote)
	}

	p, _ = s.ToggleVote(grace, created.ID, types.VoteUp)
	if p.Upvotes != 0 || p.UserVote != types.VoteNone {
		t.Fatalf("same direction should cancel: %d up, user %q", p.Upvotes, p.UserVote)
	}

	s.ToggleVote(grace, created.ID, types.VoteUp)
	p, _ = s.ToggleVote(grace, created.ID, types.VoteDown)
	if p.Upvotes != 0 || p.Downvotes != 1 || p.UserVote != types.VoteDown {
		t.Fatalf("switch: %d up %d down, user %q", p.Upvotes, p.Downvotes, p.UserVote)
	}

	if _, err := s.ToggleVote(grace, created.ID, "sideways"); !errors.Is(err, ErrBadVote) {
		t.Fatalf("bad vote type: got %v, want ErrBadVote", err)
	}
}

func TestToggleReactionFlips(t *testing.T) {
	s := NewStore()
	created, err := s.CreatePost(ada, "t", "b", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := s.ToggleReaction(grace, created.ID, "🔥")
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if len(p.Reactions) != 1 || p.Reactions[0].Count != 1 || !p.Reactions[0].Reacted {
		t.Fatalf("after on: %+v", p.Reactions)
	}

	p, _ = s.ToggleReaction(ada, created.ID, "🔥")
	if p.Reactions[0].Count != 2 {
		t.Fatalf("second identity: count %d, want 2", p.Reactions[0].Count)
	}

	p, _ = s.ToggleReaction(grace, created.ID, "🔥")
	if p.Reactions[0].Count != 1 || p.Reactions[0].Reacted {
		t.Fatalf("after off: %+v", p.Reactions[0])
	}

	p, _ = s.ToggleReaction(ada, created.ID, "🔥")
	if len(p.Reactions) != 0 {
		t.Fatalf("empty reaction should disappear: %+v", p.Reactions)
	}
}

func TestReportOncePerIdentity(t *testing.T) {
	s := NewStore()
	created, err := s.CreatePost(ada, "t", "b", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	n, err := s.Report(grace, created.ID, "spam")
	if err != nil || n != 1 {
		t.Fatalf("first report: n=%d err=%v", n, err)
	}
	if _, err := s.Report(grace, created.ID, "spam again"); !errors.Is(err, ErrAlreadyReported) {
		t.Fatalf("repeat report: got %v, want ErrAlreadyReported", err)
	}
	n, err = s.Report(ada, created.ID, "agreed")
	if err != nil || n != 2 {
		t.Fatalf("second identity: n=%d err=%v", n, err)
	}
}

func TestListPostsSortAndPaging(t *testing.T) {
	s := NewStore()
	var ids []int64
	for i := 0; i < 5; i++ {
		p, err := s.CreatePost(ada, "post", "b", nil)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, p.ID)
	}
	// Middle post gets the only upvote.
	if _, err := s.ToggleVote(grace, ids[2], types.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}

	latest, hasMore := s.ListPosts(1, 3, types.SortLatest, "")
	if len(latest) != 3 || !hasMore {
		t.Fatalf("page 1: got %d hasMore=%v", len(latest), hasMore)
	}
	if latest[0].ID != ids[4] {
		t.Errorf("latest first = %d, want %d", latest[0].ID, ids[4])
	}

	rest, hasMore := s.ListPosts(2, 3, types.SortLatest, "")
	if len(rest) != 2 || hasMore {
		t.Errorf("page 2: got %d hasMore=%v, want 2 false", len(rest), hasMore)
	}

	popular, _ := s.ListPosts(1, 3, types.SortPopular, "")
	if popular[0].ID != ids[2] {
		t.Errorf("popular first = %d, want voted post %d", popular[0].ID, ids[2])
	}

	none, hasMore := s.ListPosts(9, 3, types.SortLatest, "")
	if len(none) != 0 || hasMore {
		t.Errorf("past the end: got %d hasMore=%v", len(none), hasMore)
	}
}

func TestGetPostCountsViews(t *testing.T) {
	s := NewStore()
	created, err := s.CreatePost(ada, "t", "b", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.GetPost(created.ID, ""); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	p, err := s.GetPost(created.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.ViewCount != 4 {
		t.Errorf("views = %d, want 4", p.ViewCount)
	}
	if _, err := s.GetPost(9999, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing post: got %v, want ErrNotFound", err)
	}
}
