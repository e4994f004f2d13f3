package devserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/core"
	"github.com/agora-sh/agora/internal/types"
)

func newTestClient(t *testing.T, srv *httptest.Server, id types.Identity) *api.Client {
	t.Helper()
	client, err := api.NewClient(srv.URL, core.StaticIdentity(id))
	require.NoError(t, err)
	return client
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(NewStore(), nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestChatRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	ctx := context.Background()

	sent, err := client.CreateMessage(ctx, "general", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ada", sent.Author)
	assert.Equal(t, "general", sent.ChannelID)
	assert.NotZero(t, sent.ID)

	_, err = client.CreateMessage(ctx, "general", "second")
	require.NoError(t, err)

	page, err := client.ListMessages(ctx, "general", 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.False(t, page.HasMore)

	// Cursor pull returns only what arrived after the first message.
	page, err = client.ListMessages(ctx, "general", sent.ID, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "second", page.Messages[0].Body)

	require.NoError(t, client.DeleteMessage(ctx, sent.ID))
	page, err = client.ListMessages(ctx, "general", 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
}

func TestDeleteRequiresAuthor(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	grace := newTestClient(t, srv, types.Identity{Name: "grace", Password: "pw2"})
	ctx := context.Background()

	msg, err := ada.CreateMessage(ctx, "general", "mine")
	require.NoError(t, err)

	err = grace.DeleteMessage(ctx, msg.ID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Forbidden", apiErr.Code)
}

func TestVoteToggleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	grace := newTestClient(t, srv, types.Identity{Name: "grace", Password: "pw2"})
	ctx := context.Background()

	post, err := ada.CreatePost(ctx, api.CreatePostRequest{Title: "hello board"})
	require.NoError(t, err)

	res, err := grace.ToggleVote(ctx, post.ID, types.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, types.VoteUp, res.UserVote)

	// Same direction again cancels.
	res, err = grace.ToggleVote(ctx, post.ID, types.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, types.VoteNone, res.UserVote)

	// Opposite direction switches in one call.
	_, err = grace.ToggleVote(ctx, post.ID, types.VoteUp)
	require.NoError(t, err)
	res, err = grace.ToggleVote(ctx, post.ID, types.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
	assert.Equal(t, types.VoteDown, res.UserVote)
}

func TestListingsCarryViewerState(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	ctx := context.Background()

	post, err := ada.CreatePost(ctx, api.CreatePostRequest{Title: "viewer state"})
	require.NoError(t, err)
	_, err = ada.ToggleVote(ctx, post.ID, types.VoteUp)
	require.NoError(t, err)
	_, err = ada.ToggleReaction(ctx, post.ID, "👍")
	require.NoError(t, err)

	page, err := ada.ListPosts(ctx, 1, 20, types.SortLatest)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, types.VoteUp, page.Posts[0].UserVote)
	require.Len(t, page.Posts[0].Reactions, 1)
	assert.True(t, page.Posts[0].Reactions[0].Reacted)
}

func TestReactionToggleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	ctx := context.Background()

	post, err := ada.CreatePost(ctx, api.CreatePostRequest{Title: "react here"})
	require.NoError(t, err)

	reactions, err := ada.ToggleReaction(ctx, post.ID, "🎉")
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, "🎉", reactions[0].Emoji)
	assert.Equal(t, 1, reactions[0].Count)

	reactions, err = ada.ToggleReaction(ctx, post.ID, "🎉")
	require.NoError(t, err)
	assert.Empty(t, reactions)
}

func TestReportConflict(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	ctx := context.Background()

	post, err := ada.CreatePost(ctx, api.CreatePostRequest{Title: "reportable"})
	require.NoError(t, err)

	count, err := ada.ReportPost(ctx, post.ID, "spam")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = ada.ReportPost(ctx, post.ID, "still spam")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "AlreadyReported", apiErr.Code)
}

func TestIdentityRejectedWithWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	imposter := newTestClient(t, srv, types.Identity{Name: "ada", Password: "other"})
	ctx := context.Background()

	_, err := ada.CreateMessage(ctx, "general", "claiming the name")
	require.NoError(t, err)

	_, err = imposter.CreateMessage(ctx, "general", "hostile takeover")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "AuthFailed", apiErr.Code)
}

func TestAnonymousReadsAllowed(t *testing.T) {
	srv := newTestServer(t)
	ada := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})
	anon, err := api.NewClient(srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ada.CreatePost(ctx, api.CreatePostRequest{Title: "public"})
	require.NoError(t, err)

	page, err := anon.ListPosts(ctx, 1, 20, types.SortLatest)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, types.VoteNone, page.Posts[0].UserVote)

	_, err = anon.CreatePost(ctx, api.CreatePostRequest{Title: "anonymous"})
	require.Error(t, err)
}

func TestSeedProducesPageableFeed(t *testing.T) {
	store := NewStore()
	Seed(store)
	srv := httptest.NewServer(New(store, nil).Router())
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := client.ListPosts(ctx, 1, 5, types.SortLatest)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 5)
	assert.True(t, page.HasMore)

	msgs, err := client.ListMessages(ctx, "general", 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, msgs.Messages)
}

func TestErrorEnvelopeShape(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv, types.Identity{Name: "ada", Password: "pw"})

	_, err := client.GetPost(context.Background(), 42)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NotFound", apiErr.Code)
	assert.NotEmpty(t, apiErr.Message)
}
