package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/types"
)

// The poll loop runs in the engine's own goroutine; the UI only needs a
// redraw heartbeat to pick up whatever the loop appended.
const redrawInterval = time.Second

type tickMsg struct{}

type channelLoadedMsg struct {
	channel string
	err     error
}

type feedLoadedMsg struct {
	err error
}

type sentMsg struct {
	err error
}

type deletedMsg struct {
	err error
}

type voteDoneMsg struct {
	postID int64
	err    error
}

type reactionDoneMsg struct {
	postID int64
	err    error
}

type reportDoneMsg struct {
	err error
}

type postCreatedMsg struct {
	post types.Post
	err  error
}

type postDetailMsg struct {
	post types.Post
	err  error
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(redrawInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) loadChannelCmd(channel string) tea.Cmd {
	return func() tea.Msg {
		err := m.poller.LoadInitial(m.ctx, channel)
		return channelLoadedMsg{channel: channel, err: err}
	}
}

func (m *Model) loadFeedCmd(page int) tea.Cmd {
	sort := m.feed.Sort()
	return func() tea.Msg {
		return feedLoadedMsg{err: m.feed.Load(m.ctx, page, sort)}
	}
}

func (m *Model) loadNextFeedCmd() tea.Cmd {
	return func() tea.Msg {
		return feedLoadedMsg{err: m.feed.LoadNext(m.ctx)}
	}
}

func (m *Model) setSortCmd(sort types.SortMode) tea.Cmd {
	return func() tea.Msg {
		return feedLoadedMsg{err: m.feed.SetSort(m.ctx, sort)}
	}
}

func (m *Model) refreshFeedCmd() tea.Cmd {
	return func() tea.Msg {
		return feedLoadedMsg{err: m.feed.Refresh(m.ctx)}
	}
}

func (m *Model) sendCmd(channel, body string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.sender.Send(m.ctx, channel, body)
		return sentMsg{err: err}
	}
}

func (m *Model) deleteCmd(channel string, messageID int64) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{err: m.sender.Delete(m.ctx, channel, messageID)}
	}
}

func (m *Model) voteCmd(postID int64, vote types.VoteType) tea.Cmd {
	return func() tea.Msg {
		return voteDoneMsg{postID: postID, err: m.rec.ToggleVote(m.ctx, postID, vote)}
	}
}

func (m *Model) reactCmd(postID int64, emoji string) tea.Cmd {
	return func() tea.Msg {
		return reactionDoneMsg{postID: postID, err: m.rec.ToggleReaction(m.ctx, postID, emoji)}
	}
}

func (m *Model) submitReportCmd() tea.Cmd {
	return func() tea.Msg {
		return reportDoneMsg{err: m.dialog.Submit(m.ctx)}
	}
}

func (m *Model) openPostCmd(postID int64) tea.Cmd {
	return func() tea.Msg {
		post, err := m.client.GetPost(m.ctx, postID)
		return postDetailMsg{post: post, err: err}
	}
}

func (m *Model) createPostCmd(title, body string) tea.Cmd {
	return func() tea.Msg {
		post, err := m.client.CreatePost(m.ctx, api.CreatePostRequest{Title: title, Body: body})
		return postCreatedMsg{post: post, err: err}
	}
}
