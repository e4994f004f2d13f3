package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	engine "github.com/agora-sh/agora/internal/sync"
	"github.com/agora-sh/agora/internal/types"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		m.refreshChat(false)
		return m, m.tickCmd()

	case channelLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, engine.ErrBusy) {
			m.setError("Could not load #" + msg.channel)
		}
		m.refreshChat(true)
		return m, nil

	case feedLoadedMsg:
		m.feedLoading = false
		if msg.err != nil && !errors.Is(msg.err, engine.ErrBusy) {
			m.setError("Could not load the feed. Scroll to retry.")
		}
		m.clampFeedIndex()
		return m, nil

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Could not send message."))
		} else {
			m.clearStatus()
		}
		m.refreshChat(true)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Could not delete message."))
		}
		m.refreshChat(true)
		return m, nil

	case voteDoneMsg:
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Vote failed."))
		}
		return m, nil

	case reactionDoneMsg:
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Reaction failed."))
		}
		return m, nil

	case reportDoneMsg:
		if msg.err == nil && m.dialog.Stage() == engine.ReportClosed {
			m.setStatus("Report submitted.")
			m.reasonInput.SetValue("")
			m.reasonInput.Blur()
		}
		return m, nil

	case postDetailMsg:
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Could not open post."))
			return m, nil
		}
		m.detailOpen = true
		m.detailPost = msg.post
		// The server counted the view; mirror the fresh fields locally.
		m.feed.UpdatePost(msg.post.ID, func(p *types.Post) {
			p.ViewCount = msg.post.ViewCount
			p.CommentCount = msg.post.CommentCount
			p.Reactions = msg.post.Reactions
		})
		return m, nil

	case postCreatedMsg:
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Could not create post."))
			return m, nil
		}
		m.closeCompose()
		m.setStatus("Posted.")
		return m, m.refreshFeedCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.dialog.Stage() != engine.ReportClosed {
		return m.handleReportKey(msg)
	}
	if m.composeOpen {
		return m.handleComposeKey(msg)
	}
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}
	if m.detailOpen {
		switch msg.String() {
		case "esc", "enter", "q":
			m.detailOpen = false
		}
		return m, nil
	}
	if msg.String() == "tab" {
		m.toggleScreen()
		return m, nil
	}
	if m.screen == screenChat {
		return m.handleChatKey(msg)
	}
	return m.handleFeedKey(msg)
}

func (m *Model) toggleScreen() {
	if m.screen == screenChat {
		m.screen = screenFeed
		m.input.Blur()
		m.clampFeedIndex()
	} else {
		m.screen = screenChat
		m.input.Focus()
		m.refreshChat(true)
	}
	m.clearStatus()
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "shift+tab":
		return m, m.switchChannel(1)
	case "enter":
		body := strings.TrimSpace(m.input.Value())
		if body == "" || m.sending {
			return m, nil
		}
		m.sending = true
		m.input.Reset()
		cmd := m.sendCmd(m.channel(), body)
		m.refreshChat(true)
		return m, cmd
	case "ctrl+d":
		if id, ok := m.lastOwnMessageID(); ok {
			return m, m.deleteCmd(m.channel(), id)
		}
		m.setStatus("No message of yours to delete.")
		return m, nil
	case "pgup", "pgdown", "ctrl+u":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.resize()
	return m, cmd
}

func (m *Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	posts := m.feed.Posts()
	switch msg.String() {
	case "up", "k":
		if m.feedIndex > 0 {
			m.feedIndex--
		}
		return m, nil
	case "down", "j":
		if m.feedIndex < len(posts)-1 {
			m.feedIndex++
		}
		// Nearing the bottom acts as the scroll sentinel.
		if len(posts)-m.feedIndex <= 3 && m.feed.HasMore() && !m.feed.Loading() {
			m.feedLoading = true
			return m, m.loadNextFeedCmd()
		}
		return m, nil
	case "g":
		m.feedIndex = 0
		return m, nil
	case "s":
		next := types.SortPopular
		if m.feed.Sort() == types.SortPopular {
			next = types.SortLatest
		}
		m.feedIndex = 0
		m.feedLoading = true
		return m, m.setSortCmd(next)
	case "r":
		m.feedLoading = true
		return m, m.refreshFeedCmd()
	case "n":
		m.openCompose()
		return m, nil
	case "enter", "o":
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		if m.gate.Hidden(post) {
			m.gate.Reveal(post.ID)
			return m, nil
		}
		return m, m.openPostCmd(post.ID)
	case "u", "d":
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		if m.gate.Hidden(post) {
			m.setStatus("Reveal the post before interacting with it.")
			return m, nil
		}
		vote := types.VoteUp
		if msg.String() == "d" {
			vote = types.VoteDown
		}
		return m, m.voteCmd(post.ID, vote)
	case "e":
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		if m.gate.Hidden(post) {
			m.setStatus("Reveal the post before interacting with it.")
			return m, nil
		}
		m.pickerOpen = true
		m.pickerGroup = 0
		m.pickerIndex = 0
		return m, nil
	case "x":
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		if m.gate.Hidden(post) {
			m.setStatus("Reveal the post before interacting with it.")
			return m, nil
		}
		m.dialog.Open(post.ID)
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	groups := emojiGroups()
	switch msg.String() {
	case "esc":
		m.pickerOpen = false
		return m, nil
	case "up", "k":
		if m.pickerGroup > 0 {
			m.pickerGroup--
			m.pickerIndex = 0
		}
		return m, nil
	case "down", "j":
		if m.pickerGroup < len(groups)-1 {
			m.pickerGroup++
			m.pickerIndex = 0
		}
		return m, nil
	case "left", "h":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
		return m, nil
	case "right", "l":
		if m.pickerIndex < len(groups[m.pickerGroup].Emojis)-1 {
			m.pickerIndex++
		}
		return m, nil
	case "enter":
		m.pickerOpen = false
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		emoji := groups[m.pickerGroup].Emojis[m.pickerIndex]
		return m, m.reactCmd(post.ID, emoji)
	}
	return m, nil
}

// reportReasons are the preset choices in the dialog's first stage.
var reportReasons = []string{"Spam", "Harassment", "Off-topic", "Something else"}

func (m *Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.dialog.Stage() {
	case engine.ReportSelectingReason:
		switch msg.String() {
		case "esc":
			m.dialog.Cancel()
			return m, nil
		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			m.dialog.ChooseReason(reportReasons[idx])
			m.reasonInput.SetValue(m.dialog.Reason())
			m.reasonInput.CursorEnd()
			m.reasonInput.Focus()
			return m, nil
		case "c":
			m.dialog.ChooseReason("")
			m.reasonInput.SetValue("")
			m.reasonInput.Focus()
			return m, nil
		}
		return m, nil

	case engine.ReportCustomReason:
		switch msg.String() {
		case "esc":
			m.dialog.Cancel()
			m.reasonInput.SetValue("")
			m.reasonInput.Blur()
			return m, nil
		case "enter":
			m.dialog.SetReason(m.reasonInput.Value())
			return m, m.submitReportCmd()
		}
		var cmd tea.Cmd
		m.reasonInput, cmd = m.reasonInput.Update(msg)
		m.dialog.SetReason(m.reasonInput.Value())
		return m, cmd

	case engine.ReportSubmitting:
		// Mid-submit input is dropped; cancel is not allowed here.
		return m, nil
	}
	return m, nil
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeCompose()
		return m, nil
	case "tab":
		m.composeBody = !m.composeBody
		if m.composeBody {
			m.titleInput.Blur()
			return m, m.bodyInput.Focus()
		}
		m.bodyInput.Blur()
		return m, m.titleInput.Focus()
	case "ctrl+s":
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.setError("A title is required.")
			return m, nil
		}
		return m, m.createPostCmd(title, strings.TrimSpace(m.bodyInput.Value()))
	}
	var cmd tea.Cmd
	if m.composeBody {
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	} else {
		m.titleInput, cmd = m.titleInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) openCompose() {
	m.composeOpen = true
	m.composeBody = false
	m.titleInput.SetValue("")
	m.bodyInput.SetValue("")
	m.titleInput.Focus()
	m.bodyInput.Blur()
}

func (m *Model) closeCompose() {
	m.composeOpen = false
	m.titleInput.Blur()
	m.bodyInput.Blur()
}

func (m *Model) selectedPost() (types.Post, bool) {
	posts := m.feed.Posts()
	if m.feedIndex < 0 || m.feedIndex >= len(posts) {
		return types.Post{}, false
	}
	return posts[m.feedIndex], true
}

func (m *Model) clampFeedIndex() {
	n := len(m.feed.Posts())
	if n == 0 {
		m.feedIndex = 0
		return
	}
	if m.feedIndex >= n {
		m.feedIndex = n - 1
	}
}

func (m *Model) lastOwnMessageID() (int64, bool) {
	name := ""
	if m.identity != nil {
		name = m.identity.Identity().Name
	}
	if name == "" {
		return 0, false
	}
	msgs := m.store.Messages(m.channel())
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Author == name {
			return msgs[i].ID, true
		}
	}
	return 0, false
}

// userMessage prefers the server's human-readable message over a generic
// fallback.
func userMessage(err error, fallback string) string {
	msg := apiMessage(err)
	if msg != "" {
		return msg
	}
	return fallback
}
