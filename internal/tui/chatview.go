package tui

import (
	"fmt"
	"strings"
	"time"
)

const inputMaxHeight = 4

// refreshChat rebuilds the viewport from the stream store. force also
// snaps to the bottom; otherwise the scroll position follows only when
// the user was already there.
func (m *Model) refreshChat(force bool) {
	content := m.renderMessages()
	if !force && content == m.lastChat {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.lastChat = content
	m.viewport.SetContent(content)
	if force || wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessages() string {
	channel := m.channel()
	msgs := m.store.Messages(channel)
	pending := m.store.Pending(channel)
	if len(msgs) == 0 && len(pending) == 0 {
		return dimStyle.Render("No messages yet in #" + channel + ".")
	}

	var b strings.Builder
	for _, msg := range msgs {
		ts := time.UnixMilli(msg.CreatedAt).Format("15:04")
		b.WriteString(dimStyle.Render(ts))
		b.WriteString(" ")
		b.WriteString(authorColor(msg.Author).Render(msg.Author))
		b.WriteString(" ")
		b.WriteString(msg.Body)
		b.WriteString("\n")
	}
	for _, p := range pending {
		b.WriteString(pendingStyle.Render(fmt.Sprintf("--:-- %s %s (sending)", p.Author, p.Body)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	inputWidth := m.width - 2
	if inputWidth < 1 {
		inputWidth = 1
	}
	m.input.SetWidth(inputWidth)
	lines := m.input.LineCount()
	if lines < 1 {
		lines = 1
	}
	if lines > inputMaxHeight {
		lines = inputMaxHeight
	}
	m.input.SetHeight(lines)

	statusHeight := 1
	tabsHeight := 1
	m.viewport.Width = m.width
	m.viewport.Height = m.height - m.input.Height() - statusHeight - tabsHeight - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.refreshChat(true)
}
