package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agora-sh/agora/internal/api"
	engine "github.com/agora-sh/agora/internal/sync"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	if m.dialog.Stage() != engine.ReportClosed {
		return m.centered(m.renderReportDialog())
	}
	if m.composeOpen {
		return m.centered(m.renderCompose())
	}
	if m.pickerOpen {
		return m.centered(m.renderPicker())
	}
	if m.detailOpen {
		return m.centered(m.renderDetail())
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	if m.screen == screenChat {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderFeed())
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	return b.String()
}

// renderTabs draws the screen switcher plus per-channel unread badges.
func (m *Model) renderTabs() string {
	var parts []string
	chat := "chat"
	feed := "feed"
	if m.screen == screenChat {
		chat = titleStyle.Render(chat)
		feed = dimStyle.Render(feed)
	} else {
		chat = dimStyle.Render(chat)
		feed = titleStyle.Render(feed)
	}
	parts = append(parts, chat, feed, dimStyle.Render("|"))

	for i, ch := range m.channels {
		label := "#" + ch
		if i == m.channelIndex {
			label = titleStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		parts = append(parts, label)
		if n := m.unread.Count(ch); n > 0 {
			parts = append(parts, badgeStyle.Render(fmt.Sprintf("%d", n)))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderStatus() string {
	if m.status != "" {
		if m.statusIsErr {
			return statusStyle.Render(errorStyle.Render(m.status))
		}
		return statusStyle.Render(m.status)
	}
	if m.screen == screenChat {
		return statusStyle.Render(dimStyle.Render(
			"enter send · shift+tab channel · ctrl+d delete · tab feed · ctrl+c quit",
		))
	}
	sortLabel := string(m.feed.Sort())
	return statusStyle.Render(dimStyle.Render(
		"j/k move · u/d vote · e react · x report · n post · s sort (" + sortLabel + ") · tab chat",
	))
}

// apiMessage extracts the server's human-readable message, if any.
func apiMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
