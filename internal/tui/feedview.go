package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agora-sh/agora/internal/core"
	engine "github.com/agora-sh/agora/internal/sync"
	"github.com/agora-sh/agora/internal/types"
)

func emojiGroups() []core.EmojiGroup {
	return core.EmojiGroups
}

func (m *Model) renderFeed() string {
	posts := m.feed.Posts()
	if len(posts) == 0 {
		if m.feedLoading || m.feed.Loading() {
			return dimStyle.Render("Loading the board...")
		}
		return dimStyle.Render("The board is empty. Press n to post something.")
	}

	var b strings.Builder
	for i, post := range posts {
		line := m.renderPostRow(post, i == m.feedIndex)
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.feed.Loading() || m.feedLoading {
		b.WriteString(dimStyle.Render("Loading more..."))
	} else if !m.feed.HasMore() {
		b.WriteString(dimStyle.Render("End of the board."))
	}
	return b.String()
}

func (m *Model) renderPostRow(post types.Post, selected bool) string {
	if m.gate.Hidden(post) {
		row := hiddenStyle.Render(fmt.Sprintf(
			"[hidden] Reported by the community (%d reports). Press enter to view anyway.",
			post.ReportCount,
		))
		if selected {
			return selectedStyle.Render("> ") + row
		}
		return "  " + row
	}

	score := fmt.Sprintf("%+d", post.Score())
	voteMark := " "
	switch post.UserVote {
	case types.VoteUp:
		voteMark = "▲"
	case types.VoteDown:
		voteMark = "▼"
	}
	head := fmt.Sprintf("%s %4s  %s", voteMark, score, titleStyle.Render(post.Title))
	meta := dimStyle.Render(fmt.Sprintf("  by %s · %d views · %d comments", post.Author, post.ViewCount, post.CommentCount))
	row := head + meta
	if reactions := renderReactions(post.Reactions); reactions != "" {
		row += "\n      " + reactions
	}
	if selected {
		return selectedStyle.Render("> ") + row
	}
	return "  " + row
}

func renderReactions(reactions []types.Reaction) string {
	if len(reactions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(reactions))
	for _, r := range reactions {
		chip := fmt.Sprintf("%s %d", r.Emoji, r.Count)
		if r.Reacted {
			chip = reactedStyle.Render(chip)
		} else {
			chip = dimStyle.Render(chip)
		}
		parts = append(parts, chip)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderPicker() string {
	groups := emojiGroups()
	var b strings.Builder
	b.WriteString(titleStyle.Render("React"))
	b.WriteString("\n\n")
	for gi, group := range groups {
		name := group.Name
		if gi == m.pickerGroup {
			name = titleStyle.Render(name)
		} else {
			name = dimStyle.Render(name)
		}
		b.WriteString(name)
		b.WriteString("  ")
		for ei, emoji := range group.Emojis {
			if gi == m.pickerGroup && ei == m.pickerIndex {
				b.WriteString(selectedStyle.Render(emoji))
			} else {
				b.WriteString(emoji)
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("arrows move · enter react · esc close"))
	return dialogStyle.Render(b.String())
}

func (m *Model) renderReportDialog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Report post"))
	b.WriteString("\n\n")
	switch m.dialog.Stage() {
	case engine.ReportSelectingReason:
		for i, reason := range reportReasons {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, reason))
		}
		b.WriteString("c. Custom reason\n\n")
		b.WriteString(dimStyle.Render("pick a number · esc cancel"))
	case engine.ReportCustomReason:
		if errMsg := m.dialog.Err(); errMsg != "" {
			b.WriteString(errorStyle.Render(errMsg))
			b.WriteString("\n\n")
		}
		b.WriteString(m.reasonInput.View())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter submit · esc cancel"))
	case engine.ReportSubmitting:
		b.WriteString(dimStyle.Render("Submitting..."))
	}
	return dialogStyle.Render(b.String())
}

func (m *Model) renderDetail() string {
	post := m.detailPost
	var b strings.Builder
	b.WriteString(titleStyle.Render(post.Title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"by %s · %+d · %d views · %d comments",
		post.Author, post.Score(), post.ViewCount, post.CommentCount,
	)))
	b.WriteString("\n\n")
	if post.Body != "" {
		b.WriteString(post.Body)
		b.WriteString("\n\n")
	}
	if reactions := renderReactions(post.Reactions); reactions != "" {
		b.WriteString(reactions)
		b.WriteString("\n\n")
	}
	b.WriteString(dimStyle.Render("esc close"))
	return dialogStyle.Render(b.String())
}

func (m *Model) renderCompose() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New post"))
	b.WriteString("\n\n")
	b.WriteString(m.titleInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.bodyInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("tab switch field · ctrl+s post · esc cancel"))
	return dialogStyle.Render(b.String())
}

func (m *Model) centered(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
