// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/transport"
)

// View renders the chat screen.
// Layout: header (1 line) + transcript (viewport) + input box + status (1 line)
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m *Model) renderHeader() string {
	title := "Stygian"
	room := ""
	if m.opts.Room != "" {
		room = " #" + m.opts.Room
	}
	left := m.theme.Header.Render(title) + m.theme.HeaderRoom.Render(room)
	right := m.renderConn()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + m.theme.HeaderRoom.Render(strings.Repeat(" ", gap)) + right
}

func (m *Model) renderConn() string {
	switch m.conn {
	case transport.StatusConnected:
		return m.theme.StatusConnected.Render("● connected ")
	case transport.StatusConnecting:
		return m.theme.StatusConnecting.Render("◌ connecting ")
	default:
		return m.theme.StatusDisconnected.Render("○ offline ")
	}
}

// renderTranscript renders every line wrapped to the viewport width.
func (m *Model) renderTranscript() string {
	width := max(m.viewport.Width-2, 10)
	policy := m.controller.Classifier().Policy()
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(wrap.Render(m.renderLine(l, policy)))
	}
	return m.theme.Transcript.Render(b.String())
}

func (m *Model) renderLine(l Line, policy compose.Policy) string {
	ts := m.theme.Timestamp.Render(l.Time.Format("15:04"))

	if l.Type == transport.FrameSystem || l.Type == transport.FramePresence || l.Type == transport.FrameJoin {
		return ts + " " + m.theme.SystemLine.Render(l.Body)
	}

	name := m.theme.OtherName.Render(l.Author)
	if l.Own {
		name = m.theme.OwnName.Render(l.Author)
	}

	switch {
	case policy.OffPhrasePrefix != "" && strings.HasPrefix(l.Body, policy.OffPhrasePrefix):
		return ts + " " + m.theme.OffPhrase.Render(l.Author+" "+l.Body)
	case policy.AuthorPrefix != "" && strings.HasPrefix(l.Body, policy.AuthorPrefix):
		return ts + " " + m.theme.Narrator.Render(strings.TrimPrefix(l.Body, policy.AuthorPrefix))
	default:
		return ts + " " + name + " " + m.theme.Body.Render(l.Body)
	}
}

func (m *Model) renderInput() string {
	return m.theme.InputContainer.Render(m.input.View())
}

// renderStatusBar shows the draft length against the minimum, the reason a
// draft would be accepted, the unseen count and the latest notice.
func (m *Model) renderStatusBar() string {
	classifier := m.controller.Classifier()
	draft := m.field.Value()

	var parts []string

	count := fmt.Sprintf("%d/%d", compose.Length(draft), classifier.Policy().MinLength)
	switch reason := classifier.Reason(draft); reason {
	case compose.ReasonTooShort:
		if draft == "" {
			parts = append(parts, m.theme.CharCount.Render(count))
		} else {
			parts = append(parts, m.theme.CharCountShort.Render(fmt.Sprintf("%s (%d more)", count, classifier.Remaining(draft))))
		}
	case compose.ReasonOffPhrase:
		parts = append(parts, m.theme.CharCountReady.Render(count+" off phrase"))
	case compose.ReasonAuthor:
		parts = append(parts, m.theme.CharCountReady.Render(count+" narrator"))
	default:
		parts = append(parts, m.theme.CharCountReady.Render(count))
	}

	if m.unseen > 0 {
		parts = append(parts, m.theme.StatusNotice.Render(fmt.Sprintf("%d unseen", m.unseen)))
	}
	if m.notice != "" {
		style := m.theme.StatusNotice
		if m.noticeErr {
			style = m.theme.StatusError
		}
		parts = append(parts, style.Render(m.notice))
	}

	line := strings.Join(parts, " · ")
	if w := m.width - 2; w > 0 && lipgloss.Width(line) > w {
		// Styled segments carry escape codes; fall back to plain text when
		// the bar does not fit.
		line = runewidth.Truncate(m.plainStatus(draft), w, "…")
	}
	return m.theme.StatusBar.Width(max(m.width, 0)).Render(line)
}

func (m *Model) plainStatus(draft string) string {
	s := fmt.Sprintf("%d/%d", compose.Length(draft), m.controller.Classifier().Policy().MinLength)
	if m.unseen > 0 {
		s += fmt.Sprintf(" · %d unseen", m.unseen)
	}
	if m.notice != "" {
		s += " · " + m.notice
	}
	return s
}
