// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/transport"
)

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.FocusMsg:
		m.focused = true
		m.unseen = 0
		if m.opts.Visibility != nil {
			m.opts.Visibility.Set(true)
		}
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		if m.opts.Visibility != nil {
			m.opts.Visibility.Set(false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FrameMsg:
		return m.handleFrame(msg.Frame)

	case FramesClosedMsg:
		m.appendLine(Line{Time: time.Now(), Type: transport.FrameSystem, Body: "connection closed"})
		return m, nil

	case ConnStatusMsg:
		m.conn = msg.Status
		return m, m.waitForStatus()

	case NotificationSeenMsg:
		if msg.Notification != nil {
			m.logger.Debug("notification seen", zap.String("id", msg.Notification.ID))
		}
		return m, nil

	case ConfigReloadedMsg:
		m.controller.SetClassifier(compose.NewClassifier(msg.Policy))
		m.setNotice(fmt.Sprintf("config reloaded, minimum length %d", m.controller.Classifier().Policy().MinLength))
		m.refreshTranscript()
		return m, nil

	case ConfigErrorMsg:
		m.setError(fmt.Errorf("config not reloaded: %w", msg.Err))
		return m, nil
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.input.SetWidth(max(msg.Width-4, 10))

	// header + input box (borders included) + status bar
	chrome := 1 + lipgloss.Height(m.renderInput()) + 1
	m.viewport.Width = msg.Width
	m.viewport.Height = max(msg.Height-chrome, 1)

	// The transcript is pinned to the bottom as soon as it has a size.
	m.ready = true
	m.refreshTranscript()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.controller.Detach()
		return m, tea.Quit
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	ev := compose.NewKeyEvent(msg.String())
	m.field.dispatch(ev)
	if ev.DefaultPrevented() {
		return m, nil
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleFrame(f transport.Frame) (tea.Model, tea.Cmd) {
	if f.SentAt.IsZero() {
		f.SentAt = time.Now()
	}
	own := f.Author != "" && f.Author == m.opts.Author
	m.appendLine(Line{
		Time:   f.SentAt.Local(),
		Type:   f.Type,
		Author: f.Author,
		Body:   f.Body,
		Own:    own,
	})

	cmds := []tea.Cmd{m.waitForFrame()}
	if f.Type == transport.FrameMessage && !own {
		if !m.focused {
			m.unseen++
		}
		cmds = append(cmds, m.deliver(f))
	}
	return m, tea.Batch(cmds...)
}
