// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	Header     lipgloss.Style
	HeaderRoom lipgloss.Style
	Transcript lipgloss.Style

	// Transcript lines
	Timestamp  lipgloss.Style
	OwnName    lipgloss.Style
	OtherName  lipgloss.Style
	Body       lipgloss.Style
	Narrator   lipgloss.Style
	OffPhrase  lipgloss.Style
	SystemLine lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	CharCount      lipgloss.Style
	CharCountReady lipgloss.Style
	CharCountShort lipgloss.Style

	// Status bar
	StatusBar          lipgloss.Style
	StatusConnected    lipgloss.Style
	StatusConnecting   lipgloss.Style
	StatusDisconnected lipgloss.Style
	StatusNotice       lipgloss.Style
	StatusError        lipgloss.Style
}

// NewTheme creates a theme for mode: "dark", "light" or "auto" (detect).
func NewTheme(mode string) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}

	switch strings.ToLower(mode) {
	case "dark":
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.IsDark = termenv.HasDarkBackground()
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Crimson).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderRoom = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Italic(true)

	t.Transcript = lipgloss.NewStyle().Padding(0, 1)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.OwnName = lipgloss.NewStyle().Bold(true).Foreground(Crimson)
	t.OtherName = lipgloss.NewStyle().Bold(true).Foreground(Violet)
	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Narrator = lipgloss.NewStyle().Italic(true).Foreground(Gold)
	t.OffPhrase = lipgloss.NewStyle().Faint(true).Foreground(TextMuted)
	t.SystemLine = lipgloss.NewStyle().Italic(true).Foreground(TextSecondary)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CharCount = lipgloss.NewStyle().Foreground(TextMuted)
	t.CharCountReady = lipgloss.NewStyle().Foreground(Emerald)
	t.CharCountShort = lipgloss.NewStyle().Foreground(Amber)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusConnected = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusConnecting = lipgloss.NewStyle().Foreground(Amber)
	t.StatusDisconnected = lipgloss.NewStyle().Foreground(Rose)
	t.StatusNotice = lipgloss.NewStyle().Foreground(TextSecondary)
	t.StatusError = lipgloss.NewStyle().Bold(true).Foreground(Rose)
}
