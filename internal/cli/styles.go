// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/stygian-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// Shared styles for line-oriented output.
var (
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.Crimson)
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(styles.Violet)
	dimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
)
