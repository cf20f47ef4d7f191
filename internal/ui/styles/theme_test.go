// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme("dark")
	require.NotNil(t, dark)
	assert.True(t, dark.IsDark)
	assert.True(t, lipgloss.HasDarkBackground())

	light := NewTheme("LIGHT")
	assert.False(t, light.IsDark)
	assert.False(t, lipgloss.HasDarkBackground())
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"OwnName", theme.OwnName},
		{"OtherName", theme.OtherName},
		{"Narrator", theme.Narrator},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"CharCountShort", theme.CharCountShort},
	}
	for _, s := range styles {
		t.Run(s.name, func(t *testing.T) {
			assert.Contains(t, s.style.Render("test"), "test")
		})
	}
}

func TestAdaptiveColorsDiffer(t *testing.T) {
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"Crimson": Crimson,
		"Violet":  Violet,
		"Gold":    Gold,
		"Emerald": Emerald,
		"Amber":   Amber,
		"Rose":    Rose,
	} {
		assert.NotEqual(t, c.Light, c.Dark, name)
	}
}
