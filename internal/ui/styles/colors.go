// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Crimson - Brand color, header, own messages
var Crimson = lipgloss.AdaptiveColor{Light: "#9F1239", Dark: "#FB7185"}

// Violet - Other characters' names
var Violet = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#C4B5FD"}

// Gold - Narrator lines (author prefix)
var Gold = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Emerald - Connected state, sendable draft
var Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// Amber - Reconnecting state, short draft warning
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FCD34D"}

// Rose - Errors, disconnected state
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FDA4AF"}

// =============================================================================
// SURFACE & TEXT COLORS
// =============================================================================

// SurfaceDim - Header and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#18181B"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#3F3F46"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4E7"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#52525B", Dark: "#A1A1AA"}

// TextMuted - Timestamps, off-phrase lines, hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#71717A"}
