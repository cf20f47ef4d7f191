// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the stygian chat screen.

All colors use Lip Gloss AdaptiveColor so the palette follows the
terminal's light or dark background. The theme mode can be forced with
the [ui] theme config key.

# Colors (colors.go)

  - Crimson - Brand color and the user's own messages
  - Violet - Other characters
  - Gold - Narrator lines
  - Emerald / Amber / Rose - Connection state and draft length

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	line := theme.OwnName.Render(author) + " " + theme.Body.Render(body)
*/
package styles
