// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the stygian command line.
//
// Running stygian without arguments opens the full-screen chat when stdout
// is a terminal, and the line-mode chat otherwise.
//
// # Commands Overview
//
//   - chat: Line-mode chat (--plain) or the full-screen chat
//   - classify: Show how a draft would be treated on Enter
//   - notify test: Fire a notification through the configured methods
//   - history: List sent messages
//   - config: show, path, init, get, set
//   - version: Print the version
//
// Persistent flags: --config PATH, --verbose.
package cli
