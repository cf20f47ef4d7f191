// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat screen of the stygian TUI.

The screen is a Bubble Tea model with a transcript viewport pinned to the
bottom, a multi-line composition field and a status bar.

# Key Components

## Model (model.go)

The Model wires the composition field to a compose.Controller. Every key
press is offered to the controller first as a compose.KeyEvent; only keys
whose default was not prevented reach the textarea, where Enter inserts a
newline. Drafts the controller accepts are dispatched to a compose.Form
whose default action sends them to the chat server.

## Update Loop (update.go)

  - Focus and blur reports drive a notify.Visibility
  - Incoming frames are appended to the transcript; while the terminal is
    unfocused they are also handed to the notification gate
  - Config reloads swap the classifier policy in place

## View Rendering (view.go)

Header with room and connection state, transcript, input box and a status
bar showing draft length against the minimum.
*/
package chat
