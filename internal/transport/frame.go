// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport connects stygian to a chat room server over a websocket.
//
// Frames are JSON objects, one per websocket text message. The client
// reconnects with a rate limit after the socket drops and exposes incoming
// frames and connection status as channels for the UI to consume.
package transport

import (
	"time"
)

// Frame types.
const (
	FrameMessage  = "message"
	FrameJoin     = "join"
	FramePresence = "presence"
	FrameSystem   = "system"
)

// Frame is a single chat protocol message.
type Frame struct {
	Type   string    `json:"type"`
	ID     string    `json:"id,omitempty"`
	Room   string    `json:"room"`
	Author string    `json:"author,omitempty"`
	Body   string    `json:"body,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Status is the connection state of a Client.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}
