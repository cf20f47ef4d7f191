// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/notify"
	"github.com/jeranaias/stygian-tui/internal/transport"
)

// =============================================================================
// TRANSPORT MESSAGES
// =============================================================================

// FrameMsg delivers a frame received from the chat server.
type FrameMsg struct {
	Frame transport.Frame
}

// FramesClosedMsg signals that the incoming frame channel was closed.
type FramesClosedMsg struct{}

// ConnStatusMsg reports a connection state change.
type ConnStatusMsg struct {
	Status transport.Status
}

// =============================================================================
// NOTIFICATION MESSAGES
// =============================================================================

// NotificationSeenMsg is sent when a deferred notification resolves, i.e.
// the terminal regained focus after it was shown. Notification is nil when
// none was shown.
type NotificationSeenMsg struct {
	Notification *notify.Notification
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg carries a new compose policy after the config file changed.
type ConfigReloadedMsg struct {
	Policy compose.Policy
}

// ConfigErrorMsg reports a config reload that failed validation.
type ConfigErrorMsg struct {
	Err error
}
