// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify delivers desktop notifications for chat activity that
// arrives while the terminal is not focused, and reports back once the
// user returns.
package notify

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUnsupported      = errors.New("notifications are not supported")
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrNoSink           = errors.New("no notification sink available")
)

// =============================================================================
// TYPES
// =============================================================================

// Request asks for one notification. An empty Title uses the gate default.
type Request struct {
	Body  string
	Title string
}

// Notification is a notification that was shown to the user.
type Notification struct {
	ID      string
	Title   string
	Body    string
	Icon    string
	Method  Method
	Created time.Time
}

// Permission is the outcome of a permission request.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// Capability is the platform's notification facility.
type Capability interface {
	// Supported reports whether notifications can be shown at all.
	Supported() bool
	// RequestPermission asks for (or derives) permission to notify.
	RequestPermission(ctx context.Context) (Permission, error)
	// Show displays a notification now.
	Show(ctx context.Context, title, body, icon string) (*Notification, error)
}

// Unsupported is the capability of an environment without notifications.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, ErrUnsupported
}

func (Unsupported) Show(context.Context, string, string, string) (*Notification, error) {
	return nil, ErrUnsupported
}
