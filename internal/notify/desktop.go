// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// =============================================================================
// METHODS & SINKS
// =============================================================================

// Method names one way of showing a notification.
type Method string

const (
	MethodAuto       Method = "auto"
	MethodDunstify   Method = "dunstify"
	MethodNotifySend Method = "notify-send"
	MethodTerminal   Method = "terminal"
	MethodBell       Method = "bell"
)

// autoOrder is tried in order for MethodAuto.
var autoOrder = []Method{MethodDunstify, MethodNotifySend, MethodTerminal, MethodBell}

// ParseMethod validates a configured method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodAuto, MethodDunstify, MethodNotifySend, MethodTerminal, MethodBell:
		return m, nil
	}
	return "", fmt.Errorf("unknown notification method: %q", s)
}

// Sink shows notifications through one method.
type Sink interface {
	Method() Method
	Available() bool
	Notify(ctx context.Context, title, body, icon string) error
}

// commandSink runs a desktop notification daemon's client binary.
type commandSink struct {
	method Method
	bin    string
	look   func(string) (string, error)
	run    func(ctx context.Context, name string, args ...string) error
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// NewCommandSink creates a sink for notify-send or dunstify.
func NewCommandSink(method Method) Sink {
	return &commandSink{
		method: method,
		bin:    string(method),
		look:   exec.LookPath,
		run:    runCommand,
	}
}

func (s *commandSink) Method() Method { return s.method }

func (s *commandSink) Available() bool {
	_, err := s.look(s.bin)
	return err == nil
}

func (s *commandSink) Notify(ctx context.Context, title, body, icon string) error {
	if _, err := s.look(s.bin); err != nil {
		return err
	}
	args := []string{}
	if icon != "" {
		args = append(args, "-i", icon)
	}
	args = append(args, title, body)
	return s.run(ctx, s.bin, args...)
}

// terminalSink emits an OSC 777 notification through the terminal emulator.
type terminalSink struct {
	out *termenv.Output
}

// NewTerminalSink creates a sink writing notification escapes to w.
func NewTerminalSink(w io.Writer) Sink {
	if w == nil {
		return &terminalSink{}
	}
	return &terminalSink{out: termenv.NewOutput(w)}
}

func (s *terminalSink) Method() Method  { return MethodTerminal }
func (s *terminalSink) Available() bool { return s.out != nil }

func (s *terminalSink) Notify(_ context.Context, title, body, _ string) error {
	if s.out == nil {
		return ErrNoSink
	}
	s.out.Notify(title, body)
	return nil
}

// bellSink rings the terminal bell; it carries no text.
type bellSink struct {
	w io.Writer
}

// NewBellSink creates a sink writing BEL to w.
func NewBellSink(w io.Writer) Sink {
	return &bellSink{w: w}
}

func (s *bellSink) Method() Method  { return MethodBell }
func (s *bellSink) Available() bool { return s.w != nil }

func (s *bellSink) Notify(context.Context, string, string, string) error {
	if s.w == nil {
		return ErrNoSink
	}
	_, err := fmt.Fprint(s.w, "\a")
	return err
}

// DefaultSinks returns the dunstify, notify-send, terminal and bell sinks.
// Terminal output goes to w.
func DefaultSinks(w io.Writer) []Sink {
	return []Sink{
		NewCommandSink(MethodDunstify),
		NewCommandSink(MethodNotifySend),
		NewTerminalSink(w),
		NewBellSink(w),
	}
}

// =============================================================================
// DESKTOP CAPABILITY
// =============================================================================

// DesktopOptions configures a Desktop capability.
type DesktopOptions struct {
	// Enabled is the user's consent; a disabled desktop denies permission.
	Enabled bool
	// Methods are tried in order; empty means auto.
	Methods []Method
	Sinks   []Sink
}

// Desktop is the Capability backed by local notification sinks.
type Desktop struct {
	enabled bool
	methods []Method
	sinks   map[Method]Sink

	mu         sync.Mutex
	permission Permission
}

// NewDesktop creates a desktop capability.
func NewDesktop(opts DesktopOptions) *Desktop {
	byMethod := make(map[Method]Sink, len(opts.Sinks))
	for _, sink := range opts.Sinks {
		if sink == nil {
			continue
		}
		byMethod[sink.Method()] = sink
	}
	methods := opts.Methods
	if len(methods) == 0 {
		methods = []Method{MethodAuto}
	}
	return &Desktop{
		enabled: opts.Enabled,
		methods: methods,
		sinks:   byMethod,
	}
}

// Supported reports whether any configured method has an available sink.
func (d *Desktop) Supported() bool {
	for _, m := range d.expand() {
		if sink, ok := d.sinks[m]; ok && sink.Available() {
			return true
		}
	}
	return false
}

// RequestPermission grants permission when notifications are enabled and
// some sink can show them. Terminals have no prompt to ask through.
func (d *Desktop) RequestPermission(context.Context) (Permission, error) {
	if !d.Supported() {
		d.setPermission(PermissionDenied)
		return PermissionDenied, ErrUnsupported
	}
	if !d.enabled {
		d.setPermission(PermissionDenied)
		return PermissionDenied, nil
	}
	d.setPermission(PermissionGranted)
	return PermissionGranted, nil
}

// Permission returns the last permission outcome.
func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

func (d *Desktop) setPermission(p Permission) {
	d.mu.Lock()
	d.permission = p
	d.mu.Unlock()
}

// Show tries each configured method until one succeeds.
func (d *Desktop) Show(ctx context.Context, title, body, icon string) (*Notification, error) {
	if !d.enabled {
		return nil, ErrPermissionDenied
	}
	var showErr error
	for _, m := range d.expand() {
		sink, ok := d.sinks[m]
		if !ok || !sink.Available() {
			continue
		}
		if err := sink.Notify(ctx, title, body, icon); err != nil {
			showErr = errors.Join(showErr, fmt.Errorf("%s: %w", m, err))
			continue
		}
		return &Notification{
			ID:      uuid.New().String(),
			Title:   title,
			Body:    body,
			Icon:    icon,
			Method:  m,
			Created: time.Now(),
		}, nil
	}
	if showErr != nil {
		return nil, showErr
	}
	return nil, ErrNoSink
}

// expand replaces auto with the fallback order, keeping the first
// occurrence of each method.
func (d *Desktop) expand() []Method {
	seen := make(map[Method]bool)
	var out []Method
	add := func(m Method) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range d.methods {
		if m == MethodAuto {
			for _, fallback := range autoOrder {
				add(fallback)
			}
			continue
		}
		add(m)
	}
	return out
}
