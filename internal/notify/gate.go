// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// =============================================================================
// PENDING
// =============================================================================

// Pending is the single-shot result of Deliver. It resolves exactly once:
// immediately when no notification was needed, or on the first visible
// report after the notification was shown. It never fails.
type Pending struct {
	done         chan struct{}
	once         sync.Once
	notification *Notification
	release      func() bool
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolvedPending(n *Notification) *Pending {
	p := newPending()
	p.resolve(n)
	return p
}

func (p *Pending) resolve(n *Notification) {
	p.once.Do(func() {
		p.notification = n
		if p.release != nil {
			p.release()
		}
		close(p.done)
	})
}

// Done is closed when the pending delivery resolves.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Resolved reports whether Done is closed.
func (p *Pending) Resolved() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Notification returns the shown notification, or nil for a no-op outcome
// or while still pending.
func (p *Pending) Notification() *Notification {
	if !p.Resolved() {
		return nil
	}
	return p.notification
}

// Wait blocks until resolution or until ctx ends. The error is only ever
// the caller's ctx error.
func (p *Pending) Wait(ctx context.Context) (*Notification, error) {
	select {
	case <-p.done:
		return p.notification, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// =============================================================================
// GATE
// =============================================================================

// GateOptions configures a Gate.
type GateOptions struct {
	// DefaultTitle is used when a request has no title.
	DefaultTitle string
	// Icon is passed to the capability with every notification.
	Icon string
	// MaxBodyWidth truncates bodies to this many cells; 0 disables it.
	MaxBodyWidth int
	Logger       *zap.Logger
}

// Gate shows notifications only while the chat is not visible, and lets the
// caller learn when the user came back to look.
type Gate struct {
	capability Capability
	visibility VisibilitySource
	opts       GateOptions
	logger     *zap.Logger

	mu          sync.Mutex
	pending     []*Pending
	unsubscribe func()
	closed      bool
}

// NewGate creates a gate and subscribes it to visibility for its lifetime.
// A nil capability behaves as Unsupported.
func NewGate(capability Capability, visibility VisibilitySource, opts GateOptions) *Gate {
	if capability == nil {
		capability = Unsupported{}
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultTitle("en")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		capability: capability,
		visibility: visibility,
		opts:       opts,
		logger:     logger.Named("notify"),
	}
	if visibility != nil {
		g.unsubscribe = visibility.Subscribe(g.onVisibility)
	}
	return g
}

// RequestPermission asks the capability for permission and logs the outcome.
func (g *Gate) RequestPermission(ctx context.Context) {
	if !g.capability.Supported() {
		g.logger.Info("notifications unsupported")
		return
	}
	perm, err := g.capability.RequestPermission(ctx)
	if err != nil && !errors.Is(err, ErrUnsupported) {
		g.logger.Warn("permission request failed", zap.Error(err))
	}
	if perm == PermissionGranted {
		g.logger.Info("permission granted")
	} else {
		g.logger.Info("permission denied")
	}
}

// Deliver shows a notification if the chat is hidden. The returned Pending
// resolves immediately when visible or when notifications are unavailable;
// otherwise it resolves with the notification on the next visible report.
// Canceling ctx while pending makes the gate forget the Pending, which then
// stays unresolved.
func (g *Gate) Deliver(ctx context.Context, req Request) *Pending {
	if g.visibility == nil || g.visibility.Visible() || !g.capability.Supported() {
		return resolvedPending(nil)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = g.opts.DefaultTitle
	}
	body := g.cleanBody(req.Body)

	n, err := g.capability.Show(ctx, title, body, g.opts.Icon)
	if err != nil {
		g.logger.Warn("notification not shown", zap.Error(err))
		return resolvedPending(nil)
	}
	g.logger.Debug("notification shown",
		zap.String("id", n.ID),
		zap.String("method", string(n.Method)))

	p := newPending()
	p.notification = n
	if ctx.Err() != nil {
		return p
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return p
	}
	if ctx.Done() != nil {
		p.release = context.AfterFunc(ctx, func() { g.forget(p) })
	}
	g.pending = append(g.pending, p)
	g.mu.Unlock()

	// Visibility may have flipped while the notification was being shown.
	if g.visibility.Visible() {
		g.flush()
	}
	return p
}

// PendingCount returns how many deliveries await a visible report.
func (g *Gate) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Close unsubscribes from visibility. Tracked deliveries are released and
// never resolve.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
	for _, p := range g.pending {
		if p.release != nil {
			p.release()
		}
	}
	g.pending = nil
}

func (g *Gate) onVisibility(visible bool) {
	if visible {
		g.flush()
	}
}

// flush resolves every tracked delivery in the order it was made.
func (g *Gate) flush() {
	g.mu.Lock()
	batch := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, p := range batch {
		p.resolve(p.notification)
	}
	if len(batch) > 0 {
		g.logger.Debug("pending notifications resolved", zap.Int("count", len(batch)))
	}
}

func (g *Gate) forget(p *Pending) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, q := range g.pending {
		if q == p {
			g.pending = append(g.pending[:i], g.pending[i+1:]...)
			return
		}
	}
}

func (g *Gate) cleanBody(body string) string {
	body = strings.TrimSpace(ansi.Strip(body))
	if g.opts.MaxBodyWidth > 0 {
		body = runewidth.Truncate(body, g.opts.MaxBodyWidth, "…")
	}
	return body
}
