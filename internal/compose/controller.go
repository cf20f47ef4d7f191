// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"go.uber.org/zap"
)

// =============================================================================
// KEY EVENTS
// =============================================================================

// KeyEvent is one keystroke seen by a field's observers before the field
// applies its default handling.
type KeyEvent struct {
	Key string

	prevented bool
}

// NewKeyEvent creates a key event for the named key ("enter", "a", ...).
func NewKeyEvent(key string) *KeyEvent {
	return &KeyEvent{Key: key}
}

// PreventDefault stops the field from applying the key.
func (e *KeyEvent) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether an observer stopped the key.
func (e *KeyEvent) DefaultPrevented() bool {
	return e.prevented
}

// KeyObserver is notified of every keystroke on a field.
type KeyObserver func(ev *KeyEvent)

// Field is a message composition field holding the draft.
type Field interface {
	Value() string
	SetValue(value string)
	Focus()
	// OnKey subscribes an observer and returns its cancel function.
	OnKey(obs KeyObserver) (cancel func())
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the submission lifecycle of one field inside one form.
// A field must have at most one controller.
type Controller struct {
	field      Field
	form       Submitter
	classifier *Classifier
	logger     *zap.Logger

	cancel func()
}

// NewController binds field and form. A nil classifier uses DefaultPolicy;
// a nil logger discards output.
func NewController(field Field, form Submitter, classifier *Classifier, logger *zap.Logger) *Controller {
	if classifier == nil {
		classifier = NewClassifier(DefaultPolicy())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		field:      field,
		form:       form,
		classifier: classifier,
		logger:     logger.Named("compose"),
	}
}

// Attach subscribes to the field's keystrokes and focuses it.
// Calling Attach twice is a no-op.
func (c *Controller) Attach() {
	if c.field == nil {
		c.logger.Warn("chat input not found, controller not attached")
		return
	}
	if c.cancel != nil {
		return
	}
	c.cancel = c.field.OnKey(c.HandleKey)
	c.field.Focus()
}

// Detach removes the keystroke observer.
func (c *Controller) Detach() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
}

// Attached reports whether the observer is subscribed.
func (c *Controller) Attached() bool {
	return c.cancel != nil
}

// Classifier returns the active classifier.
func (c *Controller) Classifier() *Classifier {
	return c.classifier
}

// SetClassifier replaces the policy, e.g. after a config reload.
func (c *Controller) SetClassifier(classifier *Classifier) {
	if classifier != nil {
		c.classifier = classifier
	}
}

// HandleKey is the keystroke observer. Only Enter is acted upon.
func (c *Controller) HandleKey(ev *KeyEvent) {
	if ev == nil || ev.Key != KeyEnter || c.field == nil {
		return
	}
	draft := c.field.Value()

	switch c.classifier.Classify(draft, ev.Key) {
	case Submit:
		// The cleared field must not get the newline either.
		ev.PreventDefault()
		c.submit(draft)
	case SuppressDefault:
		ev.PreventDefault()
		c.logger.Debug("enter suppressed",
			zap.Int("length", Length(draft)),
			zap.Int("remaining", c.classifier.Remaining(draft)))
	case AllowDefault:
	}
}

// submit dispatches the draft and then clears the field whatever the form
// did with it; the round trip behind the form may stall.
func (c *Controller) submit(draft string) {
	ev := NewSubmitEvent(draft, c.classifier.Reason(draft))
	defer c.field.SetValue("")

	if c.form == nil {
		c.logger.Warn("chat input has no form, draft dropped", zap.String("event_id", ev.ID))
		return
	}
	if err := c.form.Dispatch(ev); err != nil {
		c.logger.Warn("submit dispatch failed", zap.String("event_id", ev.ID), zap.Error(err))
		return
	}
	c.logger.Debug("draft submitted",
		zap.String("event_id", ev.ID),
		zap.String("reason", string(ev.Reason)),
		zap.Bool("canceled", ev.DefaultPrevented()))
}
