// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SUBMIT EVENT
// =============================================================================

// SubmitEvent signals that the user wants the current draft sent now.
// It travels from the field to the enclosing form, handler by handler.
type SubmitEvent struct {
	ID      string
	Draft   string
	Reason  Reason
	Created time.Time

	// Bubbles is always true for controller-built events; the form relays
	// them through every registered handler.
	Bubbles bool
	// Cancelable events may be stopped by a handler with PreventDefault.
	Cancelable bool

	canceled bool
}

// NewSubmitEvent creates a bubbling, cancelable submit event for draft.
func NewSubmitEvent(draft string, reason Reason) *SubmitEvent {
	return &SubmitEvent{
		ID:         uuid.New().String(),
		Draft:      draft,
		Reason:     reason,
		Created:    time.Now(),
		Bubbles:    true,
		Cancelable: true,
	}
}

// PreventDefault cancels the event if it is cancelable.
func (e *SubmitEvent) PreventDefault() {
	if e.Cancelable {
		e.canceled = true
	}
}

// DefaultPrevented reports whether a handler canceled the event.
func (e *SubmitEvent) DefaultPrevented() bool {
	return e.canceled
}

// =============================================================================
// FORM
// =============================================================================

// Submitter receives submit events. Dispatch must not block on network I/O.
type Submitter interface {
	Dispatch(ev *SubmitEvent) error
}

// SubmitHandler handles one submit event on its way up the form.
type SubmitHandler func(ev *SubmitEvent) error

// Form is the submission sink that owns a composition field. Handlers run
// in registration order; the default action runs last unless canceled.
type Form struct {
	mu        sync.RWMutex
	handlers  []SubmitHandler
	onDefault SubmitHandler
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{}
}

// Handle registers a handler and returns a function that removes it.
func (f *Form) Handle(h SubmitHandler) (remove func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, h)
	idx := len(f.handlers) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if idx < len(f.handlers) {
			f.handlers[idx] = nil
		}
	}
}

// OnDefault sets the action run after all handlers when no handler
// canceled the event.
func (f *Form) OnDefault(h SubmitHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDefault = h
}

// Dispatch relays ev through the handlers. Handler errors are joined; a
// panicking handler is reported as an error and does not stop the others.
func (f *Form) Dispatch(ev *SubmitEvent) error {
	if ev == nil {
		return errors.New("nil submit event")
	}
	f.mu.RLock()
	handlers := make([]SubmitHandler, len(f.handlers))
	copy(handlers, f.handlers)
	onDefault := f.onDefault
	f.mu.RUnlock()

	var errs error
	for _, h := range handlers {
		if h == nil {
			continue
		}
		if err := invoke(h, ev); err != nil {
			errs = errors.Join(errs, err)
		}
		if ev.DefaultPrevented() || !ev.Bubbles {
			return errs
		}
	}
	if onDefault != nil {
		if err := invoke(onDefault, ev); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func invoke(h SubmitHandler, ev *SubmitEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit handler panic: %v", r)
		}
	}()
	return h(ev)
}
