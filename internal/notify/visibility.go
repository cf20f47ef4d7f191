// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import "sync"

// VisibilitySource reports whether the chat surface is being looked at.
// Subscribers see every report, not only changes.
type VisibilitySource interface {
	Visible() bool
	Subscribe(fn func(visible bool)) (cancel func())
}

// Visibility is a VisibilitySource driven by the terminal's focus reports.
// It starts visible: a freshly started terminal program has focus.
type Visibility struct {
	mu      sync.RWMutex
	visible bool
	subs    map[int]func(bool)
	nextID  int
}

// NewVisibility creates a source in the given initial state.
func NewVisibility(visible bool) *Visibility {
	return &Visibility{visible: visible, subs: make(map[int]func(bool))}
}

// Visible returns the last reported state.
func (v *Visibility) Visible() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.visible
}

// Set records a visibility report and notifies subscribers outside the lock.
func (v *Visibility) Set(visible bool) {
	v.mu.Lock()
	v.visible = visible
	subs := make([]func(bool), 0, len(v.subs))
	for id := 0; id < v.nextID; id++ {
		if fn, ok := v.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(visible)
	}
}

// Subscribe registers fn for every future report.
func (v *Visibility) Subscribe(fn func(visible bool)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

// Subscribers returns the number of active subscriptions.
func (v *Visibility) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}
