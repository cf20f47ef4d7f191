// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textarea"

	"github.com/jeranaias/stygian-tui/internal/compose"
)

// inputField exposes a textarea as a compose.Field.
type inputField struct {
	ta        *textarea.Model
	observers []fieldObserver
	nextID    int
}

type fieldObserver struct {
	id int
	fn compose.KeyObserver
}

func newInputField(ta *textarea.Model) *inputField {
	return &inputField{ta: ta}
}

func (f *inputField) Value() string { return f.ta.Value() }

func (f *inputField) SetValue(value string) {
	if value == "" {
		f.ta.Reset()
		return
	}
	f.ta.SetValue(value)
}

func (f *inputField) Focus() { f.ta.Focus() }

func (f *inputField) OnKey(obs compose.KeyObserver) func() {
	id := f.nextID
	f.nextID++
	f.observers = append(f.observers, fieldObserver{id: id, fn: obs})
	return func() {
		for i, o := range f.observers {
			if o.id == id {
				f.observers = append(f.observers[:i], f.observers[i+1:]...)
				return
			}
		}
	}
}

// dispatch offers ev to the observers in subscription order.
func (f *inputField) dispatch(ev *compose.KeyEvent) {
	for _, o := range append([]fieldObserver(nil), f.observers...) {
		o.fn(ev)
	}
}
