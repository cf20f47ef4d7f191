// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

// Buffer is an in-memory Field. The plain line-mode chat uses it as the
// draft holder between prompts.
type Buffer struct {
	value     string
	focused   bool
	observers map[int]KeyObserver
	nextID    int
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{observers: make(map[int]KeyObserver)}
}

func (b *Buffer) Value() string         { return b.value }
func (b *Buffer) SetValue(value string) { b.value = value }
func (b *Buffer) Focus()                { b.focused = true }

// Focused reports whether Focus was called.
func (b *Buffer) Focused() bool { return b.focused }

// OnKey subscribes obs.
func (b *Buffer) OnKey(obs KeyObserver) func() {
	id := b.nextID
	b.nextID++
	b.observers[id] = obs
	return func() { delete(b.observers, id) }
}

// Observers returns the number of subscribed observers.
func (b *Buffer) Observers() int { return len(b.observers) }

// Press delivers key to the observers. When no observer prevents it and the
// key is Enter, the default is to append a newline to the draft.
func (b *Buffer) Press(key string) *KeyEvent {
	ev := NewKeyEvent(key)
	for _, obs := range b.observers {
		obs(ev)
	}
	if !ev.DefaultPrevented() && key == KeyEnter {
		b.value += "\n"
	}
	return ev
}
