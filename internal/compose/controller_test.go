// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingForm captures dispatched events and the draft seen at dispatch time.
type recordingForm struct {
	field      Field
	events     []*SubmitEvent
	seenDrafts []string
	err        error
	cancel     bool
	panicWith  any
}

func (f *recordingForm) Dispatch(ev *SubmitEvent) error {
	f.events = append(f.events, ev)
	if f.field != nil {
		f.seenDrafts = append(f.seenDrafts, f.field.Value())
	}
	if f.cancel {
		ev.PreventDefault()
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.err
}

func newAttached(t *testing.T) (*Buffer, *recordingForm, *Controller) {
	t.Helper()
	field := NewBuffer()
	form := &recordingForm{field: field}
	c := NewController(field, form, nil, nil)
	c.Attach()
	return field, form, c
}

// =============================================================================
// ATTACH / DETACH
// =============================================================================

func TestController_AttachFocusesAndSubscribes(t *testing.T) {
	field, _, c := newAttached(t)
	assert.True(t, field.Focused())
	assert.Equal(t, 1, field.Observers())
	assert.True(t, c.Attached())

	c.Attach()
	assert.Equal(t, 1, field.Observers(), "second Attach must not subscribe again")
}

func TestController_DetachRemovesObserver(t *testing.T) {
	field, form, c := newAttached(t)
	c.Detach()
	assert.Equal(t, 0, field.Observers())
	assert.False(t, c.Attached())

	field.SetValue(strings.Repeat("a", 150))
	field.Press(KeyEnter)
	assert.Empty(t, form.events)

	c.Detach()
}

func TestController_MissingFieldIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := NewController(nil, &recordingForm{}, nil, zap.New(core))

	c.Attach()
	c.HandleKey(NewKeyEvent(KeyEnter))

	assert.False(t, c.Attached())
	assert.Equal(t, 1, logs.FilterMessage("chat input not found, controller not attached").Len())
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestController_ScenarioA_ShortDraftSuppressed(t *testing.T) {
	field, form, _ := newAttached(t)
	field.SetValue("hi")

	ev := field.Press(KeyEnter)

	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, "hi", field.Value())
	assert.Empty(t, form.events)
}

func TestController_ScenarioB_LongDraftSubmitted(t *testing.T) {
	field, form, _ := newAttached(t)
	draft := strings.Repeat("a", 150)
	field.SetValue(draft)

	field.Press(KeyEnter)

	require.Len(t, form.events, 1)
	ev := form.events[0]
	assert.Equal(t, draft, ev.Draft)
	assert.Equal(t, ReasonLength, ev.Reason)
	assert.True(t, ev.Bubbles)
	assert.True(t, ev.Cancelable)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "", field.Value())
}

func TestController_ScenarioC_OffPhrase(t *testing.T) {
	field, form, _ := newAttached(t)
	field.SetValue("+ bye")

	field.Press(KeyEnter)

	require.Len(t, form.events, 1)
	assert.Equal(t, ReasonOffPhrase, form.events[0].Reason)
	assert.Equal(t, "", field.Value())
}

func TestController_NonEnterKeysIgnored(t *testing.T) {
	field, form, _ := newAttached(t)
	field.SetValue(strings.Repeat("a", 300))

	ev := field.Press("x")

	assert.False(t, ev.DefaultPrevented())
	assert.Empty(t, form.events)
	assert.Len(t, field.Value(), 300)
}

// =============================================================================
// CLEAR-AFTER-DISPATCH
// =============================================================================

func TestController_ClearsAfterDispatch(t *testing.T) {
	field, form, _ := newAttached(t)
	field.SetValue("*** narrator")

	field.Press(KeyEnter)

	require.Len(t, form.seenDrafts, 1)
	assert.Equal(t, "*** narrator", form.seenDrafts[0], "form must see the draft before it is cleared")
	assert.Equal(t, "", field.Value())
}

func TestController_ClearsWhenFormCancels(t *testing.T) {
	field, form, _ := newAttached(t)
	form.cancel = true
	field.SetValue("+ ooc")

	field.Press(KeyEnter)

	require.Len(t, form.events, 1)
	assert.True(t, form.events[0].DefaultPrevented())
	assert.Equal(t, "", field.Value())
}

func TestController_ClearsWhenFormFails(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	field := NewBuffer()
	form := &recordingForm{err: errors.New("socket closed")}
	c := NewController(field, form, nil, zap.New(core))
	c.Attach()
	field.SetValue("+ ooc")

	field.Press(KeyEnter)

	assert.Equal(t, "", field.Value())
	assert.Equal(t, 1, logs.FilterMessage("submit dispatch failed").Len())
}

func TestController_ClearsWhenFormPanics(t *testing.T) {
	field, form, _ := newAttached(t)
	form.panicWith = "boom"
	field.SetValue("+ ooc")

	assert.Panics(t, func() { field.Press(KeyEnter) })
	assert.Equal(t, "", field.Value())
}

func TestController_SetClassifier(t *testing.T) {
	field, form, c := newAttached(t)
	c.SetClassifier(NewClassifier(Policy{MinLength: 5}))
	c.SetClassifier(nil)
	assert.Equal(t, 5, c.Classifier().Policy().MinLength)

	field.SetValue("hello")
	field.Press(KeyEnter)
	assert.Len(t, form.events, 1)
}

// =============================================================================
// FORM
// =============================================================================

func TestForm_HandlersRunInOrderThenDefault(t *testing.T) {
	form := NewForm()
	var order []string
	form.Handle(func(ev *SubmitEvent) error { order = append(order, "a"); return nil })
	form.Handle(func(ev *SubmitEvent) error { order = append(order, "b"); return nil })
	form.OnDefault(func(ev *SubmitEvent) error { order = append(order, "default"); return nil })

	require.NoError(t, form.Dispatch(NewSubmitEvent("x", ReasonLength)))
	assert.Equal(t, []string{"a", "b", "default"}, order)
}

func TestForm_CancelStopsPropagation(t *testing.T) {
	form := NewForm()
	var order []string
	form.Handle(func(ev *SubmitEvent) error { order = append(order, "a"); ev.PreventDefault(); return nil })
	form.Handle(func(ev *SubmitEvent) error { order = append(order, "b"); return nil })
	form.OnDefault(func(ev *SubmitEvent) error { order = append(order, "default"); return nil })

	ev := NewSubmitEvent("x", ReasonLength)
	require.NoError(t, form.Dispatch(ev))
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, []string{"a"}, order)
}

func TestForm_NonCancelableIgnoresPreventDefault(t *testing.T) {
	ev := NewSubmitEvent("x", ReasonLength)
	ev.Cancelable = false
	ev.PreventDefault()
	assert.False(t, ev.DefaultPrevented())
}

func TestForm_ErrorsJoinedAndPanicsRecovered(t *testing.T) {
	form := NewForm()
	form.Handle(func(ev *SubmitEvent) error { return errors.New("first") })
	form.Handle(func(ev *SubmitEvent) error { panic("second") })
	ran := false
	form.Handle(func(ev *SubmitEvent) error { ran = true; return nil })

	err := form.Dispatch(NewSubmitEvent("x", ReasonLength))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "submit handler panic: second")
	assert.True(t, ran)
}

func TestForm_RemoveHandler(t *testing.T) {
	form := NewForm()
	calls := 0
	remove := form.Handle(func(ev *SubmitEvent) error { calls++; return nil })
	remove()

	require.NoError(t, form.Dispatch(NewSubmitEvent("x", ReasonLength)))
	assert.Equal(t, 0, calls)
	assert.Error(t, form.Dispatch(nil))
}

func TestController_WithRealForm(t *testing.T) {
	field := NewBuffer()
	form := NewForm()
	var sent []string
	form.OnDefault(func(ev *SubmitEvent) error { sent = append(sent, ev.Draft); return nil })
	NewController(field, form, nil, nil).Attach()

	field.SetValue("hi")
	field.Press(KeyEnter)
	field.SetValue("+ hi")
	field.Press(KeyEnter)

	assert.Equal(t, []string{"+ hi"}, sent)
	assert.Equal(t, "", field.Value())
}
