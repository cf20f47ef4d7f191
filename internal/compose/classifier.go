// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose provides the message composition policy for the chat input:
// deciding when a draft may be sent, and submitting it to the owning form.
package compose

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// DECISION
// =============================================================================

// Decision is the outcome of classifying a draft for one keystroke.
type Decision int

const (
	// AllowDefault leaves the keystroke to the field's normal handling.
	AllowDefault Decision = iota
	// SuppressDefault swallows the keystroke (Enter on a too-short draft).
	SuppressDefault
	// Submit sends the draft.
	Submit
)

// String returns the decision name used in logs and the CLI.
func (d Decision) String() string {
	switch d {
	case Submit:
		return "submit"
	case SuppressDefault:
		return "suppress-default"
	case AllowDefault:
		return "allow-default"
	default:
		return "unknown"
	}
}

// Reason names the rule that produced a decision.
type Reason string

const (
	ReasonOffPhrase Reason = "off_phrase"
	ReasonAuthor    Reason = "author"
	ReasonLength    Reason = "length"
	ReasonTooShort  Reason = "too_short"
)

// =============================================================================
// POLICY
// =============================================================================

// KeyEnter is the key name for the newline key, as reported by Bubble Tea.
const KeyEnter = "enter"

// Default policy values.
const (
	DefaultMinLength       = 150
	DefaultOffPhrasePrefix = "+ "
	DefaultAuthorPrefix    = "*** "
)

// Policy configures the classifier. The length gate has drifted between 150
// and 200 across releases, so it is configuration rather than a constant.
type Policy struct {
	// MinLength is the minimum draft length, in code points, for an ordinary
	// message to be sent.
	MinLength int
	// OffPhrasePrefix marks an out-of-character line; it bypasses the gate.
	OffPhrasePrefix string
	// AuthorPrefix marks a narrator/master line; it bypasses the gate.
	AuthorPrefix string
}

// DefaultPolicy returns the 150 / "+ " / "*** " policy.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:       DefaultMinLength,
		OffPhrasePrefix: DefaultOffPhrasePrefix,
		AuthorPrefix:    DefaultAuthorPrefix,
	}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier decides whether a draft is complete enough to submit.
// It is immutable and safe for concurrent use.
type Classifier struct {
	policy Policy
}

// NewClassifier creates a classifier. Zero or invalid policy fields fall
// back to their defaults individually.
func NewClassifier(p Policy) *Classifier {
	def := DefaultPolicy()
	if p.MinLength <= 0 {
		p.MinLength = def.MinLength
	}
	if p.OffPhrasePrefix == "" {
		p.OffPhrasePrefix = def.OffPhrasePrefix
	}
	if p.AuthorPrefix == "" {
		p.AuthorPrefix = def.AuthorPrefix
	}
	return &Classifier{policy: p}
}

// Policy returns the effective policy.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify returns the decision for draft when key is pressed.
//
// Precedence: off phrase, author phrase, length gate. A draft that passes
// none of them suppresses Enter and allows every other key.
func (c *Classifier) Classify(draft, key string) Decision {
	if c.Reason(draft) != ReasonTooShort {
		return Submit
	}
	if key == KeyEnter {
		return SuppressDefault
	}
	return AllowDefault
}

// Reason reports which rule the draft satisfies, or ReasonTooShort.
func (c *Classifier) Reason(draft string) Reason {
	switch {
	case strings.HasPrefix(draft, c.policy.OffPhrasePrefix):
		return ReasonOffPhrase
	case strings.HasPrefix(draft, c.policy.AuthorPrefix):
		return ReasonAuthor
	case Length(draft) >= c.policy.MinLength:
		return ReasonLength
	default:
		return ReasonTooShort
	}
}

// Remaining returns how many more code points draft needs to pass the
// length gate, or 0 if it already passes by any rule.
func (c *Classifier) Remaining(draft string) int {
	if c.Reason(draft) != ReasonTooShort {
		return 0
	}
	return c.policy.MinLength - Length(draft)
}

// Length is the draft length used by the gate: the number of code points.
func Length(draft string) int {
	return utf8.RuneCountInString(draft)
}
