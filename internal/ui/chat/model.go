// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/notify"
	"github.com/jeranaias/stygian-tui/internal/transport"
	"github.com/jeranaias/stygian-tui/internal/ui/styles"
)

// errNoTransport is reported when a draft is submitted without a sender.
var errNoTransport = errors.New("no chat server configured")

// =============================================================================
// OPTIONS
// =============================================================================

// Options holds the collaborators of the chat screen. Only Theme is required.
type Options struct {
	Theme  *styles.Theme
	Room   string
	Author string

	// Classifier governs Enter in the composition field.
	Classifier *compose.Classifier
	// Form receives submitted drafts. Extra handlers (history, logging) can
	// be registered on it; the screen installs its default action.
	Form *compose.Form
	// Send is the default action of the form, usually a transport adapter.
	Send compose.SubmitHandler

	Visibility *notify.Visibility
	Gate       *notify.Gate

	Incoming <-chan transport.Frame
	Status   <-chan transport.Status

	// Context bounds the goroutines started for notifications.
	Context context.Context
	Logger  *zap.Logger
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Line is one entry of the transcript.
type Line struct {
	Time   time.Time
	Type   string
	Author string
	Body   string
	Own    bool
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen. It is used by pointer
// because the composition controller holds on to its input field.
type Model struct {
	opts   Options
	ctx    context.Context
	theme  *styles.Theme
	logger *zap.Logger
	keyMap KeyMap

	// Dimensions
	width  int
	height int
	ready  bool

	// Components
	viewport   viewport.Model
	input      *textarea.Model
	field      *inputField
	form       *compose.Form
	controller *compose.Controller

	// Transcript
	lines []Line

	// Status
	conn      transport.Status
	focused   bool
	unseen    int
	notice    string
	noticeErr bool
}

// New creates the chat screen and attaches the composition controller.
func New(opts Options) *Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	form := opts.Form
	if form == nil {
		form = compose.NewForm()
	}

	ta := textarea.New()
	ta.Placeholder = "Write your action..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)

	m := &Model{
		opts:     opts,
		ctx:      ctx,
		theme:    opts.Theme,
		logger:   logger.Named("chat"),
		keyMap:   DefaultKeyMap(),
		viewport: viewport.New(0, 0),
		input:    &ta,
		form:     form,
		focused:  true,
	}
	m.field = newInputField(m.input)
	m.form.OnDefault(m.send)
	m.controller = compose.NewController(m.field, m.form, opts.Classifier, logger)
	m.controller.Attach()
	return m
}

// Init starts listening for frames and connection changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.waitForFrame(),
		m.waitForStatus(),
		m.requestPermission(),
	)
}

// Controller returns the composition controller.
func (m *Model) Controller() *compose.Controller {
	return m.controller
}

// Lines returns the transcript.
func (m *Model) Lines() []Line {
	return m.lines
}

// Draft returns the current contents of the composition field.
func (m *Model) Draft() string {
	return m.field.Value()
}

// send is the form's default action.
func (m *Model) send(ev *compose.SubmitEvent) error {
	if m.opts.Send == nil {
		m.setError(errNoTransport)
		return errNoTransport
	}
	if err := m.opts.Send(ev); err != nil {
		m.setError(fmt.Errorf("not sent: %w", err))
		return err
	}
	m.setNotice(fmt.Sprintf("sent (%s)", ev.Reason))
	return nil
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeErr = false
}

func (m *Model) setError(err error) {
	m.notice = err.Error()
	m.noticeErr = true
}

// appendLine adds to the transcript and keeps it pinned to the bottom.
func (m *Model) appendLine(l Line) {
	m.lines = append(m.lines, l)
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) waitForFrame() tea.Cmd {
	ch := m.opts.Incoming
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return FramesClosedMsg{}
		}
		return FrameMsg{Frame: f}
	}
}

func (m *Model) waitForStatus() tea.Cmd {
	ch := m.opts.Status
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return ConnStatusMsg{Status: s}
	}
}

func (m *Model) requestPermission() tea.Cmd {
	gate := m.opts.Gate
	if gate == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		gate.RequestPermission(ctx)
		return nil
	}
}

// deliver hands a frame to the notification gate and waits for the user to
// come back to the terminal.
func (m *Model) deliver(f transport.Frame) tea.Cmd {
	gate := m.opts.Gate
	if gate == nil {
		return nil
	}
	ctx := m.ctx
	req := notify.Request{Body: f.Body}
	if f.Author != "" {
		req.Body = f.Author + ": " + f.Body
	}
	return func() tea.Msg {
		n, err := gate.Deliver(ctx, req).Wait(ctx)
		if err != nil {
			return nil
		}
		return NotificationSeenMsg{Notification: n}
	}
}
