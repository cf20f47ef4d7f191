// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/storage"
	"github.com/jeranaias/stygian-tui/internal/transport"
)

// historySeed is how many sent messages are loaded into the line editor.
const historySeed = 100

func (a *app) newChatCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join the configured room",
		Long: `Join the configured room.

With --plain (or when not attached to a terminal) the chat runs line by
line: a draft that is too short is offered again for editing instead of
being sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain || a.cfg.UI.Plain || !IsStdoutTTY() || !IsTTY() {
				return a.runPlain(cmd)
			}
			return a.runTUI(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-mode chat without the full-screen UI")
	return cmd
}

// =============================================================================
// LINE READER
// =============================================================================

// lineReader is the part of liner.State the plain chat uses.
type lineReader interface {
	PromptWithSuggestion(prompt, text string, pos int) (string, error)
	AppendHistory(item string)
	Close() error
}

// =============================================================================
// PLAIN CHAT
// =============================================================================

// PlainChat is the line-mode chat. Each line read is placed in a line
// buffer and Enter is pressed on it, so the same controller that guards
// the full-screen input decides whether the line is sent.
type PlainChat struct {
	reader     lineReader
	out        io.Writer
	outMu      sync.Mutex
	buffer     *compose.Buffer
	controller *compose.Controller
	author     string
	prompt     string
}

// NewPlainChat wires a controller over a line buffer.
func NewPlainChat(reader lineReader, out io.Writer, classifier *compose.Classifier, form *compose.Form, author string, logger *zap.Logger) *PlainChat {
	buffer := compose.NewBuffer()
	p := &PlainChat{
		reader:     reader,
		out:        out,
		buffer:     buffer,
		controller: compose.NewController(buffer, form, classifier, logger),
		author:     author,
		prompt:     "> ",
	}
	p.controller.Attach()
	return p
}

// Run reads lines until EOF, Ctrl+C or /quit.
func (p *PlainChat) Run() error {
	defer p.controller.Detach()

	draft := ""
	for {
		line, err := p.reader.PromptWithSuggestion(p.prompt, draft, -1)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				p.println("")
				return nil
			}
			return err
		}

		switch strings.TrimSpace(line) {
		case "":
			draft = ""
			continue
		case "/quit", "/exit":
			return nil
		}

		p.buffer.SetValue(line)
		p.buffer.Press(compose.KeyEnter)

		if p.buffer.Value() == "" {
			p.reader.AppendHistory(line)
			draft = ""
			continue
		}

		// Enter was suppressed; offer the draft again.
		draft = p.buffer.Value()
		remaining := p.controller.Classifier().Remaining(draft)
		p.println(warningStyle.Render(fmt.Sprintf("%d more characters needed", remaining)))
	}
}

// Print writes an incoming frame above the prompt.
func (p *PlainChat) Print(f transport.Frame) {
	ts := f.SentAt
	if ts.IsZero() {
		ts = time.Now()
	}
	switch f.Type {
	case transport.FrameMessage:
		p.println(dimStyle.Render(ts.Local().Format("15:04")) + " " + nameStyle.Render(f.Author) + " " + f.Body)
	default:
		p.println(dimStyle.Render(ts.Local().Format("15:04") + " " + f.Body))
	}
}

func (p *PlainChat) println(s string) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintln(p.out, s)
}

// runPlain runs the line-mode chat against the configured server.
func (a *app) runPlain(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()

	hist, err := a.openHistory()
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		hist = nil
	} else {
		defer hist.Close()
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()
	seedHistory(ctx, line, hist)

	client := a.newClient()
	form := a.newForm()
	form.OnDefault(a.reportingSend(out, a.sendAndRecord(ctx, client, hist)))

	chat := NewPlainChat(line, out, a.classifier(), form, a.cfg.Server.Author, a.logger)
	fmt.Fprintln(out, promptStyle.Render("stygian")+dimStyle.Render(fmt.Sprintf(" #%s  /quit to leave", a.cfg.Server.Room)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case f := <-client.Incoming():
				chat.Print(f)
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		return chat.Run()
	})
	return g.Wait()
}

// reportingSend prints the outcome of each send.
func (a *app) reportingSend(out io.Writer, send compose.SubmitHandler) compose.SubmitHandler {
	return func(ev *compose.SubmitEvent) error {
		if err := send(ev); err != nil {
			fmt.Fprintln(out, errorStyle.Render("not sent:"), err)
			return err
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("sent (%s)", ev.Reason)))
		return nil
	}
}

// seedHistory loads recent sent messages into the line editor history.
func seedHistory(ctx context.Context, r lineReader, hist *storage.History) {
	if hist == nil {
		return
	}
	recent, err := hist.Recent(ctx, historySeed)
	if err != nil {
		return
	}
	for _, e := range recent {
		r.AppendHistory(e.Body)
	}
}
