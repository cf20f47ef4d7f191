// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/config"
	"github.com/jeranaias/stygian-tui/internal/notify"
	"github.com/jeranaias/stygian-tui/internal/storage"
	"github.com/jeranaias/stygian-tui/internal/transport"
	"github.com/jeranaias/stygian-tui/internal/ui/chat"
	"github.com/jeranaias/stygian-tui/internal/ui/styles"
)

// newClient builds the chat server client from the config.
func (a *app) newClient() *transport.Client {
	return transport.NewClient(transport.Options{
		URL:                a.cfg.Server.URL,
		Room:               a.cfg.Server.Room,
		Author:             a.cfg.Server.Author,
		ReconnectPerMinute: a.cfg.Server.ReconnectPerMinute,
		Logger:             a.logger,
	})
}

// newGate builds the notification gate over the configured desktop sinks.
func (a *app) newGate(vis notify.VisibilitySource, out io.Writer, methods []notify.Method) *notify.Gate {
	if len(methods) == 0 {
		methods = a.cfg.NotifyMethods()
	}
	desktop := notify.NewDesktop(notify.DesktopOptions{
		Enabled: a.cfg.Notify.Enabled,
		Methods: methods,
		Sinks:   notify.DefaultSinks(out),
	})
	return notify.NewGate(desktop, vis, notify.GateOptions{
		DefaultTitle: notify.DefaultTitle(a.cfg.Notify.Locale),
		Icon:         a.cfg.Notify.Icon,
		MaxBodyWidth: a.cfg.Notify.MaxBodyWidth,
		Logger:       a.logger,
	})
}

// newForm returns the submission form with its logging handler.
func (a *app) newForm() *compose.Form {
	form := compose.NewForm()
	logger := a.logger.Named("submit")
	form.Handle(func(ev *compose.SubmitEvent) error {
		logger.Info("submitting draft",
			zap.String("id", ev.ID),
			zap.String("reason", string(ev.Reason)),
			zap.Int("length", compose.Length(ev.Draft)))
		return nil
	})
	return form
}

// sendAndRecord returns the form's default action: send over the socket,
// then record the message in history when one is open.
func (a *app) sendAndRecord(ctx context.Context, s transport.Sender, hist *storage.History) compose.SubmitHandler {
	send := transport.SubmitHandler(s, a.cfg.Server.Room, a.cfg.Server.Author)
	return func(ev *compose.SubmitEvent) error {
		if err := send(ev); err != nil {
			return err
		}
		if hist == nil {
			return nil
		}
		if err := hist.Record(ctx, storage.Entry{
			ID:     ev.ID,
			Room:   a.cfg.Server.Room,
			Author: a.cfg.Server.Author,
			Body:   ev.Draft,
			Reason: string(ev.Reason),
			SentAt: ev.Created,
		}); err != nil {
			a.logger.Warn("history not recorded", zap.Error(err))
		}
		return nil
	}
}

// runTUI runs the full-screen chat. The program, the socket and the config
// watcher share one errgroup; leaving the program stops the rest.
func (a *app) runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hist, err := a.openHistory()
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		hist = nil
	} else {
		defer hist.Close()
	}

	client := a.newClient()
	vis := notify.NewVisibility(true)
	gate := a.newGate(vis, os.Stdout, nil)
	defer gate.Close()

	model := chat.New(chat.Options{
		Theme:      styles.NewTheme(a.cfg.UI.Theme),
		Room:       a.cfg.Server.Room,
		Author:     a.cfg.Server.Author,
		Classifier: a.classifier(),
		Form:       a.newForm(),
		Send:       a.sendAndRecord(ctx, client, hist),
		Visibility: vis,
		Gate:       gate,
		Incoming:   client.Incoming(),
		Status:     client.Status(),
		Context:    ctx,
		Logger:     a.logger,
	})

	prog := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.Run(gctx)
	})

	g.Go(func() error {
		path, err := a.resolvedConfigPath()
		if err != nil {
			return nil
		}
		err = config.Watch(gctx, path, 0, func(cfg *config.Config, err error) {
			if err != nil {
				a.logger.Warn("config reload failed", zap.Error(err))
				prog.Send(chat.ConfigErrorMsg{Err: err})
				return
			}
			a.logger.Info("config reloaded", zap.String("path", path))
			prog.Send(chat.ConfigReloadedMsg{Policy: cfg.ComposePolicy()})
		})
		if err != nil {
			// Hot reload is optional; the chat keeps its startup policy.
			a.logger.Warn("config watch disabled", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	return g.Wait()
}
