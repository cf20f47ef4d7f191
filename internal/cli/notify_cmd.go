// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/stygian-tui/internal/notify"
)

func (a *app) newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Desktop notification tools",
	}
	cmd.AddCommand(a.newNotifyTestCmd())
	return cmd
}

func (a *app) newNotifyTestCmd() *cobra.Command {
	var (
		hidden  bool
		delay   time.Duration
		methods []string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "test [BODY]",
		Short: "Deliver a test notification",
		Long: `Deliver a test notification through the notification gate.

With --hidden (the default) the chat is treated as unfocused, so the
notification is shown and resolves when focus "returns" after --delay.
With --hidden=false nothing is shown and the delivery resolves at once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := "This is a test notification."
			if len(args) == 1 {
				body = args[0]
			}

			var parsed []notify.Method
			for _, s := range methods {
				m, err := notify.ParseMethod(s)
				if err != nil {
					return err
				}
				parsed = append(parsed, m)
			}

			out := cmd.OutOrStdout()
			vis := notify.NewVisibility(!hidden)
			gate := a.newGate(vis, out, parsed)
			defer gate.Close()

			ctx := cmd.Context()
			gate.RequestPermission(ctx)

			start := time.Now()
			p := gate.Deliver(ctx, notify.Request{Title: title, Body: body})
			if !p.Resolved() {
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("shown, focus returns in %s", delay)))
				timer := time.AfterFunc(delay, func() { vis.Set(true) })
				defer timer.Stop()
			}

			n, err := p.Wait(ctx)
			if err != nil {
				return err
			}
			if n == nil {
				fmt.Fprintln(out, warningStyle.Render("no notification shown (visible, disabled or no method available)"))
				return nil
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("notification %s via %s seen after %s",
				n.ID, n.Method, time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&hidden, "hidden", true, "treat the chat as unfocused")
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "time until focus returns")
	cmd.Flags().StringSliceVar(&methods, "method", nil, "notification methods to try (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "notification title (default localized)")
	return cmd
}
