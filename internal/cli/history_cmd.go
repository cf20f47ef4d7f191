// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/stygian-tui/internal/storage"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit  int
		search string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List sent messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := a.openHistory()
			if err != nil {
				return err
			}
			defer hist.Close()

			var entries []storage.Entry
			if search != "" {
				entries, err = hist.Search(cmd.Context(), search, limit)
			} else {
				entries, err = hist.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no messages"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s #%s %s %s\n",
					dimStyle.Render(e.SentAt.Local().Format("2006-01-02 15:04")),
					e.Room,
					nameStyle.Render(e.Author+":"),
					e.Body)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of messages")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only messages containing this text")
	return cmd
}
