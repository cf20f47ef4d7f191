// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/stygian-tui/internal/compose"
)

func (a *app) newClassifyCmd() *cobra.Command {
	var keyName string
	var minLength int
	cmd := &cobra.Command{
		Use:   "classify TEXT...",
		Short: "Show what pressing a key would do with a draft",
		Long: `Show what pressing a key would do with a draft.

Prints the decision (submit, suppress-default or allow-default), the reason
the draft would be accepted and its length against the minimum.

Example:
  stygian classify "+ brb"
  stygian classify --min-length 20 "She turns to the window."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := a.cfg.ComposePolicy()
			if minLength > 0 {
				policy.MinLength = minLength
			}
			c := compose.NewClassifier(policy)
			draft := strings.Join(args, " ")

			decision := c.Classify(draft, keyName)
			reason := c.Reason(draft)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "decision: %s\n", decision)
			fmt.Fprintf(out, "reason:   %s\n", reason)
			fmt.Fprintf(out, "length:   %d/%d", compose.Length(draft), c.Policy().MinLength)
			if reason == compose.ReasonTooShort {
				fmt.Fprintf(out, " (%d more)", c.Remaining(draft))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyName, "key", compose.KeyEnter, "key pressed on the draft")
	cmd.Flags().IntVar(&minLength, "min-length", 0, "override compose.min_length")
	return cmd
}
