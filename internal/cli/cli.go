// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/config"
	"github.com/jeranaias/stygian-tui/internal/logging"
	"github.com/jeranaias/stygian-tui/internal/storage"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// app carries the state shared by every command.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "stygian",
		Short: "Terminal client for the Stygian role-play chat",
		Long: `stygian connects to a Stygian chat room from the terminal.

Enter sends a draft only when it is long enough, starts with the off-phrase
prefix "+ " or the narrator prefix "*** ". Shorter drafts stay in the input.
While the terminal is unfocused, new messages raise a desktop notification.

Run without arguments to open the chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.UI.Plain || !IsStdoutTTY() || !IsTTY() {
				return a.runPlain(cmd)
			}
			return a.runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.stygian/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.newChatCmd(),
		a.newClassifyCmd(),
		a.newNotifyCmd(),
		a.newHistoryCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// init loads the configuration and builds the logger.
func (a *app) init() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromPath(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	a.logger, err = logging.New(a.cfg.Log, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// resolvedConfigPath returns the file the config was or would be loaded from.
func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPath()
}

func (a *app) classifier() *compose.Classifier {
	return compose.NewClassifier(a.cfg.ComposePolicy())
}

// openHistory opens the sent-message history. Callers treat failure as
// "no history" rather than fatal.
func (a *app) openHistory() (*storage.History, error) {
	path, err := config.ResolvePath(a.cfg.Storage.HistoryPath, "history.db")
	if err != nil {
		return nil, err
	}
	return storage.OpenHistory(path, a.cfg.Storage.HistoryLimit)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// The version needs neither config nor logger.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stygian %s\n", Version)
		},
	}
}
