// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for stygian.
//
// The configuration is a single TOML file with defaults, environment
// variable overrides and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Chat room server connection
//   - ComposeConfig: Message length policy used by the compose controller
//   - NotifyConfig: Desktop notification methods and presentation
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (STYGIAN_*)
//   - ~/.stygian/config.toml (STYGIAN_HOME overrides the directory)
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	classifier := compose.NewClassifier(cfg.ComposePolicy())
//
// Follow edits while running:
//
//	go config.Watch(ctx, path, 0, func(cfg *config.Config, err error) {
//	    // apply cfg
//	})
package config
