// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/notify"
	"github.com/jeranaias/stygian-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete stygian configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Compose ComposeConfig `toml:"compose"`
	Notify  NotifyConfig  `toml:"notify"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig contains the chat server connection settings.
type ServerConfig struct {
	// URL is the websocket endpoint of the chat room server (ws:// or wss://)
	URL string `toml:"url"`
	// Room is the chat room to join
	Room string `toml:"room"`
	// Author is the character name messages are sent as
	Author string `toml:"author"`
	// ReconnectPerMinute caps reconnect attempts after the socket drops
	ReconnectPerMinute int `toml:"reconnect_per_minute"`
}

// ComposeConfig contains the message composition policy.
type ComposeConfig struct {
	// MinLength is the minimum length, in characters, of a sendable message.
	// Historically 150 or 200.
	MinLength int `toml:"min_length"`
	// OffPhrasePrefix marks an out-of-character line that skips the length gate
	OffPhrasePrefix string `toml:"off_phrase_prefix"`
	// AuthorPrefix marks a narrator line that skips the length gate
	AuthorPrefix string `toml:"author_prefix"`
}

// NotifyConfig contains desktop notification settings.
type NotifyConfig struct {
	// Enabled allows notifications while the terminal is unfocused
	Enabled bool `toml:"enabled"`
	// Methods are tried in order: auto, dunstify, notify-send, terminal, bell
	Methods []string `toml:"methods"`
	// Icon is the icon path handed to the notification daemon
	Icon string `toml:"icon"`
	// Locale selects the default notification title language ("en", "it")
	Locale string `toml:"locale"`
	// MaxBodyWidth truncates notification bodies (cells, 0 = unlimited)
	MaxBodyWidth int `toml:"max_body_width"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Plain forces the line-mode chat even on a terminal
	Plain bool `toml:"plain"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// Path is the log file (empty = ~/.stygian/stygian.log)
	Path string `toml:"path"`
}

// StorageConfig contains local history settings.
type StorageConfig struct {
	// HistoryPath is the SQLite database of sent messages (empty = ~/.stygian/history.db)
	HistoryPath string `toml:"history_path"`
	// HistoryLimit is the number of sent messages kept
	HistoryLimit int `toml:"history_limit"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:                "ws://127.0.0.1:4000/chat/websocket",
			Room:               "lobby",
			Author:             "",
			ReconnectPerMinute: 6,
		},
		Compose: ComposeConfig{
			MinLength:       compose.DefaultMinLength,
			OffPhrasePrefix: compose.DefaultOffPhrasePrefix,
			AuthorPrefix:    compose.DefaultAuthorPrefix,
		},
		Notify: NotifyConfig{
			Enabled:      true,
			Methods:      []string{string(notify.MethodAuto)},
			Icon:         "favicon.ico",
			Locale:       "en",
			MaxBodyWidth: 120,
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			HistoryLimit: 500,
		},
	}
}

// ComposePolicy returns the classifier policy described by the config.
func (c *Config) ComposePolicy() compose.Policy {
	return compose.Policy{
		MinLength:       c.Compose.MinLength,
		OffPhrasePrefix: c.Compose.OffPhrasePrefix,
		AuthorPrefix:    c.Compose.AuthorPrefix,
	}
}

// NotifyMethods returns the parsed notification methods. Validate rejects
// unknown names, so errors are skipped here.
func (c *Config) NotifyMethods() []notify.Method {
	var methods []notify.Method
	for _, s := range c.Notify.Methods {
		if m, err := notify.ParseMethod(s); err == nil {
			methods = append(methods, m)
		}
	}
	return methods
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the stygian configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("STYGIAN_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".stygian"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// ResolvePath expands an empty path to name inside the config directory.
func ResolvePath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when it does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg and fills missing values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Server.URL == "" {
		cfg.Server.URL = defaults.Server.URL
	}
	if cfg.Server.Room == "" {
		cfg.Server.Room = defaults.Server.Room
	}
	if cfg.Server.ReconnectPerMinute == 0 {
		cfg.Server.ReconnectPerMinute = defaults.Server.ReconnectPerMinute
	}

	if cfg.Compose.MinLength == 0 {
		cfg.Compose.MinLength = defaults.Compose.MinLength
	}
	if cfg.Compose.OffPhrasePrefix == "" {
		cfg.Compose.OffPhrasePrefix = defaults.Compose.OffPhrasePrefix
	}
	if cfg.Compose.AuthorPrefix == "" {
		cfg.Compose.AuthorPrefix = defaults.Compose.AuthorPrefix
	}

	if len(cfg.Notify.Methods) == 0 {
		cfg.Notify.Methods = defaults.Notify.Methods
	}
	if cfg.Notify.Locale == "" {
		cfg.Notify.Locale = defaults.Notify.Locale
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Storage.HistoryLimit == 0 {
		cfg.Storage.HistoryLimit = defaults.Storage.HistoryLimit
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with 0600 permissions, atomically.
func SaveTOML(cfg *Config, path string) error {
	return util.AtomicWrite(path, 0o600, func(w io.Writer) error {
		fmt.Fprintln(w, "# stygian configuration file")
		fmt.Fprintln(w, "# Generated by stygian - edit with care")
		fmt.Fprintln(w, "")
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	})
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server
	if u, err := url.Parse(c.Server.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid websocket URL '%s', must be ws:// or wss://", c.Server.URL),
		})
	}
	if strings.TrimSpace(c.Server.Room) == "" {
		errs = append(errs, ValidationError{Field: "server.room", Message: "must not be empty"})
	}
	if c.Server.ReconnectPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "server.reconnect_per_minute", Message: "must not be negative"})
	}

	// Compose
	if c.Compose.MinLength <= 0 {
		errs = append(errs, ValidationError{
			Field:   "compose.min_length",
			Message: fmt.Sprintf("must be positive, got %d", c.Compose.MinLength),
		})
	}
	if c.Compose.OffPhrasePrefix != "" && c.Compose.OffPhrasePrefix == c.Compose.AuthorPrefix {
		errs = append(errs, ValidationError{Field: "compose.author_prefix", Message: "must differ from off_phrase_prefix"})
	}

	// Notify
	for _, m := range c.Notify.Methods {
		if _, err := notify.ParseMethod(m); err != nil {
			errs = append(errs, ValidationError{Field: "notify.methods", Message: err.Error()})
		}
	}
	if c.Notify.MaxBodyWidth < 0 {
		errs = append(errs, ValidationError{Field: "notify.max_body_width", Message: "must not be negative"})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	// Storage
	if c.Storage.HistoryLimit < 0 {
		errs = append(errs, ValidationError{Field: "storage.history_limit", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - STYGIAN_SERVER_URL: overrides server.url
//   - STYGIAN_ROOM: overrides server.room
//   - STYGIAN_AUTHOR: overrides server.author
//   - STYGIAN_MIN_LENGTH: overrides compose.min_length
//   - STYGIAN_NOTIFY: set to "0" or "false" to disable notifications
//   - STYGIAN_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("STYGIAN_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("STYGIAN_ROOM"); v != "" {
		c.Server.Room = v
	}
	if v := os.Getenv("STYGIAN_AUTHOR"); v != "" {
		c.Server.Author = v
	}
	if v := os.Getenv("STYGIAN_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Compose.MinLength = n
		}
	}
	if v := os.Getenv("STYGIAN_NOTIFY"); v != "" {
		c.Notify.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("STYGIAN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "compose.min_length").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			field.SetBool(strVal == "1" || strings.EqualFold(strVal, "true") || strings.EqualFold(strVal, "yes"))
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}
