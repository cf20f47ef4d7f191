// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/stygian-tui/internal/compose"
	"github.com/jeranaias/stygian-tui/internal/storage"
	"github.com/jeranaias/stygian-tui/internal/transport"
)

// =============================================================================
// HELPERS
// =============================================================================

// withHome points the config directory at a fresh temp dir.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("STYGIAN_HOME", home)
	return home
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stygian dev\n", out)
}

func TestClassifyCmd(t *testing.T) {
	withHome(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"off phrase", []string{"classify", "+ brb"}, []string{"decision: submit", "reason:   off_phrase"}},
		{"narrator", []string{"classify", "***", "The", "bell", "tolls."}, []string{"decision: submit", "reason:   author"}},
		{"short enter", []string{"classify", "hello"}, []string{"decision: suppress-default", "5/150 (145 more)"}},
		{"short other key", []string{"classify", "--key", "a", "hello"}, []string{"decision: allow-default"}},
		{"min length override", []string{"classify", "--min-length", "5", "hello"}, []string{"decision: submit", "reason:   length"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestConfigCmds(t *testing.T) {
	home := withHome(t)
	path := filepath.Join(home, "config.toml")

	out, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	assert.FileExists(t, path)

	_, err = runCLI(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "config", "set", "compose.min_length", "200")
	require.NoError(t, err)

	out, err = runCLI(t, "config", "get", "compose.min_length")
	require.NoError(t, err)
	assert.Equal(t, "200\n", out)

	out, err = runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "min_length = 200")

	_, err = runCLI(t, "config", "set", "compose.min_length", "-1")
	assert.Error(t, err, "invalid values are not saved")

	out, err = runCLI(t, "--config", path, "config", "get", "compose.min_length")
	require.NoError(t, err)
	assert.Equal(t, "200\n", out)
}

func TestHistoryCmd(t *testing.T) {
	home := withHome(t)

	out, err := runCLI(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no messages")

	h, err := storage.OpenHistory(filepath.Join(home, "history.db"), 0)
	require.NoError(t, err)
	require.NoError(t, h.Record(context.Background(), storage.Entry{Room: "lobby", Author: "Vesper", Body: "+ brb"}))
	require.NoError(t, h.Record(context.Background(), storage.Entry{Room: "lobby", Author: "Vesper", Body: "*** Rain."}))
	require.NoError(t, h.Close())

	out, err = runCLI(t, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "#lobby")
	assert.Less(t, strings.Index(out, "+ brb"), strings.Index(out, "*** Rain."), "oldest first")

	out, err = runCLI(t, "history", "--search", "rain")
	require.NoError(t, err)
	assert.Contains(t, out, "*** Rain.")
	assert.NotContains(t, out, "+ brb")
}

func TestNotifyTestCmd(t *testing.T) {
	withHome(t)

	out, err := runCLI(t, "notify", "test", "--method", "bell", "--delay", "10ms", "knock knock")
	require.NoError(t, err)
	assert.Contains(t, out, "\a")
	assert.Contains(t, out, "via bell seen after")

	out, err = runCLI(t, "notify", "test", "--method", "bell", "--hidden=false")
	require.NoError(t, err)
	assert.Contains(t, out, "no notification shown")
	assert.NotContains(t, out, "\a")

	_, err = runCLI(t, "notify", "test", "--method", "pager")
	assert.Error(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	home := withHome(t)
	path := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nurl = \"http://nope\"\n"), 0o600))

	_, err := runCLI(t, "--config", path, "classify", "x")
	assert.ErrorContains(t, err, "server.url")
}

// =============================================================================
// PLAIN CHAT
// =============================================================================

// scriptedReader replays lines and records the suggestions it was offered.
type scriptedReader struct {
	lines       []string
	suggestions []string
	history     []string
}

func (r *scriptedReader) PromptWithSuggestion(_, text string, _ int) (string, error) {
	r.suggestions = append(r.suggestions, text)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) { r.history = append(r.history, item) }
func (r *scriptedReader) Close() error             { return nil }

func TestPlainChat_ShortDraftIsOfferedAgain(t *testing.T) {
	reader := &scriptedReader{lines: []string{"short", "+ brb", "/quit", "never read"}}
	var out bytes.Buffer

	var sent []string
	form := compose.NewForm()
	form.OnDefault(func(ev *compose.SubmitEvent) error {
		sent = append(sent, ev.Draft)
		return nil
	})

	chat := NewPlainChat(reader, &out, compose.NewClassifier(compose.DefaultPolicy()), form, "Vesper", zap.NewNop())
	require.NoError(t, chat.Run())

	assert.Equal(t, []string{"+ brb"}, sent)
	assert.Equal(t, []string{"", "short", ""}, reader.suggestions)
	assert.Equal(t, []string{"+ brb"}, reader.history)
	assert.Contains(t, out.String(), "145 more characters needed")
	assert.False(t, chat.controller.Attached(), "detached on exit")
}

func TestPlainChat_EOFEnds(t *testing.T) {
	reader := &scriptedReader{}
	chat := NewPlainChat(reader, io.Discard, compose.NewClassifier(compose.DefaultPolicy()), compose.NewForm(), "", nil)
	assert.NoError(t, chat.Run())
}

func TestPlainChat_PrintsFrames(t *testing.T) {
	var out bytes.Buffer
	chat := NewPlainChat(&scriptedReader{}, &out, nil, compose.NewForm(), "", nil)

	chat.Print(transport.Frame{Type: transport.FrameMessage, Author: "Nyx", Body: "hello"})
	chat.Print(transport.Frame{Type: transport.FramePresence, Body: "Nyx joined"})

	assert.Contains(t, out.String(), "Nyx hello")
	assert.Contains(t, out.String(), "Nyx joined")
}

func TestSeedHistory(t *testing.T) {
	h, err := storage.OpenHistory(filepath.Join(t.TempDir(), "h.db"), 0)
	require.NoError(t, err)
	defer h.Close()
	ctx := context.Background()
	require.NoError(t, h.Record(ctx, storage.Entry{Body: "one"}))
	require.NoError(t, h.Record(ctx, storage.Entry{Body: "two"}))

	reader := &scriptedReader{}
	seedHistory(ctx, reader, h)
	assert.Equal(t, []string{"one", "two"}, reader.history)

	seedHistory(ctx, reader, nil)
	assert.Len(t, reader.history, 2)
}
