// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrClosed is returned by History operations after Close.
var ErrClosed = errors.New("history is closed")

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one sent message.
type Entry struct {
	ID     string
	Room   string
	Author string
	Body   string
	// Reason is the classifier reason that allowed the send.
	Reason string
	SentAt time.Time
}

// =============================================================================
// HISTORY
// =============================================================================

// History persists sent messages in SQLite.
type History struct {
	mu     sync.RWMutex
	db     *sql.DB
	limit  int
	closed bool
}

const schema = `
CREATE TABLE IF NOT EXISTS sent_messages (
	id      TEXT PRIMARY KEY,
	room    TEXT NOT NULL,
	author  TEXT NOT NULL,
	body    TEXT NOT NULL,
	reason  TEXT NOT NULL,
	sent_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sent_messages_sent_at ON sent_messages(sent_at);
`

// OpenHistory opens or creates the history database at path. limit caps the
// number of rows kept; 0 keeps everything.
func OpenHistory(path string, limit int) (*History, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if limit < 0 {
		limit = 0
	}
	return &History{db: db, limit: limit}, nil
}

// Record stores a sent message and prunes the oldest rows beyond the limit.
// Missing ID and SentAt are filled in.
func (h *History) Record(ctx context.Context, e Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sent_messages (id, room, author, body, reason, sent_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Room, e.Author, e.Body, e.Reason, e.SentAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}

	if h.limit > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sent_messages WHERE id NOT IN (
				SELECT id FROM sent_messages ORDER BY sent_at DESC, rowid DESC LIMIT ?
			)`, h.limit); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns up to n of the newest messages, oldest first.
// n <= 0 returns everything.
func (h *History) Recent(ctx context.Context, n int) ([]Entry, error) {
	query := `SELECT id, room, author, body, reason, sent_at FROM sent_messages
		ORDER BY sent_at DESC, rowid DESC`
	var args []any
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}
	entries, err := h.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Search returns messages whose body contains text, newest first.
func (h *History) Search(ctx context.Context, text string, n int) ([]Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if n <= 0 {
		n = 50
	}
	pattern := "%" + escapeLike(text) + "%"
	return h.query(ctx, `SELECT id, room, author, body, reason, sent_at FROM sent_messages
		WHERE body LIKE ? ESCAPE '\' ORDER BY sent_at DESC, rowid DESC LIMIT ?`, pattern, n)
}

// Count returns the number of stored messages.
func (h *History) Count(ctx context.Context) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0, ErrClosed
	}
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sent_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Close closes the database. It is safe to call more than once.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.db.Close()
}

func (h *History) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, ErrClosed
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var sentAt int64
		if err := rows.Scan(&e.ID, &e.Room, &e.Author, &e.Body, &e.Reason, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.SentAt = time.Unix(0, sentAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
