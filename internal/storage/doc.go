// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a local history of sent chat messages.
//
// History is a SQLite database (pure Go driver, no cgo) capped to a
// configurable number of rows. It backs the `stygian history` command
// and seeds the line editor of the plain chat mode.
//
// # Usage
//
//	h, err := storage.OpenHistory(path, 500)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	err = h.Record(ctx, storage.Entry{Room: "lobby", Body: draft, Reason: "length"})
//	recent, err := h.Recent(ctx, 20)
//
// # Storage Location
//
// The database lives at ~/.stygian/history.db unless storage.history_path
// is set.
package storage
