// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/stygian-tui/internal/compose"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newRoomServer starts a websocket server that hands each connection to handle.
func newRoomServer(t *testing.T, handle func(conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func runClient(t *testing.T, c *Client) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	return func() {
		stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}

func TestClient_JoinSendAndReceive(t *testing.T) {
	received := make(chan Frame, 4)
	_, url := newRoomServer(t, func(conn *websocket.Conn) {
		var join Frame
		if err := conn.ReadJSON(&join); err != nil {
			return
		}
		received <- join
		_ = conn.WriteJSON(Frame{Type: FrameMessage, Room: "lobby", Author: "Nyx", Body: "hello there"})
		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			received <- f
		}
	})

	c := NewClient(Options{URL: url, Room: "lobby", Author: "Vesper"})
	stop := runClient(t, c)
	defer stop()

	join := <-received
	assert.Equal(t, FrameJoin, join.Type)
	assert.Equal(t, "lobby", join.Room)
	assert.Equal(t, "Vesper", join.Author)

	select {
	case f := <-c.Incoming():
		assert.Equal(t, "hello there", f.Body)
		assert.Equal(t, "Nyx", f.Author)
	case <-time.After(2 * time.Second):
		t.Fatal("no incoming frame")
	}

	require.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Send(Frame{Type: FrameMessage, Body: "a reply"}))

	select {
	case f := <-received:
		assert.Equal(t, "a reply", f.Body)
		assert.Equal(t, "lobby", f.Room, "room defaults to the client's")
		assert.Equal(t, "Vesper", f.Author)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive the frame")
	}
}

func TestClient_SendWhileDisconnected(t *testing.T) {
	c := NewClient(Options{URL: "ws://127.0.0.1:1/never"})
	assert.ErrorIs(t, c.Send(Frame{Body: "x"}), ErrNotConnected)
}

func TestClient_OutboxFull(t *testing.T) {
	c := NewClient(Options{URL: "ws://127.0.0.1:1/never"})
	c.connected.Store(true)
	for i := 0; i < defaultOutboxSize; i++ {
		require.NoError(t, c.Send(Frame{Body: "x"}))
	}
	assert.ErrorIs(t, c.Send(Frame{Body: "overflow"}), ErrOutboxFull)
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	var connections atomic.Int32
	_, url := newRoomServer(t, func(conn *websocket.Conn) {
		n := connections.Add(1)
		var join Frame
		if err := conn.ReadJSON(&join); err != nil {
			return
		}
		if n == 1 {
			return // drop the first connection
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c := NewClient(Options{URL: url, Room: "lobby", ReconnectPerMinute: 6000})
	stop := runClient(t, c)
	defer stop()

	require.Eventually(t, func() bool { return connections.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)
}

func TestClient_StatusKeepsLatest(t *testing.T) {
	c := NewClient(Options{URL: "ws://127.0.0.1:1/never"})
	c.setStatus(StatusConnecting)
	c.setStatus(StatusConnected)

	assert.Equal(t, StatusConnected, <-c.Status())
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "disconnected", StatusDisconnected.String())
}

type recordingSender struct {
	frames []Frame
	err    error
}

func (r *recordingSender) Send(f Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func TestSubmitHandler(t *testing.T) {
	s := &recordingSender{}
	form := compose.NewForm()
	form.Handle(SubmitHandler(s, "lobby", "Vesper"))

	ev := compose.NewSubmitEvent("+ brb", compose.ReasonOffPhrase)
	require.NoError(t, form.Dispatch(ev))

	require.Len(t, s.frames, 1)
	f := s.frames[0]
	assert.Equal(t, FrameMessage, f.Type)
	assert.Equal(t, ev.ID, f.ID)
	assert.Equal(t, "+ brb", f.Body)
	assert.Equal(t, "lobby", f.Room)

	s.err = ErrNotConnected
	err := form.Dispatch(compose.NewSubmitEvent("+ again", compose.ReasonOffPhrase))
	assert.True(t, errors.Is(err, ErrNotConnected))
}
