// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jeranaias/stygian-tui/internal/compose"
)

var (
	// ErrNotConnected is returned by Send while no socket is open.
	ErrNotConnected = errors.New("not connected to chat server")
	// ErrOutboxFull is returned by Send when the write queue is saturated.
	ErrOutboxFull = errors.New("outbox full")
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 20 * time.Second

	defaultOutboxSize   = 32
	defaultIncomingSize = 64
)

// Options configures a Client.
type Options struct {
	URL    string
	Room   string
	Author string
	// ReconnectPerMinute caps dial attempts; 0 means 6.
	ReconnectPerMinute int
	Dialer             *websocket.Dialer
	Logger             *zap.Logger
}

// Client is a reconnecting websocket chat client.
type Client struct {
	opts    Options
	logger  *zap.Logger
	limiter *rate.Limiter

	outbox   chan Frame
	incoming chan Frame
	status   chan Status

	connected atomic.Bool
}

// NewClient creates a client. Call Run to connect.
func NewClient(opts Options) *Client {
	if opts.ReconnectPerMinute <= 0 {
		opts.ReconnectPerMinute = 6
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: writeWait}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		opts:     opts,
		logger:   logger.Named("transport"),
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.ReconnectPerMinute)), 1),
		outbox:   make(chan Frame, defaultOutboxSize),
		incoming: make(chan Frame, defaultIncomingSize),
		status:   make(chan Status, 1),
	}
}

// Incoming returns frames received from the server.
func (c *Client) Incoming() <-chan Frame { return c.incoming }

// Status returns connection state changes. Only the latest state is kept.
func (c *Client) Status() <-chan Status { return c.status }

// Connected reports whether a socket is currently open.
func (c *Client) Connected() bool { return c.connected.Load() }

// Send queues f for writing. It never blocks.
func (c *Client) Send(f Frame) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}
	if f.Room == "" {
		f.Room = c.opts.Room
	}
	if f.Author == "" {
		f.Author = c.opts.Author
	}
	select {
	case c.outbox <- f:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Run connects and keeps reconnecting until ctx is canceled.
func (c *Client) Run(ctx context.Context) error {
	defer c.setStatus(StatusDisconnected)
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil
		}

		c.setStatus(StatusConnecting)
		conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("dial failed", zap.String("url", c.opts.URL), zap.Error(err))
			c.setStatus(StatusDisconnected)
			continue
		}

		c.logger.Info("connected", zap.String("url", c.opts.URL), zap.String("room", c.opts.Room))
		err = c.session(ctx, conn)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("connection lost", zap.Error(err))
	}
}

// session pumps frames over conn until it fails or ctx ends.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	var writeMu sync.Mutex
	write := func(msgType int, v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if msgType == websocket.TextMessage {
			return conn.WriteJSON(v)
		}
		return conn.WriteMessage(msgType, v.([]byte))
	}

	join := Frame{Type: FrameJoin, ID: uuid.NewString(), Room: c.opts.Room, Author: c.opts.Author, SentAt: time.Now().UTC()}
	if err := write(websocket.TextMessage, join); err != nil {
		conn.Close()
		return fmt.Errorf("join: %w", err)
	}

	c.connected.Store(true)
	c.setStatus(StatusConnected)
	defer func() {
		c.connected.Store(false)
		c.setStatus(StatusDisconnected)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	g, gctx := errgroup.WithContext(ctx)

	// Closing the socket unblocks the read pump.
	g.Go(func() error {
		<-gctx.Done()
		_ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return conn.Close()
	})

	g.Go(func() error {
		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				return fmt.Errorf("read: %w", err)
			}
			if f.Type == "" {
				f.Type = FrameMessage
			}
			select {
			case c.incoming <- f:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case f := <-c.outbox:
				if err := write(websocket.TextMessage, f); err != nil {
					return fmt.Errorf("write: %w", err)
				}
			case <-ticker.C:
				if err := write(websocket.PingMessage, []byte{}); err != nil {
					return fmt.Errorf("ping: %w", err)
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	return g.Wait()
}

func (c *Client) setStatus(s Status) {
	// Keep only the most recent status for slow readers.
	select {
	case <-c.status:
	default:
	}
	select {
	case c.status <- s:
	default:
	}
}

// =============================================================================
// SUBMIT ADAPTER
// =============================================================================

// Sender sends a frame to the chat server.
type Sender interface {
	Send(f Frame) error
}

// SubmitHandler returns a form handler that sends each submitted draft as a
// message frame. The event's ID becomes the frame ID.
func SubmitHandler(s Sender, room, author string) compose.SubmitHandler {
	return func(ev *compose.SubmitEvent) error {
		return s.Send(Frame{
			Type:   FrameMessage,
			ID:     ev.ID,
			Room:   room,
			Author: author,
			Body:   ev.Draft,
			SentAt: ev.Created.UTC(),
		})
	}
}
