// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package remotelogws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidAddress indicates the collector address cannot be used as a
	// websocket URL.
	ErrInvalidAddress = errors.New("remotelogws: invalid address")

	// ErrFlushTimeout indicates Close returned before the queue was drained.
	ErrFlushTimeout = errors.New("remotelogws: flush timeout")

	errDrained = errors.New("remotelogws: queue drained")
)

// Frame is one event on the wire.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// outboundFrame is the encoding side of Frame.
type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Handlers receive connection state changes. They are called from the
// client's connection goroutine and must not block for long.
type Handlers struct {
	OnConnect func()
	OnError   func(error)
}

type queuedFrame struct {
	event string
	data  []byte
}

// Client is a websocket event emitter with a bounded send queue and
// automatic reconnection.
type Client struct {
	cfg    Config
	target string

	queue   chan queuedFrame
	closed  atomic.Bool
	started atomic.Bool
	online  atomic.Bool

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New returns a client for the collector at address. Address may be a
// ws://, wss://, http:// or https:// URL, or a bare host:port, which is
// dialed as ws://. No connection is made until Connect.
func New(address string, opts ...Option) (*Client, error) {
	cfg := buildConfig(opts)
	target, err := resolveURL(address, cfg.Path, cfg.Query)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		target: target,
		queue:  make(chan queuedFrame, cfg.QueueSize),
		done:   make(chan struct{}),
	}, nil
}

// resolveURL builds the websocket URL from address, path and query.
func resolveURL(address, path string, query url.Values) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if !strings.Contains(address, "://") {
		address = "ws://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidAddress, address)
	}
	if path != "" {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		u.Path = path
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// URL returns the websocket URL the client dials.
func (c *Client) URL() string {
	return c.target
}

// Connected reports whether a connection is currently up.
func (c *Client) Connected() bool {
	return c.online.Load()
}

// Pending returns the number of frames waiting to be written.
func (c *Client) Pending() int {
	return len(c.queue)
}

// Connect starts the connection goroutine and returns immediately. Only the
// first call has an effect. Cancelling ctx stops the client the same way
// Close does, without waiting for the queue.
func (c *Client) Connect(ctx context.Context, h Handlers) {
	if c.closed.Load() || !c.started.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	go c.run(ctx, h)
}

// stop cancels the connection goroutine's context.
func (c *Client) stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// run dials, pumps frames and redials until ctx ends or the queue is closed
// and drained.
func (c *Client) run(ctx context.Context, h Handlers) {
	defer close(c.done)

	delay := c.cfg.ReconnectDelay
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.report(h.OnError, err)
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = min(delay*2, c.cfg.MaxReconnectDelay)
			continue
		}

		delay = c.cfg.ReconnectDelay
		c.online.Store(true)
		if h.OnConnect != nil {
			c.guard(h.OnConnect)
		}

		err = c.pump(ctx, conn)
		c.online.Store(false)
		_ = conn.Close()

		if errors.Is(err, errDrained) || ctx.Err() != nil {
			return
		}
		c.report(h.OnError, err)
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// dial opens one websocket connection.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.cfg.dialer.DialContext(ctx, c.target, c.cfg.Header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("dial %s: %w (HTTP %d)", c.target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", c.target, err)
	}
	return conn, nil
}

// pump writes queued frames to conn until a write or read fails, ctx ends,
// or the queue is closed and empty.
func (c *Client) pump(ctx context.Context, conn *websocket.Conn) error {
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.writeClose(conn)
			return ctx.Err()
		case err := <-readErr:
			return fmt.Errorf("read: %w", err)
		case item, ok := <-c.queue:
			if !ok {
				c.writeClose(conn)
				return errDrained
			}
			if c.cfg.WriteTimeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			}
			if err := conn.WriteMessage(websocket.TextMessage, item.data); err != nil {
				c.dropped(item.event)
				return fmt.Errorf("write %q frame: %w", item.event, err)
			}
		}
	}
}

// writeClose sends a normal-closure control frame, best-effort.
func (c *Client) writeClose(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// Emit encodes payload under event and queues it without blocking.
func (c *Client) Emit(event string, payload any) {
	if c.closed.Load() {
		c.dropped(event)
		return
	}
	data, err := json.Marshal(outboundFrame{Event: event, Data: payload})
	if err != nil {
		c.logError("remotelogws: encode %q frame: %v\n", event, err)
		c.dropped(event)
		return
	}
	c.enqueue(queuedFrame{event: event, data: data})
}

// enqueue routes a frame into the queue respecting the drop policy and
// recovers from a queue closed concurrently by Close.
func (c *Client) enqueue(item queuedFrame) {
	defer func() {
		if recover() != nil {
			c.dropped(item.event)
		}
	}()

	select {
	case c.queue <- item:
		return
	default:
	}

	if c.cfg.DropMode != DropModeDropOldest {
		c.dropped(item.event)
		return
	}

	select {
	case old, ok := <-c.queue:
		if ok {
			c.dropped(old.event)
		}
	default:
	}
	select {
	case c.queue <- item:
	default:
		c.dropped(item.event)
	}
}

// Close stops accepting frames, waits up to the flush timeout for queued
// frames to be written, and closes the connection. Frames still queued when
// no connection is up are discarded.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.queue)

		if !c.started.Load() {
			return
		}
		if !c.online.Load() {
			c.stop()
		}

		var errs *multierror.Error
		if c.cfg.FlushTimeout > 0 {
			select {
			case <-c.done:
			case <-time.After(c.cfg.FlushTimeout):
				errs = multierror.Append(errs, ErrFlushTimeout)
				c.stop()
				<-c.done
			}
		} else {
			<-c.done
		}
		c.stop()
		c.closeErr = errs.ErrorOrNil()
	})
	return c.closeErr
}

// report forwards err to fn, recovering from panics in user callbacks.
func (c *Client) report(fn func(error), err error) {
	if fn == nil || err == nil {
		return
	}
	c.guard(func() { fn(err) })
}

// guard runs fn and reports any panic to the error writer.
func (c *Client) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logError("remotelogws: recovered panic from handler: %v\n", r)
		}
	}()
	fn()
}

func (c *Client) dropped(event string) {
	if c.cfg.OnDrop != nil {
		c.cfg.OnDrop(event)
	}
}

func (c *Client) logError(format string, args ...any) {
	if c.cfg.ErrorWriter == nil {
		return
	}
	_, _ = fmt.Fprintf(c.cfg.ErrorWriter, format, args...)
}

// sleepCtx waits for d or until ctx ends, reporting whether d elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
