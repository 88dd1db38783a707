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

// Package collector accepts remotelog forwarder connections and decodes the
// records they send.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pjscruggs/remotelog"
	"github.com/pjscruggs/remotelog/remotelogws"
)

const (
	defaultReadLimit = 1 << 20
	closeGracePeriod = time.Second
)

// ErrBadClientInfo is returned when the clientInfo query parameter is not a
// JSON object.
var ErrBadClientInfo = errors.New("collector: malformed clientInfo")

// Client describes one connected forwarder.
type Client struct {
	AppID      string
	Info       remotelog.SystemIdentifiers
	RemoteAddr string
}

// RecordFunc receives every decoded record. It is called from the
// connection's goroutine, one record at a time per connection.
type RecordFunc func(ctx context.Context, c Client, rec remotelog.LogRecord)

// Option configures a Server.
type Option func(*Server)

// WithEventName only accepts frames whose event matches name. An empty name
// accepts every event.
func WithEventName(name string) Option {
	return func(s *Server) {
		s.event = name
	}
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReadLimit caps the size of a single frame in bytes.
func WithReadLimit(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.readLimit = n
		}
	}
}

// Server is an http.Handler that upgrades requests to websocket connections
// and reads forwarded records from them.
type Server struct {
	onRecord  RecordFunc
	event     string
	logger    *slog.Logger
	readLimit int64
	upgrader  websocket.Upgrader

	wg     sync.WaitGroup
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// New returns a Server delivering records to onRecord.
func New(onRecord RecordFunc, opts ...Option) *Server {
	s := &Server{
		onRecord:  onRecord,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		readLimit: defaultReadLimit,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ServeHTTP validates the connection query and upgrades the request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client, err := clientFromRequest(r)
	if err != nil {
		s.logger.WarnContext(r.Context(), "rejecting connection", "remote", r.RemoteAddr, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	if !s.track(conn) {
		_ = conn.Close()
		return
	}

	s.logger.InfoContext(r.Context(), "forwarder connected",
		"app_id", client.AppID,
		"platform", client.Info.Platform,
		"system_name", client.Info.SystemName,
		"remote", client.RemoteAddr,
	)
	go s.serve(context.WithoutCancel(r.Context()), conn, client)
}

// track registers conn unless the server is closed.
func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

// serve reads frames until the peer goes away.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, client Client) {
	defer s.untrack(conn)
	defer conn.Close()

	conn.SetReadLimit(s.readLimit)
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WarnContext(ctx, "forwarder connection lost", "app_id", client.AppID, "error", err)
			} else {
				s.logger.InfoContext(ctx, "forwarder disconnected", "app_id", client.AppID)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		rec, ok, err := s.decode(data)
		if err != nil {
			s.logger.WarnContext(ctx, "dropping malformed frame", "app_id", client.AppID, "error", err)
			continue
		}
		if ok && s.onRecord != nil {
			s.onRecord(ctx, client, rec)
		}
	}
}

// decode parses one frame. ok is false for events other than the configured
// one.
func (s *Server) decode(data []byte) (rec remotelog.LogRecord, ok bool, err error) {
	var frame remotelogws.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return rec, false, fmt.Errorf("decode frame: %w", err)
	}
	if s.event != "" && frame.Event != s.event {
		return rec, false, nil
	}
	if err := json.Unmarshal(frame.Data, &rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// Close sends a going-away close frame to every open connection and waits
// for their readers to finish. Later upgrades are refused.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "collector shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		_ = c.Close()
	}
	s.wg.Wait()
	return nil
}

// clientFromRequest reads appID and clientInfo from the query.
func clientFromRequest(r *http.Request) (Client, error) {
	q := r.URL.Query()
	c := Client{
		AppID:      q.Get(remotelog.QueryAppID),
		RemoteAddr: r.RemoteAddr,
	}
	if raw := q.Get(remotelog.QueryClientInfo); raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Info); err != nil {
			return Client{}, fmt.Errorf("%w: %v", ErrBadClientInfo, err)
		}
	}
	return c, nil
}

// LogTo returns a RecordFunc that writes each record to logger at the
// record's severity.
func LogTo(logger *slog.Logger) RecordFunc {
	return func(ctx context.Context, c Client, rec remotelog.LogRecord) {
		attrs := []slog.Attr{
			slog.String("logger", rec.LoggerName),
			slog.String("severity", rec.Severity.String()),
			slog.String("method_kind", string(rec.MethodKind)),
			slog.Any("arguments", rec.Arguments),
			slog.String("app_id", c.AppID),
			slog.String("platform", string(c.Info.Platform)),
			slog.String("system_name", c.Info.SystemName),
		}
		if rec.TraceID != "" {
			attrs = append(attrs, slog.String("trace_id", rec.TraceID), slog.String("span_id", rec.SpanID))
		}
		logger.LogAttrs(ctx, rec.Severity.Level(), message(rec), attrs...)
	}
}

// message picks the first string argument, which is what a banner-less
// console line would start with.
func message(rec remotelog.LogRecord) string {
	if len(rec.Arguments) == 0 {
		return ""
	}
	if s, ok := rec.Arguments[0].(string); ok {
		return s
	}
	return fmt.Sprint(rec.Arguments[0])
}
