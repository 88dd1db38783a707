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

package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/pjscruggs/remotelog"
)

type delivery struct {
	client Client
	rec    remotelog.LogRecord
}

func startServer(t *testing.T, opts ...Option) (*Server, *httptest.Server, chan delivery) {
	t.Helper()

	got := make(chan delivery, 16)
	srv := New(func(_ context.Context, c Client, rec remotelog.LogRecord) {
		got <- delivery{client: c, rec: rec}
	}, opts...)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = srv.Close() })
	return srv, ts, got
}

func dial(t *testing.T, ts *httptest.Server, query url.Values) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", u, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func wait(t *testing.T, got chan delivery) delivery {
	t.Helper()
	select {
	case d := <-got:
		return d
	case <-time.After(5 * time.Second):
		t.Fatalf("no record delivered")
		return delivery{}
	}
}

// TestServerDecodesRecords verifies client info and records are decoded and
// frames for other events or with bad payloads are skipped.
func TestServerDecodesRecords(t *testing.T) {
	t.Parallel()

	_, ts, got := startServer(t, WithEventName("log"))
	conn := dial(t, ts, url.Values{
		remotelog.QueryAppID:      {"shop"},
		remotelog.QueryClientInfo: {`{"platform":"ios","systemName":"iphone","build":"7"}`},
	})

	rec := remotelog.LogRecord{
		Arguments:           []any{"paid"},
		MethodKind:          remotelog.MethodInfo,
		Color:               remotelog.ColorBlue,
		ThresholdAtCallSite: remotelog.SeverityDebug,
		Severity:            remotelog.SeverityInfo,
		LoggerName:          "orders",
		ConsoleEnabled:      true,
	}
	send(t, conn, "metrics", rec)
	send(t, conn, "log", "not a record")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	send(t, conn, "log", rec)

	d := wait(t, got)
	wantClient := Client{
		AppID: "shop",
		Info: remotelog.SystemIdentifiers{
			Platform:   remotelog.PlatformIOS,
			SystemName: "iphone",
			Extra:      map[string]any{"build": "7"},
		},
	}
	if diff := cmp.Diff(wantClient, d.client, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".RemoteAddr"
	}, cmp.Ignore())); diff != "" {
		t.Fatalf("client mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rec, d.rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	select {
	case extra := <-got:
		t.Fatalf("unexpected extra delivery %v", extra.rec)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestServerAcceptsAllEventsByDefault verifies an empty event name filter.
func TestServerAcceptsAllEventsByDefault(t *testing.T) {
	t.Parallel()

	_, ts, got := startServer(t)
	conn := dial(t, ts, url.Values{})
	send(t, conn, "anything", remotelog.LogRecord{LoggerName: "x", Arguments: []any{}})

	if d := wait(t, got); d.rec.LoggerName != "x" {
		t.Fatalf("record = %v", d.rec)
	}
}

// TestServerRejectsBadClientInfo verifies malformed identifiers fail the
// handshake.
func TestServerRejectsBadClientInfo(t *testing.T) {
	t.Parallel()

	_, ts, _ := startServer(t)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?clientInfo=%7Bnope"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("Dial succeeded, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("response = %v, want 400", resp)
	}
}

// TestServerCloseDisconnectsClients verifies Close sends a going-away frame
// and refuses later connections.
func TestServerCloseDisconnectsClients(t *testing.T) {
	t.Parallel()

	srv, ts, got := startServer(t)
	conn := dial(t, ts, url.Values{})
	send(t, conn, "log", remotelog.LogRecord{LoggerName: "x", Arguments: []any{}})
	wait(t, got)

	if err := srv.Close(); err != nil {
		t.Fatalf("Close() returned %v, want nil", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != websocket.CloseGoingAway {
		t.Fatalf("ReadMessage error = %v, want going-away close", err)
	}
}

// TestClientFromRequest verifies query parsing without a websocket.
func TestClientFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/ws?appID=a&clientInfo=%5B%5D", nil)
	if _, err := clientFromRequest(r); !errors.Is(err, ErrBadClientInfo) {
		t.Fatalf("clientFromRequest() error = %v, want ErrBadClientInfo", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws?appID=a", nil)
	c, err := clientFromRequest(r)
	if err != nil {
		t.Fatalf("clientFromRequest() returned %v, want nil", err)
	}
	if c.AppID != "a" || c.Info.Platform != "" {
		t.Fatalf("client = %+v", c)
	}
}

// TestLogTo verifies records become JSON log lines at their severity.
func TestLogTo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	LogTo(logger)(context.Background(), Client{
		AppID: "shop",
		Info:  remotelog.SystemIdentifiers{Platform: remotelog.PlatformWeb, SystemName: "edge"},
	}, remotelog.LogRecord{
		Arguments:  []any{"checkout slow", 1.5},
		MethodKind: remotelog.MethodWarn,
		Severity:   remotelog.SeverityWarning,
		LoggerName: "orders",
		TraceID:    "abc",
		SpanID:     "def",
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	delete(line, "time")
	want := map[string]any{
		"level":       "WARN",
		"msg":         "checkout slow",
		"logger":      "orders",
		"severity":    "WARNING",
		"method_kind": "warn",
		"arguments":   []any{"checkout slow", 1.5},
		"app_id":      "shop",
		"platform":    "web",
		"system_name": "edge",
		"trace_id":    "abc",
		"span_id":     "def",
	}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Fatalf("log line mismatch (-want +got):\n%s", diff)
	}
}

// TestMessage covers non-string first arguments and empty records.
func TestMessage(t *testing.T) {
	t.Parallel()

	if got := message(remotelog.LogRecord{}); got != "" {
		t.Fatalf("message(empty) = %q", got)
	}
	if got := message(remotelog.LogRecord{Arguments: []any{float64(3)}}); got != "3" {
		t.Fatalf("message(3) = %q", got)
	}
}
