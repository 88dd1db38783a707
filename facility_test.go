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

package remotelog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func remoteProps() *RemoteConnectionConfig {
	return &RemoteConnectionConfig{
		Address:      "collector.internal:9000",
		AppID:        "checkout",
		LogEventName: "log",
		SocketPath:   "/ws",
		SystemIdentifiers: SystemIdentifiers{
			Platform:   PlatformWeb,
			SystemName: "test-host",
		},
	}
}

// TestNewTestModePassthrough verifies test-mode loggers print straight to the
// console and never build a transport.
func TestNewTestModePassthrough(t *testing.T) {
	t.Parallel()

	console, rec := newRecordingConsole()
	transport := &fakeTransport{}
	var factoryCalls int
	f, err := New(Props{
		IsDev:                  true,
		LogRemotely:            always,
		OverrideConsoleLoggers: true,
		RemoteLoggingProps:     remoteProps(),
	},
		WithMode(ModeTest),
		WithConsole(console),
		WithTransportFactory(factoryFor(transport, &factoryCalls)),
	)
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	defer f.Close()

	if factoryCalls != 0 {
		t.Fatalf("transport factory called %d times, want 0", factoryCalls)
	}
	if got := f.State(); got != StateDisabled {
		t.Fatalf("State() = %s, want disabled", got)
	}

	l := f.NewLogger("svc", ColorBlue, WithThreshold(SeverityCritical), WithConsoleOutput(false))
	l.Log("a")
	l.Debug("b")
	l.Info("c")
	l.Warning("d")
	l.Error("e", 1)
	l.Critical("f")

	want := []printCall{
		{MethodLog, []any{"a"}},
		{MethodDebug, []any{"b"}},
		{MethodInfo, []any{"c"}},
		{MethodWarn, []any{"d"}},
		{MethodError, []any{"e", 1}},
		{MethodError, []any{"f"}},
	}
	if diff := cmp.Diff(want, rec.Calls(), cmp.AllowUnexported(printCall{})); diff != "" {
		t.Fatalf("passthrough prints mismatch (-want +got):\n%s", diff)
	}
	if got := len(transport.Emitted()); got != 0 {
		t.Fatalf("emitted = %d, want 0", got)
	}
}

// TestNewTestModeFromEnv verifies REMOTELOG_ENV=test selects test mode.
func TestNewTestModeFromEnv(t *testing.T) {
	t.Setenv("REMOTELOG_ENV", "test")

	console, _ := newRecordingConsole()
	f, err := New(Props{IsDev: true}, WithConsole(console))
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	defer f.Close()

	if got := f.Mode(); got != ModeTest {
		t.Fatalf("Mode() = %s, want test", got)
	}
}

// TestNewStartsForwarder verifies a remote config builds a transport and
// forwarded records are emitted under the configured event name.
func TestNewStartsForwarder(t *testing.T) {
	t.Parallel()

	console, _ := newRecordingConsole()
	transport := &fakeTransport{}
	var factoryCalls int
	f, err := New(Props{IsDev: true, LogRemotely: always, RemoteLoggingProps: remoteProps()},
		WithMode(ModeNormal),
		WithConsole(console),
		WithTransportFactory(factoryFor(transport, &factoryCalls)),
	)
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}

	if factoryCalls != 1 {
		t.Fatalf("transport factory called %d times, want 1", factoryCalls)
	}
	if got := f.State(); got != StateConnecting {
		t.Fatalf("State() = %s, want connecting", got)
	}

	f.NewLogger("svc", ColorBlue).Warning("disk", 91)

	sent := transport.Emitted()
	if len(sent) != 1 {
		t.Fatalf("emitted = %d, want 1", len(sent))
	}
	if sent[0].event != "log" {
		t.Fatalf("event = %q, want log", sent[0].event)
	}
	rec, ok := sent[0].payload.(LogRecord)
	if !ok {
		t.Fatalf("payload type = %T, want LogRecord", sent[0].payload)
	}
	if rec.Severity != SeverityWarning || rec.LoggerName != "svc" {
		t.Fatalf("payload = %v", rec)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close() returned %v, want nil", err)
	}
	if transport.closed != 1 {
		t.Fatalf("transport closed %d times, want 1", transport.closed)
	}
	if got := f.State(); got != StateDisabled {
		t.Fatalf("State() after Close = %s, want disabled", got)
	}
}

// TestNewRejectsEmptyAddress verifies a remote config without an address is
// refused.
func TestNewRejectsEmptyAddress(t *testing.T) {
	t.Parallel()

	console, _ := newRecordingConsole()
	cfg := remoteProps()
	cfg.Address = "  "
	_, err := New(Props{IsDev: true, RemoteLoggingProps: cfg}, WithMode(ModeNormal), WithConsole(console))
	if !errors.Is(err, ErrInvalidRemoteConfig) {
		t.Fatalf("New() returned %v, want ErrInvalidRemoteConfig", err)
	}
}

// TestNewTransportFactoryError verifies factory failures are returned wrapped.
func TestNewTransportFactoryError(t *testing.T) {
	t.Parallel()

	console, _ := newRecordingConsole()
	boom := errors.New("no route")
	_, err := New(Props{IsDev: true, RemoteLoggingProps: remoteProps()},
		WithMode(ModeNormal),
		WithConsole(console),
		WithTransportFactory(func(context.Context, RemoteConnectionConfig) (Transport, error) {
			return nil, boom
		}),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("New() returned %v, want wrapped %v", err, boom)
	}
}

// TestNewWarnsOnUnknownPlatform verifies an invalid platform is accepted and
// reported once through the base sink.
func TestNewWarnsOnUnknownPlatform(t *testing.T) {
	t.Parallel()

	console, rec := newRecordingConsole()
	cfg := remoteProps()
	cfg.SystemIdentifiers.Platform = "plan9"
	var factoryCalls int
	f, err := New(Props{IsDev: true, RemoteLoggingProps: cfg},
		WithMode(ModeNormal),
		WithConsole(console),
		WithTransportFactory(factoryFor(&fakeTransport{}, &factoryCalls)),
	)
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	defer f.Close()

	calls := rec.Calls()
	if len(calls) != 1 || calls[0].kind != MethodWarn {
		t.Fatalf("prints = %+v, want one warning", calls)
	}
	if !strings.Contains(calls[0].args[1].(string), "plan9") {
		t.Fatalf("warning = %v, want platform named", calls[0].args)
	}
	if factoryCalls != 1 {
		t.Fatalf("transport factory called %d times, want 1", factoryCalls)
	}
}

// TestNewWithoutRemoteConfig verifies forwarding degrades to a no-op.
func TestNewWithoutRemoteConfig(t *testing.T) {
	t.Parallel()

	console, rec := newRecordingConsole()
	f, err := New(Props{IsDev: true, LogRemotely: always}, WithMode(ModeNormal), WithConsole(console))
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	defer f.Close()

	f.NewLogger("svc", ColorBlue).Info("x")
	if got := f.State(); got != StateDisabled {
		t.Fatalf("State() = %s, want disabled", got)
	}
	if got := len(rec.Calls()); got != 1 {
		t.Fatalf("prints = %d, want 1", got)
	}
}

// TestCloseStopsForwardingAndClosesSink verifies Close closes a custom sink
// and later records are not forwarded.
func TestCloseStopsForwardingAndClosesSink(t *testing.T) {
	t.Parallel()

	console, rec := newRecordingConsole()
	sink := &fakeSink{}
	f, err := New(Props{IsDev: true, LogRemotely: always},
		WithMode(ModeNormal),
		WithConsole(console),
		WithRemoteSink(sink),
	)
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	l := f.NewLogger("svc", ColorBlue)
	l.Info("before")

	if err := f.Close(); err != nil {
		t.Fatalf("Close() returned %v, want nil", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close() returned %v, want nil", err)
	}
	l.Info("after")

	if !sink.closed {
		t.Fatalf("custom sink not closed")
	}
	if got := len(sink.Records()); got != 1 {
		t.Fatalf("forwarded = %d, want 1", got)
	}
	if got := len(rec.Calls()); got != 2 {
		t.Fatalf("prints = %d, want 2", got)
	}
}

// TestCloseAggregatesErrors verifies a transport close failure is reported.
func TestCloseAggregatesErrors(t *testing.T) {
	t.Parallel()

	console, _ := newRecordingConsole()
	boom := errors.New("socket stuck")
	transport := &fakeTransport{closeErr: boom}
	var factoryCalls int
	f, err := New(Props{IsDev: true, RemoteLoggingProps: remoteProps()},
		WithMode(ModeNormal),
		WithConsole(console),
		WithTransportFactory(factoryFor(transport, &factoryCalls)),
	)
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	if err := f.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close() returned %v, want wrapped %v", err, boom)
	}
}
