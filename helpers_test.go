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
	"io"
	"sync"
	"testing"
	"time"
)

// printCall is one recorded console print.
type printCall struct {
	kind MethodKind
	args []any
}

// printRecorder captures console prints in call order.
type printRecorder struct {
	mu    sync.Mutex
	calls []printCall
}

func (r *printRecorder) add(kind MethodKind, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, printCall{kind: kind, args: append([]any(nil), args...)})
}

// Calls returns a copy of the recorded prints.
func (r *printRecorder) Calls() []printCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]printCall(nil), r.calls...)
}

// newRecordingConsole returns a console whose six operations record into the
// returned recorder instead of writing anywhere.
func newRecordingConsole() (*Console, *printRecorder) {
	c := NewConsole(io.Discard, io.Discard)
	r := &printRecorder{}
	for _, kind := range methodKinds {
		kind := kind
		c.SetFunc(kind, func(args ...any) {
			r.add(kind, args)
		})
	}
	return c, r
}

// fakeSink records every forwarded record.
type fakeSink struct {
	mu      sync.Mutex
	records []LogRecord
	closed  bool
}

func (s *fakeSink) Send(rec LogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Records returns a copy of the forwarded records.
func (s *fakeSink) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogRecord(nil), s.records...)
}

// fakeTransport is a Transport driven by the test.
type fakeTransport struct {
	mu        sync.Mutex
	events    ConnectionEvents
	connected int
	emitted   []emitted
	closed    int
	closeErr  error
}

type emitted struct {
	event   string
	payload any
}

func (t *fakeTransport) Connect(_ context.Context, events ConnectionEvents) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = events
	t.connected++
}

func (t *fakeTransport) Emit(event string, payload any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitted = append(t.emitted, emitted{event: event, payload: payload})
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return t.closeErr
}

func (t *fakeTransport) Emitted() []emitted {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]emitted(nil), t.emitted...)
}

func (t *fakeTransport) Events() ConnectionEvents {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.events
}

// factoryFor returns a TransportFactory that hands out transport and counts
// how often it was asked.
func factoryFor(transport *fakeTransport, calls *int) TransportFactory {
	return func(context.Context, RemoteConnectionConfig) (Transport, error) {
		*calls++
		return transport, nil
	}
}

// fixedNow is the clock used by tests that check banners.
func fixedNow() time.Time {
	return time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func always() bool { return true }

func never() bool { return false }

// newTestFacility builds a normal-mode facility printing to a recording
// console and forwarding to a fake sink.
func newTestFacility(t *testing.T, props Props, opts ...Option) (*Facility, *printRecorder, *fakeSink) {
	t.Helper()

	console, rec := newRecordingConsole()
	sink := &fakeSink{}
	all := append([]Option{
		WithMode(ModeNormal),
		WithConsole(console),
		WithClock(fixedNow),
		WithRemoteSink(sink),
	}, opts...)
	f, err := New(props, all...)
	if err != nil {
		t.Fatalf("New() returned %v, want nil", err)
	}
	t.Cleanup(func() {
		if err := f.Close(); err != nil {
			t.Errorf("Close() returned %v, want nil", err)
		}
	})
	return f, rec, sink
}
