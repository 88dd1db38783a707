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
	"fmt"
	"sync/atomic"
)

// ConnState is the lifecycle state of a Forwarder.
type ConnState int32

const (
	// StateDisabled means forwarding is off; Send does nothing.
	StateDisabled ConnState = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateConnected means the transport reported a successful connection.
	StateConnected
	// StateErrored means the transport reported an error. The transport may
	// still reconnect on its own, which moves the state back to Connected.
	StateErrored
)

// String returns a lower-case state name.
func (s ConnState) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateErrored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// RemoteSink receives every record the dispatch gate decides to forward.
// Send must not block and must not panic.
type RemoteSink interface {
	Send(rec LogRecord)
}

// ConnectionEvents are the callbacks a Transport reports connection state
// through. Either field may be nil.
type ConnectionEvents struct {
	OnConnect func()
	OnError   func(error)
}

// Transport is a persistent, bidirectional event channel to a collector.
//
// Connect starts connecting in the background and returns immediately.
// Emit sends a named event without waiting for acknowledgement; events
// emitted before the connection is up may be buffered or dropped by the
// transport. Close releases the connection.
type Transport interface {
	Connect(ctx context.Context, events ConnectionEvents)
	Emit(event string, payload any)
	Close() error
}

// TransportFactory builds the transport for a remote configuration.
type TransportFactory func(ctx context.Context, cfg RemoteConnectionConfig) (Transport, error)

// Forwarder owns the optional connection to a remote collector and
// implements RemoteSink on top of it.
type Forwarder struct {
	state     atomic.Int32
	transport Transport
	eventName string
	base      BaseSink
}

// disabledForwarder returns a Forwarder that ignores every record.
func disabledForwarder() *Forwarder {
	return &Forwarder{}
}

// newForwarder builds the transport for cfg and starts connecting. Connection
// errors are printed through base and never returned.
func newForwarder(ctx context.Context, cfg RemoteConnectionConfig, factory TransportFactory, base BaseSink) (*Forwarder, error) {
	transport, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build remote transport: %w", err)
	}
	f := &Forwarder{
		transport: transport,
		eventName: cfg.LogEventName,
		base:      base,
	}
	f.state.Store(int32(StateConnecting))
	transport.Connect(ctx, ConnectionEvents{
		OnConnect: f.onConnect,
		OnError:   f.onError,
	})
	return f, nil
}

// onConnect records a successful connection.
func (f *Forwarder) onConnect() {
	f.transition(StateConnected)
}

// onError records a connection failure and reports it through the base sink.
func (f *Forwarder) onError(err error) {
	if !f.transition(StateErrored) {
		return
	}
	f.base.Print(MethodError, "[remotelog] remote logging connection error:", err)
}

// transition moves the forwarder to next unless it has been disabled.
func (f *Forwarder) transition(next ConnState) bool {
	for {
		cur := f.state.Load()
		if ConnState(cur) == StateDisabled {
			return false
		}
		if f.state.CompareAndSwap(cur, int32(next)) {
			return true
		}
	}
}

// State returns the current connection state.
func (f *Forwarder) State() ConnState {
	return ConnState(f.state.Load())
}

// Send emits rec under the configured event name. It never waits for the
// collector and never reports failure. Without an event name nothing is
// emitted.
func (f *Forwarder) Send(rec LogRecord) {
	if f.transport == nil || f.eventName == "" || f.State() == StateDisabled {
		return
	}
	f.transport.Emit(f.eventName, rec)
}

// Close tears down the connection. The forwarder is disabled afterwards.
func (f *Forwarder) Close() error {
	if f.transport == nil {
		return nil
	}
	if ConnState(f.state.Swap(int32(StateDisabled))) == StateDisabled {
		return nil
	}
	if err := f.transport.Close(); err != nil {
		return fmt.Errorf("close remote transport: %w", err)
	}
	return nil
}

var _ RemoteSink = (*Forwarder)(nil)
