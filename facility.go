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
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidRemoteConfig is returned by New when RemoteLoggingProps is set
// without an address and no remote sink was supplied.
var ErrInvalidRemoteConfig = errors.New("remotelog: remote logging config has no address")

// Facility is the process-wide logging facility. It owns the base sink
// snapshot, the remote sink and any installed console override.
type Facility struct {
	props           Props
	mode            Mode
	console         *Console
	base            BaseSink
	remote          RemoteSink
	forwarder       *Forwarder
	clock           func() time.Time
	remoteThreshold Severity
	slogDefault     bool

	mu       sync.Mutex
	restores []func()

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New builds a Facility. The console's print operations are captured before
// anything else so the gate always reaches the real output. In normal mode a
// remote connection is started when RemoteLoggingProps is set, and the
// console override is installed when OverrideConsoleLoggers is true. In test
// mode neither happens and loggers print straight to the console.
//
// Connection failures never surface here; they are reported through the base
// sink once the transport gives up on an attempt.
func New(props Props, opts ...Option) (*Facility, error) {
	o := buildOptions(opts)

	mode := ModeFromEnv()
	if o.mode != nil {
		mode = *o.mode
	}

	var warn envWarnings
	remoteThreshold := SeverityDebug
	if o.useEnv {
		applyEnvProps(&props, &warn)
		remoteThreshold = parseSeverityEnv(envRemoteLevel, remoteThreshold, &warn)
	}
	if o.remoteThreshold != nil {
		remoteThreshold = *o.remoteThreshold
	}

	f := &Facility{
		props:           props,
		mode:            mode,
		console:         o.console,
		base:            CaptureBaseSink(o.console),
		forwarder:       disabledForwarder(),
		clock:           o.clock,
		remoteThreshold: remoteThreshold,
		slogDefault:     o.slogDefault,
	}
	f.remote = f.forwarder

	for _, w := range warn {
		f.base.Print(MethodWarn, "[remotelog]", w)
	}

	if mode != ModeTest {
		if err := f.startRemote(o); err != nil {
			return nil, err
		}
		if props.OverrideConsoleLoggers {
			f.InstallConsoleOverride()
		}
	}
	return f, nil
}

// startRemote wires the remote sink according to o and the remote props.
func (f *Facility) startRemote(o options) error {
	if o.remoteSink != nil {
		f.remote = o.remoteSink
		return nil
	}
	cfg := f.props.RemoteLoggingProps
	if cfg == nil {
		return nil
	}
	if strings.TrimSpace(cfg.Address) == "" {
		return ErrInvalidRemoteConfig
	}
	if p := cfg.SystemIdentifiers.Platform; !p.Valid() {
		f.base.Print(MethodWarn, "[remotelog] unrecognized platform", strconv.Quote(string(p)), "forwarded as-is")
	}

	EnsurePropagation()
	factory := o.transportFactory
	if factory == nil {
		factory = WebSocketTransportFactory(o.wsOptions...)
	}
	fw, err := newForwarder(o.ctx, *cfg, factory, f.base)
	if err != nil {
		return err
	}
	f.forwarder = fw
	f.remote = fw
	return nil
}

// NewLogger returns an independent named logger. Console output is on and
// the threshold is SeverityDebug unless opts say otherwise. In test mode the
// logger prints its arguments directly through the console.
func (f *Facility) NewLogger(name string, c Color, opts ...LoggerOption) *NamedLogger {
	id := LoggerIdentity{
		Name:           name,
		Color:          c,
		ConsoleEnabled: true,
		Threshold:      SeverityDebug,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&id)
		}
	}
	if f.mode == ModeTest {
		return NewNamedLogger(id, DirectConsoleStrategy{Console: f.console})
	}
	return f.gatedLogger(id)
}

func (f *Facility) gatedLogger(id LoggerIdentity) *NamedLogger {
	return NewNamedLogger(id, GatedDispatchStrategy{Facility: f})
}

// Mode returns the execution mode the facility was built in.
func (f *Facility) Mode() Mode {
	return f.mode
}

// State returns the remote connection state. It is StateDisabled in test
// mode, without remote props, and when a custom remote sink is in use.
func (f *Facility) State() ConnState {
	return f.forwarder.State()
}

// Close restores every console override installed through the facility,
// closes the remote connection after giving queued records a chance to
// drain, and closes a custom remote sink that implements io.Closer. The
// facility keeps working afterwards but no longer forwards.
func (f *Facility) Close() error {
	f.closeOnce.Do(func() {
		f.closed.Store(true)
		f.mu.Lock()
		restores := f.restores
		f.restores = nil
		f.mu.Unlock()
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}

		var result *multierror.Error
		if err := f.forwarder.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if f.remote != RemoteSink(f.forwarder) {
			if c, ok := f.remote.(io.Closer); ok {
				if err := c.Close(); err != nil {
					result = multierror.Append(result, err)
				}
			}
		}
		f.closeErr = result.ErrorOrNil()
	})
	return f.closeErr
}
