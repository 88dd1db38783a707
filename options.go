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
	"time"

	"github.com/pjscruggs/remotelog/remotelogws"
)

// Props is the construction input of a Facility.
type Props struct {
	// IsDev enables logging unconditionally.
	IsDev bool
	// LogRemotely is consulted on every call; forwarding happens only while
	// it returns true. Nil disables forwarding.
	LogRemotely func() bool
	// GlobalLogLevel is the console threshold of the GENERAL logger used by
	// the console override.
	GlobalLogLevel Severity
	// OverrideConsoleLoggers installs the console override during New.
	OverrideConsoleLoggers bool
	// LogInProduction is consulted on every call when IsDev is false;
	// nothing is printed or forwarded while it returns false. Nil means
	// false.
	LogInProduction func() bool
	// RemoteLoggingProps enables the remote forwarder when set.
	RemoteLoggingProps *RemoteConnectionConfig
}

// Option configures a Facility during New. Options are applied in order.
// When an option and a REMOTELOG_* variable set the same thing, the option
// wins.
type Option func(*options)

// options holds settings that are not part of Props. Pointer fields tell an
// explicit zero value apart from an unset option.
type options struct {
	ctx              context.Context
	console          *Console
	mode             *Mode
	clock            func() time.Time
	remoteSink       RemoteSink
	transportFactory TransportFactory
	remoteThreshold  *Severity
	slogDefault      bool
	useEnv           bool
	wsOptions        []remotelogws.Option
}

// WithContext sets the context used for connecting to the collector and for
// trace propagation into the connection handshake. Cancelling it stops the
// remote connection. Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithConsole selects the console the facility prints to and overrides.
// Defaults to Std.
func WithConsole(c *Console) Option {
	return func(o *options) {
		o.console = c
	}
}

// WithMode forces the execution mode instead of reading REMOTELOG_ENV.
func WithMode(m Mode) Option {
	return func(o *options) {
		mode := m
		o.mode = &mode
	}
}

// WithClock replaces the clock used for banner timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithRemoteSink supplies the remote sink directly. The facility then does
// not build a transport and ignores RemoteLoggingProps. A sink implementing
// io.Closer is closed by Facility.Close. Ignored in test mode.
func WithRemoteSink(sink RemoteSink) Option {
	return func(o *options) {
		o.remoteSink = sink
	}
}

// WithTransportFactory replaces the websocket transport used by the remote
// forwarder.
func WithTransportFactory(factory TransportFactory) Option {
	return func(o *options) {
		o.transportFactory = factory
	}
}

// WithRemoteThreshold only forwards records at or above s. By default every
// record that passes the global enable check is forwarded regardless of
// severity.
func WithRemoteThreshold(s Severity) Option {
	return func(o *options) {
		threshold := s
		o.remoteThreshold = &threshold
	}
}

// WithSlogDefault makes the console override also replace slog's default
// logger, and through it the standard log package, with a handler that
// routes into the dispatch gate.
func WithSlogDefault(enabled bool) Option {
	return func(o *options) {
		o.slogDefault = enabled
	}
}

// WithEnv overlays REMOTELOG_DEV, REMOTELOG_LEVEL, REMOTELOG_OVERRIDE_CONSOLE
// and REMOTELOG_REMOTE_LEVEL onto Props and options.
func WithEnv() Option {
	return func(o *options) {
		o.useEnv = true
	}
}

// WithWebSocketOptions passes options through to the default websocket
// transport.
func WithWebSocketOptions(opts ...remotelogws.Option) Option {
	return func(o *options) {
		o.wsOptions = append(o.wsOptions, opts...)
	}
}

// buildOptions applies opts over defaults.
func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.console == nil {
		o.console = Std
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return o
}
