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
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultQueueSize         = 1024
	defaultReconnectDelay    = 500 * time.Millisecond
	defaultMaxReconnectDelay = 30 * time.Second
	defaultHandshakeTimeout  = 10 * time.Second
	defaultWriteTimeout      = 5 * time.Second
	defaultFlushTimeout      = 2 * time.Second

	envQueueSize      = "REMOTELOG_WS_QUEUE_SIZE"
	envDropMode       = "REMOTELOG_WS_DROP_MODE"
	envReconnectDelay = "REMOTELOG_WS_RECONNECT_DELAY"
	envFlushTimeout   = "REMOTELOG_WS_FLUSH_TIMEOUT"
)

// DropMode controls which frame is discarded when the queue is full.
type DropMode int

const (
	// DropModeDropNewest discards the frame being emitted.
	DropModeDropNewest DropMode = iota
	// DropModeDropOldest discards the oldest queued frame to make room.
	DropModeDropOldest
)

// DropHandler observes discarded frames.
type DropHandler func(event string)

// Config controls client behaviour.
type Config struct {
	Path              string
	Query             url.Values
	Header            http.Header
	QueueSize         int
	DropMode          DropMode
	OnDrop            DropHandler
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration
	FlushTimeout      time.Duration
	ErrorWriter       io.Writer

	dialer *websocket.Dialer
}

// Option customizes client configuration.
type Option func(*Config)

// WithPath sets the URL path of the websocket endpoint.
func WithPath(path string) Option {
	return func(cfg *Config) {
		cfg.Path = path
	}
}

// WithQuery adds connection-time query parameters. Repeated options merge.
func WithQuery(values url.Values) Option {
	return func(cfg *Config) {
		if cfg.Query == nil {
			cfg.Query = url.Values{}
		}
		for k, vs := range values {
			for _, v := range vs {
				cfg.Query.Add(k, v)
			}
		}
	}
}

// WithHeader adds handshake request headers. Repeated options merge.
func WithHeader(header http.Header) Option {
	return func(cfg *Config) {
		if cfg.Header == nil {
			cfg.Header = http.Header{}
		}
		for k, vs := range header {
			for _, v := range vs {
				cfg.Header.Add(k, v)
			}
		}
	}
}

// WithQueueSize sets the queue capacity. Values below 1 use the default.
func WithQueueSize(size int) Option {
	return func(cfg *Config) {
		cfg.QueueSize = size
	}
}

// WithDropMode sets the queue overflow strategy.
func WithDropMode(mode DropMode) Option {
	return func(cfg *Config) {
		cfg.DropMode = mode
	}
}

// WithOnDrop registers a callback invoked with the event name of every
// discarded frame.
func WithOnDrop(fn DropHandler) Option {
	return func(cfg *Config) {
		cfg.OnDrop = fn
	}
}

// WithReconnectDelay sets the initial and maximum backoff between
// connection attempts. The delay doubles after every consecutive failure.
func WithReconnectDelay(initial, max time.Duration) Option {
	return func(cfg *Config) {
		cfg.ReconnectDelay = initial
		cfg.MaxReconnectDelay = max
	}
}

// WithHandshakeTimeout bounds the websocket opening handshake.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.HandshakeTimeout = timeout
	}
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.WriteTimeout = timeout
	}
}

// WithFlushTimeout limits how long Close waits for queued frames to drain.
func WithFlushTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.FlushTimeout = timeout
	}
}

// WithErrorWriter directs encoding errors and panic reports to w. Use nil
// to silence them.
func WithErrorWriter(w io.Writer) Option {
	return func(cfg *Config) {
		cfg.ErrorWriter = w
	}
}

// WithEnv overlays configuration from environment variables.
func WithEnv() Option {
	return func(cfg *Config) {
		applyEnv(cfg)
	}
}

// buildConfig applies options over defaults and clamps invalid values.
func buildConfig(opts []Option) Config {
	cfg := Config{
		QueueSize:         defaultQueueSize,
		DropMode:          DropModeDropNewest,
		ReconnectDelay:    defaultReconnectDelay,
		MaxReconnectDelay: defaultMaxReconnectDelay,
		HandshakeTimeout:  defaultHandshakeTimeout,
		WriteTimeout:      defaultWriteTimeout,
		FlushTimeout:      defaultFlushTimeout,
		ErrorWriter:       os.Stderr,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = cfg.ReconnectDelay
	}
	if cfg.dialer == nil {
		cfg.dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		}
	}

	return cfg
}

// applyEnv overlays configuration from environment variables.
func applyEnv(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv(envQueueSize)); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			cfg.QueueSize = size
		}
	}

	if raw := strings.TrimSpace(os.Getenv(envDropMode)); raw != "" {
		switch strings.ToLower(raw) {
		case "drop_newest", "drop-newest":
			cfg.DropMode = DropModeDropNewest
		case "drop_oldest", "drop-oldest":
			cfg.DropMode = DropModeDropOldest
		}
	}

	if raw := strings.TrimSpace(os.Getenv(envReconnectDelay)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.ReconnectDelay = d
		}
	}

	if raw := strings.TrimSpace(os.Getenv(envFlushTimeout)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.FlushTimeout = d
		}
	}
}
