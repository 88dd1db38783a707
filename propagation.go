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
	"net/http"
	"os"
	"sync"

	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var installPropagatorOnce sync.Once

// EnsurePropagation installs a composite OpenTelemetry text map propagator
// unless REMOTELOG_DISABLE_PROPAGATOR_AUTOSET is truthy. It runs at most once
// per process and is called by New whenever a remote connection is built.
//
// The installed propagator order is:
//  1. CloudTraceOneWayPropagator (extracts X-Cloud-Trace-Context only)
//  2. TraceContext (W3C traceparent/tracestate)
//  3. Baggage
//
// Applications remain free to install their own propagator afterwards with
// otel.SetTextMapPropagator.
func EnsurePropagation() {
	installPropagatorOnce.Do(func() {
		if disableAutoSet() {
			return
		}
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			gcppropagator.CloudTraceOneWayPropagator{},
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})
}

// disableAutoSet reports whether REMOTELOG_DISABLE_PROPAGATOR_AUTOSET is set
// to a truthy value.
func disableAutoSet() bool {
	b, ok := parseBool(os.Getenv(envDisablePropSet))
	return ok && b
}

// handshakeHeader returns the headers sent with the websocket handshake: the
// library user agent plus whatever trace context the global propagator
// injects from ctx.
func handshakeHeader(ctx context.Context) http.Header {
	header := http.Header{}
	header.Set("User-Agent", UserAgent)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
	return header
}
