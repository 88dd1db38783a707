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

	"go.opentelemetry.io/otel/trace"
)

// spanRef is the trace correlation stamped onto records.
type spanRef struct {
	traceID string
	spanID  string
}

// spanRefFromContext extracts the active span context from ctx. The result
// is empty when ctx carries no valid span.
func spanRefFromContext(ctx context.Context) spanRef {
	if ctx == nil {
		return spanRef{}
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return spanRef{}
	}
	return spanRef{
		traceID: sc.TraceID().String(),
		spanID:  sc.SpanID().String(),
	}
}

// stamp copies the span reference onto rec.
func (s spanRef) stamp(rec *LogRecord) {
	rec.TraceID = s.traceID
	rec.SpanID = s.spanID
}
