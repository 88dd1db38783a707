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
	"encoding/json"
	"fmt"
)

// MethodKind names the console print operation a record is printed with.
type MethodKind string

// Console print operations.
const (
	MethodLog   MethodKind = "log"
	MethodInfo  MethodKind = "info"
	MethodWarn  MethodKind = "warn"
	MethodError MethodKind = "error"
	MethodDebug MethodKind = "debug"
	MethodTrace MethodKind = "trace"
)

// methodKinds lists every print operation in console table order.
var methodKinds = [...]MethodKind{MethodLog, MethodInfo, MethodWarn, MethodError, MethodDebug, MethodTrace}

// index returns the console table slot for m, or -1 when m is unknown.
func (m MethodKind) index() int {
	for i, k := range methodKinds {
		if k == m {
			return i
		}
	}
	return -1
}

// LogRecord is the unit of data produced by one logging call. It is built
// once, handed to the dispatch gate and then discarded. The JSON field names
// are part of the remote wire contract.
type LogRecord struct {
	Arguments           []any      `json:"arguments"`
	MethodKind          MethodKind `json:"methodKind"`
	Color               Color      `json:"color"`
	ThresholdAtCallSite Severity   `json:"thresholdAtCallSite"`
	Severity            Severity   `json:"severity"`
	LoggerName          string     `json:"loggerName"`
	ConsoleEnabled      bool       `json:"consoleEnabled"`

	// TraceID and SpanID are set only by loggers bound to a span context.
	TraceID string `json:"traceID,omitempty"`
	SpanID  string `json:"spanID,omitempty"`
}

// wireRecord mirrors LogRecord without its MarshalJSON method.
type wireRecord LogRecord

// MarshalJSON encodes the record with every argument reduced to a
// JSON-friendly value. Arguments that encoding/json rejects fall back to
// their fmt.Sprint rendering so a single odd value never drops the record.
func (r LogRecord) MarshalJSON() ([]byte, error) {
	w := wireRecord(r)
	w.Arguments = make([]any, len(r.Arguments))
	for i, arg := range r.Arguments {
		w.Arguments[i] = encodableArgument(arg)
	}
	if w.Arguments == nil {
		w.Arguments = []any{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a record produced by MarshalJSON. Arguments come
// back as generic JSON values.
func (r *LogRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode log record: %w", err)
	}
	*r = LogRecord(w)
	return nil
}

// String renders the record for diagnostics.
func (r LogRecord) String() string {
	return fmt.Sprintf("%s/%s %s %v", r.LoggerName, r.Severity, r.MethodKind, r.Arguments)
}
