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

// SinkStrategy decides where a named logger's records go. It is chosen once
// when the logger is created.
type SinkStrategy interface {
	Route(rec LogRecord)
}

// DirectConsoleStrategy hands a record's arguments straight to the console's
// current print operation for its method kind. It bypasses the dispatch
// gate, the formatter and the remote forwarder.
type DirectConsoleStrategy struct {
	Console *Console
}

// Route prints rec's arguments unformatted.
func (s DirectConsoleStrategy) Route(rec LogRecord) {
	s.Console.Func(rec.MethodKind)(rec.Arguments...)
}

// GatedDispatchStrategy sends records through a facility's dispatch gate.
type GatedDispatchStrategy struct {
	Facility *Facility
}

// Route dispatches rec.
func (s GatedDispatchStrategy) Route(rec LogRecord) {
	s.Facility.Dispatch(rec)
}

var (
	_ SinkStrategy = DirectConsoleStrategy{}
	_ SinkStrategy = GatedDispatchStrategy{}
)
