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
	"log/slog"
	"slices"
)

// SlogHandler is an slog.Handler that turns slog records into LogRecords and
// sends them through a facility's dispatch gate under a fixed logger name.
//
// The message becomes the first argument, followed by each attribute as an
// slog.Attr. Attributes under a group are nested with slog.Group.
type SlogHandler struct {
	f         *Facility
	name      string
	threshold Severity
	attrs     []slog.Attr
	groups    []string
}

// NewSlogHandler returns a handler that logs as name and prints records at
// or above threshold.
func NewSlogHandler(f *Facility, name string, threshold Severity) *SlogHandler {
	return &SlogHandler{f: f, name: name, threshold: threshold}
}

// Enabled reports whether the facility is logging at all. Severity is not
// considered because forwarding is not threshold-gated.
func (h *SlogHandler) Enabled(context.Context, slog.Level) bool {
	return h.f.Enabled()
}

// Handle dispatches r.
func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	sev := severityFromLevel(r.Level)
	kind, color := slogRoute(sev)

	args := make([]any, 0, 1+len(h.attrs)+r.NumAttrs())
	if r.Message != "" {
		args = append(args, r.Message)
	}
	for _, a := range h.attrs {
		args = append(args, a)
	}
	recAttrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})
	for _, a := range h.qualify(recAttrs) {
		args = append(args, a)
	}

	rec := LogRecord{
		Arguments:           args,
		MethodKind:          kind,
		Color:               color,
		ThresholdAtCallSite: h.threshold,
		Severity:            sev,
		LoggerName:          h.name,
		ConsoleEnabled:      true,
	}
	spanRefFromContext(ctx).stamp(&rec)
	h.f.Dispatch(rec)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	dup := *h
	dup.attrs = append(slices.Clip(h.attrs), h.qualify(attrs)...)
	return &dup
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	dup := *h
	dup.groups = append(slices.Clip(h.groups), name)
	return &dup
}

// qualify nests attrs under the handler's open groups.
func (h *SlogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 || len(attrs) == 0 {
		return attrs
	}
	nested := make([]any, len(attrs))
	for i, a := range attrs {
		nested[i] = a
	}
	for i := len(h.groups) - 1; i >= 0; i-- {
		nested = []any{slog.Group(h.groups[i], nested...)}
	}
	return []slog.Attr{nested[0].(slog.Attr)}
}

// slogRoute picks the print operation and color for a severity.
func slogRoute(s Severity) (MethodKind, Color) {
	switch s {
	case SeverityDebug:
		return MethodDebug, ColorBlue
	case SeverityInfo:
		return MethodInfo, ColorWhite
	case SeverityWarning:
		return MethodWarn, ColorYellow
	default:
		return MethodError, ColorRed
	}
}

var _ slog.Handler = (*SlogHandler)(nil)
