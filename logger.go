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

import "context"

// Logger has one print method per severity. Log is the plain default call
// and logs at Info.
type Logger interface {
	Log(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warning(args ...any)
	Error(args ...any)
	Critical(args ...any)
}

// LoggerIdentity is the fixed configuration of a named logger.
type LoggerIdentity struct {
	Name           string
	Color          Color
	ConsoleEnabled bool
	Threshold      Severity
}

// LoggerOption adjusts a named logger's identity at creation.
type LoggerOption func(*LoggerIdentity)

// WithConsoleOutput turns console printing on or off for the logger.
// Records are still forwarded when console output is off. Defaults to true.
func WithConsoleOutput(enabled bool) LoggerOption {
	return func(id *LoggerIdentity) {
		id.ConsoleEnabled = enabled
	}
}

// WithThreshold sets the minimum severity the logger prints to the console.
// Defaults to SeverityDebug.
func WithThreshold(s Severity) LoggerOption {
	return func(id *LoggerIdentity) {
		id.Threshold = s
	}
}

// NamedLogger is the Logger returned by Facility.NewLogger. It is immutable
// and safe for concurrent use; loggers never share state with each other.
type NamedLogger struct {
	id       LoggerIdentity
	strategy SinkStrategy
	span     spanRef
}

// NewNamedLogger builds a logger that routes every record through strategy.
func NewNamedLogger(id LoggerIdentity, strategy SinkStrategy) *NamedLogger {
	return &NamedLogger{id: id, strategy: strategy}
}

// Identity returns the logger's configuration.
func (l *NamedLogger) Identity() LoggerIdentity {
	return l.id
}

// WithContext returns a copy of l whose records carry the trace and span IDs
// of the span active in ctx.
func (l *NamedLogger) WithContext(ctx context.Context) *NamedLogger {
	dup := *l
	dup.span = spanRefFromContext(ctx)
	return &dup
}

// Log logs args at Info with the logger's own color.
func (l *NamedLogger) Log(args ...any) {
	l.route(SeverityInfo, MethodLog, l.id.Color, args)
}

// Debug logs args at Debug in cyan.
func (l *NamedLogger) Debug(args ...any) {
	l.route(SeverityDebug, MethodDebug, ColorCyan, args)
}

// Info logs args at Info in blue.
func (l *NamedLogger) Info(args ...any) {
	l.route(SeverityInfo, MethodInfo, ColorBlue, args)
}

// Warning logs args at Warning in yellow.
func (l *NamedLogger) Warning(args ...any) {
	l.route(SeverityWarning, MethodWarn, ColorYellow, args)
}

// Error logs args at Error in red.
func (l *NamedLogger) Error(args ...any) {
	l.route(SeverityError, MethodError, ColorRed, args)
}

// Critical logs args at Critical in red through the error print operation.
func (l *NamedLogger) Critical(args ...any) {
	l.route(SeverityCritical, MethodError, ColorRed, args)
}

func (l *NamedLogger) route(s Severity, kind MethodKind, c Color, args []any) {
	rec := LogRecord{
		Arguments:           args,
		MethodKind:          kind,
		Color:               c,
		ThresholdAtCallSite: l.id.Threshold,
		Severity:            s,
		LoggerName:          l.id.Name,
		ConsoleEnabled:      l.id.ConsoleEnabled,
	}
	l.span.stamp(&rec)
	l.strategy.Route(rec)
}

var _ Logger = (*NamedLogger)(nil)
