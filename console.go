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
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// PrintFunc is one console print operation. Operands are rendered the way
// fmt.Println renders them; a call without operands prints an empty line.
type PrintFunc func(args ...any)

// Console is a table of print operations, one per MethodKind. Any entry can
// be replaced at runtime, which is how the global override intercepts
// output. The zero value is not usable; construct with NewConsole.
type Console struct {
	stdout *SwitchableWriter
	stderr *SwitchableWriter

	mu  sync.RWMutex
	fns [len(methodKinds)]PrintFunc
}

// Std is the process-wide console writing to os.Stdout and os.Stderr.
var Std = NewConsole(os.Stdout, os.Stderr)

// NewConsole returns a console whose log, info and debug operations write
// to stdout and whose warn, error and trace operations write to stderr.
// Trace appends the calling goroutine's stack.
func NewConsole(stdout, stderr io.Writer) *Console {
	c := &Console{
		stdout: NewSwitchableWriter(stdout),
		stderr: NewSwitchableWriter(stderr),
	}
	c.fns[MethodLog.index()] = printTo(c.stdout)
	c.fns[MethodInfo.index()] = printTo(c.stdout)
	c.fns[MethodDebug.index()] = printTo(c.stdout)
	c.fns[MethodWarn.index()] = printTo(c.stderr)
	c.fns[MethodError.index()] = printTo(c.stderr)
	c.fns[MethodTrace.index()] = traceTo(c.stderr)
	return c
}

// printTo returns a PrintFunc that writes one line to w.
func printTo(w io.Writer) PrintFunc {
	return func(args ...any) {
		_, _ = fmt.Fprintln(w, args...)
	}
}

// traceTo returns a PrintFunc that writes a "Trace:" line followed by the
// current stack.
func traceTo(w io.Writer) PrintFunc {
	return func(args ...any) {
		line := append([]any{"Trace:"}, args...)
		_, _ = fmt.Fprintf(w, "%s%s", fmt.Sprintln(line...), debug.Stack())
	}
}

// Func returns the current print operation for kind. Unknown kinds resolve
// to the log operation.
func (c *Console) Func(kind MethodKind) PrintFunc {
	i := kind.index()
	if i < 0 {
		i = MethodLog.index()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fns[i]
}

// SetFunc replaces the print operation for kind and returns the previous
// one. A nil fn is ignored and the current operation is returned.
func (c *Console) SetFunc(kind MethodKind, fn PrintFunc) PrintFunc {
	i := kind.index()
	if i < 0 {
		i = MethodLog.index()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.fns[i]
	if fn != nil {
		c.fns[i] = fn
	}
	return prev
}

// SetOutput redirects the console's streams. Nil writers discard output.
// Print operations installed with SetFunc are not affected.
func (c *Console) SetOutput(stdout, stderr io.Writer) {
	c.stdout.Swap(stdout)
	c.stderr.Swap(stderr)
}

// Log prints through the log operation.
func (c *Console) Log(args ...any) { c.Func(MethodLog)(args...) }

// Info prints through the info operation.
func (c *Console) Info(args ...any) { c.Func(MethodInfo)(args...) }

// Warn prints through the warn operation.
func (c *Console) Warn(args ...any) { c.Func(MethodWarn)(args...) }

// Error prints through the error operation.
func (c *Console) Error(args ...any) { c.Func(MethodError)(args...) }

// Debug prints through the debug operation.
func (c *Console) Debug(args ...any) { c.Func(MethodDebug)(args...) }

// Trace prints through the trace operation.
func (c *Console) Trace(args ...any) { c.Func(MethodTrace)(args...) }

// baseKinds are the print operations a BaseSink snapshots. Every other
// kind is an alias of one of these.
var baseKinds = [...]MethodKind{MethodLog, MethodInfo, MethodWarn, MethodDebug, MethodError}

// BaseSink holds the console print operations as they were when it was
// captured. Printing through a BaseSink never reaches an override installed
// afterwards, so gate output cannot loop back into the gate.
type BaseSink struct {
	fns [len(baseKinds)]PrintFunc
}

// CaptureBaseSink snapshots c's log, info, warn, debug and error operations.
func CaptureBaseSink(c *Console) BaseSink {
	var b BaseSink
	for i, kind := range baseKinds {
		b.fns[i] = c.Func(kind)
	}
	return b
}

// baseSlot maps a method kind onto its snapshot entry. Trace and unknown
// kinds share the log entry.
func baseSlot(kind MethodKind) int {
	for i, k := range baseKinds {
		if k == kind {
			return i
		}
	}
	return 0
}

// Invoke prints frame with the snapshot operation for kind. A blank frame
// produces a print call without operands.
func (b BaseSink) Invoke(kind MethodKind, frame Frame) {
	b.Print(kind, frame.Operands()...)
}

// Print calls the snapshot operation for kind with args as given.
func (b BaseSink) Print(kind MethodKind, args ...any) {
	fn := b.fns[baseSlot(kind)]
	if fn == nil {
		return
	}
	fn(args...)
}
