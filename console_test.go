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
	"bytes"
	"strings"
	"testing"
)

// TestConsoleStreams verifies which stream each operation writes to.
func TestConsoleStreams(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	c := NewConsole(&stdout, &stderr)

	c.Log("log", 1)
	c.Info("info")
	c.Debug("debug")
	c.Warn("warn")
	c.Error("error")

	if got, want := stdout.String(), "log 1\ninfo\ndebug\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	if got, want := stderr.String(), "warn\nerror\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

// TestConsoleTraceIncludesStack verifies trace prints a Trace line followed
// by a goroutine stack.
func TestConsoleTraceIncludesStack(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	c := NewConsole(nil, &stderr)
	c.Trace("here")

	out := stderr.String()
	if !strings.HasPrefix(out, "Trace: here\n") {
		t.Fatalf("trace output starts with %q", out)
	}
	if !strings.Contains(out, "goroutine") {
		t.Fatalf("trace output has no stack: %q", out)
	}
}

// TestConsoleEmptyPrint verifies a call without operands prints a blank line.
func TestConsoleEmptyPrint(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	NewConsole(&stdout, nil).Log()
	if stdout.String() != "\n" {
		t.Fatalf("stdout = %q, want blank line", stdout.String())
	}
}

// TestConsoleSetFunc verifies replacement returns the previous operation and
// ignores nil.
func TestConsoleSetFunc(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	c := NewConsole(&stdout, nil)

	var got []any
	prev := c.SetFunc(MethodInfo, func(args ...any) { got = args })
	c.Info("captured")
	if len(got) != 1 || got[0] != "captured" {
		t.Fatalf("replacement received %v", got)
	}

	prev("restored")
	if stdout.String() != "restored\n" {
		t.Fatalf("previous operation wrote %q", stdout.String())
	}

	if cur := c.SetFunc(MethodInfo, nil); cur == nil {
		t.Fatalf("SetFunc(nil) returned nil")
	}
	c.Info("still replaced")
	if got[0] != "still replaced" {
		t.Fatalf("SetFunc(nil) changed the operation")
	}
}

// TestConsoleSetOutput verifies streams can be redirected after creation.
func TestConsoleSetOutput(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	c := NewConsole(&first, &first)
	c.SetOutput(&second, nil)

	c.Log("moved")
	c.Error("discarded")

	if first.Len() != 0 {
		t.Fatalf("old stdout received %q", first.String())
	}
	if second.String() != "moved\n" {
		t.Fatalf("new stdout = %q, want moved", second.String())
	}
}

// TestBaseSinkSnapshot verifies the snapshot ignores later replacements and
// aliases trace onto log.
func TestBaseSinkSnapshot(t *testing.T) {
	t.Parallel()

	c, rec := newRecordingConsole()
	base := CaptureBaseSink(c)
	c.SetFunc(MethodWarn, func(...any) { t.Fatalf("replacement reached through base sink") })

	base.Print(MethodWarn, "w")
	base.Print(MethodTrace, "t")
	base.Invoke(MethodDebug, Frame{})
	base.Invoke(MethodError, Frame{Banner: "B", Args: []any{"e"}})

	calls := rec.Calls()
	if len(calls) != 4 {
		t.Fatalf("prints = %d, want 4", len(calls))
	}
	wantKinds := []MethodKind{MethodWarn, MethodLog, MethodDebug, MethodError}
	for i, c := range calls {
		if c.kind != wantKinds[i] {
			t.Errorf("print %d kind = %s, want %s", i, c.kind, wantKinds[i])
		}
	}
	if len(calls[2].args) != 0 {
		t.Fatalf("blank frame printed %v, want no operands", calls[2].args)
	}
	if len(calls[3].args) != 2 || calls[3].args[0] != "B" {
		t.Fatalf("frame operands = %v", calls[3].args)
	}
}

// TestBaseSinkZeroValue verifies an empty sink drops prints.
func TestBaseSinkZeroValue(t *testing.T) {
	t.Parallel()

	var base BaseSink
	base.Print(MethodError, "nowhere")
}
