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
	"sync"
)

// SwitchableWriter is an io.Writer whose destination can be replaced while
// it is in use. Console streams are SwitchableWriters so a process can
// redirect stdout/stderr output without rebuilding the console table.
//
// Each Write is delivered to the destination under a lock, so lines printed
// from concurrent goroutines never interleave.
type SwitchableWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSwitchableWriter returns a SwitchableWriter writing to w. A nil w
// discards output.
func NewSwitchableWriter(w io.Writer) *SwitchableWriter {
	if w == nil {
		w = io.Discard
	}
	return &SwitchableWriter{w: w}
}

// Write sends p to the current destination.
func (sw *SwitchableWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	n, err := sw.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("write via switchable writer: %w", err)
	}
	return n, nil
}

// Swap installs w as the destination and returns the previous one. The
// previous writer is not closed. A nil w discards output.
func (sw *SwitchableWriter) Swap(w io.Writer) io.Writer {
	if w == nil {
		w = io.Discard
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	prev := sw.w
	sw.w = w
	return prev
}

// Writer returns the current destination.
func (sw *SwitchableWriter) Writer() io.Writer {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w
}

var _ io.Writer = (*SwitchableWriter)(nil)
