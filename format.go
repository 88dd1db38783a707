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
	"strings"
	"time"
)

const bannerClock = "15:04:05"

// Frame is the console-printable form of a record: a colored banner
// followed by the record's original arguments. A blank frame prints nothing
// but a bare print call.
type Frame struct {
	Banner string
	Args   []any
}

// Blank reports whether the frame came from a call without arguments.
func (f Frame) Blank() bool {
	return f.Banner == "" && len(f.Args) == 0
}

// Operands returns the values handed to a print function: the banner first,
// then the arguments untouched so the print function renders them natively.
func (f Frame) Operands() []any {
	if f.Blank() {
		return nil
	}
	ops := make([]any, 0, len(f.Args)+1)
	ops = append(ops, f.Banner)
	return append(ops, f.Args...)
}

// FormatRecord builds the frame for rec as of now.
//
// The banner reads ---[HH:MM:SS]-[ NAME ]-[ LEVEL ]--- in rec's color.
func FormatRecord(rec LogRecord, now time.Time) Frame {
	if len(rec.Arguments) == 0 {
		return Frame{}
	}
	var b strings.Builder
	b.WriteString("---[")
	b.WriteString(now.Format(bannerClock))
	b.WriteString("]-[ ")
	b.WriteString(strings.ToUpper(rec.LoggerName))
	b.WriteString(" ]-[ ")
	b.WriteString(strings.ToUpper(rec.Severity.String()))
	b.WriteString(" ]---")
	return Frame{
		Banner: paint(rec.Color, b.String()),
		Args:   rec.Arguments,
	}
}
