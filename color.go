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

// Color tags the banner of a console frame. The zero value prints without
// any escape sequence.
type Color string

// Supported color tags.
const (
	ColorNone    Color = ""
	ColorWhite   Color = "white"
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorYellow  Color = "yellow"
	ColorBlue    Color = "blue"
	ColorMagenta Color = "magenta"
	ColorCyan    Color = "cyan"
)

const ansiReset = "\033[0m"

// ANSI returns the escape sequence that switches a terminal to c. Unknown
// tags and ColorNone return the empty string.
func (c Color) ANSI() string {
	switch c {
	case ColorWhite:
		return "\033[37m"
	case ColorRed:
		return "\033[31m"
	case ColorGreen:
		return "\033[32m"
	case ColorYellow:
		return "\033[33m"
	case ColorBlue:
		return "\033[34m"
	case ColorMagenta:
		return "\033[35m"
	case ColorCyan:
		return "\033[36m"
	}
	return ""
}

// paint wraps s in c's escape sequence and a reset.
func paint(c Color, s string) string {
	code := c.ANSI()
	if code == "" {
		return s
	}
	return code + s + ansiReset
}
