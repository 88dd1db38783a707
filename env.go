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
	"os"
	"strconv"
	"strings"
)

const (
	envMode            = "REMOTELOG_ENV"
	envDev             = "REMOTELOG_DEV"
	envLevel           = "REMOTELOG_LEVEL"
	envOverrideConsole = "REMOTELOG_OVERRIDE_CONSOLE"
	envRemoteLevel     = "REMOTELOG_REMOTE_LEVEL"
	envDisablePropSet  = "REMOTELOG_DISABLE_PROPAGATOR_AUTOSET"
)

// Mode is the process-level execution mode.
type Mode int

const (
	// ModeNormal routes logger calls through the dispatch gate.
	ModeNormal Mode = iota
	// ModeTest makes loggers print straight to the console and disables the
	// remote forwarder and the console override.
	ModeTest
)

// String returns "normal" or "test".
func (m Mode) String() string {
	if m == ModeTest {
		return "test"
	}
	return "normal"
}

// ModeFromEnv reports ModeTest when REMOTELOG_ENV is "test" and ModeNormal
// otherwise.
func ModeFromEnv() Mode {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envMode)), "test") {
		return ModeTest
	}
	return ModeNormal
}

// envWarnings collects problems found while reading the environment so they
// can be printed once a base sink exists.
type envWarnings []string

func (w *envWarnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// applyEnvProps overlays REMOTELOG_* settings onto props.
func applyEnvProps(props *Props, warn *envWarnings) {
	props.IsDev = parseBoolEnv(envDev, props.IsDev, warn)
	props.GlobalLogLevel = parseSeverityEnv(envLevel, props.GlobalLogLevel, warn)
	props.OverrideConsoleLoggers = parseBoolEnv(envOverrideConsole, props.OverrideConsoleLoggers, warn)
}

// parseBoolEnv reads a boolean variable, retaining current when the variable
// is unset or malformed.
func parseBoolEnv(name string, current bool, warn *envWarnings) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return current
	}
	if b, ok := parseBool(raw); ok {
		return b
	}
	warn.add("invalid boolean %s=%q", name, raw)
	return current
}

// parseSeverityEnv reads a severity variable, retaining current when the
// variable is unset or malformed.
func parseSeverityEnv(name string, current Severity, warn *envWarnings) Severity {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return current
	}
	s, err := ParseSeverity(raw)
	if err != nil {
		warn.add("invalid severity %s=%q", name, raw)
		return current
	}
	return s
}

// parseBool accepts yes/on/1/true and no/off/0/false tokens.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "on":
		return true, true
	case "0", "f", "false", "no", "off":
		return false, true
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b, true
	}
	return false, false
}
