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
	"log/slog"
	"strings"
)

// Severity is the importance of a log record. The five severities are
// totally ordered from SeverityDebug (lowest) to SeverityCritical (highest).
type Severity int

const (
	// SeverityDebug is diagnostic chatter, the lowest severity.
	SeverityDebug Severity = iota
	// SeverityInfo is routine operational output.
	SeverityInfo
	// SeverityWarning flags something unexpected but recoverable.
	SeverityWarning
	// SeverityError reports a failed operation.
	SeverityError
	// SeverityCritical reports a failure that needs immediate attention.
	SeverityCritical
)

// Rank returns the position of s in the severity order, Debug=0 through
// Critical=4. Values outside the defined range are clamped.
func Rank(s Severity) int {
	switch {
	case s < SeverityDebug:
		return int(SeverityDebug)
	case s > SeverityCritical:
		return int(SeverityCritical)
	}
	return int(s)
}

// MeetsThreshold reports whether a record of severity s passes threshold.
func MeetsThreshold(threshold, s Severity) bool {
	return Rank(threshold) <= Rank(s)
}

// String returns the upper-case name used in console banners and on the wire.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// Level maps s onto slog's level scale. Critical sits above slog.LevelError
// with the same spacing slog uses between its own levels.
func (s Severity) Level() slog.Level {
	switch {
	case s <= SeverityDebug:
		return slog.LevelDebug
	case s == SeverityInfo:
		return slog.LevelInfo
	case s == SeverityWarning:
		return slog.LevelWarn
	case s == SeverityError:
		return slog.LevelError
	default:
		return levelCritical
	}
}

const levelCritical slog.Level = 12

// severityFromLevel is the inverse of Severity.Level. Intermediate slog
// levels round down to the nearest defined severity.
func severityFromLevel(level slog.Level) Severity {
	switch {
	case level < slog.LevelInfo:
		return SeverityDebug
	case level < slog.LevelWarn:
		return SeverityInfo
	case level < slog.LevelError:
		return SeverityWarning
	case level < levelCritical:
		return SeverityError
	default:
		return SeverityCritical
	}
}

// ParseSeverity converts a severity name into a Severity. Matching is
// case-insensitive and accepts WARN and CRIT as short forms.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return SeverityDebug, nil
	case "INFO":
		return SeverityInfo, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	case "CRITICAL", "CRIT":
		return SeverityCritical, nil
	}
	return SeverityDebug, fmt.Errorf("remotelog: unknown severity %q", raw)
}

// MarshalText encodes s by name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityDebug || s > SeverityCritical {
		return nil, fmt.Errorf("remotelog: cannot marshal severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
