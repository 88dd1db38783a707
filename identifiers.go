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
	"encoding/json"
	"os"
	"runtime"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"github.com/google/uuid"
)

// Platform identifies the kind of system a process runs on.
type Platform string

// Recognized platforms.
const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformWeb     Platform = "web"
)

// Valid reports whether p is one of the recognized platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWindows, PlatformMacOS, PlatformWeb:
		return true
	}
	return false
}

// SystemIdentifiers describe the sending system to the collector. They are
// serialized into the clientInfo query parameter when connecting.
type SystemIdentifiers struct {
	Platform   Platform
	SystemName string
	// Extra holds additional identifiers. Keys platform and systemName are
	// ignored in favour of the typed fields.
	Extra map[string]any
}

// MarshalJSON flattens the identifiers into a single JSON object.
func (s SystemIdentifiers) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+2)
	for k, v := range s.Extra {
		out[k] = encodableArgument(v)
	}
	out["platform"] = s.Platform
	out["systemName"] = s.SystemName
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat JSON object written by MarshalJSON.
func (s *SystemIdentifiers) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SystemIdentifiers{}
	if p, ok := raw["platform"].(string); ok {
		s.Platform = Platform(p)
	}
	if n, ok := raw["systemName"].(string); ok {
		s.SystemName = n
	}
	delete(raw, "platform")
	delete(raw, "systemName")
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

// RemoteConnectionConfig describes the collector a facility forwards to.
type RemoteConnectionConfig struct {
	// Address is the collector's host:port or URL.
	Address string
	// AppID is sent as the appID query parameter.
	AppID string
	// LogEventName names the event each record is emitted under.
	LogEventName string
	// SocketPath is the URL path of the collector endpoint.
	SocketPath string
	// SystemIdentifiers are sent as the clientInfo query parameter.
	SystemIdentifiers SystemIdentifiers
}

// DetectSystemIdentifiers describes the current process. The platform is
// derived from runtime.GOOS; operating systems without a matching platform
// keep their GOOS name and report false from Platform.Valid. The system name
// is the Compute Engine instance name when running on Google Cloud and the
// host name otherwise. Extra carries a random sessionID.
func DetectSystemIdentifiers(ctx context.Context) SystemIdentifiers {
	return SystemIdentifiers{
		Platform:   platformFor(runtime.GOOS),
		SystemName: detectSystemName(ctx),
		Extra: map[string]any{
			"sessionID": uuid.NewString(),
		},
	}
}

// platformFor maps a GOOS value onto a Platform.
func platformFor(goos string) Platform {
	switch goos {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "android":
		return PlatformAndroid
	case "ios":
		return PlatformIOS
	case "js", "wasip1":
		return PlatformWeb
	}
	return Platform(goos)
}

// detectSystemName prefers the GCE instance name, then the host name.
func detectSystemName(ctx context.Context) string {
	if metadata.OnGCE() {
		if name, err := metadata.InstanceNameWithContext(ctx); err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}
