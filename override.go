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
	"log"
	"log/slog"
	"sync"
)

// GeneralLoggerName is the logger name of records produced by the console
// override.
const GeneralLoggerName = "GENERAL"

// overrideRoute fixes the severity and color used for one console operation.
type overrideRoute struct {
	kind     MethodKind
	severity Severity
	color    Color
}

var overrideRoutes = [...]overrideRoute{
	{MethodLog, SeverityInfo, ColorWhite},
	{MethodInfo, SeverityInfo, ColorWhite},
	{MethodTrace, SeverityInfo, ColorWhite},
	{MethodWarn, SeverityWarning, ColorYellow},
	{MethodDebug, SeverityDebug, ColorBlue},
	{MethodError, SeverityError, ColorRed},
}

// InstallConsoleOverride replaces all six print operations of the facility's
// console with closures that route through the dispatch gate as the GENERAL
// logger at the global log level. With WithSlogDefault the slog default
// logger, and through it the standard log package, is redirected as well.
//
// The returned function restores whatever was installed when
// InstallConsoleOverride ran. It is safe to call more than once. In test
// mode, and after Close, nothing is installed and the returned function does
// nothing.
func (f *Facility) InstallConsoleOverride() (restore func()) {
	if f.mode == ModeTest || f.closed.Load() {
		return func() {}
	}

	general := f.gatedLogger(LoggerIdentity{
		Name:           GeneralLoggerName,
		Color:          ColorWhite,
		ConsoleEnabled: true,
		Threshold:      f.props.GlobalLogLevel,
	})

	var previous [len(overrideRoutes)]PrintFunc
	for i, r := range overrideRoutes {
		r := r
		previous[i] = f.console.SetFunc(r.kind, func(args ...any) {
			general.route(r.severity, r.kind, r.color, args)
		})
	}

	var (
		prevSlog   *slog.Logger
		prevWriter = log.Writer()
		prevFlags  = log.Flags()
	)
	if f.slogDefault {
		prevSlog = slog.Default()
		slog.SetDefault(slog.New(NewSlogHandler(f, GeneralLoggerName, f.props.GlobalLogLevel)))
	}

	var once sync.Once
	restore = func() {
		once.Do(func() {
			for i, r := range overrideRoutes {
				f.console.SetFunc(r.kind, previous[i])
			}
			if prevSlog != nil {
				slog.SetDefault(prevSlog)
				log.SetOutput(prevWriter)
				log.SetFlags(prevFlags)
			}
		})
	}

	f.mu.Lock()
	if f.closed.Load() {
		f.mu.Unlock()
		restore()
		return restore
	}
	f.restores = append(f.restores, restore)
	f.mu.Unlock()
	return restore
}
