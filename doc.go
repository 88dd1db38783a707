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

// Package remotelog is a client-side logging facility. It wraps a process's
// console output with named, colorized, severity-filtered loggers and can
// mirror every record to a remote collector over a single persistent
// websocket.
//
// The entry point is [New], which builds a [Facility] from [Props]:
//   - A snapshot of the console's print operations is taken first, so
//     output produced by the facility never loops back into an overridden
//     console.
//   - When [Props.RemoteLoggingProps] is set, a [Forwarder] starts
//     connecting in the background. Records are emitted fire-and-forget;
//     connection errors are printed, never returned to the log call site.
//   - When [Props.OverrideConsoleLoggers] is true, the console's log, info,
//     trace, warn, debug and error operations are replaced by the GENERAL
//     logger. [Facility.InstallConsoleOverride] returns a restore function
//     and [Facility.Close] undoes every override it installed.
//
// Every logger call is packaged as a [LogRecord] and passes through the
// dispatch gate. Nothing happens unless [Props.IsDev] is true or
// [Props.LogInProduction] returns true. Records are forwarded whenever
// [Props.LogRemotely] returns true, independent of the logger's threshold,
// and printed when console output is on and the threshold is met. A printed
// record is preceded by a colored banner:
//
//	---[15:04:05]-[ PAYMENTS ]-[ WARNING ]---
//
// Setting REMOTELOG_ENV=test switches to test mode: loggers print their
// arguments straight through the console, and no connection or override is
// made.
//
// # Quick Start
//
//	f, err := remotelog.New(remotelog.Props{
//	    IsDev:          true,
//	    LogRemotely:    func() bool { return true },
//	    GlobalLogLevel: remotelog.SeverityInfo,
//	    RemoteLoggingProps: &remotelog.RemoteConnectionConfig{
//	        Address:           "logs.example.com:8080",
//	        AppID:             "checkout",
//	        LogEventName:      "log",
//	        SocketPath:        "/ws",
//	        SystemIdentifiers: remotelog.DetectSystemIdentifiers(ctx),
//	    },
//	})
//	if err != nil {
//	    log.Fatalf("create remotelog facility: %v", err)
//	}
//	defer f.Close()
//
//	payments := f.NewLogger("payments", remotelog.ColorGreen)
//	payments.Warning("card declined", orderID)
//
// # Subpackages
//
//   - [github.com/pjscruggs/remotelog/remotelogws] is the websocket client
//     behind the default transport: a bounded send queue, reconnect with
//     backoff and a flush on close.
//   - cmd/remotelog-collector is a small collector that accepts connections
//     and writes every received record as a JSON log line.
package remotelog
