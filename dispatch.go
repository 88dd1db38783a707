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

// Dispatch runs rec through the gate: the global enable check, then the
// remote forwarding decision, then the console threshold. It prints at most
// once and forwards at most once. Panics raised by decision functions,
// sinks or print operations are recovered and reported through the base
// sink; Dispatch itself never panics. A panic while forwarding does not
// suppress the print.
func (f *Facility) Dispatch(rec LogRecord) {
	defer func() {
		if r := recover(); r != nil {
			f.reportPanic(r)
		}
	}()

	if !f.Enabled() {
		return
	}

	// Forwarding is gated by the remote threshold only, never by the
	// logger's console threshold.
	if f.forwarding() && MeetsThreshold(f.remoteThreshold, rec.Severity) {
		f.sendSafely(rec)
	}

	if !rec.ConsoleEnabled || !MeetsThreshold(rec.ThresholdAtCallSite, rec.Severity) {
		return
	}
	f.base.Invoke(rec.MethodKind, FormatRecord(rec, f.clock()))
}

// Enabled reports whether logging is on at all: always in dev mode,
// otherwise only while the production override says so.
func (f *Facility) Enabled() bool {
	if f.props.IsDev {
		return true
	}
	return f.props.LogInProduction != nil && f.props.LogInProduction()
}

// forwarding evaluates the per-call remote forwarding decision.
func (f *Facility) forwarding() bool {
	if f.closed.Load() {
		return false
	}
	return f.props.LogRemotely != nil && f.props.LogRemotely()
}

// sendSafely forwards rec. A panicking sink is reported without stopping
// the console print that follows.
func (f *Facility) sendSafely(rec LogRecord) {
	defer func() {
		if r := recover(); r != nil {
			f.reportPanic(r)
		}
	}()
	f.remote.Send(rec)
}

// reportPanic prints a recovered panic through the base sink. A panic from
// the base sink itself is swallowed.
func (f *Facility) reportPanic(r any) {
	defer func() { _ = recover() }()
	f.base.Print(MethodError, "[remotelog] recovered panic while dispatching:", r)
}
