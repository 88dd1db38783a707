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

// Package remotelogws is a fire-and-forget event channel over a single
// persistent websocket connection. It backs remotelog's remote forwarder but
// has no dependency on it.
//
// Events are encoded as JSON text frames of the form
//
//	{"event": "<name>", "data": <payload>}
//
// and queued on a bounded channel that a writer goroutine drains while the
// connection is up. Emit never blocks: when the queue is full the newest (or,
// with DropModeDropOldest, the oldest) frame is discarded. Frames emitted
// before the first connection are held in the queue.
//
// Basic usage:
//
//	client, err := remotelogws.New("ws://collector:8080",
//		remotelogws.WithPath("/logs"),
//		remotelogws.WithQuery(url.Values{"appID": {"checkout"}}),
//	)
//	if err != nil {
//		return err
//	}
//	client.Connect(ctx, remotelogws.Handlers{})
//	defer client.Close()
//	client.Emit("log", map[string]any{"msg": "hello"})
//
// The following environment variables are recognized when [WithEnv] is
// supplied:
//   - REMOTELOG_WS_QUEUE_SIZE: queue capacity
//   - REMOTELOG_WS_DROP_MODE: drop_newest | drop_oldest
//   - REMOTELOG_WS_RECONNECT_DELAY: initial reconnect backoff (duration string)
//   - REMOTELOG_WS_FLUSH_TIMEOUT: duration string used by Close
package remotelogws
