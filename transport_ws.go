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
	"fmt"
	"net/url"

	"github.com/pjscruggs/remotelog/remotelogws"
)

// Query parameter names sent with the connection handshake.
const (
	QueryClientInfo = "clientInfo"
	QueryAppID      = "appID"
)

// wsTransport adapts a remotelogws.Client to Transport.
type wsTransport struct {
	client *remotelogws.Client
}

// Connect starts the client's connection loop.
func (t wsTransport) Connect(ctx context.Context, events ConnectionEvents) {
	t.client.Connect(ctx, remotelogws.Handlers{
		OnConnect: events.OnConnect,
		OnError:   events.OnError,
	})
}

// Emit queues one event.
func (t wsTransport) Emit(event string, payload any) {
	t.client.Emit(event, payload)
}

// Close drains and closes the connection.
func (t wsTransport) Close() error {
	return t.client.Close()
}

// ConnectionQuery returns the handshake query for cfg: clientInfo holds the
// JSON-encoded system identifiers and appID the application ID.
func ConnectionQuery(cfg RemoteConnectionConfig) (url.Values, error) {
	info, err := json.Marshal(cfg.SystemIdentifiers)
	if err != nil {
		return nil, fmt.Errorf("encode system identifiers: %w", err)
	}
	return url.Values{
		QueryClientInfo: {string(info)},
		QueryAppID:      {cfg.AppID},
	}, nil
}

// WebSocketTransportFactory returns the default TransportFactory. Each
// transport dials cfg.Address at cfg.SocketPath over a single websocket,
// carrying the connection query and trace-context handshake headers.
func WebSocketTransportFactory(opts ...remotelogws.Option) TransportFactory {
	return func(ctx context.Context, cfg RemoteConnectionConfig) (Transport, error) {
		query, err := ConnectionQuery(cfg)
		if err != nil {
			return nil, err
		}
		all := append([]remotelogws.Option{
			remotelogws.WithPath(cfg.SocketPath),
			remotelogws.WithQuery(query),
			remotelogws.WithHeader(handshakeHeader(ctx)),
		}, opts...)
		client, err := remotelogws.New(cfg.Address, all...)
		if err != nil {
			return nil, err
		}
		return wsTransport{client: client}, nil
	}
}
