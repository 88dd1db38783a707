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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pjscruggs/remotelog"
	"github.com/pjscruggs/remotelog/internal/collector"
)

func (c *command) initStartCmd() {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start accepting forwarder connections",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.config.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 0 {
				return cmd.Help()
			}

			logger, err := newLogger(cmd.OutOrStdout(), c.config.GetString(optionNameVerbosity))
			if err != nil {
				return err
			}

			path := c.config.GetString(optionNamePath)
			srv := collector.New(collector.LogTo(logger),
				collector.WithEventName(c.config.GetString(optionNameEvent)),
				collector.WithLogger(logger),
				collector.WithReadLimit(c.config.GetInt64(optionNameReadLimit)),
			)
			mux := http.NewServeMux()
			mux.Handle(path, otelhttp.NewHandler(srv, "remotelog.collect"))

			ln, err := net.Listen("tcp", c.config.GetString(optionNameAddr))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			httpSrv := &http.Server{
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.Info("collector listening", "addr", ln.Addr().String(), "path", path, "version", remotelog.Version)

			ctx, stop := signal.NotifyContext(c.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errC := make(chan error, 1)
			go func() {
				errC <- httpSrv.Serve(ln)
			}()

			select {
			case err := <-errC:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.config.GetDuration(optionNameShutdownTimeout))
			defer cancel()

			var result *multierror.Error
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				result = multierror.Append(result, fmt.Errorf("http server shutdown: %w", err))
			}
			if err := srv.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("collector close: %w", err))
			}
			return result.ErrorOrNil()
		},
	}

	cmd.Flags().String(optionNameAddr, ":8080", "listen address")
	cmd.Flags().String(optionNamePath, "/ws", "websocket endpoint path")
	cmd.Flags().String(optionNameEvent, "", "only accept this event name (empty accepts all)")
	cmd.Flags().String(optionNameVerbosity, "info", "minimum severity written: debug, info, warning, error, critical")
	cmd.Flags().Int64(optionNameReadLimit, 1<<20, "maximum frame size in bytes")
	cmd.Flags().Duration(optionNameShutdownTimeout, 5*time.Second, "graceful shutdown timeout")

	c.root.AddCommand(cmd)
}

// newLogger returns a JSON slog logger writing records at or above
// verbosity to w.
func newLogger(w io.Writer, verbosity string) (*slog.Logger, error) {
	sev, err := remotelog.ParseSeverity(verbosity)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", optionNameVerbosity, err)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: sev.Level()})), nil
}
