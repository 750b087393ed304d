// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlcheck/graphqlhttp"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [options]",
		Short: "Validate queries sent over HTTP",
		Long: heredoc.Doc(`
			Serve an endpoint at /graphql that accepts GraphQL requests and
			responds with {"valid": ..., "errors": [...]} instead of executing them.
		`),
		Example: heredoc.Doc(`
			$ gqlcheck serve --schema schema.graphql --addr localhost:8080
			$ curl -s -d '{"query": "{ cheese { name } }"}' \
			    -H 'Content-Type: application/json' localhost:8080/graphql
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Int("cache-size", graphqlhttp.DefaultCacheSize, "Number of validation results to remember (0 disables)")
	cmd.Flags().Duration("report-period", time.Minute, "How often to log collected metrics")
	cmd.Flags().Float64("trace-fraction", 0, "Fraction of requests to trace")
	cmd.Flags().String("log-level", "info", "Minimum log level: debug, info, warn, or error")
	v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	v.BindPFlag("cache_size", cmd.Flags().Lookup("cache-size"))
	v.BindPFlag("report_period", cmd.Flags().Lookup("report-period"))
	v.BindPFlag("trace_fraction", cmd.Flags().Lookup("trace-fraction"))
	v.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	return cmd
}

// newLogger builds a production zap logger that logs at level and above.
func newLogger(level string, opts ...zap.Option) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, xerrors.Errorf("log level %q: %w", level, err)
	}
	return cfg.Build(opts...)
}

func runServe(ctx context.Context, v *viper.Viper) error {
	logger, err := newLogger(v.GetString("log_level"))
	if err != nil {
		return xerrors.Errorf("serve: %w", err)
	}
	defer logger.Sync() // nolint

	schema, err := loadSchema(v.GetString("schema"))
	if err != nil {
		return err
	}

	views := append([]*view.View{graphqlhttp.ValidationErrorsView}, ochttp.DefaultServerViews...)
	if err := view.Register(views...); err != nil {
		return xerrors.Errorf("serve: %w", err)
	}
	defer view.Unregister(views...)
	exp := &logExporter{log: logger}
	view.RegisterExporter(exp)
	defer view.UnregisterExporter(exp)
	view.SetReportingPeriod(v.GetDuration("report_period"))
	trace.RegisterExporter(exp)
	defer trace.UnregisterExporter(exp)
	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(v.GetFloat64("trace_fraction")),
	})

	handler, err := graphqlhttp.NewHandlerWithCacheSize(schema, logger, v.GetInt("cache_size"))
	if err != nil {
		return xerrors.Errorf("serve: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/graphql", handler)
	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           &ochttp.Handler{Handler: mux},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return xerrors.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return xerrors.Errorf("serve: %w", err)
	}
	return nil
}
