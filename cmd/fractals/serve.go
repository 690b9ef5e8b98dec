package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fractals/pkg/middleware"
	"github.com/vango-dev/fractals/pkg/nav"
	"github.com/vango-dev/fractals/pkg/server"
)

func serveCmd(dir *string) *cobra.Command {
	var (
		addr string
		base string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Every path under the base path returns the application shell, and
navigation runs over a WebSocket session at {base}/_nav.

Examples:
  fractals serve
  BASE_URL=/app fractals serve --addr=:9000
  fractals serve --history=hash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dir, getenv)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("base") {
				cfg.Base = base
			}
			if mode != "" {
				cfg.History = mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.Logger(os.Stderr)
			slog.SetDefault(logger)

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			table := routeTable(cfg, getenv)
			scfg := server.DefaultConfig()
			scfg.Address = cfg.Server.Addr
			scfg.Base = cfg.Base
			scfg.Mode = cfg.HistoryMode()
			scfg.Table = &table
			scfg.ShutdownTimeout = cfg.ShutdownTimeout()
			scfg.Metrics = server.NewMetrics(reg)
			scfg.EngineOptions = []nav.Option{
				nav.WithMetrics(nav.NewMetrics(nav.WithRegistry(reg))),
				nav.WithLoadTimeout(cfg.LoadTimeout()),
			}
			scfg.Middleware = []func(http.Handler) http.Handler{
				middleware.OpenTelemetry(middleware.WithRequestFilter(func(r *http.Request) bool {
					return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
				})),
				middleware.Prometheus(middleware.WithRegistry(reg)),
			}
			if cfg.Server.Metrics {
				scfg.Gatherer = reg
			}
			if len(cfg.Server.AllowedOrigins) > 0 {
				scfg.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
			}

			srv, err := server.New(scfg)
			if err != nil {
				return err
			}
			logger.Info("configuration", "config", cfg.String())
			return srv.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&base, "base", "b", "", "Base path (default from config or BASE_URL)")
	cmd.Flags().StringVar(&mode, "history", "", "History mode: web, hash or memory")

	return cmd
}
