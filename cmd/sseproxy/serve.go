package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/aiproxy/sseproxy/config"
	obsotel "github.com/aiproxy/sseproxy/providers/observability/otel"
	obsslog "github.com/aiproxy/sseproxy/providers/observability/slog"
	"github.com/aiproxy/sseproxy/server"
)

func buildServeCmd() *cobra.Command {
	var (
		addr        string
		configPath  string
		rateLimit   float64
		rateBurst   int
		traceEnable bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation proxy's HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if configPath != "" {
				fileCfg, err := config.FromFile(configPath)
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				cfg = fileCfg
			}

			level := obsslog.GetLogLevelFromEnv()
			logger := obsslog.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			var limiter *rate.Limiter
			if rateLimit > 0 {
				limiter = rate.NewLimiter(rate.Limit(rateLimit), rateBurst)
			}

			var tracer *obsotel.Tracer
			if traceEnable {
				tracer = obsotel.New()
			} else {
				tracer = obsotel.NewNoop()
			}

			router := server.NewRouter(cfg, logger, tracer, limiter)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
			return httpServer.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "inbound requests/sec, 0 disables rate limiting")
	cmd.Flags().IntVar(&rateBurst, "rate-burst", 5, "inbound rate limiter burst size")
	cmd.Flags().BoolVar(&traceEnable, "trace", false, "emit spans to the globally registered OpenTelemetry tracer provider")
	return cmd
}
