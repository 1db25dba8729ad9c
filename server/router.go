package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/aiproxy/sseproxy/config"
	"github.com/aiproxy/sseproxy/providers/observability"
)

// NewRouter assembles the proxy's full HTTP surface: the translating stream
// endpoint, Prometheus metrics, and a liveness check. limiter and tracer may
// both be nil to disable inbound rate limiting and tracing, respectively.
func NewRouter(cfg config.Config, logger observability.Logger, tracer observability.Tracer, limiter *rate.Limiter) http.Handler {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	mux := http.NewServeMux()

	var streamHandler http.Handler = NewStreamHandler(cfg, metrics, logger, tracer)
	if limiter != nil {
		streamHandler = RateLimit(limiter, streamHandler)
	}
	mux.Handle("POST /v1/chat/completions", streamHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", Healthz)

	return mux
}
