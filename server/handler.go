package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/aiproxy/sseproxy/config"
	"github.com/aiproxy/sseproxy/core"
	"github.com/aiproxy/sseproxy/internal/utils"
	"github.com/aiproxy/sseproxy/providers/observability"
	"github.com/aiproxy/sseproxy/transport"
)

// maxRequestBodySize bounds the downstream request body, mirroring the
// upstream read guard in internal/utils.DoPostStream.
const maxRequestBodySize = 10 << 20

// StreamHandler serves POST /v1/chat/completions: it decodes the downstream
// request, opens the upstream stream, and pipes translated frames straight
// to the response writer, flushing after each one. It never buffers the
// full response, matching the proxy's no-full-buffering requirement.
type StreamHandler struct {
	cfg     config.Config
	client  *transport.Client
	decoder transport.ChunkDecoder
	metrics *Metrics
	logger  observability.Logger
	tracer  observability.Tracer
}

// NewStreamHandler constructs a StreamHandler against cfg's upstream target.
// metrics may be nil, in which case nothing is counted; otherwise the handler
// counts emitted frames (by upstream phase) and upstream errors. It does not
// count tool calls or repair failures.
// tracer may be nil, in which case requests are not traced.
func NewStreamHandler(cfg config.Config, metrics *Metrics, logger observability.Logger, tracer observability.Tracer) *StreamHandler {
	if logger == nil {
		logger = noopObsLogger{}
	}
	return &StreamHandler{
		cfg:     cfg,
		client:  transport.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.HTTPClient),
		decoder: transport.ChunkDecoder{},
		metrics: metrics,
		logger:  logger,
		tracer:  tracer,
	}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.tracer != nil {
		var span observability.Span
		ctx, span = h.tracer.StartSpan(ctx, "sseproxy.chat_completion")
		defer span.End()
	}

	modelID := req.Model
	if modelID == "" {
		modelID = h.cfg.ModelName
	}
	userMessage := lastUserMessage(req.Messages)

	upstreamBody := map[string]any{
		"model":    h.cfg.ModelName,
		"messages": req.Messages,
		"stream":   true,
	}
	h.logger.Debug(ctx, "opening upstream stream", observability.String("body", utils.ToString(upstreamBody)))

	openTimer := utils.NewTimer()
	scanner, resp, err := h.client.Stream(ctx, upstreamBody)
	openTimer.Stop()
	if err != nil {
		h.countUpstreamError()
		h.logger.Error(ctx, "upstream stream open failed",
			observability.Error(err),
			observability.Duration("upstream.open_latency", openTimer.GetDuration()))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	h.logger.Debug(ctx, "upstream stream opened",
		observability.Duration("upstream.open_latency", openTimer.GetDuration()))

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := core.NewSession(modelID, req.Stream, userMessage,
		core.WithLogger(h.logger),
		core.WithClock(time.Now),
	)

	h.pump(ctx, w, flusher, scanner, session)
}

// pump drains scanner one upstream frame at a time, translating each through
// session and writing the result immediately. It stops on client
// disconnect, upstream EOF, or a scan error, discarding any unread upstream
// bytes rather than persisting partial session state.
func (h *StreamHandler) pump(ctx context.Context, w io.Writer, flusher http.Flusher, scanner *utils.SSEScanner, session *core.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := scanner.Next()
		if err != nil {
			if err != io.EOF {
				h.countUpstreamError()
				h.logger.Error(ctx, "upstream scan failed", observability.Error(err))
			}
			return
		}

		chunk, err := h.decoder.Decode(payload)
		if err != nil {
			h.logger.Error(ctx, "upstream payload decode failed", observability.Error(err))
			continue
		}

		frames := session.Consume(ctx, chunk)
		if len(frames) == 0 {
			continue
		}
		for _, frame := range frames {
			if _, err := io.WriteString(w, frame); err != nil {
				return
			}
			h.countFrame(chunk.Phase)
		}
		flusher.Flush()
	}
}

func (h *StreamHandler) countFrame(phase string) {
	if h.metrics == nil {
		return
	}
	h.metrics.FramesEmitted.WithLabelValues(phase).Inc()
}

func (h *StreamHandler) countUpstreamError() {
	if h.metrics == nil {
		return
	}
	h.metrics.UpstreamErrors.Inc()
}

// noopObsLogger is the handler's fallback when no logger is supplied.
type noopObsLogger struct{}

func (noopObsLogger) Trace(context.Context, string, ...observability.Attribute) {}
func (noopObsLogger) Debug(context.Context, string, ...observability.Attribute) {}
func (noopObsLogger) Info(context.Context, string, ...observability.Attribute)  {}
func (noopObsLogger) Warn(context.Context, string, ...observability.Attribute)  {}
func (noopObsLogger) Error(context.Context, string, ...observability.Attribute) {}
