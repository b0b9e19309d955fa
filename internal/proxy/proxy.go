package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"misfit-alliance/internal/api"
	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/metrics"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/rs/zerolog"
)

// Prefix is where the passthrough is mounted.
const Prefix = "/api/ai/"

// maxBodyBytes leaves room for a base64 screenshot inside the JSON envelope.
const maxBodyBytes = 2 * constants.MaxImageBytes

// Forwarder relays a raw request to the upstream AI endpoint.
type Forwarder interface {
	Enabled() bool
	Forward(ctx context.Context, method, subpath string, body []byte) (*api.ForwardResponse, error)
}

var _ Forwarder = (*api.ArkClient)(nil)

// Handler lets a browser client call the AI endpoint without ever seeing the key.
type Handler struct {
	upstream Forwarder
	logger   zerolog.Logger
}

func NewHandler(client *api.ArkClient, logger zerolog.Logger) *Handler {
	return NewHandlerWith(client, logger)
}

func NewHandlerWith(upstream Forwarder, logger zerolog.Logger) *Handler {
	return &Handler{
		upstream: upstream,
		logger:   logger.With().Str("component", "ai_proxy").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.logger
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		log = l.With().Str("component", "ai_proxy").Logger()
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !h.upstream.Enabled() {
		writeError(w, http.StatusInternalServerError, "Server missing AI_API_KEY")
		return
	}

	subpath := strings.TrimPrefix(r.URL.Path, Prefix)
	if r.URL.RawQuery != "" {
		subpath += "?" + r.URL.RawQuery
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.ProxyTimeout)
	defer cancel()

	resp, err := h.upstream.Forward(ctx, r.Method, subpath, body)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, circuitbreaker.ErrOpen) {
			status = http.StatusServiceUnavailable
		}
		log.Warn().Err(err).Str("subpath", subpath).Msg("upstream request failed")
		writeError(w, status, "Upstream AI request failed")
		return
	}

	if strings.Contains(resp.ContentType, "application/json") {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		log.Debug().Err(err).Msg("failed to write proxy response")
	}

	metrics.ProxyRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	log.Debug().Str("method", r.Method).Str("subpath", subpath).Int("status", resp.StatusCode).Msg("proxied")
}

func writeError(w http.ResponseWriter, status int, message string) {
	metrics.ProxyRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
