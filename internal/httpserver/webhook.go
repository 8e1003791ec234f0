package httpserver

import (
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"opensms/internal/consumers"
	"opensms/internal/pipeline"
	"opensms/internal/settings"
)

// maxBodyBytes bounds a webhook body read; carriers send small JSON
// documents, never media, so this is generous.
const maxBodyBytes = 1 << 20

// Webhook drives one pipeline run per inbound carrier callback.
type Webhook struct {
	Pipeline *pipeline.Pipeline
	Settings settings.Source
}

func (h *Webhook) Register(m *mux.Router) {
	m.HandleFunc("/v1/webhooks/sms", h.handleInbound).Methods(http.MethodPost)
}

// handleInbound reports success once the pipeline completes, regardless
// of how many messages were produced; an unrelated callback that parses
// to zero messages is still a 200.
func (h *Webhook) handleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	ip := clientIP(r)
	ctx := consumers.WithRequestBody(r.Context(), body)

	if err := h.Pipeline.Run(ctx, h.Settings, ip); err != nil {
		slog.Error("pipeline run failed", "err", err, "ip", ip)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// clientIP is the transport peer address. Admission control is by
// source network, so forwarded-for headers from untrusted peers are
// deliberately ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
