package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const (
	serviceName       = "Chess Coaching Contact API"
	healthPingTimeout = 2 * time.Second
)

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	LatencyMS int64  `json:"latency_ms"`
}

// Health pings the message store. A ping slower than healthPingTimeout
// counts as unhealthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	resp := healthResponse{
		Status:    "ok",
		Message:   serviceName,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		resp.Status = "unhealthy"
		resp.Message = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
