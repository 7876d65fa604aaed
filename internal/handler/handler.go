package handler

import (
	"net/http"
	"strings"

	"github.com/mathbymoves/backend/internal/repository"
)

// Handler holds the endpoints that are not tied to the contact flow.
type Handler struct {
	db             repository.DB
	allowedOrigins map[string]bool
	anyOrigin      bool
}

// New creates a Handler. frontendURLs is a comma-separated list of origins
// allowed to call the API from a browser; "*" allows any origin.
func New(db repository.DB, frontendURLs string) *Handler {
	h := &Handler{db: db, allowedOrigins: make(map[string]bool)}
	for _, o := range strings.Split(frontendURLs, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			h.anyOrigin = true
		default:
			h.allowedOrigins[o] = true
		}
	}
	return h
}

func (h *Handler) originAllowed(origin string) bool {
	return origin != "" && (h.anyOrigin || h.allowedOrigins[origin])
}

// CORS echoes the request Origin back only when it is on the allow list.
// Requests from other origins get no CORS headers, so browsers block them.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		origin := r.Header.Get("Origin")
		allowed := h.originAllowed(origin)
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
