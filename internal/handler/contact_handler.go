package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mathbymoves/backend/internal/model"
	"github.com/mathbymoves/backend/internal/service"
	"github.com/tomasen/realip"
)

const (
	maxBodyBytes = 64 << 10

	msgSubmitted   = "Please check your email and click the verification link to complete your message submission."
	msgInvalidForm = "Invalid form data"
	msgListFailed  = "Failed to fetch messages"
)

// ContactHandler serves the contact form, the verification link and the
// message listing.
type ContactHandler struct {
	contactService service.ContactService
	ownerName      string
	publicBaseURL  string
}

// ContactHandlerConfig holds presentation settings for ContactHandler.
type ContactHandlerConfig struct {
	// OwnerName appears on the verification pages.
	OwnerName string
	// PublicBaseURL overrides the request host when building verification links.
	PublicBaseURL string
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService, cfg ContactHandlerConfig) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		ownerName:      cfg.OwnerName,
		publicBaseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// submitResponse is the JSON body returned by POST /api/contact.
type submitResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var sub model.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Message: msgInvalidForm})
		return
	}

	_, err := h.contactService.Submit(r.Context(), &sub, service.SubmitMeta{
		ClientIP: realip.FromRequest(r),
		BaseURL:  h.baseURL(r),
	})
	if err != nil {
		var serr *service.Error
		if !errors.As(err, &serr) {
			slog.Error("contact submit failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, submitResponse{Message: "Failed to send message"})
			return
		}
		if serr.Kind == service.KindInternal {
			slog.Error("contact submit failed", "error", err)
		}
		writeJSON(w, statusFor(serr), submitResponse{Message: serr.Message, Errors: serr.Fields})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{Success: true, Message: msgSubmitted})
}

// VerifyEmail handles GET /api/verify-email?token=...
// The browser lands here from the email, so every outcome is an HTML page.
func (h *ContactHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.renderPage(w, http.StatusBadRequest, pageInvalid, nil)
		return
	}

	res, err := h.contactService.Verify(r.Context(), token)
	switch {
	case err == nil && res.AlreadyVerified:
		h.renderPage(w, http.StatusOK, pageAlreadyVerified, nil)
	case err == nil:
		h.renderPage(w, http.StatusOK, pageVerified, res.Message)
	case service.KindOf(err) == service.KindNotFound:
		h.renderPage(w, http.StatusNotFound, pageNotFound, nil)
	case service.KindOf(err) == service.KindValidation:
		h.renderPage(w, http.StatusBadRequest, pageInvalid, nil)
	default:
		slog.Error("email verification failed", "error", err)
		h.renderPage(w, http.StatusInternalServerError, pageError, nil)
	}
}

// TooManyAttempts renders the 429 page shown when the verification
// endpoint is throttled.
func (h *ContactHandler) TooManyAttempts(w http.ResponseWriter, _ *http.Request) {
	h.renderPage(w, http.StatusTooManyRequests, pageTooMany, nil)
}

// List handles GET /api/contact-messages.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contactService.List(r.Context())
	if err != nil {
		slog.Error("list contact messages failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, submitResponse{Message: msgListFailed})
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// baseURL returns the scheme://host verification links should point at.
func (h *ContactHandler) baseURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func statusFor(err *service.Error) int {
	switch err.Kind {
	case service.KindValidation, service.KindSpam:
		return http.StatusBadRequest
	case service.KindRateLimit:
		return http.StatusTooManyRequests
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindDelivery:
		if err.Retryable {
			return http.StatusInternalServerError
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
