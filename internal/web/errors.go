package web

// errors.go maps service errors to HTTP responses.
//
// Every error is logged with its technical detail and request ID, then
// returned to the client as the user-facing message from core.MapError so
// that internal details never leak into responses.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/outreach/internal/campaign"
	"github.com/JonMunkholm/outreach/internal/contacts"
	"github.com/JonMunkholm/outreach/internal/core"
	"github.com/JonMunkholm/outreach/internal/logging"
	"github.com/JonMunkholm/outreach/internal/preview"
)

var (
	errNoFile      = errors.New("no file provided")
	errRateLimited = errors.New("rate limit exceeded")
	errBadJSON     = errors.New("invalid request body")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// respondError logs err and writes its user-facing form with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	requestID := middleware.GetReqID(r.Context())

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:     userMsg.Message,
		Message:   userMsg.Message,
		Action:    userMsg.Action,
		Code:      userMsg.Code,
		RequestID: requestID,
	})
}

// fail responds with the status errorStatus picks for err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, errorStatus(err))
}

// errorStatus picks the HTTP status for a service error.
func errorStatus(err error) int {
	var (
		maxBytes *http.MaxBytesError
		apiErr   *campaign.APIError
	)

	switch {
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes),
		strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, contacts.ErrEmptyFile),
		errors.Is(err, contacts.ErrNoHeader),
		errors.Is(err, contacts.ErrInvalidCSV),
		errors.Is(err, contacts.ErrNoPhoneColumn),
		errors.Is(err, core.ErrNoContacts):
		return http.StatusUnprocessableEntity

	case errors.Is(err, contacts.ErrInvalidPhone),
		errors.Is(err, core.ErrUnknownCountry),
		errors.Is(err, preview.ErrNoCampaignID),
		errors.Is(err, campaign.ErrNoUserUID),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadJSON):
		return http.StatusBadRequest

	case errors.Is(err, preview.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrTooManyUploads),
		errors.Is(err, core.ErrBackendNotConfigured):
		return http.StatusServiceUnavailable

	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests

	case errors.As(err, &apiErr):
		if apiErr.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
