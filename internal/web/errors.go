package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API routes and as plain text for pages
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. The message code selects the HTTP status
//  5. Technical error + context is logged with request ID for correlation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusByCode maps core.UserMessage codes to HTTP statuses.
var statusByCode = map[string]int{
	"IMP001":  http.StatusBadRequest,
	"IMP002":  http.StatusUnprocessableEntity,
	"IMP003":  http.StatusUnprocessableEntity,
	"IMP004":  http.StatusBadRequest,
	"IMP005":  http.StatusRequestEntityTooLarge,
	"IMP006":  http.StatusUnsupportedMediaType,
	"LED001":  http.StatusConflict,
	"LED002":  http.StatusNotFound,
	"LED003":  http.StatusServiceUnavailable,
	"DB004":   http.StatusServiceUnavailable,
	"DB006":   http.StatusGatewayTimeout,
	"RATE001": http.StatusTooManyRequests,
	"RATE002": http.StatusTooManyRequests,
}

// statusFor returns the HTTP status for a mapped error.
func statusFor(msg core.UserMessage) int {
	if status, ok := statusByCode[msg.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(userMsg)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
	} else {
		respondErrorHTML(w, userMsg, status)
	}
}

// writeError writes an error that did not come from the core, such as a
// malformed request.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"reason", message,
	)
	msg := core.UserMessage{Message: message, Code: "HTTP" + strconv.Itoa(status)}
	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
	} else {
		respondErrorHTML(w, msg, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML writes a plain text error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	text := msg.Message + " (" + msg.Code + ")"
	if msg.Action != "" {
		text += ". " + msg.Action
	}
	http.Error(w, text, statusCode)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
