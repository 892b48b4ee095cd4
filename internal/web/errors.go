package web

// errors.go maps batch-level errors to HTTP responses.
//
// The technical error is logged with the request id; the client gets the
// coded user message from core.MapError, as JSON for API routes and as plain
// text for pages.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/erpimport/internal/core"
	"github.com/JonMunkholm/erpimport/internal/sheet"
)

var errBadRequest = errors.New("invalid request body")

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// statusFor returns the HTTP status of a batch-level error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownKind), errors.Is(err, core.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, core.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest), errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrConflictingBankFields), errors.Is(err, core.ErrMissingLocation),
		sheet.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if status == http.StatusServiceUnavailable && errors.Is(err, core.ErrTooManyImports) {
		w.Header().Set("Retry-After", "30")
	}

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code})
		return
	}
	http.Error(w, msg.Message+" ("+msg.Code+"). "+msg.Action, status)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
