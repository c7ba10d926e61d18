package web

// errors.go centralizes response encoding and the error policy:
//
//   - validation and not-found outcomes are expected at a scan station
//     (mistyped codes, forged passes) and are never logged as faults;
//   - system errors are logged with full detail plus the request ID, and
//     surfaced as 500 with a generic message and a detail string.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/doorlist/doorlist/internal/logging"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeJSON encodes v with the given status. Encoding failures are
// logged; headers are already gone by then.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode", "error", err)
	}
}

// logFromRequest returns a logger carrying the request's ID.
func logFromRequest(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}

// systemError logs err with request context and answers 500 with a
// generic message plus the technical detail.
func (s *Server) systemError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: message, Details: err.Error()})
}
