package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Error codes shared by several handlers. One-off codes stay inline.
const (
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeNotFound           = "not_found"
	CodeInvalidJSON        = "invalid_json"
	CodeDB                 = "db_error"
	CodeInternal           = "internal_error"
	CodeTimeout            = "timeout"
)

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeFailure logs err and writes it as a 500 under code, or as a 503
// timeout when the request's own deadline ran out first.
func writeFailure(w http.ResponseWriter, r *http.Request, log *zap.Logger, code string, err error) {
	log.Error(code,
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		WriteError(w, r, http.StatusServiceUnavailable, CodeTimeout, "the request timed out")
		return
	}
	WriteError(w, r, http.StatusInternalServerError, code, err.Error())
}
