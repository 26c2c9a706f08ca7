package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hr-approvals/internal/db/mapper"
	"hr-approvals/internal/domain"
	"hr-approvals/internal/middleware"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its HTTP status and stable code. Internal errors
// are logged and replaced with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if errors.Is(err, errNoPrincipal) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHENTICATED", Message: err.Error(), RequestID: reqID})
		return
	}

	status := mapper.HTTPStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"http_request_id", reqID,
			"error", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: mapper.ErrorCode(err), Message: msg, RequestID: reqID})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
// An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrValidation("invalid JSON body: %v", err)
	}
	return nil
}
