package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"classlab/internal/domain"
)

// uuidParam parses a UUID path segment. A malformed value means the resource
// cannot exist, so it reports NotFound rather than a validation failure.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	uid, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrNotFound("unknown %s", name)
	}
	return uid, nil
}

// pathParam returns a percent-decoded path segment. chi routes on the raw
// path when a request carries non-canonical escapes, so URLParam can hand
// back a still-encoded value; store keys are always the decoded form.
func pathParam(r *http.Request, name string) (string, error) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", domain.ErrNotFound("unknown %s", name)
	}
	return v, nil
}

// writeJSON encodes v as the JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

// decodeJSON parses the request body into v. Malformed input surfaces as a
// ValidationError so it maps to 400 like any other bad request.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrValidation("malformed request body")
	}
	return nil
}

// respondError writes the HTTP mapping of a workflow error. Validation
// failures get a structured cause body; upstream failures relay their status
// and message; everything else is a bare status with details only in the log.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	h.logger.WarnContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "status", status, "error", err)

	var validation *domain.ValidationError
	var upstream *domain.UpstreamError
	switch {
	case errors.As(err, &validation):
		h.writeJSON(w, status, map[string]string{"cause": validation.Message})
	case errors.As(err, &upstream):
		w.WriteHeader(status)
		_, _ = w.Write([]byte(upstream.Message))
	default:
		w.WriteHeader(status)
	}
}
