package api

import (
	"errors"
	"net/http"

	"classlab/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var conflict *domain.ConflictError
	var validation *domain.ValidationError
	var upstream *domain.UpstreamError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		// propagate the upstream status where it is a real HTTP code
		if upstream.Status >= 100 && upstream.Status <= 599 {
			return upstream.Status
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
