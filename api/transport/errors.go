package transport

import (
	"errors"
	"net/http"

	"github.com/fastygo/questify/domain"
)

// StatusFor maps an error to its HTTP status and wire code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, CodeTokenExpired
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// PublicMessage hides internal error details from clients.
func PublicMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		if dErr.Code == domain.ErrCodeInternal {
			return "internal error"
		}
		return dErr.Error()
	}
	return "internal error"
}
