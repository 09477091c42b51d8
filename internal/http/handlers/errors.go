// Error codes returned in ErrorResponse.Code, and the mapping from service
// errors to status and code.

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apisada-prim/pawbook/internal/http/middleware"
	"github.com/apisada-prim/pawbook/internal/services"
)

// Generic codes mirror the HTTP status; the rest name handoff outcomes that
// the status alone cannot tell apart.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = middleware.CodeUnauthorized
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = middleware.CodeTooManyRequests
	ErrCodeInternal         = middleware.CodeInternal
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeIdempotencyKey   = middleware.CodeInvalidIdempotencyKey

	ErrCodeQrAlreadyUsed        = "qr_already_used"
	ErrCodeQrExpired            = "qr_expired"
	ErrCodeInvalidSignature     = "invalid_signature"
	ErrCodePetMismatch          = "pet_mismatch"
	ErrCodeAlreadyOwner         = "already_owner"
	ErrCodeInvalidOrExpiredCode = "invalid_or_expired_code"
	ErrCodePayloadTooLarge      = "payload_too_large"
	ErrCodeUnsupportedMedia     = "unsupported_media_type"
)

// serviceErrors maps service sentinels to responses. Order matters only for
// errors that wrap more than one sentinel; none currently do.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrAlreadyUsed, http.StatusConflict, ErrCodeQrAlreadyUsed},
	{services.ErrExpired, http.StatusGone, ErrCodeQrExpired},
	{services.ErrInvalidSignature, http.StatusBadRequest, ErrCodeInvalidSignature},
	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrPetMismatch, http.StatusUnprocessableEntity, ErrCodePetMismatch},
	{services.ErrAlreadyOwner, http.StatusConflict, ErrCodeAlreadyOwner},
	{services.ErrInvalidOrExpired, http.StatusNotFound, ErrCodeInvalidOrExpiredCode},
	{services.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrEmailTaken, http.StatusConflict, ErrCodeConflict},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
}

// failService writes the response for an error returned by a service.
// Unrecognized errors become 500 internal_error; their text is logged, not
// returned.
func failService(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			fail(c, m.status, m.code, err.Error())
			return
		}
	}
	middleware.LoggerFrom(c).Error().Err(err).Msg("service call failed")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
