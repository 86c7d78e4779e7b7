// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints,
// including structured error envelopes and the mapping of service errors to
// HTTP statuses. The goal is to guarantee uniform responses for both success
// and failure cases.
//
// Conventions:
//   - All error responses must return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//   - `failService()` is the single place where service errors become statuses.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "story not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cuentos-backend/internal/http/middleware"
	"github.com/tbourn/cuentos-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: Optional correlation ID, echoed from X-Request-ID header, used
//     to correlate server logs with client-side errors.
//   - Code: A stable, machine-readable string (see errors.go constants).
//   - Message: A human-readable error description, safe for display to users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"story not found"`
}

// ValidationErrorResponse is returned with 400 validation_failed.
type ValidationErrorResponse struct {
	ErrorResponse
	// Field is the rejected input field.
	Field string `json:"field" example:"content"`
	// CharsLeft is max length minus the untrimmed length; negative when the
	// content is too long. Only set for content errors.
	CharsLeft *int `json:"chars_left,omitempty" example:"-12"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// Server errors (>=500) are logged using the request-scoped logger from middleware.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService maps a service error to its response. fallback is the code used
// for unclassified store failures.
func failService(c *gin.Context, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
			ErrorResponse: ErrorResponse{
				RequestID: c.Writer.Header().Get("X-Request-ID"),
				Code:      ErrCodeValidation,
				Message:   ve.Error(),
			},
			Field:     ve.Field,
			CharsLeft: ve.CharsLeft,
		})
	case errors.Is(err, services.ErrStoryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
	case errors.Is(err, services.ErrInFlight):
		fail(c, http.StatusConflict, ErrCodeReactionInFlight, "another reaction for this story is still being applied")
	case errors.Is(err, services.ErrSwitchIncomplete):
		fail(c, http.StatusServiceUnavailable, ErrCodeReactionIncomplete, "previous reaction removed; new reaction not recorded")
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, "reaction already exists")
	default:
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if fallback == ErrCodeReactionFailed {
			status = http.StatusServiceUnavailable
		}
		fail(c, status, fallback, "operation failed, please retry")
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
