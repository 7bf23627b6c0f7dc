package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError represents a structured error response
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after_ms,omitempty"`
}

// Common error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeSetNotFound        = "SET_NOT_FOUND"
	ErrCodeSetTooSmall        = "SET_TOO_SMALL"
	ErrCodeGenerationFailed   = "GENERATION_FAILED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeCircuitOpen        = "CIRCUIT_OPEN"
)

// RespondError sends a structured error response
func RespondError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"error": APIError{
			Code:    code,
			Message: message,
		},
	})
}

// RespondErrorWithDetails sends a structured error response with details
func RespondErrorWithDetails(c *gin.Context, status int, code string, message string, details string) {
	c.JSON(status, gin.H{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// RespondErrorWithRetry sends a structured error response with retry hint
func RespondErrorWithRetry(c *gin.Context, status int, code string, message string, retryAfterMs int) {
	c.JSON(status, gin.H{
		"error": APIError{
			Code:       code,
			Message:    message,
			RetryAfter: retryAfterMs,
		},
	})
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound sends a 404 error
func NotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError sends a 500 error
func InternalError(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// CatalogUnavailable sends a 502 when the parts catalog could not be read
func CatalogUnavailable(c *gin.Context, details string) {
	RespondErrorWithDetails(c, http.StatusBadGateway, ErrCodeCatalogUnavailable, "Could not load set data.", details)
}

// SetNotFound sends a 404 for an unknown set number
func SetNotFound(c *gin.Context, details string) {
	RespondErrorWithDetails(c, http.StatusNotFound, ErrCodeSetNotFound, "Could not load set data.", details)
}

// SetTooSmall sends a 422 when the set cannot support the requested size
func SetTooSmall(c *gin.Context, details string) {
	RespondErrorWithDetails(c, http.StatusUnprocessableEntity, ErrCodeSetTooSmall, "This set is too small for the selected build size.", details)
}

// GenerationFailed sends a 502 when the build description could not be
// generated and counts the request against the generation circuit
func GenerationFailed(c *gin.Context) {
	MarkUpstreamFailure(c)
	RespondErrorWithRetry(c, http.StatusBadGateway, ErrCodeGenerationFailed, "Build generation failed.", 5000)
}
