// Package errors renders the JSON error body shared by every endpoint.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the body of every non-2xx response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

type statusDefault struct {
	code    string
	message string
}

var defaults = map[int]statusDefault{
	http.StatusBadRequest:          {ErrCodeInvalidInput, "Invalid request"},
	http.StatusUnauthorized:        {ErrCodeUnauthorized, "Authentication required"},
	http.StatusForbidden:           {ErrCodeForbidden, "Access denied"},
	http.StatusNotFound:            {ErrCodeNotFound, "Resource not found"},
	http.StatusConflict:            {ErrCodeConflict, "Resource conflict"},
	http.StatusTooManyRequests:     {ErrCodeRateLimited, "Rate limit exceeded"},
	http.StatusInternalServerError: {ErrCodeInternalError, "Internal server error"},
	http.StatusServiceUnavailable:  {ErrCodeServiceUnavailable, "Service temporarily unavailable"},
}

// RespondWithError sends err with the given status
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// AbortWithError sends err and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// respond uses the status's default code, and its default message when
// message is empty.
func respond(c *gin.Context, statusCode int, message string) {
	d := defaults[statusCode]
	if message == "" {
		message = d.message
	}
	RespondWithError(c, statusCode, NewAPIError(d.code, message))
}

func Unauthorized(c *gin.Context, message string) { respond(c, http.StatusUnauthorized, message) }
func Forbidden(c *gin.Context, message string)    { respond(c, http.StatusForbidden, message) }
func NotFound(c *gin.Context, message string)     { respond(c, http.StatusNotFound, message) }
func BadRequest(c *gin.Context, message string)   { respond(c, http.StatusBadRequest, message) }
func Conflict(c *gin.Context, message string)     { respond(c, http.StatusConflict, message) }
func InternalError(c *gin.Context, message string) {
	respond(c, http.StatusInternalServerError, message)
}
func ServiceUnavailable(c *gin.Context, message string) {
	respond(c, http.StatusServiceUnavailable, message)
}

// InvalidCredentials answers a failed login. It is distinct from
// Unauthorized so clients can tell a bad password from a missing token.
func InvalidCredentials(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeInvalidCredentials, "Invalid email or password"))
}

// TooManyRequests aborts, since it is only called from middleware
func TooManyRequests(c *gin.Context) {
	d := defaults[http.StatusTooManyRequests]
	AbortWithError(c, http.StatusTooManyRequests, NewAPIError(d.code, d.message))
}
