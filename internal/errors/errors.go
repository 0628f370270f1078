package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

type statusDefault struct {
	code    string
	message string
}

var statusDefaults = map[int]statusDefault{
	http.StatusBadRequest:          {ErrCodeInvalidInput, "Invalid request"},
	http.StatusUnauthorized:        {ErrCodeUnauthorized, "Authentication required"},
	http.StatusForbidden:           {ErrCodeForbidden, "Access denied"},
	http.StatusNotFound:            {ErrCodeNotFound, "Resource not found"},
	http.StatusConflict:            {ErrCodeConflict, "Resource conflict"},
	http.StatusInternalServerError: {ErrCodeInternalError, "Internal server error"},
	http.StatusBadGateway:          {ErrCodeUpstream, "Upstream service failed"},
	http.StatusServiceUnavailable:  {ErrCodeServiceUnavailable, "Service temporarily unavailable"},
}

// New builds the APIError for status. An empty message falls back to the
// status default.
func New(status int, message string) *APIError {
	d, ok := statusDefaults[status]
	if !ok {
		d = statusDefaults[http.StatusInternalServerError]
	}
	if message == "" {
		message = d.message
	}
	return &APIError{Status: status, Code: d.code, Message: message}
}

// Respond writes err and aborts the remaining handler chain.
func Respond(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.Status, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	Respond(c, New(http.StatusUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	Respond(c, New(http.StatusForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	Respond(c, New(http.StatusNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	Respond(c, New(http.StatusBadRequest, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	Respond(c, New(http.StatusConflict, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	Respond(c, New(http.StatusInternalServerError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	Respond(c, New(http.StatusServiceUnavailable, message))
}

// Upstream sends a 502 response for failures of an external collaborator
func Upstream(c *gin.Context, message string) {
	Respond(c, New(http.StatusBadGateway, message))
}
