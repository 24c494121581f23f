package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the wire envelope for every failure: {"error": <message>}.
// The error value is either a plain string or a field-error map.
type ErrorResponse struct {
	Error interface{} `json:"error"`
}

// RespondWithError writes the standard error envelope
func RespondWithError(c *gin.Context, statusCode int, message interface{}) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// Shortcuts for the common failure classes

func BadRequest(c *gin.Context, message interface{}) {
	RespondWithError(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication credentials were not provided."
	}
	RespondWithError(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have permission to perform this action."
	}
	RespondWithError(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An unexpected error occurred."
	}
	RespondWithError(c, http.StatusInternalServerError, message)
}

// HandleError classifies a raw error through ParseError and writes the
// matching envelope. Handlers call it on the fall-through branch after
// their sentinel checks, so raw DB failures still map to sane statuses.
func HandleError(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, info.Kind.StatusCode(), info.Message)
}

// RespondWithValidationError writes a field-error map as the error value
func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	errs := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		errs[field] = msg
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: errs})
}
