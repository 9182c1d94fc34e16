package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/pkg/core/casting"
)

// Error codes that are not casting error kinds
const (
	codeBadRequest = "BadRequest"
	codeInternal   = "InternalError"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// errorCode returns the casting error kind of err, or the internal code
func errorCode(err error) string {
	if kind := casting.Kind(err); kind != "" {
		return kind
	}
	return codeInternal
}

func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int

	switch {
	case errors.Is(err, casting.ErrEmptyName),
		errors.Is(err, casting.ErrOutOfRange),
		errors.Is(err, casting.ErrTypeMismatch),
		errors.Is(err, casting.ErrInvalidProposal):
		statusCode = http.StatusBadRequest
	case errors.Is(err, casting.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, casting.ErrAlreadyAssignedElsewhere),
		errors.Is(err, casting.ErrValidationLocked):
		statusCode = http.StatusConflict
	default:
		logger.Error("Unhandled error in casting request", zap.Error(err))
		statusCode = http.StatusInternalServerError
	}

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, errorResponse{Error: message, Code: errorCode(err)})
}

func handleBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeBadRequest})
}
