// Package handlers provides the HTTP handlers of the recovery backend
package handlers

import (
	"errors"
	"net/http"

	"recovery-backend/internal/db"
	"recovery-backend/internal/schema"

	"github.com/gin-gonic/gin"
)

// Error types returned in the "error" field
const (
	ErrorTypeValidation         = "validation_failed"
	ErrorTypeStorageUnavailable = "storage_unavailable"
	ErrorTypeStorage            = "storage_error"
	ErrorTypeBodyTooLarge       = "body_too_large"
	ErrorTypeInternal           = "internal_error"
)

const (
	maxErrorMessageLength      = 200
	maxDiagnosticMessageLength = 80
)

// respondWithError unified error response function
func respondWithError(c *gin.Context, statusCode int, errorType, message string, details interface{}) {
	response := gin.H{
		"error":   errorType,
		"message": truncate(message, maxErrorMessageLength),
	}
	if details != nil {
		response["details"] = details
	}
	c.JSON(statusCode, response)
}

// respondWithFailure maps validation and storage failures to 400 / 503 / 500.
// Callers log err in full before responding.
func respondWithFailure(c *gin.Context, err error) {
	var verr *schema.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, verr.Error(), verr.Fields)
	case errors.As(err, &tooLarge):
		respondWithError(c, http.StatusRequestEntityTooLarge, ErrorTypeBodyTooLarge, "request body too large", nil)
	case errors.Is(err, db.ErrNotConnected):
		respondWithError(c, http.StatusServiceUnavailable, ErrorTypeStorageUnavailable, "document store is not available", nil)
	case errors.Is(err, db.ErrStorage):
		respondWithError(c, http.StatusInternalServerError, ErrorTypeStorage, storageFailureMessage(err), nil)
	default:
		respondWithError(c, http.StatusInternalServerError, ErrorTypeInternal, "internal server error", nil)
	}
}

// storageFailureMessage names the failed operation only; driver errors may
// carry hosts and credentials and stay in the log
func storageFailureMessage(err error) string {
	var serr *db.StorageError
	if errors.As(err, &serr) && serr.Op != "" {
		return "document store " + serr.Op + " failed"
	}
	return "document store operation failed"
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
