package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	dashboarddomain "github.com/parkscope/parkscope/internal/dashboard/domain"
	historydomain "github.com/parkscope/parkscope/internal/history/domain"
	"github.com/parkscope/parkscope/internal/importer"
	lotdomain "github.com/parkscope/parkscope/internal/lot/domain"
	"github.com/parkscope/parkscope/internal/observability/logger"
	txndomain "github.com/parkscope/parkscope/internal/transaction/domain"
)

// ErrNotFound is the generic missing-resource error for handlers.
var ErrNotFound = errors.New("not_found")

// ValidationError reports a rejected request parameter.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Code + ": " + e.Message }

func newValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

func invalidRequestError() *ValidationError {
	return newValidationError("request", "invalid_request", "malformed request body")
}

// AbortWithError maps domain errors onto the HTTP error taxonomy: validation
// and import failures are 400, missing resources and empty periods are 404,
// everything else is a 500 with the detail kept out of the response.
func AbortWithError(c *gin.Context, err error) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"type":    "validation_error",
			"field":   validation.Field,
			"code":    validation.Code,
			"message": validation.Message,
		}})
		return
	}

	var rowErr *importer.RowError
	if errors.As(err, &rowErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"type":    "import_error",
			"row":     rowErr.Row,
			"message": rowErr.Error(),
		}})
		return
	}

	switch {
	case errors.Is(err, importer.ErrUnreadableFile),
		errors.Is(err, importer.ErrEmptySheet),
		errors.Is(err, importer.ErrUnknownLot):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"type":    "import_error",
			"message": err.Error(),
		}})
		return

	case errors.Is(err, lotdomain.ErrDuplicateName),
		errors.Is(err, lotdomain.ErrInvalidName),
		errors.Is(err, lotdomain.ErrInvalidCapacity),
		errors.Is(err, txndomain.ErrExitBeforeEntry),
		errors.Is(err, txndomain.ErrInvalidPlate):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"type":    "validation_error",
			"message": err.Error(),
		}})
		return

	case errors.Is(err, ErrNotFound),
		errors.Is(err, lotdomain.ErrNotFound),
		errors.Is(err, dashboarddomain.ErrLotNotFound),
		errors.Is(err, dashboarddomain.ErrNoDataAvailable),
		errors.Is(err, historydomain.ErrNoData),
		errors.Is(err, txndomain.ErrNoOpenTransaction):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{
			"type":    "not_found",
			"message": err.Error(),
		}})
		return
	}

	logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{
		"type":    "internal_error",
		"message": "internal error",
	}})
}
