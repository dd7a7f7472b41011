package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
)

// handleError maps the model-layer error taxonomy onto HTTP statuses.
// Every rejection carries a structured reason; nothing fails silently.
func handleError(c *gin.Context, funcName string, err error) {
	businessId, _ := utils.GetBusinessIdFromContext(c.Request.Context())

	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorSequenceExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(validationErrs)})
			return
		}
		var data any
		if correlationId, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok && correlationId != "" {
			data = map[string]string{"correlation_id": correlationId}
		}
		config.LogError(config.GetLogger(), "handlers", funcName, businessId, data, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func parsePositiveInt(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("must be positive")
	}
	return id, nil
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
