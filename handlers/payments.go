package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func GetPaymentsHandler(c *gin.Context) {
	var side *models.PaymentSide
	if v := c.Query("side"); v != "" {
		s := models.PaymentSide(v)
		side = &s
	}
	payments, err := models.GetPayments(c.Request.Context(), side)
	if err != nil {
		handleError(c, "GetPaymentsHandler", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// DeletePaymentHandler reverses a settlement entry and restores the
// linked record's outstanding balance.
func DeletePaymentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	payment, err := models.DeletePayment(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeletePaymentHandler", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
