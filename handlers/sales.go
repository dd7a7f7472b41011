package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func CreateSaleHandler(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CreateSaleHandler", err)
		return
	}

	sale, err := models.CreateSale(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "CreateSaleHandler", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func UpdateSaleHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdateSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "UpdateSaleHandler", err)
		return
	}

	sale, err := models.UpdateSale(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "UpdateSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func DeleteSaleHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	sale, err := models.DeleteSale(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeleteSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func GetSaleHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		handleError(c, "GetSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func GetSalesHandler(c *gin.Context) {
	var clientId *int
	if v := c.Query("client_id"); v != "" {
		if id, err := parsePositiveInt(v); err == nil {
			clientId = &id
		}
	}
	var status *models.PaymentStatus
	if v := c.Query("status"); v != "" {
		s := models.PaymentStatus(v)
		status = &s
	}
	var kind *models.TransactionKind
	if v := c.Query("kind"); v != "" {
		k := models.TransactionKind(v)
		kind = &k
	}

	sales, err := models.GetSales(c.Request.Context(), clientId, status, kind)
	if err != nil {
		handleError(c, "GetSalesHandler", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func ApplySalePaymentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "ApplySalePaymentHandler", err)
		return
	}

	payment, err := models.ApplySalePayment(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "ApplySalePaymentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
