package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func CreatePurchaseHandler(c *gin.Context) {
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CreatePurchaseHandler", err)
		return
	}

	purchase, err := models.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "CreatePurchaseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func UpdatePurchaseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "UpdatePurchaseHandler", err)
		return
	}

	purchase, err := models.UpdatePurchase(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "UpdatePurchaseHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func DeletePurchaseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	purchase, err := models.DeletePurchase(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeletePurchaseHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func GetPurchaseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	purchase, err := models.GetPurchase(c.Request.Context(), id)
	if err != nil {
		handleError(c, "GetPurchaseHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func GetPurchasesHandler(c *gin.Context) {
	var supplierId *int
	if v := c.Query("supplier_id"); v != "" {
		if id, err := parsePositiveInt(v); err == nil {
			supplierId = &id
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

	purchases, err := models.GetPurchases(c.Request.Context(), supplierId, status, kind)
	if err != nil {
		handleError(c, "GetPurchasesHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func ApplyPurchasePaymentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "ApplyPurchasePaymentHandler", err)
		return
	}

	payment, err := models.ApplyPurchasePayment(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "ApplyPurchasePaymentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
