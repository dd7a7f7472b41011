package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/models"
)

func CreateClientHandler(c *gin.Context) {
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CreateClientHandler", err)
		return
	}

	client, err := models.CreateClient(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "CreateClientHandler", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func UpdateClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "UpdateClientHandler", err)
		return
	}

	client, err := models.UpdateClient(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "UpdateClientHandler", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func DeleteClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	client, err := models.DeleteClient(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeleteClientHandler", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func GetClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	client, err := models.GetClient(c.Request.Context(), id)
	if err != nil {
		handleError(c, "GetClientHandler", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func GetClientsHandler(c *gin.Context) {
	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	clients, err := models.GetClients(c.Request.Context(), name)
	if err != nil {
		handleError(c, "GetClientsHandler", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

type creditCheckRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CheckClientCreditHandler exposes the advisory credit check so the
// front end can warn before submitting a sale.
func CheckClientCreditHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input creditCheckRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CheckClientCreditHandler", err)
		return
	}

	client, err := models.GetClient(c.Request.Context(), id)
	if err != nil {
		handleError(c, "CheckClientCreditHandler", err)
		return
	}
	c.JSON(http.StatusOK, client.CanExtendCredit(input.Amount))
}

// RecomputeClientHandler triggers the on-demand aggregation pass for
// one client.
func RecomputeClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	client, err := models.RecomputeClientBalances(c.Request.Context(), id)
	if err != nil {
		handleError(c, "RecomputeClientHandler", err)
		return
	}
	c.JSON(http.StatusOK, client)
}
