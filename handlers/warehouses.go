package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func CreateWarehouseHandler(c *gin.Context) {
	var input models.NewWarehouse
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CreateWarehouseHandler", err)
		return
	}

	warehouse, err := models.CreateWarehouse(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "CreateWarehouseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, warehouse)
}

func UpdateWarehouseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewWarehouse
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "UpdateWarehouseHandler", err)
		return
	}

	warehouse, err := models.UpdateWarehouse(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "UpdateWarehouseHandler", err)
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

func DeleteWarehouseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	warehouse, err := models.DeleteWarehouse(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeleteWarehouseHandler", err)
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

func GetWarehouseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	warehouse, err := models.GetWarehouse(c.Request.Context(), id)
	if err != nil {
		handleError(c, "GetWarehouseHandler", err)
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

func GetWarehousesHandler(c *gin.Context) {
	warehouses, err := models.GetWarehouses(c.Request.Context())
	if err != nil {
		handleError(c, "GetWarehousesHandler", err)
		return
	}
	c.JSON(http.StatusOK, warehouses)
}
