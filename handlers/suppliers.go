package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func CreateSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CreateSupplierHandler", err)
		return
	}

	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "CreateSupplierHandler", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func UpdateSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "UpdateSupplierHandler", err)
		return
	}

	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "UpdateSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func DeleteSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	supplier, err := models.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeleteSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func GetSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	supplier, err := models.GetSupplier(c.Request.Context(), id)
	if err != nil {
		handleError(c, "GetSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func GetSuppliersHandler(c *gin.Context) {
	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	suppliers, err := models.GetSuppliers(c.Request.Context(), name)
	if err != nil {
		handleError(c, "GetSuppliersHandler", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

// RecomputeSupplierHandler triggers the on-demand aggregation pass for
// one supplier.
func RecomputeSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	supplier, err := models.RecomputeSupplierBalances(c.Request.Context(), id)
	if err != nil {
		handleError(c, "RecomputeSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}
