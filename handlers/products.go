package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func CreateProductHandler(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "CreateProductHandler", err)
		return
	}

	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "CreateProductHandler", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func UpdateProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "UpdateProductHandler", err)
		return
	}

	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "UpdateProductHandler", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func DeleteProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, "DeleteProductHandler", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, "GetProductHandler", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetProductsHandler(c *gin.Context) {
	products, err := models.GetProducts(c.Request.Context())
	if err != nil {
		handleError(c, "GetProductsHandler", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func GetLowStockProductsHandler(c *gin.Context) {
	products, err := models.GetLowStockProducts(c.Request.Context())
	if err != nil {
		handleError(c, "GetLowStockProductsHandler", err)
		return
	}
	c.JSON(http.StatusOK, products)
}
