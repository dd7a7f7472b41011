package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
)

func RegisterHandler(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "RegisterHandler", err)
		return
	}

	user, token, err := models.Register(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "RegisterHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func LoginHandler(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleError(c, "LoginHandler", err)
		return
	}

	user, token, err := models.Login(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
