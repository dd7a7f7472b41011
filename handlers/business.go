package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stockflow/inventory_backend/utils"
)

// GetBusinessHandler returns the caller's tenant profile.
func GetBusinessHandler(c *gin.Context) {
	businessId, ok := utils.GetBusinessIdFromContext(c.Request.Context())
	if !ok || businessId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	business, err := models.GetBusiness(c.Request.Context(), businessId)
	if err != nil {
		handleError(c, "GetBusinessHandler", err)
		return
	}
	c.JSON(http.StatusOK, business)
}

// MeHandler returns the authenticated user's account.
func MeHandler(c *gin.Context) {
	userId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok || userId <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := models.GetUser(c.Request.Context(), userId)
	if err != nil {
		handleError(c, "MeHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
