package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stockflow/inventory_backend/models/reports"
	"github.com/stockflow/inventory_backend/utils"
)

func GetDashboardHandler(c *gin.Context) {
	report, err := reports.GetDashboardReport(c.Request.Context())
	if err != nil {
		handleError(c, "GetDashboardHandler", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func GetSalesSummaryHandler(c *gin.Context) {
	summary, err := reports.GetSalesSummary(c.Request.Context())
	if err != nil {
		handleError(c, "GetSalesSummaryHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func GetPurchasesSummaryHandler(c *gin.Context) {
	summary, err := reports.GetPurchasesSummary(c.Request.Context())
	if err != nil {
		handleError(c, "GetPurchasesSummaryHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func ExportSalesExcelHandler(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=sales.xlsx")
	if err := reports.ExportSalesExcel(c.Request.Context(), c.Writer); err != nil {
		handleError(c, "ExportSalesExcelHandler", err)
		return
	}
}

// ReconcileHandler runs the full aggregation pass for the tenant,
// rebuilding every counterparty's outstanding balances.
func ReconcileHandler(c *gin.Context) {
	summary, err := models.ReconcileAllCounterparties(c.Request.Context())
	if err != nil {
		handleError(c, "ReconcileHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RefreshOverdueHandler re-saves records whose stored overdue flag no
// longer matches the wall clock.
func RefreshOverdueHandler(c *gin.Context) {
	updated, err := models.RefreshOverdueFlags(c.Request.Context())
	if err != nil {
		handleError(c, "RefreshOverdueHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteBusinessHandler removes the caller's tenant and everything it
// owns in one transaction.
func DeleteBusinessHandler(c *gin.Context) {
	businessId, ok := utils.GetBusinessIdFromContext(c.Request.Context())
	if !ok || businessId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := models.DeleteBusinessData(c.Request.Context(), businessId); err != nil {
		handleError(c, "DeleteBusinessHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": businessId})
}
