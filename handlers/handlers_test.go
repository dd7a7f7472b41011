package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/middlewares"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Use(config.NewTenantGuardPlugin()))

	config.SetDB(db)
	require.NoError(t, models.MigrateTable())

	r := gin.New()
	r.POST("/auth/register", RegisterHandler)
	r.POST("/auth/login", LoginHandler)

	api := r.Group("/api", middlewares.AuthMiddleware())
	{
		api.GET("/me", MeHandler)
		api.GET("/business", GetBusinessHandler)
		api.POST("/clients", CreateClientHandler)
		api.GET("/clients", GetClientsHandler)
		api.POST("/clients/:id/credit-check", CheckClientCreditHandler)
		api.POST("/clients/:id/recompute", RecomputeClientHandler)
		api.POST("/sales", CreateSaleHandler)
		api.GET("/sales/:id", GetSaleHandler)
		api.POST("/sales/:id/payments", ApplySalePaymentHandler)
		api.GET("/dashboard", GetDashboardHandler)
		api.POST("/reconcile", ReconcileHandler)
		api.DELETE("/business", DeleteBusinessHandler)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerTenant(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"business_name": "Test Traders",
		"name":          "Owner",
		"email":         "owner@example.com",
		"password":      "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	r := setupRouter(t)
	registerTenant(t, r)

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "owner@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "owner@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateSaleOverHTTP(t *testing.T) {
	r := setupRouter(t)
	token := registerTenant(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/sales", token, gin.H{
		"client_name":  "Aung Trading",
		"kind":         "Order",
		"payment_type": "Credit",
		"sale_date":    "2026-03-01T00:00:00Z",
		"total_amount": "5000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sale models.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Equal(t, models.PaymentStatusPending, sale.PaymentStatus)
	assert.True(t, sale.AmountDue.Equal(sale.TotalAmount))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sales/%d/payments", sale.ID), token, gin.H{
		"amount": "2000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/sales/%d", sale.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Equal(t, models.PaymentStatusPartial, sale.PaymentStatus)
}

func TestCreditCheckEndpoint(t *testing.T) {
	r := setupRouter(t)
	token := registerTenant(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/clients", token, gin.H{
		"name":         "Limited Co",
		"credit_limit": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var client models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &client))

	w = doJSON(t, r, http.MethodPost, "/api/sales", token, gin.H{
		"client_name":  "Limited Co",
		"kind":         "Order",
		"payment_type": "Credit",
		"sale_date":    "2026-03-01T00:00:00Z",
		"total_amount": "800",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/clients/%d/recompute", client.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/clients/%d/credit-check", client.ID), token, gin.H{
		"amount": "300",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var decision models.CreditDecision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	assert.False(t, decision.Allowed)
	require.NotNil(t, decision.Available)
	assert.Equal(t, "200", decision.Available.String())
}

func TestDashboardEndpoint(t *testing.T) {
	r := setupRouter(t)
	token := registerTenant(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/sales", token, gin.H{
		"client_name":  "Aung Trading",
		"kind":         "Order",
		"payment_type": "Credit",
		"sale_date":    "2026-03-01T00:00:00Z",
		"total_amount": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		TotalReceivables string `json:"total_receivables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "1000", report.TotalReceivables)
}

func TestDeleteBusinessCascades(t *testing.T) {
	r := setupRouter(t)
	token := registerTenant(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/sales", token, gin.H{
		"client_name":  "Aung Trading",
		"kind":         "Order",
		"payment_type": "Credit",
		"sale_date":    "2026-03-01T00:00:00Z",
		"total_amount": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/api/business", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	db := config.GetDB()
	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Client{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Business{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMeAndBusinessEndpoints(t *testing.T) {
	r := setupRouter(t)
	token := registerTenant(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "owner@example.com", me.Email)
	assert.Equal(t, "owner", me.Role)

	w = doJSON(t, r, http.MethodGet, "/api/business", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var business struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &business))
	assert.Equal(t, "Test Traders", business.Name)
	assert.Equal(t, "MMK", business.Currency)
}
