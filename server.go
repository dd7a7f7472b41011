package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/handlers"
	"github.com/stockflow/inventory_backend/middlewares"
	"github.com/stockflow/inventory_backend/models"
)

const defaultPort = "8080"

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDRESS")})
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/auth/register", handlers.RegisterHandler)
	r.POST("/auth/login", handlers.LoginHandler)

	api := r.Group("/api", middlewares.AuthMiddleware())
	{
		api.GET("/me", handlers.MeHandler)
		api.GET("/business", handlers.GetBusinessHandler)

		api.POST("/clients", handlers.CreateClientHandler)
		api.GET("/clients", handlers.GetClientsHandler)
		api.GET("/clients/:id", handlers.GetClientHandler)
		api.PUT("/clients/:id", handlers.UpdateClientHandler)
		api.DELETE("/clients/:id", handlers.DeleteClientHandler)
		api.POST("/clients/:id/credit-check", handlers.CheckClientCreditHandler)
		api.POST("/clients/:id/recompute", handlers.RecomputeClientHandler)

		api.POST("/suppliers", handlers.CreateSupplierHandler)
		api.GET("/suppliers", handlers.GetSuppliersHandler)
		api.GET("/suppliers/:id", handlers.GetSupplierHandler)
		api.PUT("/suppliers/:id", handlers.UpdateSupplierHandler)
		api.DELETE("/suppliers/:id", handlers.DeleteSupplierHandler)
		api.POST("/suppliers/:id/recompute", handlers.RecomputeSupplierHandler)

		api.POST("/sales", handlers.CreateSaleHandler)
		api.GET("/sales", handlers.GetSalesHandler)
		api.GET("/sales/:id", handlers.GetSaleHandler)
		api.PUT("/sales/:id", handlers.UpdateSaleHandler)
		api.DELETE("/sales/:id", handlers.DeleteSaleHandler)
		api.POST("/sales/:id/payments", handlers.ApplySalePaymentHandler)

		api.POST("/purchases", handlers.CreatePurchaseHandler)
		api.GET("/purchases", handlers.GetPurchasesHandler)
		api.GET("/purchases/:id", handlers.GetPurchaseHandler)
		api.PUT("/purchases/:id", handlers.UpdatePurchaseHandler)
		api.DELETE("/purchases/:id", handlers.DeletePurchaseHandler)
		api.POST("/purchases/:id/payments", handlers.ApplyPurchasePaymentHandler)

		api.GET("/payments", handlers.GetPaymentsHandler)
		api.DELETE("/payments/:id", handlers.DeletePaymentHandler)

		api.POST("/products", handlers.CreateProductHandler)
		api.GET("/products", handlers.GetProductsHandler)
		api.GET("/products/low-stock", handlers.GetLowStockProductsHandler)
		api.GET("/products/:id", handlers.GetProductHandler)
		api.PUT("/products/:id", handlers.UpdateProductHandler)
		api.DELETE("/products/:id", handlers.DeleteProductHandler)

		api.POST("/warehouses", handlers.CreateWarehouseHandler)
		api.GET("/warehouses", handlers.GetWarehousesHandler)
		api.GET("/warehouses/:id", handlers.GetWarehouseHandler)
		api.PUT("/warehouses/:id", handlers.UpdateWarehouseHandler)
		api.DELETE("/warehouses/:id", handlers.DeleteWarehouseHandler)

		api.GET("/dashboard", handlers.GetDashboardHandler)
		api.GET("/reports/sales-summary", handlers.GetSalesSummaryHandler)
		api.GET("/reports/purchases-summary", handlers.GetPurchasesSummaryHandler)
		api.GET("/reports/sales-export", handlers.ExportSalesExcelHandler)

		api.POST("/reconcile", handlers.ReconcileHandler)
		api.POST("/reconcile/overdue", handlers.RefreshOverdueHandler)
		api.DELETE("/business", handlers.DeleteBusinessHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Error(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware enforces a fixed window per client IP.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if exists == 0 {
		if err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
