package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/btspay/transfer-ledger/internal/api/handler"
	"github.com/btspay/transfer-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	auditHandler *handler.AuditHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Register)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.POST("/:id/verification", accountHandler.Verify)
			accounts.GET("/:id/transactions", transactionHandler.GetByAccountID)
		}

		// Authentication
		v1.POST("/auth/login", accountHandler.Login)

		// Transaction operations
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("/:id", transactionHandler.GetByID)
		}

		// Administration
		admin := v1.Group("/admin")
		{
			admin.GET("/transactions", transactionHandler.List)
			admin.POST("/transactions/:id/resolution", transactionHandler.Resolve)
			admin.GET("/transactions/:id/risk", transactionHandler.GetRisk)
			admin.GET("/transactions/:id/audit", auditHandler.GetTransactionTrail)
			admin.GET("/stats", transactionHandler.GetStats)
			admin.GET("/audit", auditHandler.GetTrail)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
