package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/double-entry-ledger/internal/api_gateway/handler"
	"github.com/double-entry-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	backend string,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.TraceID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	v1 := r.Group("/api/v1")
	{
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.GET("/:id/entries", transactionHandler.GetEntries)
			transactions.POST("/:id/entries", transactionHandler.AppendEntries)
		}

		ledgers := v1.Group("/ledgers")
		{
			ledgers.POST("", accountHandler.CreateLedger)
			ledgers.GET("/:id", accountHandler.GetLedger)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.CreateAccount)
			accounts.GET("/:id", accountHandler.GetAccount)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"storage":   backend,
			"timestamp": time.Now().UTC(),
		})
	})
}
