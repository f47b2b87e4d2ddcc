package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/core/internal/infrastructure/config"
	"github.com/erp/core/internal/interfaces/http/handler"
)

// Dependencies holds everything the router needs
type Dependencies struct {
	Config           *config.Config
	Logger           *zap.Logger
	SalesOrderStatus *handler.SalesOrderStatusHandler
	Receiving        *handler.ReceivingHandler
	HealthCheck      func() error
}

// New builds the gin engine with all routes registered
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(deps.Logger))
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	engine.GET("/healthz", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(); err != nil {
				c.JSON(503, gin.H{"status": "unhealthy"})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		orders := v1.Group("/sales-orders")
		{
			orders.POST("/transitions", deps.SalesOrderStatus.TransitionBatch)
			orders.POST("/:id/transition", deps.SalesOrderStatus.Transition)
			orders.GET("/:id/transitions", deps.SalesOrderStatus.AvailableTransitions)
			orders.GET("/:id/status-history", deps.SalesOrderStatus.History)
		}

		v1.POST("/purchase-orders/:id/receipts", deps.Receiving.Receive)

		stock := v1.Group("/stock")
		{
			stock.GET("/:productID/:warehouseID", deps.Receiving.Balance)
			stock.GET("/:productID/:warehouseID/ledger", deps.Receiving.History)
			stock.POST("/:productID/:warehouseID/recompute", deps.Receiving.Recompute)
		}
	}

	return engine
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
