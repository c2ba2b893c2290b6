package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/developerstore/sales-backend/internal/handlers"
	"github.com/developerstore/sales-backend/internal/middleware"
	"github.com/developerstore/sales-backend/internal/observability"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	SaleHandler    *handlers.SaleHandler
	Metrics        *observability.Metrics
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(middleware.Metrics(cfg.Metrics))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.Me)
	protected.PUT("/user/name", cfg.UserHandler.UpdateName)
	// Sales
	protected.POST("/sales", cfg.SaleHandler.Create)
	protected.GET("/sales", cfg.SaleHandler.List)
	protected.GET("/sales/number/:number", cfg.SaleHandler.GetByNumber)
	protected.GET("/sales/:id", cfg.SaleHandler.GetByID)
	protected.PUT("/sales/:id", cfg.SaleHandler.Update)
	protected.DELETE("/sales/:id", cfg.SaleHandler.Cancel)
	protected.POST("/sales/:id/items", cfg.SaleHandler.AddItem)
	protected.PUT("/sales/:id/items/:itemId", cfg.SaleHandler.UpdateItem)
	protected.DELETE("/sales/:id/items/:itemId", cfg.SaleHandler.CancelItem)

	return router
}
