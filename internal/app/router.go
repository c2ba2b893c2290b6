package app

import (
	"github.com/gin-gonic/gin"

	"github.com/developerstore/sales-backend/internal/observability"
	"github.com/developerstore/sales-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		UserHandler:    handlers.User,
		SaleHandler:    handlers.Sale,
		Metrics:        metrics,
	})
}
