package app

import (
	"github.com/developerstore/sales-backend/internal/handlers"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

type Handlers struct {
	Auth *handlers.AuthHandler
	User *handlers.UserHandler
	Sale *handlers.SaleHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth: handlers.NewAuthHandler(log, services.Auth),
		User: handlers.NewUserHandler(log, services.User),
		Sale: handlers.NewSaleHandler(log, services.Sale),
	}
}
