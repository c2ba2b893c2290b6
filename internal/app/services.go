package app

import (
	"gorm.io/gorm"

	dataagg "github.com/developerstore/sales-backend/internal/data/aggregates"
	"github.com/developerstore/sales-backend/internal/observability"
	"github.com/developerstore/sales-backend/internal/platform/logger"
	"github.com/developerstore/sales-backend/internal/services"
)

type Services struct {
	Auth services.AuthService
	User services.UserService
	Sale services.SaleService

	SaleAggregate dataagg.SaleAggregate
	SaleEvents    services.SaleEvents
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		repos.User,
		repos.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, repos.User)

	saleAggregate := dataagg.NewSaleAggregate(dataagg.SaleAggregateDeps{
		Base: dataagg.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: dataagg.NewObservabilityHooks(metrics),
		},
		Sales: repos.Sale,
		Items: repos.SaleItem,
	})
	saleEvents := services.NewLogSaleEvents(log)
	saleService := services.NewSaleService(db, log, repos.Sale, saleAggregate, saleEvents)

	return Services{
		Auth:          authService,
		User:          userService,
		Sale:          saleService,
		SaleAggregate: saleAggregate,
		SaleEvents:    saleEvents,
	}, nil
}
