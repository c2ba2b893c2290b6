package app

import (
	"gorm.io/gorm"

	salesrepo "github.com/developerstore/sales-backend/internal/data/repos/sales"
	userrepos "github.com/developerstore/sales-backend/internal/data/repos/users"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

type Repos struct {
	User      userrepos.UserRepo
	UserToken userrepos.UserTokenRepo
	Sale      salesrepo.SaleRepo
	SaleItem  salesrepo.SaleItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      userrepos.NewUserRepo(db, log),
		UserToken: userrepos.NewUserTokenRepo(db, log),
		Sale:      salesrepo.NewSaleRepo(db, log),
		SaleItem:  salesrepo.NewSaleItemRepo(db, log),
	}
}
