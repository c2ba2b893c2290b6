package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userrepos "github.com/developerstore/sales-backend/internal/data/repos/users"
	"github.com/developerstore/sales-backend/internal/domain/user"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
	"github.com/developerstore/sales-backend/internal/platform/logger"
	"github.com/developerstore/sales-backend/internal/requestdata"
)

type UserService interface {
	GetCurrentUser(ctx context.Context) (*user.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*user.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo userrepos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo userrepos.UserRepo) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetCurrentUser(ctx context.Context) (*user.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	users, err := us.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*user.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	if err := us.userRepo.UpdateName(dbctx.Context{Ctx: ctx}, rd.UserID, firstName, lastName); err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}
	return us.GetCurrentUser(ctx)
}
