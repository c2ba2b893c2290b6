package users

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developerstore/sales-backend/internal/domain/user"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*user.User) ([]*user.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*user.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*user.User) ([]*user.User, error) {
	transaction := dbc.DBOr(ur.db)

	if len(users) == 0 {
		return []*user.User{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error) {
	transaction := dbc.DBOr(ur.db)

	var results []*user.User

	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*user.User, error) {
	transaction := dbc.DBOr(ur.db)

	var results []*user.User
	if len(userEmails) == 0 {
		return results, nil
	}

	normalized := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(e)))
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("lower(email) IN ?", normalized).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	transaction := dbc.DBOr(ur.db)

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&user.User{}).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(userEmail))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error {
	transaction := dbc.DBOr(ur.db)

	return transaction.WithContext(dbc.Ctx).
		Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"first_name": strings.TrimSpace(firstName),
			"last_name":  strings.TrimSpace(lastName),
		}).Error
}
