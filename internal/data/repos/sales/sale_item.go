package sales

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainsales "github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

type SaleItemRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*domainsales.SaleItem) ([]*domainsales.SaleItem, error)
	GetBySaleIDs(dbc dbctx.Context, saleIDs []uuid.UUID) ([]*domainsales.SaleItem, error)
	Replace(dbc dbctx.Context, item *domainsales.SaleItem) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type saleItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSaleItemRepo(db *gorm.DB, log *logger.Logger) SaleItemRepo {
	return &saleItemRepo{db: db, log: log.With("repo", "SaleItemRepo")}
}

func (r *saleItemRepo) CreateBatch(dbc dbctx.Context, rows []*domainsales.SaleItem) ([]*domainsales.SaleItem, error) {
	if len(rows) == 0 {
		return []*domainsales.SaleItem{}, nil
	}
	txx := dbc.DBOr(r.db)
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *saleItemRepo) GetBySaleIDs(dbc dbctx.Context, saleIDs []uuid.UUID) ([]*domainsales.SaleItem, error) {
	if len(saleIDs) == 0 {
		return []*domainsales.SaleItem{}, nil
	}
	txx := dbc.DBOr(r.db)
	var out []*domainsales.SaleItem
	if err := txx.WithContext(dbc.Ctx).
		Model(&domainsales.SaleItem{}).
		Where("sale_id IN ?", saleIDs).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Replace writes every mutable column of an existing item.
func (r *saleItemRepo) Replace(dbc dbctx.Context, item *domainsales.SaleItem) error {
	if item == nil || item.ID == uuid.Nil {
		return fmt.Errorf("missing item id")
	}
	txx := dbc.DBOr(r.db)
	return txx.WithContext(dbc.Ctx).
		Model(&domainsales.SaleItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"product_id":          item.ProductID,
			"product_name":        item.ProductName,
			"quantity":            item.Quantity,
			"unit_price":          item.UnitPrice,
			"discount_percentage": item.DiscountPercentage,
			"total_amount":        item.TotalAmount,
			"is_cancelled":        item.IsCancelled,
			"updated_at":          item.UpdatedAt,
		}).Error
}

func (r *saleItemRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	txx := dbc.DBOr(r.db)
	return txx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&domainsales.SaleItem{}).Error
}
