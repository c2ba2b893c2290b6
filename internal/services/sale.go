package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dataagg "github.com/developerstore/sales-backend/internal/data/aggregates"
	salesrepo "github.com/developerstore/sales-backend/internal/data/repos/sales"
	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
	domainsales "github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

type SaleItemInput struct {
	// ID identifies an existing item; uuid.Nil means the item is new.
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CreateSaleInput struct {
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Items        []SaleItemInput
}

// UpdateSaleInput is a full-state replacement: root fields overwrite the
// stored ones and Items is the complete desired item set. Stored items
// missing from it are removed.
type UpdateSaleInput struct {
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Items        []SaleItemInput
}

type SaleService interface {
	CreateSale(ctx context.Context, userID uuid.UUID, in CreateSaleInput) (*domainsales.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*domainsales.Sale, error)
	GetSaleByNumber(ctx context.Context, saleNumber string) (*domainsales.Sale, error)
	ListSales(ctx context.Context, filter salesrepo.SaleFilter) ([]*domainsales.Sale, int64, error)
	UpdateSale(ctx context.Context, id uuid.UUID, in UpdateSaleInput) (*domainsales.Sale, error)
	AddItem(ctx context.Context, saleID uuid.UUID, in SaleItemInput) (*domainsales.Sale, error)
	UpdateItem(ctx context.Context, saleID, itemID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*domainsales.Sale, error)
	CancelItem(ctx context.Context, saleID, itemID uuid.UUID) (*domainsales.Sale, error)
	CancelSale(ctx context.Context, id uuid.UUID) (*domainsales.Sale, error)
}

type saleService struct {
	db       *gorm.DB
	log      *logger.Logger
	saleRepo salesrepo.SaleRepo
	sales    dataagg.SaleAggregate
	events   SaleEvents
}

func NewSaleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	saleRepo salesrepo.SaleRepo,
	sales dataagg.SaleAggregate,
	events SaleEvents,
) SaleService {
	serviceLog := baseLog.With("service", "SaleService")
	return &saleService{
		db:       db,
		log:      serviceLog,
		saleRepo: saleRepo,
		sales:    sales,
		events:   events,
	}
}

func (ss *saleService) CreateSale(ctx context.Context, userID uuid.UUID, in CreateSaleInput) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.CreateSale"
	if len(in.Items) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "a sale requires at least one item", nil)
	}

	sale, err := domainsales.NewSale(in.CustomerID, in.CustomerName, in.BranchID, in.BranchName, userID)
	if err != nil {
		return nil, err
	}
	for _, item := range in.Items {
		if _, err := sale.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	out, err := ss.sales.Insert(ctx, sale)
	if err != nil {
		ss.log.Error("CreateSale failed", "error", err, "sale_number", sale.SaleNumber)
		return nil, err
	}
	ss.events.SaleCreated(ctx, out)
	return out, nil
}

func (ss *saleService) GetSale(ctx context.Context, id uuid.UUID) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.GetSale"
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing sale id", nil)
	}
	sale, err := ss.saleRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return sale, nil
}

func (ss *saleService) GetSaleByNumber(ctx context.Context, saleNumber string) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.GetSaleByNumber"
	sale, err := ss.saleRepo.GetBySaleNumber(dbctx.Context{Ctx: ctx}, saleNumber)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return sale, nil
}

func (ss *saleService) ListSales(ctx context.Context, filter salesrepo.SaleFilter) ([]*domainsales.Sale, int64, error) {
	const op = "Sales.SaleService.ListSales"
	list, total, err := ss.saleRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, 0, dataagg.MapError(op, err)
	}
	return list, total, nil
}

func (ss *saleService) UpdateSale(ctx context.Context, id uuid.UUID, in UpdateSaleInput) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.UpdateSale"
	sale, err := ss.loadSale(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if err := sale.Update(in.CustomerID, in.CustomerName, in.BranchID, in.BranchName, sale.UserID); err != nil {
		return nil, err
	}

	// Keep only stored items that the desired set still references.
	desired := make(map[uuid.UUID]SaleItemInput, len(in.Items))
	for _, item := range in.Items {
		if item.ID != uuid.Nil {
			desired[item.ID] = item
		}
	}
	kept := sale.Items[:0:0]
	for _, existing := range sale.Items {
		if _, ok := desired[existing.ID]; ok {
			kept = append(kept, existing)
		}
	}
	sale.Items = kept

	for _, item := range in.Items {
		if item.ID == uuid.Nil {
			if _, err := sale.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
				return nil, err
			}
			continue
		}
		existing := sale.FindItem(item.ID)
		if existing == nil {
			return nil, domainagg.NewError(domainagg.CodeNotFound, op, "item not found: "+item.ID.String(), nil)
		}
		if existing.Quantity == item.Quantity && existing.UnitPrice.Equal(item.UnitPrice) {
			continue
		}
		if err := sale.UpdateItem(item.ID, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	out, err := ss.sales.Reconcile(ctx, sale)
	if err != nil {
		ss.log.Error("UpdateSale failed", "error", err, "sale_id", id)
		return nil, err
	}
	ss.events.SaleModified(ctx, out)
	return out, nil
}

func (ss *saleService) AddItem(ctx context.Context, saleID uuid.UUID, in SaleItemInput) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.AddItem"
	sale, err := ss.loadSale(ctx, op, saleID)
	if err != nil {
		return nil, err
	}
	if _, err := sale.AddItem(in.ProductID, in.ProductName, in.Quantity, in.UnitPrice); err != nil {
		return nil, err
	}
	out, err := ss.sales.Reconcile(ctx, sale)
	if err != nil {
		ss.log.Error("AddItem failed", "error", err, "sale_id", saleID)
		return nil, err
	}
	ss.events.SaleModified(ctx, out)
	return out, nil
}

func (ss *saleService) UpdateItem(ctx context.Context, saleID, itemID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.UpdateItem"
	sale, err := ss.loadSale(ctx, op, saleID)
	if err != nil {
		return nil, err
	}
	if err := sale.UpdateItem(itemID, quantity, unitPrice); err != nil {
		return nil, err
	}
	out, err := ss.sales.Reconcile(ctx, sale)
	if err != nil {
		ss.log.Error("UpdateItem failed", "error", err, "sale_id", saleID, "item_id", itemID)
		return nil, err
	}
	ss.events.SaleModified(ctx, out)
	return out, nil
}

func (ss *saleService) CancelItem(ctx context.Context, saleID, itemID uuid.UUID) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.CancelItem"
	sale, err := ss.loadSale(ctx, op, saleID)
	if err != nil {
		return nil, err
	}
	if err := sale.CancelItem(itemID); err != nil {
		return nil, err
	}
	out, err := ss.sales.Reconcile(ctx, sale)
	if err != nil {
		ss.log.Error("CancelItem failed", "error", err, "sale_id", saleID, "item_id", itemID)
		return nil, err
	}
	ss.events.ItemCancelled(ctx, out, itemID)
	return out, nil
}

func (ss *saleService) CancelSale(ctx context.Context, id uuid.UUID) (*domainsales.Sale, error) {
	const op = "Sales.SaleService.CancelSale"
	sale, err := ss.loadSale(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := sale.Cancel(); err != nil {
		return nil, err
	}
	out, err := ss.sales.Reconcile(ctx, sale)
	if err != nil {
		ss.log.Error("CancelSale failed", "error", err, "sale_id", id)
		return nil, err
	}
	ss.events.SaleCancelled(ctx, out)
	return out, nil
}

func (ss *saleService) loadSale(ctx context.Context, op string, id uuid.UUID) (*domainsales.Sale, error) {
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing sale id", nil)
	}
	sale, err := ss.saleRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return sale, nil
}
