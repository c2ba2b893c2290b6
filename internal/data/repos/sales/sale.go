package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
	domainsales "github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

// SaleFilter narrows and pages List results. Zero values mean "no filter".
type SaleFilter struct {
	Page         int
	Size         int
	SaleNumber   string
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	IsCancelled  *bool
	StartDate    *time.Time
	EndDate      *time.Time
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	OrderBy      string
}

type SaleRepo interface {
	Create(dbc dbctx.Context, sale *domainsales.Sale) (*domainsales.Sale, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domainsales.Sale, error)
	GetBySaleNumber(dbc dbctx.Context, saleNumber string) (*domainsales.Sale, error)
	List(dbc dbctx.Context, filter SaleFilter) ([]*domainsales.Sale, int64, error)
}

type saleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSaleRepo(db *gorm.DB, log *logger.Logger) SaleRepo {
	return &saleRepo{db: db, log: log.With("repo", "SaleRepo")}
}

func (r *saleRepo) Create(dbc dbctx.Context, sale *domainsales.Sale) (*domainsales.Sale, error) {
	if sale == nil {
		return nil, fmt.Errorf("missing sale")
	}
	txx := dbc.DBOr(r.db)
	if err := txx.WithContext(dbc.Ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *saleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domainsales.Sale, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.DBOr(r.db)
	var out domainsales.Sale
	if err := txx.WithContext(dbc.Ctx).
		Preload("Items").
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *saleRepo) GetBySaleNumber(dbc dbctx.Context, saleNumber string) (*domainsales.Sale, error) {
	saleNumber = strings.TrimSpace(saleNumber)
	if saleNumber == "" {
		return nil, fmt.Errorf("missing sale_number")
	}
	txx := dbc.DBOr(r.db)
	var out domainsales.Sale
	if err := txx.WithContext(dbc.Ctx).
		Preload("Items").
		Where("sale_number = ?", saleNumber).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// itemsTotalExpr computes the live total of a sale from its non-cancelled
// items, for amount filtering without a denormalized column.
const itemsTotalExpr = `(SELECT COALESCE(SUM(si.total_amount), 0) FROM sale_item si WHERE si.sale_id = sale.id AND si.is_cancelled = FALSE)`

func (r *saleRepo) List(dbc dbctx.Context, filter SaleFilter) ([]*domainsales.Sale, int64, error) {
	txx := dbc.DBOr(r.db)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size < 1 || size > 100 {
		size = 10
	}

	q := txx.WithContext(dbc.Ctx).Model(&domainsales.Sale{})
	if s := strings.TrimSpace(filter.SaleNumber); s != "" {
		q = q.Where("sale_number = ?", s)
	}
	if filter.CustomerID != uuid.Nil {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if s := strings.TrimSpace(filter.CustomerName); s != "" {
		q = q.Where("customer_name ILIKE ?", "%"+s+"%")
	}
	if filter.BranchID != uuid.Nil {
		q = q.Where("branch_id = ?", filter.BranchID)
	}
	if filter.IsCancelled != nil {
		q = q.Where("is_cancelled = ?", *filter.IsCancelled)
	}
	if filter.StartDate != nil {
		q = q.Where("sale_date >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		q = q.Where("sale_date <= ?", filter.EndDate.UTC())
	}
	if filter.MinAmount != nil {
		q = q.Where(itemsTotalExpr+" >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q = q.Where(itemsTotalExpr+" <= ?", *filter.MaxAmount)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := saleOrderClause(filter.OrderBy)
	if err != nil {
		return nil, 0, err
	}

	var out []*domainsales.Sale
	if err := q.
		Preload("Items").
		Order(order).
		Offset((page - 1) * size).
		Limit(size).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

var saleOrderColumns = map[string]string{
	"salenumber":   "sale_number",
	"sale_number":  "sale_number",
	"saledate":     "sale_date",
	"sale_date":    "sale_date",
	"date":         "sale_date",
	"customername": "customer_name",
	"customer":     "customer_name",
	"branchname":   "branch_name",
	"branch":       "branch_name",
	"amount":       itemsTotalExpr,
	"createdat":    "created_at",
	"created_at":   "created_at",
	"updatedat":    "updated_at",
	"updated_at":   "updated_at",
}

// Columns that read newest/largest-first when the caller names no direction.
var saleOrderDefaultDesc = map[string]bool{
	"sale_date":    true,
	itemsTotalExpr: true,
}

// saleOrderClause turns a caller-supplied ordering like
// "saleDate desc, customerName" into a whitelisted SQL ORDER BY.
// Unknown columns and directions surface as validation errors.
func saleOrderClause(orderBy string) (string, error) {
	const op = "sales.SaleRepo.List"
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return "sale_date DESC", nil
	}
	parts := strings.Split(orderBy, ",")
	clauses := make([]string, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(strings.ToLower(strings.TrimSpace(part)))
		if len(fields) == 0 || len(fields) > 2 {
			return "", domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid order clause %q", part), nil)
		}
		col, ok := saleOrderColumns[fields[0]]
		if !ok {
			return "", domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("cannot order by %q", fields[0]), nil)
		}
		dir := "ASC"
		if saleOrderDefaultDesc[col] {
			dir = "DESC"
		}
		if len(fields) == 2 {
			dir = "ASC"
			switch fields[1] {
			case "asc":
			case "desc":
				dir = "DESC"
			default:
				return "", domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid order direction %q", fields[1]), nil)
			}
		}
		clauses = append(clauses, col+" "+dir)
	}
	return strings.Join(clauses, ", "), nil
}
