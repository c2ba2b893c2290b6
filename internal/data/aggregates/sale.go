package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	salesrepo "github.com/developerstore/sales-backend/internal/data/repos/sales"
	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
	domainsales "github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
)

// SaleAggregate owns every durable write to a sale and its items.
type SaleAggregate interface {
	domainagg.Aggregate
	// Insert persists a brand-new sale with its items.
	Insert(ctx context.Context, sale *domainsales.Sale) (*domainsales.Sale, error)
	// Reconcile replaces the stored state of an existing sale with the given
	// in-memory state: root fields are overwritten, items are diffed into
	// inserts, updates and deletes, and the root version advances by one.
	Reconcile(ctx context.Context, sale *domainsales.Sale) (*domainsales.Sale, error)
}

type SaleAggregateDeps struct {
	Base BaseDeps

	Sales salesrepo.SaleRepo
	Items salesrepo.SaleItemRepo
}

type saleAggregate struct {
	deps SaleAggregateDeps
}

func NewSaleAggregate(deps SaleAggregateDeps) SaleAggregate {
	deps.Base = deps.Base.withDefaults()
	return &saleAggregate{deps: deps}
}

func (a *saleAggregate) Contract() domainagg.Contract {
	return domainagg.SaleAggregateContract
}

func (a *saleAggregate) Insert(ctx context.Context, sale *domainsales.Sale) (*domainsales.Sale, error) {
	const op = "Sales.Sale.Insert"
	if sale == nil || sale.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing sale", nil)
	}
	if a.deps.Sales == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "sale aggregate repos not configured", nil)
	}
	for i := range sale.Items {
		if sale.Items[i].SaleID != sale.ID {
			return nil, InvariantError("item does not belong to sale")
		}
	}

	sale.Version = 0
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, err := a.deps.Sales.Create(dbc, sale)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Reconcile runs at most two compare-and-set attempts inside one
// transaction: when a concurrent writer advances the root version between
// our read and our write, the stored state is re-read once and the diff
// re-applied. A second miss surfaces as a conflict.
func (a *saleAggregate) Reconcile(ctx context.Context, sale *domainsales.Sale) (*domainsales.Sale, error) {
	const op = "Sales.Sale.Reconcile"
	if sale == nil || sale.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing sale", nil)
	}
	if a.deps.Sales == nil || a.deps.Items == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "sale aggregate repos not configured", nil)
	}
	for i := range sale.Items {
		if sale.Items[i].SaleID != sale.ID {
			return nil, InvariantError("item does not belong to sale")
		}
	}

	hooks := a.deps.Base.Hooks
	if hooks == nil {
		hooks = noopHooks{}
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		for attempt := 0; attempt < 2; attempt++ {
			stored, err := a.deps.Sales.GetByID(dbc, sale.ID)
			if err != nil {
				return err
			}
			ok, err := a.applyReconcile(dbc, stored, sale)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			if attempt == 0 {
				// Stale version read. Count the retry, then re-read the
				// now-committed state and run the compare-and-set once more.
				hooks.IncRetry(op)
			}
		}
		return ConflictError(fmt.Sprintf("sale %s changed concurrently twice", sale.ID))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// applyReconcile writes one full-state replacement against the stored
// snapshot. It returns false, with no error, when the root compare-and-set
// finds a different version than the snapshot carried.
func (a *saleAggregate) applyReconcile(dbc dbctx.Context, stored, sale *domainsales.Sale) (bool, error) {
	now := time.Now().UTC()
	sale.UpdatedAt = now
	sale.CreatedAt = stored.CreatedAt

	ok, err := a.deps.Base.Guard.UpdateByVersion(dbc, sale.TableName(), sale.ID, stored.Version, map[string]any{
		"sale_number":   sale.SaleNumber,
		"customer_id":   sale.CustomerID,
		"customer_name": sale.CustomerName,
		"branch_id":     sale.BranchID,
		"branch_name":   sale.BranchName,
		"user_id":       sale.UserID,
		"sale_date":     sale.SaleDate,
		"status":        sale.Status,
		"is_cancelled":  sale.IsCancelled,
		"version":       stored.Version + 1,
		"updated_at":    now,
	})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	storedByID := make(map[uuid.UUID]*domainsales.SaleItem, len(stored.Items))
	for i := range stored.Items {
		storedByID[stored.Items[i].ID] = &stored.Items[i]
	}

	var inserts []*domainsales.SaleItem
	for i := range sale.Items {
		item := &sale.Items[i]
		// Child rows move in lockstep with the root.
		item.UpdatedAt = now
		existing, found := storedByID[item.ID]
		if !found {
			inserts = append(inserts, item)
			continue
		}
		item.CreatedAt = existing.CreatedAt
		if err := a.deps.Items.Replace(dbc, item); err != nil {
			return false, err
		}
		delete(storedByID, item.ID)
	}

	if len(inserts) > 0 {
		if _, err := a.deps.Items.CreateBatch(dbc, inserts); err != nil {
			return false, err
		}
	}

	if len(storedByID) > 0 {
		orphaned := make([]uuid.UUID, 0, len(storedByID))
		for id := range storedByID {
			orphaned = append(orphaned, id)
		}
		if err := a.deps.Items.DeleteByIDs(dbc, orphaned); err != nil {
			return false, err
		}
	}

	sale.Version = stored.Version + 1
	return true, nil
}
