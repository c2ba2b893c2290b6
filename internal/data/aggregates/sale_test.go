package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	salesrepo "github.com/developerstore/sales-backend/internal/data/repos/sales"
	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
	domainsales "github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
)

func newAggregateTestSale(t *testing.T) *domainsales.Sale {
	t.Helper()
	s, err := domainsales.NewSale(uuid.New(), "Customer", uuid.New(), "Branch", uuid.New())
	if err != nil {
		t.Fatalf("new sale: %v", err)
	}
	return s
}

func mustAddItem(t *testing.T, s *domainsales.Sale, quantity int, price int64) domainsales.SaleItem {
	t.Helper()
	item, err := s.AddItem(uuid.New(), "Product", quantity, decimal.NewFromInt(price))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	return item
}

func cloneSale(s *domainsales.Sale) *domainsales.Sale {
	c := *s
	c.Items = append([]domainsales.SaleItem(nil), s.Items...)
	return &c
}

func TestSaleAggregate_Insert(t *testing.T) {
	saleRepo := &fakeSaleRepo{}
	itemRepo := &fakeSaleItemRepo{}
	agg := NewSaleAggregate(SaleAggregateDeps{
		Base:  BaseDeps{Runner: spyTxRunner{}, Guard: &fakeGuard{}},
		Sales: saleRepo,
		Items: itemRepo,
	})

	sale := newAggregateTestSale(t)
	mustAddItem(t, sale, 2, 100)

	out, err := agg.Insert(context.Background(), sale)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if out.Version != 0 {
		t.Fatalf("fresh sale version: want=0 got=%d", out.Version)
	}
	if len(saleRepo.Created) != 1 || saleRepo.Created[0].ID != sale.ID {
		t.Fatalf("expected one created sale, got %+v", saleRepo.Created)
	}
}

func TestSaleAggregate_Insert_RejectsForeignItems(t *testing.T) {
	agg := NewSaleAggregate(SaleAggregateDeps{
		Base:  BaseDeps{Runner: spyTxRunner{}, Guard: &fakeGuard{}},
		Sales: &fakeSaleRepo{},
		Items: &fakeSaleItemRepo{},
	})

	sale := newAggregateTestSale(t)
	mustAddItem(t, sale, 2, 100)
	sale.Items[0].SaleID = uuid.New()

	_, err := agg.Insert(context.Background(), sale)
	if err == nil {
		t.Fatalf("expected invariant error")
	}
}

func TestSaleAggregate_Reconcile_PartitionsItems(t *testing.T) {
	stored := newAggregateTestSale(t)
	itemA := mustAddItem(t, stored, 2, 100)
	itemB := mustAddItem(t, stored, 3, 50)
	itemC := mustAddItem(t, stored, 1, 25)

	desired := cloneSale(stored)
	if err := desired.UpdateItem(itemA.ID, 5, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("update item: %v", err)
	}
	// Drop C, add D.
	kept := desired.Items[:0:0]
	for _, it := range desired.Items {
		if it.ID != itemC.ID {
			kept = append(kept, it)
		}
	}
	desired.Items = kept
	itemD := mustAddItem(t, desired, 4, 10)

	saleRepo := &fakeSaleRepo{Stored: []*domainsales.Sale{stored}}
	itemRepo := &fakeSaleItemRepo{}
	guard := &fakeGuard{Results: []bool{true}}
	agg := NewSaleAggregate(SaleAggregateDeps{
		Base:  BaseDeps{Runner: spyTxRunner{}, Guard: guard},
		Sales: saleRepo,
		Items: itemRepo,
	})

	out, err := agg.Reconcile(context.Background(), desired)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Version != stored.Version+1 {
		t.Fatalf("version: want=%d got=%d", stored.Version+1, out.Version)
	}

	if len(guard.Calls) != 1 {
		t.Fatalf("guard calls: want=1 got=%d", len(guard.Calls))
	}
	if guard.Calls[0].ExpectedVersion != stored.Version {
		t.Fatalf("guard expected version: want=%d got=%d", stored.Version, guard.Calls[0].ExpectedVersion)
	}

	replaced := map[uuid.UUID]bool{}
	for _, it := range itemRepo.Replaced {
		replaced[it.ID] = true
	}
	if len(replaced) != 2 || !replaced[itemA.ID] || !replaced[itemB.ID] {
		t.Fatalf("replaced items: %+v", itemRepo.Replaced)
	}
	if len(itemRepo.Created) != 1 || itemRepo.Created[0].ID != itemD.ID {
		t.Fatalf("created items: %+v", itemRepo.Created)
	}
	if len(itemRepo.Deleted) != 1 || itemRepo.Deleted[0] != itemC.ID {
		t.Fatalf("deleted ids: %+v", itemRepo.Deleted)
	}

	for i := range out.Items {
		if !out.Items[i].UpdatedAt.Equal(out.UpdatedAt) {
			t.Fatalf("item %s updated_at diverges from root", out.Items[i].ID)
		}
	}
}

func TestSaleAggregate_Reconcile_RetriesOnceOnStaleVersion(t *testing.T) {
	storedV0 := newAggregateTestSale(t)
	mustAddItem(t, storedV0, 2, 100)
	storedV1 := cloneSale(storedV0)
	storedV1.Version = 1

	desired := cloneSale(storedV0)
	if err := desired.UpdateItem(desired.Items[0].ID, 5, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("update item: %v", err)
	}

	saleRepo := &fakeSaleRepo{Stored: []*domainsales.Sale{storedV0, storedV1}}
	itemRepo := &fakeSaleItemRepo{}
	guard := &fakeGuard{Results: []bool{false, true}}
	hooks := &spyHooks{}
	agg := NewSaleAggregate(SaleAggregateDeps{
		Base:  BaseDeps{Runner: spyTxRunner{}, Guard: guard, Hooks: hooks},
		Sales: saleRepo,
		Items: itemRepo,
	})

	out, err := agg.Reconcile(context.Background(), desired)
	if err != nil {
		t.Fatalf("reconcile with one stale read should succeed: %v", err)
	}
	if len(guard.Calls) != 2 {
		t.Fatalf("guard calls: want=2 got=%d", len(guard.Calls))
	}
	if guard.Calls[0].ExpectedVersion != 0 || guard.Calls[1].ExpectedVersion != 1 {
		t.Fatalf("guard expected versions: %+v", guard.Calls)
	}
	if out.Version != 2 {
		t.Fatalf("version after retried reconcile: want=2 got=%d", out.Version)
	}
	// The failed first attempt must not have written any items.
	if len(itemRepo.Replaced) != 1 {
		t.Fatalf("replaced items: want=1 got=%d", len(itemRepo.Replaced))
	}
	if len(hooks.Conflicts) != 0 {
		t.Fatalf("a recovered stale read is not a conflict: %+v", hooks.Conflicts)
	}
	if len(hooks.Retries) != 1 || hooks.Retries[0] != "Sales.Sale.Reconcile" {
		t.Fatalf("retry counter after a recovered stale read: %+v", hooks.Retries)
	}
}

func TestSaleAggregate_Reconcile_SecondStaleReadConflicts(t *testing.T) {
	storedV0 := newAggregateTestSale(t)
	mustAddItem(t, storedV0, 2, 100)
	storedV1 := cloneSale(storedV0)
	storedV1.Version = 1

	desired := cloneSale(storedV0)

	saleRepo := &fakeSaleRepo{Stored: []*domainsales.Sale{storedV0, storedV1}}
	guard := &fakeGuard{Results: []bool{false, false}}
	hooks := &spyHooks{}
	agg := NewSaleAggregate(SaleAggregateDeps{
		Base:  BaseDeps{Runner: spyTxRunner{}, Guard: guard, Hooks: hooks},
		Sales: saleRepo,
		Items: &fakeSaleItemRepo{},
	})

	_, err := agg.Reconcile(context.Background(), desired)
	if err == nil {
		t.Fatalf("expected conflict after two stale reads")
	}
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if len(guard.Calls) != 2 {
		t.Fatalf("guard calls: want=2 got=%d", len(guard.Calls))
	}
	if len(hooks.Conflicts) != 1 {
		t.Fatalf("conflict counter: %+v", hooks.Conflicts)
	}
	if len(hooks.Retries) != 1 {
		t.Fatalf("only the first stale read counts as a retry: %+v", hooks.Retries)
	}
}

func TestSaleAggregate_Reconcile_NotFound(t *testing.T) {
	agg := NewSaleAggregate(SaleAggregateDeps{
		Base:  BaseDeps{Runner: spyTxRunner{}, Guard: &fakeGuard{}},
		Sales: &fakeSaleRepo{},
		Items: &fakeSaleItemRepo{},
	})

	desired := newAggregateTestSale(t)
	_, err := agg.Reconcile(context.Background(), desired)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

type fakeSaleRepo struct {
	// Stored is consumed one element per GetByID call; the last element
	// keeps serving once the script runs out.
	Stored  []*domainsales.Sale
	Gets    int
	Created []*domainsales.Sale
}

func (f *fakeSaleRepo) Create(_ dbctx.Context, sale *domainsales.Sale) (*domainsales.Sale, error) {
	f.Created = append(f.Created, sale)
	return sale, nil
}

func (f *fakeSaleRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domainsales.Sale, error) {
	if len(f.Stored) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	idx := f.Gets
	if idx >= len(f.Stored) {
		idx = len(f.Stored) - 1
	}
	f.Gets++
	return cloneSale(f.Stored[idx]), nil
}

func (f *fakeSaleRepo) GetBySaleNumber(_ dbctx.Context, _ string) (*domainsales.Sale, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSaleRepo) List(_ dbctx.Context, _ salesrepo.SaleFilter) ([]*domainsales.Sale, int64, error) {
	return nil, 0, nil
}

type fakeSaleItemRepo struct {
	Created  []*domainsales.SaleItem
	Replaced []*domainsales.SaleItem
	Deleted  []uuid.UUID
}

func (f *fakeSaleItemRepo) CreateBatch(_ dbctx.Context, rows []*domainsales.SaleItem) ([]*domainsales.SaleItem, error) {
	f.Created = append(f.Created, rows...)
	return rows, nil
}

func (f *fakeSaleItemRepo) GetBySaleIDs(_ dbctx.Context, _ []uuid.UUID) ([]*domainsales.SaleItem, error) {
	return nil, nil
}

func (f *fakeSaleItemRepo) Replace(_ dbctx.Context, item *domainsales.SaleItem) error {
	copied := *item
	f.Replaced = append(f.Replaced, &copied)
	return nil
}

func (f *fakeSaleItemRepo) DeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	f.Deleted = append(f.Deleted, ids...)
	return nil
}

type guardCall struct {
	Table           string
	ID              uuid.UUID
	ExpectedVersion int
	Updates         map[string]any
}

type fakeGuard struct {
	// Results is consumed one element per call; an exhausted script
	// reports success.
	Results []bool
	Calls   []guardCall
}

func (g *fakeGuard) UpdateByVersion(_ dbctx.Context, table string, id uuid.UUID, expectedVersion int, updates map[string]any) (bool, error) {
	g.Calls = append(g.Calls, guardCall{Table: table, ID: id, ExpectedVersion: expectedVersion, Updates: updates})
	if len(g.Results) == 0 {
		return true, nil
	}
	ok := g.Results[0]
	g.Results = g.Results[1:]
	return ok, nil
}
