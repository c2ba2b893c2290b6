package sales

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
)

func newTestSale(t *testing.T) *Sale {
	t.Helper()
	s, err := NewSale(uuid.New(), "John Doe", uuid.New(), "Main Branch", uuid.New())
	if err != nil {
		t.Fatalf("NewSale: %v", err)
	}
	return s
}

func requireAmount(t *testing.T, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("amount = %s, want %d", got, want)
	}
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := domainagg.CodeOf(err); got != code {
		t.Fatalf("error code = %q, want %q (err: %v)", got, code, err)
	}
}

func TestNewSaleValidation(t *testing.T) {
	if _, err := NewSale(uuid.New(), "", uuid.New(), "Main Branch", uuid.New()); err == nil {
		t.Fatal("expected error for empty customer name")
	} else {
		requireCode(t, err, domainagg.CodeValidation)
	}
	if _, err := NewSale(uuid.New(), "John Doe", uuid.New(), "  ", uuid.New()); err == nil {
		t.Fatal("expected error for empty branch name")
	} else {
		requireCode(t, err, domainagg.CodeValidation)
	}

	s := newTestSale(t)
	if s.IsCancelled {
		t.Fatal("new sale must not be cancelled")
	}
	if s.Status != StatusPending {
		t.Fatalf("status = %q, want %q", s.Status, StatusPending)
	}
	if s.SaleNumber == "" {
		t.Fatal("new sale must carry a sale number")
	}
	if len(s.Items) != 0 {
		t.Fatalf("new sale has %d items, want 0", len(s.Items))
	}
	if !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Fatal("created/updated timestamps must match on construction")
	}
}

func TestAddItemNoDiscountTier(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "Product 1", 2, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	requireAmount(t, item.DiscountPercentage, 0)
	requireAmount(t, item.TotalAmount, 200)
	requireAmount(t, s.TotalAmount(), 200)
}

func TestAddItemMidTier(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "X", 5, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	requireAmount(t, item.DiscountPercentage, 10)
	requireAmount(t, item.TotalAmount, 450)
}

func TestAddItemHighTier(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "X", 12, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	requireAmount(t, item.DiscountPercentage, 20)
	requireAmount(t, item.TotalAmount, 960)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	s := newTestSale(t)
	if _, err := s.AddItem(uuid.New(), "X", 21, decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected error for quantity above 20")
	} else {
		requireCode(t, err, domainagg.CodeValidation)
	}
	if _, err := s.AddItem(uuid.New(), "X", 0, decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected error for zero quantity")
	} else {
		requireCode(t, err, domainagg.CodeValidation)
	}
	if _, err := s.AddItem(uuid.New(), "X", 1, decimal.Zero); err == nil {
		t.Fatal("expected error for non-positive unit price")
	} else {
		requireCode(t, err, domainagg.CodeValidation)
	}
	if len(s.Items) != 0 {
		t.Fatalf("rejected AddItem calls must not append items, have %d", len(s.Items))
	}
}

func TestSaleNumberFormatAndUniqueness(t *testing.T) {
	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n := newSaleNumber(at)
		if !strings.HasPrefix(n, "SAL-20260828-") {
			t.Fatalf("sale number format: %s", n)
		}
		if len(n) != len("SAL-20260828-")+10 {
			t.Fatalf("sale number suffix length: %s", n)
		}
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate sale number within 1000 draws: %s", n)
		}
		seen[n] = struct{}{}
	}
}

func TestAddItemReturnsDetachedCopy(t *testing.T) {
	s := newTestSale(t)
	first, err := s.AddItem(uuid.New(), "First", 2, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	// Grow the collection past its initial capacity, then mutate the
	// stored item; the returned copy must be unaffected by either.
	for i := 0; i < 8; i++ {
		if _, err := s.AddItem(uuid.New(), "Filler", 1, decimal.NewFromInt(10)); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	if err := s.UpdateItem(first.ID, 5, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if first.Quantity != 2 {
		t.Fatalf("returned copy mutated: quantity=%d", first.Quantity)
	}
	stored := s.FindItem(first.ID)
	if stored == nil || stored.Quantity != 5 {
		t.Fatalf("stored item not updated: %+v", stored)
	}
}

func TestAddItemTimestampCoherence(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "X", 3, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !item.UpdatedAt.Equal(s.UpdatedAt) {
		t.Fatalf("item UpdatedAt %v != sale UpdatedAt %v", item.UpdatedAt, s.UpdatedAt)
	}
}

func TestUpdateItemRecomputesTier(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "X", 2, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.UpdateItem(item.ID, 10, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got := s.FindItem(item.ID)
	requireAmount(t, got.DiscountPercentage, 20)
	requireAmount(t, got.TotalAmount, 400)
	if !got.UpdatedAt.Equal(s.UpdatedAt) {
		t.Fatal("item and sale UpdatedAt must match after UpdateItem")
	}

	if err := s.UpdateItem(uuid.New(), 2, decimal.NewFromInt(10)); err == nil {
		t.Fatal("expected error for unknown item id")
	} else {
		requireCode(t, err, domainagg.CodeNotFound)
	}
}

func TestUpdateItemRejectsCancelledItem(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "X", 2, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.CancelItem(item.ID); err != nil {
		t.Fatalf("CancelItem: %v", err)
	}
	if err := s.UpdateItem(item.ID, 3, decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected error updating a cancelled item")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}
	if err := s.CancelItem(item.ID); err == nil {
		t.Fatal("expected error re-cancelling a cancelled item")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}
}

func TestCancelItemZeroesTotal(t *testing.T) {
	s := newTestSale(t)
	first, err := s.AddItem(uuid.New(), "A", 2, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := s.AddItem(uuid.New(), "B", 3, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	requireAmount(t, s.TotalAmount(), 350)

	if err := s.CancelItem(first.ID); err != nil {
		t.Fatalf("CancelItem: %v", err)
	}
	got := s.FindItem(first.ID)
	if !got.IsCancelled {
		t.Fatal("item must remain in the collection, cancelled")
	}
	requireAmount(t, got.TotalAmount, 0)
	requireAmount(t, s.TotalAmount(), 150)
	if len(s.Items) != 2 {
		t.Fatalf("cancellation must not remove items, have %d", len(s.Items))
	}
}

func TestCancelSaleBlocksMutation(t *testing.T) {
	s := newTestSale(t)
	item, err := s.AddItem(uuid.New(), "A", 3, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if s.Status != StatusCancelled {
		t.Fatalf("status = %q, want %q", s.Status, StatusCancelled)
	}

	if _, err := s.AddItem(uuid.New(), "B", 1, decimal.NewFromInt(10)); err == nil {
		t.Fatal("expected error adding item to cancelled sale")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}
	if err := s.Update(uuid.New(), "Jane", uuid.New(), "Other", uuid.New()); err == nil {
		t.Fatal("expected error updating cancelled sale")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}
	if err := s.UpdateItem(item.ID, 2, decimal.NewFromInt(10)); err == nil {
		t.Fatal("expected error updating item in cancelled sale")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}
	if err := s.CancelItem(item.ID); err == nil {
		t.Fatal("expected error cancelling item in cancelled sale")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}
	if err := s.Cancel(); err == nil {
		t.Fatal("expected error double-cancelling sale")
	} else {
		requireCode(t, err, domainagg.CodeInvariantViolation)
	}

	// Frozen at cancellation-time value.
	requireAmount(t, s.TotalAmount(), 150)
}

func TestTotalAmountIdempotent(t *testing.T) {
	s := newTestSale(t)
	if _, err := s.AddItem(uuid.New(), "A", 5, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	first := s.TotalAmount()
	second := s.TotalAmount()
	if !first.Equal(second) {
		t.Fatalf("TotalAmount not idempotent: %s then %s", first, second)
	}
}

func TestItemTotalInvariant(t *testing.T) {
	s := newTestSale(t)
	quantities := []int{1, 3, 4, 9, 10, 20}
	for _, q := range quantities {
		if _, err := s.AddItem(uuid.New(), "P", q, decimal.NewFromInt(7)); err != nil {
			t.Fatalf("AddItem(q=%d): %v", q, err)
		}
	}
	for i := range s.Items {
		item := &s.Items[i]
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		want := subtotal.Sub(subtotal.Mul(item.DiscountPercentage).Div(decimal.NewFromInt(100)))
		if !item.TotalAmount.Equal(want) {
			t.Fatalf("item q=%d total = %s, want %s", item.Quantity, item.TotalAmount, want)
		}
	}

	sum := decimal.Zero
	for i := range s.Items {
		sum = sum.Add(s.Items[i].TotalAmount)
	}
	if !s.TotalAmount().Equal(sum) {
		t.Fatalf("sale total %s != item sum %s", s.TotalAmount(), sum)
	}
}

func TestUpdateOverwritesReferences(t *testing.T) {
	s := newTestSale(t)
	customerID, branchID, userID := uuid.New(), uuid.New(), uuid.New()
	before := s.UpdatedAt
	if err := s.Update(customerID, "Jane Roe", branchID, "East Branch", userID); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.CustomerID != customerID || s.CustomerName != "Jane Roe" ||
		s.BranchID != branchID || s.BranchName != "East Branch" || s.UserID != userID {
		t.Fatal("Update must overwrite all five reference fields")
	}
	if s.UpdatedAt.Before(before) {
		t.Fatal("Update must bump UpdatedAt")
	}
}
