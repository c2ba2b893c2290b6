package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
)

const (
	StatusPending   = "Pending"
	StatusCancelled = "Cancelled"
)

// Sale is the aggregate root for a customer/branch transaction. All child
// item mutation goes through its methods so the lifecycle and discount
// invariants hold at every step.
type Sale struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SaleNumber   string     `gorm:"column:sale_number;uniqueIndex;not null" json:"sale_number"`
	CustomerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName string     `gorm:"column:customer_name;not null" json:"customer_name"`
	BranchID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"branch_id"`
	BranchName   string     `gorm:"column:branch_name;not null" json:"branch_name"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	SaleDate     time.Time  `gorm:"column:sale_date;not null" json:"sale_date"`
	Status       string     `gorm:"column:status;not null;default:'Pending'" json:"status"`
	IsCancelled  bool       `gorm:"column:is_cancelled;not null;default:false" json:"is_cancelled"`
	Version      int        `gorm:"column:version;not null;default:0" json:"version"`
	Items        []SaleItem `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Sale) TableName() string { return "sale" }

// NewSale constructs a pending sale with no items.
func NewSale(customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, userID uuid.UUID) (*Sale, error) {
	const op = "sales.NewSale"
	customerName = strings.TrimSpace(customerName)
	branchName = strings.TrimSpace(branchName)
	if customerName == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "customer name is required", nil)
	}
	if branchName == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "branch name is required", nil)
	}
	now := time.Now().UTC()
	return &Sale{
		ID:           uuid.New(),
		SaleNumber:   newSaleNumber(now),
		CustomerID:   customerID,
		CustomerName: customerName,
		BranchID:     branchID,
		BranchName:   branchName,
		UserID:       userID,
		SaleDate:     now,
		Status:       StatusPending,
		IsCancelled:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update overwrites the customer/branch/user references.
func (s *Sale) Update(customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, userID uuid.UUID) error {
	const op = "sales.Sale.Update"
	if s.IsCancelled {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "cannot update a cancelled sale", nil)
	}
	customerName = strings.TrimSpace(customerName)
	branchName = strings.TrimSpace(branchName)
	if customerName == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "customer name is required", nil)
	}
	if branchName == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "branch name is required", nil)
	}
	s.CustomerID = customerID
	s.CustomerName = customerName
	s.BranchID = branchID
	s.BranchName = branchName
	s.UserID = userID
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AddItem appends a new item priced under the tier discount policy. The
// item's UpdatedAt equals the sale's UpdatedAt set by this call; the
// reconciliation layer relies on that coherence. The returned item is a
// copy, detached from the collection.
func (s *Sale) AddItem(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (SaleItem, error) {
	const op = "sales.Sale.AddItem"
	if s.IsCancelled {
		return SaleItem{}, domainagg.NewError(domainagg.CodeInvariantViolation, op, "cannot add items to a cancelled sale", nil)
	}
	if err := validateItemInput(op, quantity, unitPrice); err != nil {
		return SaleItem{}, err
	}
	now := time.Now().UTC()
	s.UpdatedAt = now
	item := newSaleItem(s.ID, productID, productName, quantity, unitPrice, now)
	s.Items = append(s.Items, item)
	return item, nil
}

// UpdateItem re-prices an existing item, recomputing its tier discount.
func (s *Sale) UpdateItem(itemID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	const op = "sales.Sale.UpdateItem"
	if s.IsCancelled {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "cannot update items in a cancelled sale", nil)
	}
	if err := validateItemInput(op, quantity, unitPrice); err != nil {
		return err
	}
	item := s.findItem(itemID)
	if item == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("item not found: %s", itemID), nil)
	}
	now := time.Now().UTC()
	if err := item.update(quantity, unitPrice, now); err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}

// CancelItem soft-cancels an item: it stays in the collection with a zero
// total so the aggregate's total no longer counts it.
func (s *Sale) CancelItem(itemID uuid.UUID) error {
	const op = "sales.Sale.CancelItem"
	if s.IsCancelled {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "cannot cancel items in a cancelled sale", nil)
	}
	item := s.findItem(itemID)
	if item == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("item not found: %s", itemID), nil)
	}
	now := time.Now().UTC()
	if err := item.cancel(now); err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}

// Cancel marks the whole sale cancelled. Items keep their last totals; since
// a cancelled sale rejects every further mutation, TotalAmount is frozen at
// its cancellation-time value.
func (s *Sale) Cancel() error {
	const op = "sales.Sale.Cancel"
	if s.IsCancelled {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "sale is already cancelled", nil)
	}
	s.IsCancelled = true
	s.Status = StatusCancelled
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// TotalAmount sums the totals of non-cancelled items. Pure and idempotent.
func (s *Sale) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Items {
		if s.Items[i].IsCancelled {
			continue
		}
		total = total.Add(s.Items[i].TotalAmount)
	}
	return total
}

// FindItem returns the item with the given id, or nil.
func (s *Sale) FindItem(itemID uuid.UUID) *SaleItem {
	return s.findItem(itemID)
}

func (s *Sale) findItem(itemID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// newSaleNumber builds the human-readable natural key, e.g.
// SAL-20260828-9F2C41D08A. The suffix carries 40 random bits so that
// same-day collisions stay out of reach of realistic sale volumes.
func newSaleNumber(at time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("SAL-%s-%X", at.Format("20060102"), u[:5])
}
