package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
)

// SaleItem is a child entity owned by exactly one Sale. It carries only the
// owning sale's id, never a live back-reference.
type SaleItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName        string          `gorm:"column:product_name;not null" json:"product_name"`
	Quantity           int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(18,2);not null" json:"unit_price"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null" json:"discount_percentage"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:numeric(18,2);not null" json:"total_amount"`
	IsCancelled        bool            `gorm:"column:is_cancelled;not null;default:false" json:"is_cancelled"`
	CreatedAt          time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (SaleItem) TableName() string { return "sale_item" }

func newSaleItem(saleID, productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal, at time.Time) SaleItem {
	item := SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	item.recalculate()
	return item
}

func (i *SaleItem) update(quantity int, unitPrice decimal.Decimal, at time.Time) error {
	const op = "sales.SaleItem.Update"
	if i.IsCancelled {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "cannot update a cancelled item", nil)
	}
	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.recalculate()
	i.UpdatedAt = at
	return nil
}

func (i *SaleItem) cancel(at time.Time) error {
	const op = "sales.SaleItem.Cancel"
	if i.IsCancelled {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, "item is already cancelled", nil)
	}
	i.IsCancelled = true
	i.TotalAmount = decimal.Zero
	i.UpdatedAt = at
	return nil
}

// recalculate derives the tier discount and total from quantity and unit
// price. A cancelled item always totals zero.
func (i *SaleItem) recalculate() {
	if i.IsCancelled {
		i.TotalAmount = decimal.Zero
		return
	}
	i.DiscountPercentage = DiscountPercentageFor(i.Quantity)
	subtotal := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	discount := subtotal.Mul(i.DiscountPercentage).Div(hundred)
	i.TotalAmount = subtotal.Sub(discount)
}

func validateItemInput(op string, quantity int, unitPrice decimal.Decimal) error {
	if quantity < MinItemQuantity {
		return domainagg.NewError(domainagg.CodeValidation, op, "quantity must be positive", nil)
	}
	if quantity > MaxItemQuantity {
		return domainagg.NewError(domainagg.CodeValidation, op, "cannot sell more than 20 units of a product", nil)
	}
	if !unitPrice.IsPositive() {
		return domainagg.NewError(domainagg.CodeValidation, op, "unit price must be positive", nil)
	}
	return nil
}
