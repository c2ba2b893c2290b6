package sales

import "github.com/shopspring/decimal"

// Quantity-tier discount policy. The percentage is derived from quantity
// alone; caller-supplied percentages are never trusted.
const (
	MinItemQuantity = 1
	MaxItemQuantity = 20

	tierMidThreshold  = 4  // 4..9 units -> 10%
	tierHighThreshold = 10 // 10..20 units -> 20%
)

var (
	discountNone = decimal.Zero
	discountMid  = decimal.NewFromInt(10)
	discountHigh = decimal.NewFromInt(20)

	hundred = decimal.NewFromInt(100)
)

// DiscountPercentageFor returns the tier discount percentage for a
// quantity. Quantities outside [MinItemQuantity, MaxItemQuantity] have no
// tier; validation rejects them before this is consulted.
func DiscountPercentageFor(quantity int) decimal.Decimal {
	switch {
	case quantity >= tierHighThreshold:
		return discountHigh
	case quantity >= tierMidThreshold:
		return discountMid
	default:
		return discountNone
	}
}
