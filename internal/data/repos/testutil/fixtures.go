package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *user.User {
	tb.Helper()
	u := &user.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedSale creates a pending sale with a single 2-unit item.
func SeedSale(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *sales.Sale {
	tb.Helper()
	s, err := sales.NewSale(uuid.New(), "Customer", uuid.New(), "Branch", userID)
	if err != nil {
		tb.Fatalf("seed sale: %v", err)
	}
	if _, err := s.AddItem(uuid.New(), "Product", 2, decimal.NewFromInt(100)); err != nil {
		tb.Fatalf("seed sale item: %v", err)
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sale: %v", err)
	}
	return s
}

func PtrBool(v bool) *bool { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrDecimal(v decimal.Decimal) *decimal.Decimal { return &v }
