package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/developerstore/sales-backend/internal/domain/auth"
	"github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Core identity + auth
		// =========================
		&user.User{},
		&auth.UserToken{},

		// =========================
		// Sales
		// =========================
		&sales.Sale{},
		&sales.SaleItem{},
	)
}

func EnsureSalesIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	// Fast sale listing by date range per branch/customer.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sale_sale_date
		ON sale (sale_date DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_sale_sale_date: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sale_branch_date
		ON sale (branch_id, sale_date DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_sale_branch_date: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sale_customer_date
		ON sale (customer_id, sale_date DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_sale_customer_date: %w", err)
	}

	// Item lookup per sale during reconcile.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sale_item_sale_id
		ON sale_item (sale_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_sale_item_sale_id: %w", err)
	}

	return nil
}
