package services

import (
	"context"

	"github.com/google/uuid"

	domainsales "github.com/developerstore/sales-backend/internal/domain/sales"
	"github.com/developerstore/sales-backend/internal/platform/logger"
)

// SaleEvents receives lifecycle notifications after a sale write commits.
type SaleEvents interface {
	SaleCreated(ctx context.Context, sale *domainsales.Sale)
	SaleModified(ctx context.Context, sale *domainsales.Sale)
	SaleCancelled(ctx context.Context, sale *domainsales.Sale)
	ItemCancelled(ctx context.Context, sale *domainsales.Sale, itemID uuid.UUID)
}

type logSaleEvents struct {
	log *logger.Logger
}

// NewLogSaleEvents returns a SaleEvents sink that writes structured log
// entries. A broker-backed publisher can replace it without touching the
// sale service.
func NewLogSaleEvents(baseLog *logger.Logger) SaleEvents {
	return &logSaleEvents{log: baseLog.With("component", "SaleEvents")}
}

func (e *logSaleEvents) SaleCreated(_ context.Context, sale *domainsales.Sale) {
	e.log.Info("sale created",
		"event", "SaleCreated",
		"sale_id", sale.ID,
		"sale_number", sale.SaleNumber,
		"total_amount", sale.TotalAmount(),
	)
}

func (e *logSaleEvents) SaleModified(_ context.Context, sale *domainsales.Sale) {
	e.log.Info("sale modified",
		"event", "SaleModified",
		"sale_id", sale.ID,
		"sale_number", sale.SaleNumber,
		"version", sale.Version,
		"total_amount", sale.TotalAmount(),
	)
}

func (e *logSaleEvents) SaleCancelled(_ context.Context, sale *domainsales.Sale) {
	e.log.Info("sale cancelled",
		"event", "SaleCancelled",
		"sale_id", sale.ID,
		"sale_number", sale.SaleNumber,
	)
}

func (e *logSaleEvents) ItemCancelled(_ context.Context, sale *domainsales.Sale, itemID uuid.UUID) {
	e.log.Info("sale item cancelled",
		"event", "ItemCancelled",
		"sale_id", sale.ID,
		"sale_number", sale.SaleNumber,
		"item_id", itemID,
	)
}
