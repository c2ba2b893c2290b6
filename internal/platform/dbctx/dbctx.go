package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repositories receive it on every call: aggregate writes carry the
// transaction they must join, plain reads carry only the context.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DBOr returns the carried transaction, or fallback when the call is not
// running inside one.
func (c Context) DBOr(fallback *gorm.DB) *gorm.DB {
	if c.Tx != nil {
		return c.Tx
	}
	return fallback
}
