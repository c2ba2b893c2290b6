package dbctx

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

func TestDBOr(t *testing.T) {
	fallback := &gorm.DB{}
	tx := &gorm.DB{}

	if got := (Context{Ctx: context.Background()}).DBOr(fallback); got != fallback {
		t.Fatalf("no transaction: want fallback")
	}
	if got := (Context{Ctx: context.Background(), Tx: tx}).DBOr(fallback); got != tx {
		t.Fatalf("carried transaction must win")
	}
}
