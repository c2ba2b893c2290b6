package aggregates

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/developerstore/sales-backend/internal/domain/aggregates"
	"github.com/developerstore/sales-backend/internal/platform/dbctx"
)

func TestExecuteWriteReportsStatusPerCode(t *testing.T) {
	cases := []struct {
		name       string
		writeErr   error
		wantStatus string
		wantCode   domainagg.ErrorCode
	}{
		{"success", nil, "success", ""},
		{"validation", ValidationError("quantity must be positive"), string(domainagg.CodeValidation), domainagg.CodeValidation},
		{"invariant", InvariantError("sale is cancelled"), string(domainagg.CodeInvariantViolation), domainagg.CodeInvariantViolation},
		{"not found", gorm.ErrRecordNotFound, string(domainagg.CodeNotFound), domainagg.CodeNotFound},
		{"conflict", ConflictError("sale changed concurrently twice"), string(domainagg.CodeConflict), domainagg.CodeConflict},
		{"retryable", RetryableError("serialization failure"), string(domainagg.CodeRetryable), domainagg.CodeRetryable},
		{"cancelled caller", context.DeadlineExceeded, string(domainagg.CodeRetryable), domainagg.CodeRetryable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{
				Runner: spyTxRunner{},
				Hooks:  hooks,
			}, "Sales.Sale.Reconcile", func(_ dbctx.Context) error {
				return tc.writeErr
			})
			if tc.writeErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !domainagg.IsCode(err, tc.wantCode) {
					t.Fatalf("code: want=%s got=%s (%v)", tc.wantCode, domainagg.CodeOf(err), err)
				}
			}
			if len(hooks.Operations) != 1 {
				t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
			}
			if hooks.Operations[0].Name != "Sales.Sale.Reconcile" {
				t.Fatalf("operation name: got=%s", hooks.Operations[0].Name)
			}
			if hooks.Operations[0].Status != tc.wantStatus {
				t.Fatalf("operation status: want=%s got=%s", tc.wantStatus, hooks.Operations[0].Status)
			}
		})
	}
}

func TestExecuteWriteCountsConflicts(t *testing.T) {
	hooks := &spyHooks{}
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "Sales.Sale.Reconcile", func(_ dbctx.Context) error {
		return ConflictError("stale version")
	})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got=%v", err)
	}
	if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "Sales.Sale.Reconcile" {
		t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
	}
	if len(hooks.Retries) != 0 {
		t.Fatalf("a surfaced conflict is not a retry: %+v", hooks.Retries)
	}
}

func TestExecuteWriteCountsRetryableFailures(t *testing.T) {
	hooks := &spyHooks{}
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "Sales.Sale.Insert", func(_ dbctx.Context) error {
		return RetryableError("temporary lock timeout")
	})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got=%v", err)
	}
	if len(hooks.Retries) != 1 || hooks.Retries[0] != "Sales.Sale.Insert" {
		t.Fatalf("retry hooks: %+v", hooks.Retries)
	}
	if len(hooks.Conflicts) != 0 {
		t.Fatalf("conflict hooks should be empty, got=%+v", hooks.Conflicts)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(InvariantError("x")); got != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("invariant status: got=%s", got)
	}
	if got := aggregateErrorStatus(ConflictError("x")); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
