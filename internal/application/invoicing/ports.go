// Package invoicing runs the invoice editor, settlement and stock adjustment
// flows: it gathers the state each guard needs, evaluates it, and calls the
// store only once the guard approves.
package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
	applog "github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/logger"
)

// StockCache holds the advisory stock snapshot. Entries may be stale or
// missing; a missing entry makes the item unverifiable, never blocked.
type StockCache interface {
	Put(ctx context.Context, levels invoice.StockSnapshot) error
	Snapshot(ctx context.Context, itemIDs []uuid.UUID) (invoice.StockSnapshot, error)
	Invalidate(ctx context.Context, itemIDs ...uuid.UUID) error
}

// Metrics records guard decisions and store failures
type Metrics interface {
	RecordInvoiceOutcome(ctx context.Context, outcome invoice.Outcome)
	RecordAdjustmentOutcome(ctx context.Context, outcome invoice.Outcome)
	RecordSettlementOutcome(ctx context.Context, err error)
	RecordRemoteError(ctx context.Context, operation string, err *invoice.RemoteError)
	RecordPersist(ctx context.Context, operation string, d time.Duration)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordInvoiceOutcome(context.Context, invoice.Outcome)           {}
func (NopMetrics) RecordAdjustmentOutcome(context.Context, invoice.Outcome)        {}
func (NopMetrics) RecordSettlementOutcome(context.Context, error)                  {}
func (NopMetrics) RecordRemoteError(context.Context, string, *invoice.RemoteError) {}
func (NopMetrics) RecordPersist(context.Context, string, time.Duration)            {}

// Errors returned by the invoicing services
var (
	ErrSessionNotFound    = shared.NewDomainError("SESSION_NOT_FOUND", "Editing session not found or expired")
	ErrSaveInProgress     = shared.NewDomainError("SAVE_IN_PROGRESS", "A save is already in progress for this session")
	ErrInvoiceNotEditable = shared.NewDomainError("INVOICE_NOT_EDITABLE", "Deleted invoices cannot be edited")
)

// Persist operation names used in metrics and logs
const (
	opPersistInvoice    = "persist_invoice"
	opDeleteInvoice     = "delete_invoice"
	opPersistSettlement = "persist_settlement"
	opPersistAdjustment = "persist_stock_adjustment"
	opFetchInvoice      = "fetch_invoice"
	opFetchItem         = "fetch_item"
	opFetchItems        = "fetch_items"
	opFetchSettlements  = "fetch_settlements"
	opDeleteSettlement  = "delete_settlement"
)

// remoteFailure normalises a store failure into a *RemoteError, counts it
// and logs it on the request logger when ctx carries one. Errors that are not remote are returned unchanged.
func remoteFailure(ctx context.Context, metrics Metrics, logger *zap.Logger, operation string, err error) error {
	var remote *invoice.RemoteError
	if !errors.As(err, &remote) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		remote = &invoice.RemoteError{Kind: invoice.RemoteUnknown, Err: err}
	}
	metrics.RecordRemoteError(ctx, operation, remote)
	applog.FromContext(ctx, logger).Warn("Store call failed",
		zap.String("operation", operation),
		zap.String("kind", string(remote.Kind)),
		zap.String("code", remote.Code),
		zap.Int("status", remote.StatusCode),
		zap.Bool("retryable", remote.Retryable()),
		zap.Error(err),
	)
	return remote
}
