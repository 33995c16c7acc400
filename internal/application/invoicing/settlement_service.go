package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/telemetry"
)

// SettlementStore is what the settlement flow needs from the store
type SettlementStore interface {
	invoice.InvoiceStore
	invoice.SettlementStore
}

// SettlementService records and removes settlements against invoices. The
// remaining balance is fetched fresh for every check but may still be stale
// by the time the store receives the settlement.
type SettlementService struct {
	store   SettlementStore
	guard   *invoice.SettlementGuard
	metrics Metrics
	logger  *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(store SettlementStore, metrics Metrics, logger *zap.Logger) *SettlementService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		store:   store,
		guard:   invoice.NewSettlementGuard(),
		metrics: metrics,
		logger:  logger,
	}
}

// Evaluate checks a settlement draft against the invoice balance
func (s *SettlementService) Evaluate(ctx context.Context, draft invoice.SettlementDraft) (*SettlementEvaluation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "evaluate",
		telemetry.SpanAttrInvoiceID, draft.InvoiceID,
		telemetry.SpanAttrAmount, draft.Amount.String(),
	)
	defer span.End()

	return s.evaluate(ctx, span, draft)
}

// Create records a settlement when the guard approves it. Guard refusals
// are returned as rule errors.
func (s *SettlementService) Create(ctx context.Context, draft invoice.SettlementDraft) (*invoice.Settlement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "create",
		telemetry.SpanAttrInvoiceID, draft.InvoiceID,
		telemetry.SpanAttrAmount, draft.Amount.String(),
	)
	defer span.End()

	eval, err := s.evaluate(ctx, span, draft)
	if err != nil {
		return nil, err
	}
	if !eval.Approved() {
		return nil, eval.Reason
	}

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	persistCtx := context.WithoutCancel(ctx)
	started := time.Now()
	settlement, err := s.store.PersistSettlement(persistCtx, draft.Payload())
	s.metrics.RecordPersist(persistCtx, opPersistSettlement, time.Since(started))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, remoteFailure(persistCtx, s.metrics, s.logger, opPersistSettlement, err)
	}

	s.logger.Info("Settlement recorded",
		zap.String("settlement_id", settlement.ID.String()),
		zap.String("invoice_id", draft.InvoiceID.String()),
		zap.String("amount", draft.Amount.StringFixed(2)),
		zap.String("method", string(draft.Method)),
	)
	return settlement, nil
}

// List returns the settlements recorded against an invoice
func (s *SettlementService) List(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Settlement, error) {
	settlements, err := s.store.FetchSettlements(ctx, invoiceID)
	if err != nil {
		return nil, remoteFailure(ctx, s.metrics, s.logger, opFetchSettlements, err)
	}
	return settlements, nil
}

// Delete removes a settlement. The store recomputes the invoice balance.
func (s *SettlementService) Delete(ctx context.Context, settlementID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "delete", "settlement_id", settlementID)
	defer span.End()

	if err := s.store.DeleteSettlement(context.WithoutCancel(ctx), settlementID); err != nil {
		telemetry.RecordError(span, err)
		return remoteFailure(ctx, s.metrics, s.logger, opDeleteSettlement, err)
	}
	s.logger.Info("Settlement deleted", zap.String("settlement_id", settlementID.String()))
	return nil
}

func (s *SettlementService) evaluate(ctx context.Context, span trace.Span, draft invoice.SettlementDraft) (*SettlementEvaluation, error) {
	eval := &SettlementEvaluation{}
	if draft.InvoiceID != uuid.Nil {
		inv, err := s.store.FetchInvoice(ctx, draft.InvoiceID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, remoteFailure(ctx, s.metrics, s.logger, opFetchInvoice, err)
		}
		eval.Balance = inv.Balance()
	}

	eval.Reason = s.guard.Evaluate(draft, eval.Balance)
	s.metrics.RecordSettlementOutcome(ctx, eval.Reason)

	code := invoice.CodeOf(eval.Reason)
	telemetry.SetAttributes(span, telemetry.SpanAttrRuleCode, code)
	if eval.Reason != nil {
		s.logger.Info("Settlement blocked",
			zap.String("invoice_id", draft.InvoiceID.String()),
			zap.String("code", code),
			zap.String("reason", eval.Reason.Error()),
		)
	} else {
		s.logger.Debug("Settlement approved",
			zap.String("invoice_id", draft.InvoiceID.String()),
			zap.String("remaining", eval.Balance.Remaining.StringFixed(2)),
		)
	}
	return eval, nil
}
