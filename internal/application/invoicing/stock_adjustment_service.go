package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/telemetry"
)

// StockAdjustmentService evaluates and applies manual stock corrections
type StockAdjustmentService struct {
	items   invoice.ItemStore
	oracle  *StockOracle
	policy  invoice.Policy
	metrics Metrics
	logger  *zap.Logger
}

// NewStockAdjustmentService creates a new StockAdjustmentService
func NewStockAdjustmentService(
	items invoice.ItemStore,
	oracle *StockOracle,
	policy invoice.Policy,
	metrics Metrics,
	logger *zap.Logger,
) *StockAdjustmentService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAdjustmentService{
		items:   items,
		oracle:  oracle,
		policy:  policy,
		metrics: metrics,
		logger:  logger,
	}
}

// Evaluate checks an adjustment against the item's current stock
func (s *StockAdjustmentService) Evaluate(ctx context.Context, itemID uuid.UUID, input AdjustmentInput) (*AdjustmentEvaluation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "evaluate_adjustment",
		telemetry.SpanAttrItemID, itemID,
	)
	defer span.End()

	return s.evaluate(ctx, span, itemID, input)
}

// Apply evaluates the adjustment and persists it when approved
func (s *StockAdjustmentService) Apply(ctx context.Context, itemID uuid.UUID, input AdjustmentInput) (*AdjustmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "apply_adjustment",
		telemetry.SpanAttrItemID, itemID,
	)
	defer span.End()

	if input.Declined {
		return nil, shared.ErrConfirmationDeclined
	}

	eval, err := s.evaluate(ctx, span, itemID, input)
	if err != nil {
		return nil, err
	}
	result := &AdjustmentResult{AdjustmentEvaluation: *eval}
	if !eval.Outcome.IsApproved() {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	persistCtx := context.WithoutCancel(ctx)
	started := time.Now()
	item, err := s.items.PersistStockAdjustment(persistCtx, eval.Adjustment.Payload())
	s.metrics.RecordPersist(persistCtx, opPersistAdjustment, time.Since(started))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, remoteFailure(persistCtx, s.metrics, s.logger, opPersistAdjustment, err)
	}
	s.oracle.Forget(persistCtx, itemID)

	s.logger.Info("Stock adjusted",
		zap.String("item_id", itemID.String()),
		zap.String("from", eval.Adjustment.Current.Available.String()),
		zap.String("to", eval.Adjustment.NewQuantity.String()),
	)
	result.Item = item
	return result, nil
}

func (s *StockAdjustmentService) evaluate(ctx context.Context, span trace.Span, itemID uuid.UUID, input AdjustmentInput) (*AdjustmentEvaluation, error) {
	item, err := s.oracle.Item(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	label := item.Name
	if label == "" {
		label = item.Code
	}
	adj := invoice.StockAdjustment{
		ItemID:      item.ID,
		ItemLabel:   label,
		Current:     item.StockLevel(time.Now()),
		NewQuantity: input.NewQuantity,
		Reason:      input.Reason,
	}
	outcome := invoice.EvaluateStockAdjustment(adj, s.policy, invoice.NewAcknowledgements(input.Acknowledged...))
	s.metrics.RecordAdjustmentOutcome(ctx, outcome)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(outcome.Kind),
		telemetry.SpanAttrRuleCode, outcome.Code(),
		telemetry.SpanAttrPromptCount, len(outcome.Prompts),
	)
	if outcome.IsBlocked() {
		s.logger.Info("Stock adjustment blocked",
			zap.String("item_id", itemID.String()),
			zap.String("code", outcome.Code()),
		)
	}
	return &AdjustmentEvaluation{Adjustment: adj, Outcome: outcome}, nil
}
