package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// ErrMeterNil is returned when GuardMetrics is built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// Metric attribute keys
var (
	AttrOutcome    = attribute.Key("outcome")
	AttrRuleCode   = attribute.Key("rule_code")
	AttrRemoteKind = attribute.Key("kind")
	AttrOperation  = attribute.Key("operation")
	AttrGuard      = attribute.Key("guard")
)

// GuardMetricsConfig configures GuardMetrics
type GuardMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// GuardMetrics counts guard decisions and store failures
type GuardMetrics struct {
	invoiceOutcomes    *Counter
	settlementOutcomes *Counter
	adjustmentOutcomes *Counter
	remoteErrors       *Counter
	persistDuration    *Histogram
	logger             *zap.Logger
}

// NewGuardMetrics registers the guard instruments on the meter
func NewGuardMetrics(cfg GuardMetricsConfig) (*GuardMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gm := &GuardMetrics{logger: logger}
	var err error

	if gm.invoiceOutcomes, err = NewCounter(cfg.Meter, "invoice_guard_outcomes_total",
		"Save guard evaluations by outcome and blocking rule", "{evaluation}"); err != nil {
		return nil, err
	}
	if gm.settlementOutcomes, err = NewCounter(cfg.Meter, "settlement_guard_outcomes_total",
		"Settlement guard evaluations by outcome and blocking rule", "{evaluation}"); err != nil {
		return nil, err
	}
	if gm.adjustmentOutcomes, err = NewCounter(cfg.Meter, "stock_adjustment_guard_outcomes_total",
		"Stock adjustment evaluations by outcome and blocking rule", "{evaluation}"); err != nil {
		return nil, err
	}
	if gm.remoteErrors, err = NewCounter(cfg.Meter, "remote_store_errors_total",
		"Failures returned by the external store by kind", "{error}"); err != nil {
		return nil, err
	}
	if gm.persistDuration, err = NewHistogram(cfg.Meter, "store_persist_duration_seconds",
		"Latency of persist calls to the external store", "s",
		0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10); err != nil {
		return nil, err
	}
	return gm, nil
}

// RecordInvoiceOutcome counts a save guard result
func (gm *GuardMetrics) RecordInvoiceOutcome(ctx context.Context, outcome invoice.Outcome) {
	gm.invoiceOutcomes.Inc(ctx, AttrOutcome.String(string(outcome.Kind)), AttrRuleCode.String(outcome.Code()))
}

// RecordAdjustmentOutcome counts a stock adjustment guard result
func (gm *GuardMetrics) RecordAdjustmentOutcome(ctx context.Context, outcome invoice.Outcome) {
	gm.adjustmentOutcomes.Inc(ctx, AttrOutcome.String(string(outcome.Kind)), AttrRuleCode.String(outcome.Code()))
}

// RecordSettlementOutcome counts a settlement guard result; err is nil on approval
func (gm *GuardMetrics) RecordSettlementOutcome(ctx context.Context, err error) {
	kind := invoice.OutcomeApproved
	if err != nil {
		kind = invoice.OutcomeBlocked
	}
	gm.settlementOutcomes.Inc(ctx, AttrOutcome.String(string(kind)), AttrRuleCode.String(invoice.CodeOf(err)))
}

// RecordRemoteError counts a store failure
func (gm *GuardMetrics) RecordRemoteError(ctx context.Context, operation string, err *invoice.RemoteError) {
	gm.remoteErrors.Inc(ctx, AttrOperation.String(operation), AttrRemoteKind.String(string(err.Kind)))
}

// RecordPersist records how long a persist call took
func (gm *GuardMetrics) RecordPersist(ctx context.Context, operation string, d time.Duration) {
	gm.persistDuration.RecordDuration(ctx, d, AttrOperation.String(operation))
}
