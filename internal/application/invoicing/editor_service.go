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

// EditorService drives invoice editing sessions: open, evaluate, submit and
// discard. The store is only called once the save guard approves.
type EditorService struct {
	invoices invoice.InvoiceStore
	oracle   *StockOracle
	sessions *SessionStore
	guard    *invoice.SaveGuard
	metrics  Metrics
	logger   *zap.Logger
}

// NewEditorService creates a new EditorService
func NewEditorService(
	invoices invoice.InvoiceStore,
	oracle *StockOracle,
	sessions *SessionStore,
	guard *invoice.SaveGuard,
	metrics Metrics,
	logger *zap.Logger,
) *EditorService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorService{
		invoices: invoices,
		oracle:   oracle,
		sessions: sessions,
		guard:    guard,
		metrics:  metrics,
		logger:   logger,
	}
}

// OpenNew starts a session for a new invoice
func (s *EditorService) OpenNew(ctx context.Context) *SessionView {
	draft := &invoice.Draft{
		Status:          invoice.StatusPending,
		Lines:           []invoice.Line{},
		DeductFromStock: true,
	}
	sess := s.sessions.Open(draft, nil)
	s.logger.Debug("Opened new invoice session", zap.String("session_id", sess.ID.String()))
	return newSessionView(sess)
}

// OpenExisting loads an invoice, captures its baseline and starts a session.
// The baseline is never refetched for the life of the session.
func (s *EditorService) OpenExisting(ctx context.Context, invoiceID uuid.UUID) (*SessionView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "open",
		telemetry.SpanAttrInvoiceID, invoiceID,
	)
	defer span.End()

	inv, err := s.invoices.FetchInvoice(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, remoteFailure(ctx, s.metrics, s.logger, opFetchInvoice, err)
	}
	if inv.Status == invoice.StatusDeleted {
		telemetry.RecordError(span, ErrInvoiceNotEditable)
		return nil, ErrInvoiceNotEditable
	}

	sess := s.sessions.Open(invoice.DraftFromInvoice(inv), invoice.CaptureBaseline(inv))
	telemetry.SetAttributes(span, telemetry.SpanAttrSessionID, sess.ID)

	s.logger.Debug("Opened invoice session",
		zap.String("session_id", sess.ID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("status", string(inv.Status)),
	)
	return newSessionView(sess), nil
}

// Get returns the current state of a session
func (s *EditorService) Get(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionView(sess), nil
}

// Evaluate stores the draft in the session and runs the save guard without
// persisting anything.
func (s *EditorService) Evaluate(ctx context.Context, sessionID uuid.UUID, input EvaluateInput) (*Evaluation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "evaluate",
		telemetry.SpanAttrSessionID, sessionID,
	)
	defer span.End()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.Draft != nil {
		if sess, err = s.sessions.SaveDraft(sessionID, s.bindDraft(sess, input.Draft)); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	snapshot := s.snapshot(ctx, sess)
	outcome := s.guard.Evaluate(sess.Draft, sess.Baseline, snapshot, invoice.NewAcknowledgements(input.Acknowledged...))
	s.observe(ctx, span, sess, outcome)
	return &Evaluation{SessionID: sess.ID, Outcome: outcome, Lines: checkLines(sess, snapshot)}, nil
}

// Submit evaluates the draft and persists it when approved. A declined
// confirmation aborts before anything is sent. Once the persist call is
// dispatched it runs to completion even if ctx is cancelled. A failed
// persist leaves the session draft in place for resubmission.
func (s *EditorService) Submit(ctx context.Context, sessionID uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "submit",
		telemetry.SpanAttrSessionID, sessionID,
	)
	defer span.End()

	current, err := s.sessions.Get(sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.Declined {
		s.logger.Info("Invoice save aborted by declined confirmation", zap.String("session_id", sessionID.String()))
		return nil, shared.ErrConfirmationDeclined
	}

	draft := current.Draft
	if input.Draft != nil {
		draft = s.bindDraft(current, input.Draft)
	}
	sess, err := s.sessions.BeginSubmit(sessionID, draft)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	saved := false
	defer func() { s.sessions.EndSubmit(sessionID, saved) }()

	outcome := s.evaluate(ctx, sess, invoice.NewAcknowledgements(input.Acknowledged...))
	s.observe(ctx, span, sess, outcome)
	result := &SubmitResult{Evaluation: Evaluation{SessionID: sess.ID, Outcome: outcome}}
	if !outcome.IsApproved() {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Dispatched: the save is no longer cancellable
	persistCtx := context.WithoutCancel(ctx)
	started := time.Now()
	inv, err := s.invoices.PersistInvoice(persistCtx, sess.Draft.Payload())
	s.metrics.RecordPersist(persistCtx, opPersistInvoice, time.Since(started))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, remoteFailure(persistCtx, s.metrics, s.logger, opPersistInvoice, err)
	}
	saved = true

	if sess.Draft.DeductFromStock {
		s.oracle.Forget(persistCtx, affectedItems(sess)...)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, inv.ID)
	s.logger.Info("Invoice saved",
		zap.String("session_id", sessionID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("status", string(inv.Status)),
		zap.String("total", inv.Total.StringFixed(2)),
	)
	result.Invoice = inv
	return result, nil
}

// DeleteInvoice tombstones an invoice. The store returns any stock it
// consumed, so cached levels of its items are dropped.
func (s *EditorService) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete",
		telemetry.SpanAttrInvoiceID, invoiceID,
	)
	defer span.End()

	inv, err := s.invoices.FetchInvoice(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return remoteFailure(ctx, s.metrics, s.logger, opFetchInvoice, err)
	}
	if inv.Status == invoice.StatusDeleted {
		return nil
	}

	persistCtx := context.WithoutCancel(ctx)
	started := time.Now()
	err = s.invoices.DeleteInvoice(persistCtx, invoiceID)
	s.metrics.RecordPersist(persistCtx, opDeleteInvoice, time.Since(started))
	if err != nil {
		telemetry.RecordError(span, err)
		return remoteFailure(persistCtx, s.metrics, s.logger, opDeleteInvoice, err)
	}
	if inv.DeductFromStock {
		s.oracle.Forget(persistCtx, invoice.CaptureBaseline(inv).ItemIDs()...)
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("previous_status", string(inv.Status)),
	)
	return nil
}

// Discard drops a session when the user navigates away
func (s *EditorService) Discard(ctx context.Context, sessionID uuid.UUID) {
	s.sessions.Discard(sessionID)
	s.logger.Debug("Discarded invoice session", zap.String("session_id", sessionID.String()))
}

// CalculateTotals recomputes totals for a line list without a session
func (s *EditorService) CalculateTotals(input TotalsInput) invoice.Totals {
	return invoice.CalculateTotals(input.Lines, input.Discount, input.FreeItemsValue)
}

// bindDraft pins the draft to the invoice the session edits
func (s *EditorService) bindDraft(sess Session, draft *invoice.Draft) *invoice.Draft {
	d := cloneDraft(draft)
	if sess.Baseline == nil {
		d.InvoiceID = nil
		return d
	}
	if d.InvoiceID == nil {
		id := sess.Baseline.InvoiceID()
		d.InvoiceID = &id
	}
	return d
}

func (s *EditorService) evaluate(ctx context.Context, sess Session, acks invoice.Acknowledgements) invoice.Outcome {
	return s.guard.Evaluate(sess.Draft, sess.Baseline, s.snapshot(ctx, sess), acks)
}

// snapshot fetches stock only when the draft deducts it
func (s *EditorService) snapshot(ctx context.Context, sess Session) invoice.StockSnapshot {
	if !sess.Draft.DeductFromStock {
		return nil
	}
	return s.oracle.Snapshot(ctx, draftItems(sess.Draft))
}

// checkLines runs the per-line checks shown next to each editor row
func checkLines(sess Session, snapshot invoice.StockSnapshot) []invoice.LineCheck {
	checks := make([]invoice.LineCheck, len(sess.Draft.Lines))
	for i, l := range sess.Draft.Lines {
		checks[i] = invoice.CheckLine(i, l, sess.Baseline, snapshot, sess.Draft.DeductFromStock)
	}
	return checks
}

func (s *EditorService) observe(ctx context.Context, span trace.Span, sess Session, outcome invoice.Outcome) {
	s.metrics.RecordInvoiceOutcome(ctx, outcome)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(outcome.Kind),
		telemetry.SpanAttrRuleCode, outcome.Code(),
		telemetry.SpanAttrPromptCount, len(outcome.Prompts),
		telemetry.SpanAttrLineCount, len(sess.Draft.Lines),
		telemetry.SpanAttrDeductStock, sess.Draft.DeductFromStock,
	)

	fields := []zap.Field{
		zap.String("session_id", sess.ID.String()),
		zap.String("outcome", string(outcome.Kind)),
	}
	switch {
	case outcome.IsBlocked():
		s.logger.Info("Invoice save blocked", append(fields,
			zap.String("code", outcome.Code()),
			zap.String("reason", outcome.Reason.Error()),
		)...)
	case outcome.NeedsConfirmation():
		s.logger.Info("Invoice save needs confirmation", append(fields,
			zap.Int("pending_prompts", len(outcome.Prompts)),
		)...)
	default:
		s.logger.Debug("Invoice save approved", fields...)
	}
}

// draftItems lists the distinct items referenced by the draft lines
func draftItems(d *invoice.Draft) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(d.Lines))
	ids := make([]uuid.UUID, 0, len(d.Lines))
	for _, l := range d.Lines {
		if !l.HasItem() {
			continue
		}
		if _, ok := seen[*l.ItemID]; ok {
			continue
		}
		seen[*l.ItemID] = struct{}{}
		ids = append(ids, *l.ItemID)
	}
	return ids
}

// affectedItems lists items whose stock a save may have changed
func affectedItems(sess Session) []uuid.UUID {
	ids := draftItems(sess.Draft)
	if sess.Baseline == nil {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range sess.Baseline.ItemIDs() {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}
