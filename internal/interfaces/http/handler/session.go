package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/dto"
)

// SessionHandler handles invoice editing sessions
type SessionHandler struct {
	BaseHandler
	editor *invoicing.EditorService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(editor *invoicing.EditorService) *SessionHandler {
	return &SessionHandler{editor: editor}
}

// OpenNew opens a session for a new invoice
// POST /sessions
func (h *SessionHandler) OpenNew(c *gin.Context) {
	view := h.editor.OpenNew(c.Request.Context())
	h.Created(c, newSessionResponse(view))
}

// OpenExisting loads an invoice and opens an editing session on it
// POST /invoices/:id/sessions
func (h *SessionHandler) OpenExisting(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.editor.OpenExisting(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, newSessionResponse(view))
}

// Get returns the session state
// GET /sessions/:session_id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := h.ParamUUID(c, "session_id")
	if !ok {
		return
	}
	view, err := h.editor.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSessionResponse(view))
}

// Evaluate runs the save guard on the draft without saving
// POST /sessions/:session_id/evaluate
func (h *SessionHandler) Evaluate(c *gin.Context) {
	sessionID, ok := h.ParamUUID(c, "session_id")
	if !ok {
		return
	}
	var req EvaluateRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	eval, err := h.editor.Evaluate(c.Request.Context(), sessionID, invoicing.EvaluateInput{
		Draft:        req.Draft,
		Acknowledged: req.Acknowledged,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, EvaluationResponse{
		SessionID: eval.SessionID,
		Outcome:   newOutcomeResponse(eval.Outcome),
		Lines:     newLineCheckResponses(eval.Lines),
	})
}

// Submit evaluates and saves the draft. A blocked draft answers 422 with the
// rule code; pending confirmations answer 409 with the prompts to show.
// POST /sessions/:session_id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	sessionID, ok := h.ParamUUID(c, "session_id")
	if !ok {
		return
	}
	var req SubmitRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.editor.Submit(c.Request.Context(), sessionID, invoicing.SubmitInput{
		Draft:        req.Draft,
		Acknowledged: req.Acknowledged,
		Declined:     req.Declined,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	outcome := newOutcomeResponse(result.Outcome)
	switch {
	case result.Saved():
		h.Success(c, SubmitResponse{
			SessionID: result.SessionID,
			Saved:     true,
			Outcome:   outcome,
			Invoice:   newInvoiceResponse(result.Invoice),
		})
	case result.Outcome.IsBlocked():
		h.ErrorWithDetails(c, http.StatusUnprocessableEntity, outcome.Code, outcome.Message, outcome)
	default:
		h.ErrorWithDetails(c, http.StatusConflict, dto.ErrCodeConfirmationRequired,
			"Confirmation required before saving", outcome)
	}
}

// DeleteInvoice tombstones an invoice and returns its stock
// DELETE /invoices/:id
func (h *SessionHandler) DeleteInvoice(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.editor.DeleteInvoice(c.Request.Context(), invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Discard drops the session
// DELETE /sessions/:session_id
func (h *SessionHandler) Discard(c *gin.Context) {
	sessionID, ok := h.ParamUUID(c, "session_id")
	if !ok {
		return
	}
	h.editor.Discard(c.Request.Context(), sessionID)
	h.NoContent(c)
}

// CalculateTotals recomputes totals for a line list
// POST /calculations/totals
func (h *SessionHandler) CalculateTotals(c *gin.Context) {
	var req TotalsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	totals := h.editor.CalculateTotals(invoicing.TotalsInput{
		Lines:          req.Lines,
		Discount:       req.Discount,
		FreeItemsValue: req.FreeItemsValue,
	})
	h.Success(c, totals.Rounded())
}

// bindOptionalJSON binds a body when one was sent
func (h *SessionHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.BindJSON(c, req)
}
