package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
)

// SettlementHandler handles settlements against invoices
type SettlementHandler struct {
	BaseHandler
	settlements *invoicing.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlements *invoicing.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// Evaluate checks a settlement against the invoice balance without recording it
// POST /settlements/evaluate
func (h *SettlementHandler) Evaluate(c *gin.Context) {
	var req SettlementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	eval, err := h.settlements.Evaluate(c.Request.Context(), req.ToDraft())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSettlementEvaluationResponse(eval))
}

// Create records a settlement
// POST /settlements
func (h *SettlementHandler) Create(c *gin.Context) {
	var req SettlementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	settlement, err := h.settlements.Create(c.Request.Context(), req.ToDraft())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, newSettlementResponse(settlement))
}

// List returns the settlements of an invoice
// GET /invoices/:id/settlements
func (h *SettlementHandler) List(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	settlements, err := h.settlements.List(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := make([]SettlementResponse, 0, len(settlements))
	for i := range settlements {
		resp = append(resp, newSettlementResponse(&settlements[i]))
	}
	h.Success(c, resp)
}

// Delete removes a settlement
// DELETE /settlements/:id
func (h *SettlementHandler) Delete(c *gin.Context) {
	settlementID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.settlements.Delete(c.Request.Context(), settlementID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
