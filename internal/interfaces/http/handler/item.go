package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/dto"
)

// DefaultItemPageSize is used when the search omits page_size
const DefaultItemPageSize = 20

// ItemHandler handles item search and manual stock adjustments
type ItemHandler struct {
	BaseHandler
	oracle      *invoicing.StockOracle
	adjustments *invoicing.StockAdjustmentService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(oracle *invoicing.StockOracle, adjustments *invoicing.StockAdjustmentService) *ItemHandler {
	return &ItemHandler{oracle: oracle, adjustments: adjustments}
}

// Search pages through items. Every returned item refreshes the stock cache.
// GET /items?search=&page=&page_size=
func (h *ItemHandler) Search(c *gin.Context) {
	var req ItemQueryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	if req.PageSize == 0 {
		req.PageSize = DefaultItemPageSize
	}

	page, err := h.oracle.Search(c.Request.Context(), invoice.ItemQuery{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []invoice.Item{}
	}
	h.SuccessWithMeta(c, items, page.TotalElements, req.Page, req.PageSize, page.TotalPages)
}

// EvaluateAdjustment checks a stock adjustment without applying it
// POST /items/:id/adjustments/evaluate
func (h *ItemHandler) EvaluateAdjustment(c *gin.Context) {
	itemID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	eval, err := h.adjustments.Evaluate(c.Request.Context(), itemID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AdjustmentResponse{Adjustment: eval.Adjustment, Outcome: newOutcomeResponse(eval.Outcome)})
}

// ApplyAdjustment evaluates and applies a stock adjustment. Blocked and
// unconfirmed adjustments answer like a blocked or unconfirmed invoice save.
// POST /items/:id/adjustments
func (h *ItemHandler) ApplyAdjustment(c *gin.Context) {
	itemID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.adjustments.Apply(c.Request.Context(), itemID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := AdjustmentResponse{
		Adjustment: result.Adjustment,
		Outcome:    newOutcomeResponse(result.Outcome),
		Item:       result.Item,
	}
	switch {
	case result.Item != nil:
		h.Success(c, resp)
	case result.Outcome.IsBlocked():
		h.ErrorWithDetails(c, http.StatusUnprocessableEntity, resp.Outcome.Code, resp.Outcome.Message, resp)
	default:
		h.ErrorWithDetails(c, http.StatusConflict, dto.ErrCodeConfirmationRequired,
			"Confirmation required before adjusting stock", resp)
	}
}
