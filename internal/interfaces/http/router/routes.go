package router

import (
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/handler"
)

// Handlers are the handlers behind the invoice API
type Handlers struct {
	Sessions    *handler.SessionHandler
	Settlements *handler.SettlementHandler
	Items       *handler.ItemHandler
	Health      *handler.HealthHandler
}

// RegisterInvoiceAPI registers the editor, settlement, item and health routes
func RegisterInvoiceAPI(r *Router, h Handlers) {
	sessions := NewDomainGroup("/sessions")
	sessions.POST("", h.Sessions.OpenNew)
	sessions.GET("/:session_id", h.Sessions.Get)
	sessions.POST("/:session_id/evaluate", h.Sessions.Evaluate)
	sessions.POST("/:session_id/submit", h.Sessions.Submit)
	sessions.DELETE("/:session_id", h.Sessions.Discard)

	invoices := NewDomainGroup("/invoices")
	invoices.POST("/:id/sessions", h.Sessions.OpenExisting)
	invoices.DELETE("/:id", h.Sessions.DeleteInvoice)
	invoices.GET("/:id/settlements", h.Settlements.List)

	calculations := NewDomainGroup("/calculations")
	calculations.POST("/totals", h.Sessions.CalculateTotals)

	items := NewDomainGroup("/items")
	items.GET("", h.Items.Search)
	items.POST("/:id/adjustments/evaluate", h.Items.EvaluateAdjustment)
	items.POST("/:id/adjustments", h.Items.ApplyAdjustment)

	settlements := NewDomainGroup("/settlements")
	settlements.POST("/evaluate", h.Settlements.Evaluate)
	settlements.POST("", h.Settlements.Create)
	settlements.DELETE("/:id", h.Settlements.Delete)

	system := NewDomainGroup("")
	system.GET("/health", h.Health.Check)

	r.Register(sessions).
		Register(invoices).
		Register(calculations).
		Register(items).
		Register(settlements).
		Register(system)
}
