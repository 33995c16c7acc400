package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// Store implements invoice.Store over the accounting API
type Store struct {
	client *Client
}

// NewStore wraps a client
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// FetchItemsByQuery searches the item catalog
func (s *Store) FetchItemsByQuery(ctx context.Context, query invoice.ItemQuery) (*invoice.ItemPage, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		params.Set("size", strconv.Itoa(query.PageSize))
	}

	var page itemPageWire
	if err := s.client.do(ctx, http.MethodGet, "items", params, nil, &page); err != nil {
		return nil, err
	}
	return &invoice.ItemPage{
		Items:         page.Items,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}, nil
}

// FetchItem reads one item with its stock level
func (s *Store) FetchItem(ctx context.Context, id uuid.UUID) (*invoice.Item, error) {
	var item invoice.Item
	if err := s.client.do(ctx, http.MethodGet, "items/"+id.String(), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PersistStockAdjustment sets the stock of an item
func (s *Store) PersistStockAdjustment(ctx context.Context, payload invoice.StockAdjustmentPayload) (*invoice.Item, error) {
	var item invoice.Item
	path := "items/" + payload.ItemID.String() + "/stock-adjustments"
	if err := s.client.do(ctx, http.MethodPost, path, nil, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// FetchInvoice reads an invoice with its lines and balance
func (s *Store) FetchInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var w invoiceWire
	if err := s.client.do(ctx, http.MethodGet, "invoices/"+id.String(), nil, nil, &w); err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// PersistInvoice creates the invoice, or replaces it when the payload
// carries an invoice id
func (s *Store) PersistInvoice(ctx context.Context, payload invoice.InvoicePayload) (*invoice.Invoice, error) {
	method, path := http.MethodPost, "invoices"
	if payload.InvoiceID != nil {
		method, path = http.MethodPut, "invoices/"+payload.InvoiceID.String()
	}
	var w invoiceWire
	if err := s.client.do(ctx, method, path, nil, payload, &w); err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// DeleteInvoice tombstones an invoice
func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.client.do(ctx, http.MethodDelete, "invoices/"+id.String(), nil, nil, nil)
}

// FetchSettlements lists the settlements of an invoice
func (s *Store) FetchSettlements(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Settlement, error) {
	var ws []settlementWire
	path := "invoices/" + invoiceID.String() + "/settlements"
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &ws); err != nil {
		return nil, err
	}
	out := make([]invoice.Settlement, len(ws))
	for i, w := range ws {
		out[i] = w.toDomain()
	}
	return out, nil
}

// PersistSettlement records a settlement
func (s *Store) PersistSettlement(ctx context.Context, payload invoice.SettlementPayload) (*invoice.Settlement, error) {
	var w settlementWire
	if err := s.client.do(ctx, http.MethodPost, "settlements", nil, payload, &w); err != nil {
		return nil, err
	}
	settlement := w.toDomain()
	return &settlement, nil
}

// DeleteSettlement removes a settlement; the store recomputes the balance
func (s *Store) DeleteSettlement(ctx context.Context, id uuid.UUID) error {
	return s.client.do(ctx, http.MethodDelete, "settlements/"+id.String(), nil, nil, nil)
}

var _ invoice.Store = (*Store)(nil)
