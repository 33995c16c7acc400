package invoice

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemQuery is a paged item search
type ItemQuery struct {
	Search   string
	Page     int
	PageSize int
}

// Item is a catalog item as returned by the store, with its stock level
type Item struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	Available decimal.Decimal `json:"available"`
	MinStock  decimal.Decimal `json:"min_stock"`
}

// StockLevel converts the item stock fields into a snapshot entry
func (i Item) StockLevel(fetchedAt time.Time) StockLevel {
	return StockLevel{Available: i.Available, MinStock: i.MinStock, FetchedAt: fetchedAt}
}

// ItemPage is one page of an item search
type ItemPage struct {
	Items         []Item
	TotalElements int64
	TotalPages    int
}

// LinePayload is one line of a persist request
type LinePayload struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Free      bool            `json:"is_free"`
}

// InvoicePayload creates an invoice, or updates one when InvoiceID is set
type InvoicePayload struct {
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	ClientID        uuid.UUID       `json:"client_id"`
	Lines           []LinePayload   `json:"lines"`
	Discount        decimal.Decimal `json:"discount"`
	VATPercent      decimal.Decimal `json:"vat_percent"`
	InitialPayment  decimal.Decimal `json:"initial_payment"`
	Status          Status          `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method,omitempty"`
	DeductFromStock bool            `json:"deduct_from_stock"`
}

// SettlementPayload records a settlement
type SettlementPayload struct {
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Method      PaymentMethod   `json:"payment_method"`
	Reference   string          `json:"reference,omitempty"`
	CardLast4   string          `json:"card_last4,omitempty"`
	CheckNumber string          `json:"check_number,omitempty"`
	BankName    string          `json:"bank_name,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// StockAdjustmentPayload sets an item's stock to a new quantity
type StockAdjustmentPayload struct {
	ItemID      uuid.UUID       `json:"item_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason"`
}

// ItemStore reads and adjusts catalog items
type ItemStore interface {
	FetchItemsByQuery(ctx context.Context, query ItemQuery) (*ItemPage, error)
	FetchItem(ctx context.Context, id uuid.UUID) (*Item, error)
	PersistStockAdjustment(ctx context.Context, payload StockAdjustmentPayload) (*Item, error)
}

// InvoiceStore reads and writes invoices. DeleteInvoice tombstones the
// invoice as DELETED and returns the stock it consumed.
type InvoiceStore interface {
	FetchInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	PersistInvoice(ctx context.Context, payload InvoicePayload) (*Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

// SettlementStore reads and writes settlements
type SettlementStore interface {
	FetchSettlements(ctx context.Context, invoiceID uuid.UUID) ([]Settlement, error)
	PersistSettlement(ctx context.Context, payload SettlementPayload) (*Settlement, error)
	DeleteSettlement(ctx context.Context, id uuid.UUID) error
}

// Store is the authoritative external store. Every method may fail with a
// *RemoteError.
type Store interface {
	ItemStore
	InvoiceStore
	SettlementStore
}

// RemoteErrorKind classifies a store failure. The classification only
// selects the message; nothing retries automatically.
type RemoteErrorKind string

const (
	RemoteAuth       RemoteErrorKind = "AUTH"
	RemoteValidation RemoteErrorKind = "VALIDATION"
	RemoteConflict   RemoteErrorKind = "CONFLICT"
	RemoteNotFound   RemoteErrorKind = "NOT_FOUND"
	RemoteTransient  RemoteErrorKind = "TRANSIENT"
	RemoteUnknown    RemoteErrorKind = "UNKNOWN"
)

// GenericRemoteMessage is shown when the store gives no description
const GenericRemoteMessage = "The request could not be completed. Please try again."

// RemoteError is a failure reported by the store, or by the transport to it
type RemoteError struct {
	Code        string
	Description string
	Kind        RemoteErrorKind
	StatusCode  int
	Err         error
}

func (e *RemoteError) Error() string {
	msg := "remote store error"
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// UserMessage returns the store's description verbatim when present,
// otherwise a generic message suggesting a retry
func (e *RemoteError) UserMessage() string {
	if e.Description != "" {
		return e.Description
	}
	return GenericRemoteMessage
}

// Retryable reports whether resubmitting unchanged may succeed
func (e *RemoteError) Retryable() bool {
	return e.Kind == RemoteTransient || e.Kind == RemoteConflict
}

// ClassifyStatus maps an HTTP status of the store to an error kind
func ClassifyStatus(status int) RemoteErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return RemoteAuth
	case status == http.StatusNotFound:
		return RemoteNotFound
	case status == http.StatusConflict || status == http.StatusPreconditionFailed:
		return RemoteConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return RemoteValidation
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return RemoteTransient
	default:
		return RemoteUnknown
	}
}

// NewRemoteError builds a RemoteError classified from an HTTP status
func NewRemoteError(status int, code, description string) *RemoteError {
	return &RemoteError{
		Code:        code,
		Description: description,
		Kind:        ClassifyStatus(status),
		StatusCode:  status,
	}
}
