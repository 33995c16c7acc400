package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// Codes reported by the database store, aligned with the accounting API
const (
	CodeNotFound          = "NOT_FOUND"
	CodeItemNotFound      = "ITEM_NOT_FOUND"
	CodeInvoiceDeleted    = "INVOICE_DELETED"
	CodeOverpayment       = "OVERPAYMENT"
	CodeSettledReduction  = "SETTLED_AMOUNT_REDUCED"
	CodeDatabaseFailure   = "DATABASE_ERROR"
	CodeConcurrentUpdate  = "CONCURRENT_UPDATE"
	CodeInvalidAdjustment = invoice.CodeInvalidAdjustment
)

func notFound(what string) *invoice.RemoteError {
	return invoice.NewRemoteError(http.StatusNotFound, CodeNotFound, what+" not found")
}

func conflict(code, description string) *invoice.RemoteError {
	return invoice.NewRemoteError(http.StatusConflict, code, description)
}

func rejected(code, description string) *invoice.RemoteError {
	return invoice.NewRemoteError(http.StatusUnprocessableEntity, code, description)
}

// fromRule turns a domain rule error raised during re-validation into the
// store's validation error
func fromRule(err error) *invoice.RemoteError {
	return rejected(invoice.CodeOf(err), err.Error())
}

// translate normalizes a transaction error. RemoteErrors and context errors
// pass through; a missing row is NOT_FOUND; anything else is a transient
// database failure without a user facing description.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var remoteErr *invoice.RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("record")
	}
	return &invoice.RemoteError{
		Code:       CodeDatabaseFailure,
		Kind:       invoice.RemoteTransient,
		StatusCode: http.StatusServiceUnavailable,
		Err:        fmt.Errorf("database: %w", err),
	}
}
