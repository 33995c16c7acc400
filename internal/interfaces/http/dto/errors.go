package dto

import (
	"net/http"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeTimeout is used when the request deadline passed
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Input error codes
const (
	// ErrCodeValidation is used when the request body or query fails binding
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidID is used when a path id is not a UUID
	ErrCodeInvalidID = "ERR_INVALID_ID"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
)

// Outcome codes for guard verdicts that stop an action
const (
	// ErrCodeConfirmationRequired is returned by submit when prompts are pending
	ErrCodeConfirmationRequired = "ERR_CONFIRMATION_REQUIRED"
)

// Store error codes used when the store gives no code of its own
const (
	ErrCodeStoreAuth       = "ERR_STORE_AUTH"
	ErrCodeStoreValidation = "ERR_STORE_VALIDATION"
	ErrCodeStoreConflict   = "ERR_STORE_CONFLICT"
	ErrCodeStoreNotFound   = "ERR_STORE_NOT_FOUND"
	ErrCodeStoreTransient  = "ERR_STORE_UNAVAILABLE"
	ErrCodeStoreUnknown    = "ERR_STORE_UNKNOWN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInvalidID:  http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	ErrCodeConfirmationRequired: http.StatusConflict,

	// Session errors
	"SESSION_NOT_FOUND":    http.StatusNotFound,
	"SAVE_IN_PROGRESS":     http.StatusConflict,
	"INVOICE_NOT_EDITABLE": http.StatusConflict,
	"NOT_FOUND":            http.StatusNotFound,
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_STATE":        http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Guard rule violations -> 422 Unprocessable Entity
	"CONFIRMATION_DECLINED":              http.StatusUnprocessableEntity,
	invoice.CodeIncompleteInvoice:        http.StatusUnprocessableEntity,
	invoice.CodeInvalidLine:              http.StatusUnprocessableEntity,
	invoice.CodeInvalidDiscount:          http.StatusUnprocessableEntity,
	invoice.CodeInvalidStatusTransition:  http.StatusUnprocessableEntity,
	invoice.CodePaymentViolation:         http.StatusUnprocessableEntity,
	invoice.CodeQuantityIncreaseOnEdit:   http.StatusUnprocessableEntity,
	invoice.CodeExceedsStock:             http.StatusUnprocessableEntity,
	invoice.CodeBelowMinimumAmount:       http.StatusUnprocessableEntity,
	invoice.CodeInsufficientStock:        http.StatusUnprocessableEntity,
	invoice.CodeNonPositiveAmount:        http.StatusUnprocessableEntity,
	invoice.CodeExceedsRemainingBalance:  http.StatusUnprocessableEntity,
	invoice.CodeIncompleteSettlement:     http.StatusUnprocessableEntity,
	invoice.CodeInvoiceNotSettleable:     http.StatusUnprocessableEntity,
	invoice.CodeInvalidAdjustment:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RemoteStatus picks the status returned to the client for a store failure.
// Store authentication problems are the server's, so they surface as 502.
func RemoteStatus(kind invoice.RemoteErrorKind) int {
	switch kind {
	case invoice.RemoteValidation:
		return http.StatusUnprocessableEntity
	case invoice.RemoteConflict:
		return http.StatusConflict
	case invoice.RemoteNotFound:
		return http.StatusNotFound
	case invoice.RemoteTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// RemoteCode returns the store's own code, or a generic one for the kind
func RemoteCode(err *invoice.RemoteError) string {
	if err.Code != "" {
		return err.Code
	}
	switch err.Kind {
	case invoice.RemoteAuth:
		return ErrCodeStoreAuth
	case invoice.RemoteValidation:
		return ErrCodeStoreValidation
	case invoice.RemoteConflict:
		return ErrCodeStoreConflict
	case invoice.RemoteNotFound:
		return ErrCodeStoreNotFound
	case invoice.RemoteTransient:
		return ErrCodeStoreTransient
	default:
		return ErrCodeStoreUnknown
	}
}
