package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrConfirmationDeclined aborts a save or adjustment whose prompt the user refused
var ErrConfirmationDeclined = NewDomainError("CONFIRMATION_DECLINED", "Save aborted: a confirmation was declined")
