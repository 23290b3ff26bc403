package invoice

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is matched by every data error raised while turning an
// invoice into a bank record. Callers use errors.Is to tell bad input data
// apart from configuration defects.
var ErrInsufficientData = errors.New("insufficient data")

// MissingFieldError reports a required value that is absent or fails a
// structural check. Invoice and Field are meant to be shown to the user
// verbatim.
type MissingFieldError struct {
	Invoice string
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("insufficient data: invoice number: %s: missing field: %s", e.Invoice, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Missing builds a MissingFieldError for inv.
func Missing(inv *Invoice, field string) error {
	return &MissingFieldError{Invoice: inv.Name, Field: field}
}

// StatusError reports an invoice that is not posted.
type StatusError struct {
	Invoice string
	State   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("insufficient data: invoice number: %s: status %q, bill must be posted", e.Invoice, e.State)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrInsufficientData
}
