// =============================================================================
// Bank Payment Generator - Transfer Classification
// =============================================================================
//
// Every invoice is paid as one of three transfer classifications. The
// classification picks the record layout and decides which invoice fields are
// required. It is read from the invoice's fiscal position and defaults to a
// domestic transfer.
//
// =============================================================================

package layout

import (
	"errors"
	"fmt"

	"github.com/flexerp/bankpay/internal/invoice"
)

// Classification is the closed set of transfer classifications. The zero
// value is not a valid classification.
type Classification int

const (
	Domestic Classification = iota + 1
	International
	PaymentCard
)

// Classifications lists every valid classification in declaration order.
var Classifications = []Classification{Domestic, International, PaymentCard}

// ErrUnsupportedClassification is matched by UnsupportedClassificationError.
var ErrUnsupportedClassification = errors.New("unsupported transfer classification")

// UnsupportedClassificationError reports a classification outside the closed
// set, either an unknown fiscal position tag or an out-of-range value.
type UnsupportedClassificationError struct {
	Value string
}

func (e *UnsupportedClassificationError) Error() string {
	return fmt.Sprintf("unsupported transfer classification %q", e.Value)
}

func (e *UnsupportedClassificationError) Is(target error) bool {
	return target == ErrUnsupportedClassification
}

// ParseClassification maps a fiscal position tag to a classification. The
// empty tag means Domestic.
func ParseClassification(tag string) (Classification, error) {
	switch tag {
	case "", "domestic":
		return Domestic, nil
	case "international":
		return International, nil
	case "payment_card":
		return PaymentCard, nil
	default:
		return 0, &UnsupportedClassificationError{Value: tag}
	}
}

// Classify returns the classification of inv.
func Classify(inv *invoice.Invoice) (Classification, error) {
	if inv.FiscalPosition == nil {
		return Domestic, nil
	}
	return ParseClassification(inv.FiscalPosition.BankTransferType)
}

// Tag is the fiscal position tag for c.
func (c Classification) Tag() string {
	switch c {
	case Domestic:
		return "domestic"
	case International:
		return "international"
	case PaymentCard:
		return "payment_card"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

func (c Classification) String() string {
	return c.Tag()
}

// Code is the transaction classification code written in the first slot of
// a body record.
func (c Classification) Code() (string, error) {
	switch c {
	case Domestic:
		return "IB030202000006", nil
	case International:
		return "IB030204000004", nil
	case PaymentCard:
		return "IB030207000002", nil
	default:
		return "", &UnsupportedClassificationError{Value: c.Tag()}
	}
}
