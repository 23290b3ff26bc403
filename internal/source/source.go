// =============================================================================
// Bank Payment Generator - Invoice Sources
// =============================================================================
//
// A Source loads the invoices to pay. Implementations:
//   - XLSXSource     (invoice workbook, one row per invoice)
//   - CSVSource      (CSV export, one row per invoice)
//   - YAMLSource     (nested invoice documents)
//   - PostgresSource (flat view over the ERP database)
//
// ORDERING:
//   When ids are given the invoices come back in the order of ids, which is
//   the order their records appear in the payment file. Otherwise source
//   order is kept.
//
// =============================================================================

package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/flexerp/bankpay/internal/config"
	"github.com/flexerp/bankpay/internal/invoice"
)

// ErrInvoiceNotFound is returned when a requested invoice is not in the source.
var ErrInvoiceNotFound = errors.New("invoice not found")

// NotFoundError names the invoice that was requested but not found.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("invoice %s: %v", e.Name, ErrInvoiceNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrInvoiceNotFound
}

// Source loads invoices.
type Source interface {
	// Load returns the invoices named by ids in that order, or every
	// invoice in source order when ids is empty.
	Load(ctx context.Context, ids []string) ([]*invoice.Invoice, error)
}

// New returns the source described by cfg.
func New(cfg config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case config.SourceXLSX:
		return &XLSXSource{Path: cfg.Path, Sheet: cfg.Sheet}, nil
	case config.SourceCSV:
		return &CSVSource{Path: cfg.Path, Delimiter: cfg.Delimiter}, nil
	case config.SourceYAML:
		return &YAMLSource{Path: cfg.Path}, nil
	case config.SourcePostgres:
		return &PostgresSource{DSN: cfg.DSN, View: cfg.View}, nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Kind)
	}
}

// selectInvoices returns the invoices named by ids in ids order. An empty
// ids returns all. Duplicate invoice numbers in all are rejected.
func selectInvoices(all []*invoice.Invoice, ids []string) ([]*invoice.Invoice, error) {
	byName := make(map[string]*invoice.Invoice, len(all))
	for _, inv := range all {
		if _, dup := byName[inv.Name]; dup {
			return nil, fmt.Errorf("invoice %s appears more than once", inv.Name)
		}
		byName[inv.Name] = inv
	}

	if len(ids) == 0 {
		return all, nil
	}

	selected := make([]*invoice.Invoice, 0, len(ids))
	for _, id := range ids {
		inv, ok := byName[id]
		if !ok {
			return nil, &NotFoundError{Name: id}
		}
		selected = append(selected, inv)
	}
	return selected, nil
}
