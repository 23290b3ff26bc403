package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flexerp/bankpay/internal/invoice"
)

// YAMLSource reads invoices from a YAML document of the form
//
//	invoices:
//	  - name: BILL/2024/01/0001
//	    state: posted
//	    invoice_date_due: 2024-02-15
//	    amount_total: 1250.50
//	    partner: {name: Nordic Supplies ApS, ...}
//	    partner_bank: {acc_number: "12345678901234", from_type: "2", ...}
type YAMLSource struct {
	Path string
}

type yamlDocument struct {
	Invoices []yamlInvoice `yaml:"invoices"`
}

// yamlInvoice carries the two fields that need parsing next to the
// directly decoded ones.
type yamlInvoice struct {
	invoice.Invoice `yaml:",inline"`

	DueDate     string `yaml:"invoice_date_due"`
	AmountTotal string `yaml:"amount_total"`
}

// Load implements Source.
func (s *YAMLSource) Load(ctx context.Context, ids []string) ([]*invoice.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	all, err := decodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	return selectInvoices(all, ids)
}

func decodeYAML(data []byte) ([]*invoice.Invoice, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse invoices: %w", err)
	}

	invoices := make([]*invoice.Invoice, 0, len(doc.Invoices))
	for i := range doc.Invoices {
		entry := &doc.Invoices[i]
		inv := entry.Invoice

		if inv.Name == "" {
			return nil, fmt.Errorf("invoice #%d: invoice number is empty", i+1)
		}

		var err error
		if inv.DueDate, err = parseDate(entry.DueDate); err != nil {
			return nil, fmt.Errorf("invoice %s: %s: %w", inv.Name, ColDueDate, err)
		}
		if inv.AmountTotal, err = parseAmount(entry.AmountTotal); err != nil {
			return nil, fmt.Errorf("invoice %s: %s: %w", inv.Name, ColAmountTotal, err)
		}

		invoices = append(invoices, &inv)
	}

	return invoices, nil
}
