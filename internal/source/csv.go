package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/flexerp/bankpay/internal/invoice"
)

// CSVSource reads invoices from a CSV export with a header row.
type CSVSource struct {
	// Path is the CSV file.
	Path string

	// Delimiter separates fields. Default: ",".
	Delimiter string
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context, ids []string) ([]*invoice.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	configureReader(reader, s.Delimiter)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}

	// Spreadsheet exports often start with a UTF-8 byte order mark.
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = trimBOM(records[0][0])
	}

	all, err := mapTable(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	return selectInvoices(all, ids)
}

// configureReader applies the delimiter and the lenient parsing settings.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "":
		reader.Comma = ','
	default:
		r, _ := utf8.DecodeRuneInString(delimiter)
		reader.Comma = r
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
