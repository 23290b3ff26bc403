package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/flexerp/bankpay/internal/invoice"
)

// XLSXSource reads invoices from a workbook. Row 1 of the sheet holds the
// column names; every following non-empty row is one invoice.
type XLSXSource struct {
	// Path is the workbook file.
	Path string

	// Sheet is the worksheet to read. Empty means the first sheet.
	Sheet string
}

// Load implements Source.
func (s *XLSXSource) Load(ctx context.Context, ids []string) ([]*invoice.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := s.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook %s has no sheets", s.Path)
		}
	}

	// Raw values keep dates as serial numbers and amounts unformatted.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	all, err := mapTable(rows)
	if err != nil {
		return nil, fmt.Errorf("workbook %s sheet %s: %w", s.Path, sheetName, err)
	}

	return selectInvoices(all, ids)
}
