// =============================================================================
// Bank Payment Generator - Flat Invoice Rows
// =============================================================================
//
// Workbooks, CSV exports and the Postgres view all deliver one invoice per
// row, with its related records flattened into prefixed columns. This file
// turns such a row into an invoice.Invoice.
//
// RELATIONS:
//   A relation whose columns are all empty stays nil, so the extractor
//   reports it as missing instead of reading empty strings.
//
// =============================================================================

package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/flexerp/bankpay/internal/invoice"
)

// Column names of a flat invoice row.
const (
	ColName                 = "name"
	ColState                = "state"
	ColDueDate              = "invoice_date_due"
	ColAmountTotal          = "amount_total"
	ColCurrency             = "currency"
	ColBankTransType        = "bank_trans_type"
	ColTransactionOption    = "transaction_option"
	ColTransferType         = "transfer_type"
	ColPartnerName          = "partner_name"
	ColPartnerStreet        = "partner_street"
	ColPartnerStreet2       = "partner_street2"
	ColPartnerZip           = "partner_zip"
	ColPartnerCity          = "partner_city"
	ColPartnerCountry       = "partner_country"
	ColPartnerBankAccNumber = "partner_bank_acc_number"
	ColPartnerBankFromType  = "partner_bank_from_type"
	ColPartnerBankCardCode  = "partner_bank_card_code"
	ColPartnerBankName      = "partner_bank_name"
	ColPartnerBankBIC       = "partner_bank_bic"
	ColCompanyName          = "company_name"
	ColCompanyAccNumber     = "company_acc_number"
	ColPaymentReference     = "payment_reference"
	ColInvoiceOrigin        = "invoice_origin"
	ColRef                  = "ref"
	ColNarration            = "narration"
	ColJournalName          = "journal_name"
)

// dateLayouts are the accepted textual due date formats.
var dateLayouts = []string{"2006-01-02", "20060102", "02-01-2006", "02.01.2006", time.RFC3339}

// Row is one flat invoice row keyed by column name.
type Row map[string]string

func (r Row) get(col string) string {
	return strings.TrimSpace(r[col])
}

func (r Row) has(cols ...string) bool {
	for _, c := range cols {
		if r.get(c) != "" {
			return true
		}
	}
	return false
}

// RowError reports a row that cannot be turned into an invoice.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MapRow builds an invoice from row. line is the 1-based source line used
// in error messages.
func MapRow(row Row, line int) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		Name:             row.get(ColName),
		State:            row.get(ColState),
		Currency:         row.get(ColCurrency),
		PaymentReference: row.get(ColPaymentReference),
		Origin:           row.get(ColInvoiceOrigin),
		Ref:              row.get(ColRef),
		Narration:        row[ColNarration],
		JournalName:      row.get(ColJournalName),
	}

	if inv.Name == "" {
		return nil, &RowError{Row: line, Column: ColName, Err: fmt.Errorf("invoice number is empty")}
	}

	var err error
	if inv.DueDate, err = parseDate(row.get(ColDueDate)); err != nil {
		return nil, &RowError{Row: line, Column: ColDueDate, Err: err}
	}
	if inv.AmountTotal, err = parseAmount(row.get(ColAmountTotal)); err != nil {
		return nil, &RowError{Row: line, Column: ColAmountTotal, Err: err}
	}

	if row.has(ColBankTransType) {
		inv.FiscalPosition = &invoice.FiscalPosition{
			BankTransferType: row.get(ColBankTransType),
		}
	}

	if row.has(ColTransactionOption, ColTransferType) {
		inv.PaymentTerm = &invoice.PaymentTerm{
			TransactionOption: row.get(ColTransactionOption),
			TransferType:      row.get(ColTransferType),
		}
	}

	if row.has(ColPartnerName, ColPartnerStreet, ColPartnerStreet2, ColPartnerZip, ColPartnerCity, ColPartnerCountry) {
		inv.Partner = &invoice.Partner{
			Name:    row.get(ColPartnerName),
			Street:  row.get(ColPartnerStreet),
			Street2: row.get(ColPartnerStreet2),
			Zip:     row.get(ColPartnerZip),
			City:    row.get(ColPartnerCity),
			Country: row.get(ColPartnerCountry),
		}
	}

	if row.has(ColPartnerBankAccNumber, ColPartnerBankFromType, ColPartnerBankCardCode, ColPartnerBankName, ColPartnerBankBIC) {
		inv.PartnerBank = &invoice.PartnerBank{
			AccNumber: row.get(ColPartnerBankAccNumber),
			FromType:  row.get(ColPartnerBankFromType),
			CardCode:  row.get(ColPartnerBankCardCode),
		}
		if row.has(ColPartnerBankName, ColPartnerBankBIC) {
			inv.PartnerBank.Bank = &invoice.Bank{
				Name: row.get(ColPartnerBankName),
				BIC:  row.get(ColPartnerBankBIC),
			}
		}
	}

	if row.has(ColCompanyName, ColCompanyAccNumber) {
		inv.Company = &invoice.Company{Name: row.get(ColCompanyName)}
		if acc := row.get(ColCompanyAccNumber); acc != "" {
			inv.Company.BankAccounts = []string{acc}
		}
	}

	return inv, nil
}

// parseDate accepts the textual layouts in dateLayouts and spreadsheet
// serial dates. An empty value is the zero time.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// parseAmount parses a decimal amount. An empty value is zero.
func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(value, " ", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	return d, nil
}

// =============================================================================
// TABULAR INPUT
// =============================================================================

// rowsFromTable turns a header row plus data rows into Rows. Header cells
// are trimmed and lower-cased. Empty rows are skipped; the returned line
// numbers are 1-based positions in records.
func rowsFromTable(records [][]string) ([]Row, []int, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no header row")
	}

	headers := cleanHeaders(records[0])
	if !contains(headers, ColName) {
		return nil, nil, fmt.Errorf("header row has no %q column", ColName)
	}

	rows := make([]Row, 0, len(records)-1)
	lines := make([]int, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if isRowEmpty(record) {
			continue
		}

		row := make(Row, len(headers))
		for col, header := range headers {
			if header == "" {
				continue
			}
			if col < len(record) {
				row[header] = record[col]
			} else {
				row[header] = ""
			}
		}

		rows = append(rows, row)
		lines = append(lines, i+1)
	}

	return rows, lines, nil
}

// cleanHeaders normalizes header cells to column names.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.ToLower(strings.TrimSpace(header))
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// mapTable maps every data row of records to an invoice.
func mapTable(records [][]string) ([]*invoice.Invoice, error) {
	rows, lines, err := rowsFromTable(records)
	if err != nil {
		return nil, err
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for i, row := range rows {
		inv, err := MapRow(row, lines[i])
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
