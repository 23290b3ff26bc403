package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexerp/bankpay/internal/batch"
	"github.com/flexerp/bankpay/internal/extractor"
	"github.com/flexerp/bankpay/internal/invoice"
	"github.com/flexerp/bankpay/internal/invoice/invoicetest"
)

func newAssembler(t *testing.T) *batch.Assembler {
	t.Helper()
	a, err := batch.New(batch.Options{
		Clock:    func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	})
	require.NoError(t, err)
	return a
}

func TestCheckCleanBatch(t *testing.T) {
	report := Check([]*invoice.Invoice{
		invoicetest.Domestic(),
		invoicetest.International(),
		invoicetest.PaymentCard(),
	}, newAssembler(t))

	assert.True(t, report.OK())
	assert.Empty(t, report.Issues)
	assert.Equal(t, 3, report.InvoicesChecked)
	assert.Equal(t, 3, report.Lines)
	assert.Equal(t, int64(3*125050), report.TotalAmount)
	assert.Equal(t, "No issues found.", FormatIssues(report.Issues))
}

func TestCheckCollectsEveryError(t *testing.T) {
	draft := invoicetest.Domestic()
	draft.State = "draft"

	noSwift := invoicetest.International()
	noSwift.PartnerBank.Bank.BIC = ""

	noReference := invoicetest.PaymentCard()
	noReference.PaymentReference = ""

	report := Check([]*invoice.Invoice{draft, noSwift, invoicetest.Domestic(), noReference}, newAssembler(t))

	require.False(t, report.OK())
	assert.Equal(t, 4, report.ErrorCount)
	assert.Equal(t, 0, report.WarningCount)
	require.Len(t, report.Issues, 4)

	assert.Equal(t, draft.Name, report.Issues[0].Invoice)
	assert.Equal(t, FieldState, report.Issues[0].Field)
	assert.Equal(t, "draft", report.Issues[0].Value)

	assert.Equal(t, noSwift.Name, report.Issues[1].Invoice)
	assert.Equal(t, extractor.LabelSwift, report.Issues[1].Field)

	// The second domestic invoice repeats the first invoice number.
	assert.Equal(t, "BILL/2024/01/0001", report.Issues[2].Invoice)
	assert.Contains(t, report.Issues[2].Message, "more than once")

	assert.Equal(t, noReference.Name, report.Issues[3].Invoice)
	assert.Equal(t, extractor.LabelPaymentReference, report.Issues[3].Field)

	assert.Equal(t, 1, report.Lines)
	assert.Equal(t, int64(125050), report.TotalAmount)
}

func TestCheckSelectionWarnings(t *testing.T) {
	inv := invoicetest.PaymentCard()
	inv.PartnerBank.FromType = "7"
	inv.PartnerBank.CardCode = "99"
	inv.PaymentTerm = &invoice.PaymentTerm{TransactionOption: "9", TransferType: "10"}

	report := Check([]*invoice.Invoice{inv}, newAssembler(t))

	assert.True(t, report.OK())
	assert.Equal(t, 4, report.WarningCount)

	fields := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		assert.Equal(t, SeverityWarning, issue.Severity)
		fields = append(fields, issue.Field)
	}
	assert.ElementsMatch(t, []string{
		extractor.LabelFromType,
		extractor.LabelCardCode,
		FieldTransactionOption,
		FieldTransferType,
	}, fields)

	for _, issue := range report.Issues {
		if issue.Field == extractor.LabelFromType {
			assert.Equal(t, "not one of 1 (Financial Account), 2 (Bank Account)", issue.Message)
		}
	}
}

func TestCheckTreatWarningsAsErrors(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.PartnerBank.FromType = "7"

	report := NewValidator(newAssembler(t), Options{TreatWarningsAsErrors: true}).CheckAll([]*invoice.Invoice{inv})
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.ErrorCount)
}

func TestCheckTruncationWarning(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.Partner.Name = strings.Repeat("N", 40)

	report := Check([]*invoice.Invoice{inv}, newAssembler(t))

	assert.True(t, report.OK())
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, "name", issue.Field)
	assert.Equal(t, "40 characters, only the first 32 are written", issue.Message)
}

func TestCheckTotalOverflow(t *testing.T) {
	big := invoicetest.Domestic()
	big.AmountTotal = decimal.RequireFromString("60000000000")
	bigger := invoicetest.International()
	bigger.AmountTotal = decimal.RequireFromString("60000000000")

	report := Check([]*invoice.Invoice{big, bigger}, newAssembler(t))

	require.False(t, report.OK())
	last := report.Issues[len(report.Issues)-1]
	assert.Equal(t, FieldTotalAmount, last.Field)
	assert.Empty(t, last.Invoice)
	assert.Equal(t, "12000000000000", last.Value)
	assert.True(t, strings.HasPrefix(last.Error(), "[ERROR] Batch, Field 'Total amount'"))
}

func TestIssueError(t *testing.T) {
	issue := &Issue{
		Severity: SeverityWarning,
		Invoice:  "BILL/1",
		Field:    "Partner Bank From Type",
		Value:    "7",
		Message:  "not one of 1, 2",
	}
	assert.Equal(t, "[WARNING] Invoice BILL/1, Field 'Partner Bank From Type': not one of 1, 2 (value: '7')", issue.Error())
}

func TestReportLogEntries(t *testing.T) {
	now := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	report := &Report{}
	report.add(&Issue{Severity: SeverityError, Invoice: "BILL/1", Field: "Currency", Message: "missing or invalid"})

	entries := report.LogEntries(now)
	require.Len(t, entries, 1)
	assert.Equal(t, "BILL/1", entries[0].Invoice)
	assert.Equal(t, SeverityError, entries[0].ErrorType)
	assert.Equal(t, "Currency", entries[0].FieldName)
	assert.Equal(t, now, entries[0].Timestamp)

	out := FormatIssues(report.Issues)
	assert.Contains(t, out, "Check completed with 1 issue(s)")
	assert.Contains(t, out, "1. [ERROR] Invoice BILL/1, Field 'Currency': missing or invalid")
}

func TestCheckReportsLineBreaks(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.Partner.Street2 = "c/o Accounts\nBuilding B"

	report := Check([]*invoice.Invoice{inv}, newAssembler(t))

	require.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityError, report.Issues[0].Severity)
	assert.Equal(t, "street2 (must not contain line breaks or double quotes)", report.Issues[0].Field)
	assert.Equal(t, 0, report.Lines)
}

func TestCheckReportsNilEntry(t *testing.T) {
	var report *Report
	require.NotPanics(t, func() {
		report = Check([]*invoice.Invoice{nil, invoicetest.Domestic()}, newAssembler(t))
	})

	require.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "entry 1: nil invoice", report.Issues[0].Message)
	assert.Equal(t, 1, report.Lines)
}
