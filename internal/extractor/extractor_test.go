package extractor

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexerp/bankpay/internal/invoice"
	"github.com/flexerp/bankpay/internal/invoice/invoicetest"
	"github.com/flexerp/bankpay/internal/layout"
)

func requireMissing(t *testing.T, err error, inv *invoice.Invoice, label string) {
	t.Helper()
	require.Error(t, err)

	var missing *invoice.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, inv.Name, missing.Invoice)
	assert.Equal(t, label, missing.Field)
	assert.ErrorIs(t, err, invoice.ErrInsufficientData)
}

func TestExtractDomestic(t *testing.T) {
	inv := invoicetest.Domestic()

	v, err := Extract(inv, layout.Domestic)
	require.NoError(t, err)

	assert.Equal(t, layout.Domestic, v.Classification)
	assert.Equal(t, int64(125050), v.Amount)

	want := map[string]string{
		layout.ValTransType:         "IB030202000006",
		layout.ValIndex:             "0001",
		layout.ValDueDate:           "20240215",
		layout.ValAmount:            "125050",
		layout.ValCurrency:          "DKK",
		layout.ValFromType:          "2",
		layout.ValFromAccount:       "987654321012345",
		layout.ValTransactionType:   "2",
		layout.ValCustReg:           "1234",
		layout.ValCustAcc:           "5678901234",
		layout.ValTransactionOption: "1",
		layout.ValTransferType:      "53",
		layout.ValPaymentReference:  "INV 4711",
		layout.ValDocumentReference: "P00042",
		layout.ValPartnerName:       "Nordic Supplies ApS",
		layout.ValStreet:            "Vestergade 12",
		layout.ValStreet2:           "2. sal",
		layout.ValZip:               "8000",
		layout.ValCity:              "Aarhus C",
		layout.ValCountry:           "Denmark",
		layout.ValInvoiceName:       "BILL/2024/01/0001",
		layout.Notification(1):      "BILL/2024/01/0001",
		layout.Notification(2):      "",
		layout.Notification(3):      "",
		layout.Notification(4):      "",
		layout.Notification(5):      "",
	}
	assert.Equal(t, want, v.Fields)
}

func TestExtractDoesNotMutateInvoice(t *testing.T) {
	inv := invoicetest.Domestic()
	before := *inv
	beforeBank := *inv.PartnerBank

	_, err := Extract(inv, layout.Domestic)
	require.NoError(t, err)

	assert.Equal(t, before, *inv)
	assert.Equal(t, beforeBank, *inv.PartnerBank)
}

func TestExtractAmountTruncates(t *testing.T) {
	tests := map[string]int64{
		"0":        0,
		"10":       1000,
		"99.999":   9999,
		"0.019":    1,
		"12345.67": 1234567,
	}

	for total, want := range tests {
		inv := invoicetest.Domestic()
		inv.AmountTotal = decimal.RequireFromString(total)

		v, err := Extract(inv, layout.Domestic)
		require.NoError(t, err, total)
		assert.Equal(t, want, v.Amount, total)
	}
}

func TestExtractNegativeAmount(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.AmountTotal = decimal.RequireFromString("-5")

	_, err := Extract(inv, layout.Domestic)
	requireMissing(t, err, inv, LabelAmountNegative)
}

func TestExtractPaymentTermTags(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.PaymentTerm = &invoice.PaymentTerm{TransactionOption: "3", TransferType: "21"}

	v, err := Extract(inv, layout.Domestic)
	require.NoError(t, err)
	assert.Equal(t, "3", v.Fields[layout.ValTransactionOption])
	assert.Equal(t, "21", v.Fields[layout.ValTransferType])

	inv.PaymentTerm = &invoice.PaymentTerm{Name: "30 days"}
	v, err = Extract(inv, layout.Domestic)
	require.NoError(t, err)
	assert.Equal(t, "1", v.Fields[layout.ValTransactionOption])
	assert.Equal(t, "53", v.Fields[layout.ValTransferType])
}

func TestExtractDocumentReferenceFallsBackToRef(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.Origin = ""

	v, err := Extract(inv, layout.Domestic)
	require.NoError(t, err)
	assert.Equal(t, "VENDOR-REF-9", v.Fields[layout.ValDocumentReference])
}

func TestExtractMissingPartnerIsBlank(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.Partner = nil

	v, err := Extract(inv, layout.Domestic)
	require.NoError(t, err)
	assert.Equal(t, "", v.Fields[layout.ValPartnerName])
	assert.Equal(t, "", v.Fields[layout.ValCity])
}

func TestExtractNarration(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.Narration = "<p>line one</p><p>line two</p><p>3</p><p>4</p><p>" + strings.Repeat("x", 35) + "</p>"

	v, err := Extract(inv, layout.Domestic)
	require.NoError(t, err)
	assert.Equal(t, "line one", v.Fields[layout.Notification(1)])
	assert.Equal(t, "line two", v.Fields[layout.Notification(2)])
	assert.Equal(t, "3", v.Fields[layout.Notification(3)])
	assert.Equal(t, "4", v.Fields[layout.Notification(4)])
	assert.Equal(t, strings.Repeat("x", 35), v.Fields[layout.Notification(5)])
}

func TestExtractMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		c      layout.Classification
		mutate func(inv *invoice.Invoice)
		label  string
	}{
		{"due date", layout.Domestic, func(inv *invoice.Invoice) { inv.DueDate = time.Time{} }, LabelDueDate},
		{"currency", layout.Domestic, func(inv *invoice.Invoice) { inv.Currency = "" }, LabelCurrency},
		{"no partner bank", layout.Domestic, func(inv *invoice.Invoice) { inv.PartnerBank = nil }, LabelRecipientBank},
		{"no from type", layout.Domestic, func(inv *invoice.Invoice) { inv.PartnerBank.FromType = "" }, LabelFromType},
		{"no company", layout.Domestic, func(inv *invoice.Invoice) { inv.Company = nil }, LabelCompanyAccount},
		{"no company account", layout.Domestic, func(inv *invoice.Invoice) { inv.Company.BankAccounts = nil }, LabelCompanyAccount},
		{"short company account", layout.Domestic, func(inv *invoice.Invoice) { inv.Company.BankAccounts = []string{"12345"} }, LabelCompanyAccountLength},
		{"payment reference", layout.Domestic, func(inv *invoice.Invoice) { inv.PaymentReference = "" }, LabelPaymentReference},
		{"bill reference", layout.Domestic, func(inv *invoice.Invoice) { inv.Origin, inv.Ref = "", "" }, LabelBillReference},
		{"six paragraphs", layout.Domestic, func(inv *invoice.Invoice) { inv.Narration = "a\nb\nc\nd\ne\nf" }, LabelNarrationParagraphs},
		{"long paragraph", layout.Domestic, func(inv *invoice.Invoice) { inv.Narration = "ok\nok\n" + strings.Repeat("y", 36) }, "Narration (every paragraph should be max length of 35). Problematic paragraph: 3"},
		{"domestic account length", layout.Domestic, func(inv *invoice.Invoice) { inv.PartnerBank.AccNumber = "1234" }, LabelRecipientAccount},
		{"company account letters", layout.Domestic, func(inv *invoice.Invoice) { inv.Company.BankAccounts = []string{"DK5000400440116"} }, LabelCompanyAccountDigits},
		{"domestic account dash", layout.Domestic, func(inv *invoice.Invoice) { inv.PartnerBank.AccNumber = "1234-567890123" }, LabelRecipientDigits},
		{"from type letter", layout.Domestic, func(inv *invoice.Invoice) { inv.PartnerBank.FromType = "B" }, LabelFromTypeDigits},
		{"amount beyond int64", layout.Domestic, func(inv *invoice.Invoice) { inv.AmountTotal = decimal.RequireFromString("100000000000000000000") }, LabelAmountTooLarge},
		{"street2 line break", layout.Domestic, func(inv *invoice.Invoice) { inv.Partner.Street2 = "c/o Accounts\nBuilding B" }, "street2 (must not contain line breaks or double quotes)"},
		{"recipient street carriage return", layout.International, func(inv *invoice.Invoice) { inv.Partner.Street = "Vestergade 12\r" }, "recipient_street (must not contain line breaks or double quotes)"},
		{"payment reference quote", layout.PaymentCard, func(inv *invoice.Invoice) { inv.PartnerBank.CardCode, inv.PaymentReference = "71", `INV "4711"` }, "payment_id (must not contain line breaks or double quotes)"},
		{"international no bank", layout.International, func(inv *invoice.Invoice) { inv.PartnerBank.Bank = nil }, LabelPartnerBank},
		{"international no bic", layout.International, func(inv *invoice.Invoice) { inv.PartnerBank.Bank.BIC = "" }, LabelSwift},
		{"card code", layout.PaymentCard, func(inv *invoice.Invoice) { inv.PartnerBank.CardCode = "" }, LabelCardCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := invoicetest.Domestic()
			tt.mutate(inv)

			_, err := Extract(inv, tt.c)
			requireMissing(t, err, inv, tt.label)
		})
	}
}

func TestExtractInternational(t *testing.T) {
	inv := invoicetest.International()

	v, err := Extract(inv, layout.International)
	require.NoError(t, err)
	assert.Equal(t, "IB030204000004", v.Fields[layout.ValTransType])
	assert.Equal(t, "DE89370400440532013000", v.Fields[layout.ValRecipientAccount])
	assert.Equal(t, "COBADEFFXXX", v.Fields[layout.ValSwift])
	assert.Equal(t, "57", v.Fields[layout.ValTransferType])

	_, domesticOnly := v.Fields[layout.ValCustReg]
	assert.False(t, domesticOnly)
}

func TestExtractInternationalDoesNotNeedDomesticAccount(t *testing.T) {
	inv := invoicetest.International()
	inv.PartnerBank.AccNumber = "DK5000400440116243"

	_, err := Extract(inv, layout.International)
	assert.NoError(t, err)
}

func TestExtractDomesticDoesNotNeedSwift(t *testing.T) {
	inv := invoicetest.Domestic()
	inv.PartnerBank.Bank = nil

	_, err := Extract(inv, layout.Domestic)
	assert.NoError(t, err)
}

func TestExtractPaymentCard(t *testing.T) {
	inv := invoicetest.PaymentCard()

	v, err := Extract(inv, layout.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, "IB030207000002", v.Fields[layout.ValTransType])
	assert.Equal(t, "71", v.Fields[layout.ValCardCode])
	assert.Equal(t, "+71<000000012345678", v.Fields[layout.ValPaymentReference])
}

func TestExtractUnsupportedClassification(t *testing.T) {
	_, err := Extract(invoicetest.Domestic(), layout.Classification(0))
	assert.ErrorIs(t, err, layout.ErrUnsupportedClassification)
}
