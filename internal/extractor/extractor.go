// =============================================================================
// Bank Payment Generator - Invoice Field Extractor
// =============================================================================
//
// The extractor derives the raw value of every logical field of a body record
// from one invoice and its related records. It applies the defaulting rules
// of the bank format and reports the first missing or malformed value as a
// MissingFieldError carrying the invoice number and a field label meant for
// the end user.
//
// REQUIRED FOR EVERY CLASSIFICATION:
//   due date, currency, amount, from type, company account (15 digits),
//   payment reference, document reference, narration that fits 5x35
//
// REQUIRED PER CLASSIFICATION:
//   domestic      - recipient account number (14 digits)
//   international - recipient bank with a SWIFT/BIC code
//   payment card  - card code on the recipient bank
//
// Every value written into a slot must stay on one line inside its quotes,
// so line breaks and double quotes are rejected.
//
// Extraction reads the invoice and never modifies it.
//
// =============================================================================

package extractor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/flexerp/bankpay/internal/invoice"
	"github.com/flexerp/bankpay/internal/layout"
	"github.com/flexerp/bankpay/internal/narration"
)

// Field labels shown to the user when a value is missing.
const (
	LabelDueDate              = "Due date"
	LabelCurrency             = "Currency"
	LabelAmountNegative       = "Amount (must not be negative)"
	LabelFromType             = "Partner Bank From Type"
	LabelRecipientBank        = "Recipient Bank"
	LabelCompanyAccount       = "Company account number"
	LabelCompanyAccountLength = "Company account number (total length should be 15)"
	LabelCompanyAccountDigits = "Company account number (digits only)"
	LabelRecipientAccount     = "Recipient account number (total length should be 14)"
	LabelRecipientDigits      = "Recipient account number (digits only)"
	LabelFromTypeDigits       = "Partner Bank From Type (digits only)"
	LabelAmountTooLarge       = "Amount (too large)"
	LabelPartnerBank          = "Partner Bank"
	LabelSwift                = "Partner Bank SWIFT/BIC Code"
	LabelPaymentReference     = "Payment reference"
	LabelBillReference        = "Bill reference"
	LabelCardCode             = "Card Code (defined in partner bank)"
	LabelNarrationParagraphs  = "Narration (you can have max 5 paragraphs)"
	LabelNarrationLength      = "Narration (every paragraph should be max length of 35). Problematic paragraph: %d"
	LabelUnframed             = "%s (must not contain line breaks or double quotes)"
)

// unframed are the characters that would break a record out of its line or
// a token out of its quotes.
const unframed = "\r\n\""

// Structural lengths of account numbers.
const (
	CompanyAccountLength   = 15
	RecipientAccountLength = 14
	RegistrationLength     = 4
)

// DueDateFormat is the layout of every date in the bank file.
const DueDateFormat = "20060102"

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

// Values is the extracted content of one body record.
type Values struct {
	// Classification is the transfer classification the values were
	// extracted for.
	Classification layout.Classification

	// Amount is the invoice total in minor currency units.
	Amount int64

	// Fields maps layout value names to raw, unencoded values.
	Fields map[string]string
}

// Extract derives the values of the body record of inv for classification c.
func Extract(inv *invoice.Invoice, c layout.Classification) (*Values, error) {
	code, err := c.Code()
	if err != nil {
		return nil, err
	}

	v := &Values{
		Classification: c,
		Fields: map[string]string{
			layout.ValTransType:       code,
			layout.ValIndex:           layout.RecordIndex,
			layout.ValTransactionType: layout.TransactionType,
		},
	}

	steps := []func(*invoice.Invoice, *Values) error{
		extractDueDate,
		extractAmount,
		extractCurrency,
		extractFromType,
		extractFromAccount,
		extractPaymentTerm,
		extractPaymentReference,
		extractNotification,
		extractDocumentReference,
		extractPartner,
	}

	switch c {
	case layout.Domestic:
		steps = append(steps, extractDomesticAccount)
	case layout.International:
		steps = append(steps, extractInternationalAccount)
	case layout.PaymentCard:
		steps = append(steps, extractCardCode)
	}

	for _, step := range steps {
		if err := step(inv, v); err != nil {
			return nil, err
		}
	}

	if err := checkFraming(inv, c, v); err != nil {
		return nil, err
	}

	return v, nil
}

// checkFraming rejects values that cannot be written inside one quoted
// token. The label is the slot label of the record layout.
func checkFraming(inv *invoice.Invoice, c layout.Classification, v *Values) error {
	l, err := layout.For(c)
	if err != nil {
		return err
	}
	for _, s := range l.Slots {
		if s.Filler() {
			continue
		}
		if strings.ContainsAny(v.Fields[s.Value], unframed) {
			return invoice.Missing(inv, fmt.Sprintf(LabelUnframed, s.Label))
		}
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// COMMON FIELDS
// =============================================================================

func extractDueDate(inv *invoice.Invoice, v *Values) error {
	if inv.DueDate.IsZero() {
		return invoice.Missing(inv, LabelDueDate)
	}
	v.Fields[layout.ValDueDate] = inv.DueDate.Format(DueDateFormat)
	return nil
}

// extractAmount scales the total to minor units, dropping any fraction of a
// minor unit.
func extractAmount(inv *invoice.Invoice, v *Values) error {
	minor := inv.AmountTotal.Mul(hundred).Truncate(0)
	if minor.IsNegative() {
		return invoice.Missing(inv, LabelAmountNegative)
	}
	if minor.GreaterThan(maxAmount) {
		return invoice.Missing(inv, LabelAmountTooLarge)
	}
	v.Amount = minor.IntPart()
	v.Fields[layout.ValAmount] = strconv.FormatInt(v.Amount, 10)
	return nil
}

func extractCurrency(inv *invoice.Invoice, v *Values) error {
	if inv.Currency == "" {
		return invoice.Missing(inv, LabelCurrency)
	}
	v.Fields[layout.ValCurrency] = inv.Currency
	return nil
}

func extractFromType(inv *invoice.Invoice, v *Values) error {
	if inv.PartnerBank == nil {
		return invoice.Missing(inv, LabelRecipientBank)
	}
	if inv.PartnerBank.FromType == "" {
		return invoice.Missing(inv, LabelFromType)
	}
	if !isDigits(inv.PartnerBank.FromType) {
		return invoice.Missing(inv, LabelFromTypeDigits)
	}
	v.Fields[layout.ValFromType] = inv.PartnerBank.FromType
	return nil
}

func extractFromAccount(inv *invoice.Invoice, v *Values) error {
	if inv.Company == nil || len(inv.Company.BankAccounts) == 0 || inv.Company.BankAccounts[0] == "" {
		return invoice.Missing(inv, LabelCompanyAccount)
	}
	account := inv.Company.BankAccounts[0]
	if utf8.RuneCountInString(account) != CompanyAccountLength {
		return invoice.Missing(inv, LabelCompanyAccountLength)
	}
	if !isDigits(account) {
		return invoice.Missing(inv, LabelCompanyAccountDigits)
	}
	v.Fields[layout.ValFromAccount] = account
	return nil
}

// extractPaymentTerm applies the standard transfer defaults when the payment
// term or its tags are unset.
func extractPaymentTerm(inv *invoice.Invoice, v *Values) error {
	option := invoice.DefaultTransactionOption
	transfer := invoice.DefaultTransferType
	if term := inv.PaymentTerm; term != nil {
		if term.TransactionOption != "" {
			option = term.TransactionOption
		}
		if term.TransferType != "" {
			transfer = term.TransferType
		}
	}
	v.Fields[layout.ValTransactionOption] = option
	v.Fields[layout.ValTransferType] = transfer
	return nil
}

func extractPaymentReference(inv *invoice.Invoice, v *Values) error {
	if inv.PaymentReference == "" {
		return invoice.Missing(inv, LabelPaymentReference)
	}
	v.Fields[layout.ValPaymentReference] = inv.PaymentReference
	return nil
}

func extractNotification(inv *invoice.Invoice, v *Values) error {
	lines, err := narration.Lines(inv.Narration, inv.Name)
	if err != nil {
		var limit *narration.LimitError
		if !errors.As(err, &limit) {
			return err
		}
		if limit.Paragraph == 0 {
			return invoice.Missing(inv, LabelNarrationParagraphs)
		}
		return invoice.Missing(inv, fmt.Sprintf(LabelNarrationLength, limit.Paragraph))
	}

	for i, line := range lines {
		v.Fields[layout.Notification(i+1)] = line
	}
	return nil
}

// extractDocumentReference prefers the source document over the vendor
// reference.
func extractDocumentReference(inv *invoice.Invoice, v *Values) error {
	switch {
	case inv.Origin != "":
		v.Fields[layout.ValDocumentReference] = inv.Origin
	case inv.Ref != "":
		v.Fields[layout.ValDocumentReference] = inv.Ref
	default:
		return invoice.Missing(inv, LabelBillReference)
	}
	return nil
}

// extractPartner copies the counterparty name and address. Unset values are
// empty.
func extractPartner(inv *invoice.Invoice, v *Values) error {
	p := inv.Partner
	if p == nil {
		p = &invoice.Partner{}
	}
	v.Fields[layout.ValPartnerName] = p.Name
	v.Fields[layout.ValStreet] = p.Street
	v.Fields[layout.ValStreet2] = p.Street2
	v.Fields[layout.ValZip] = p.Zip
	v.Fields[layout.ValCity] = p.City
	v.Fields[layout.ValCountry] = p.Country
	v.Fields[layout.ValInvoiceName] = inv.Name
	return nil
}

// =============================================================================
// CLASSIFICATION SPECIFIC FIELDS
// =============================================================================

// extractDomesticAccount splits the 14 digit account into the 4 digit
// registration number and the 10 digit account number.
func extractDomesticAccount(inv *invoice.Invoice, v *Values) error {
	if inv.PartnerBank == nil {
		return invoice.Missing(inv, LabelRecipientBank)
	}
	account := []rune(inv.PartnerBank.AccNumber)
	if len(account) != RecipientAccountLength {
		return invoice.Missing(inv, LabelRecipientAccount)
	}
	if !isDigits(string(account)) {
		return invoice.Missing(inv, LabelRecipientDigits)
	}
	v.Fields[layout.ValCustReg] = string(account[:RegistrationLength])
	v.Fields[layout.ValCustAcc] = string(account[RegistrationLength:])
	return nil
}

func extractInternationalAccount(inv *invoice.Invoice, v *Values) error {
	bank := inv.PartnerBank
	if bank == nil {
		return invoice.Missing(inv, LabelRecipientBank)
	}
	if bank.Bank == nil {
		return invoice.Missing(inv, LabelPartnerBank)
	}
	if bank.Bank.BIC == "" {
		return invoice.Missing(inv, LabelSwift)
	}
	v.Fields[layout.ValRecipientAccount] = bank.AccNumber
	v.Fields[layout.ValSwift] = bank.Bank.BIC
	return nil
}

func extractCardCode(inv *invoice.Invoice, v *Values) error {
	if inv.PartnerBank == nil {
		return invoice.Missing(inv, LabelRecipientBank)
	}
	if inv.PartnerBank.CardCode == "" {
		return invoice.Missing(inv, LabelCardCode)
	}
	v.Fields[layout.ValCardCode] = inv.PartnerBank.CardCode
	return nil
}
