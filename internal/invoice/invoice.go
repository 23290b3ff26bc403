// =============================================================================
// Bank Payment Generator - Invoice Context
// =============================================================================
//
// This package contains the read-only view of one vendor bill and the records
// related to it (counterparty partner and bank, fiscal position, payment term
// and the paying company). Types defined here are used by:
//   - source     (builds them from workbooks, CSV, YAML or Postgres)
//   - extractor  (derives raw field values from them)
//   - batch      (iterates them in caller order)
//   - validation (pre-flight checks)
//
// The engine borrows an Invoice for the duration of one record and never
// mutates it.
//
// =============================================================================

package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatePosted is the only state accepted by the bank payment export.
const StatePosted = "posted"

// =============================================================================
// INVOICE
// =============================================================================

// Invoice is one posted (or draft) vendor bill.
type Invoice struct {
	// Name is the invoice's own number, e.g. "BILL/2024/01/0001".
	// It identifies the invoice in every error message.
	Name string `yaml:"name"`

	// State is the workflow state ("draft", "posted", "cancel").
	State string `yaml:"state"`

	// DueDate is the date the bank should execute the transfer.
	DueDate time.Time `yaml:"-"`

	// AmountTotal is the invoice total in major currency units.
	AmountTotal decimal.Decimal `yaml:"-"`

	// Currency is the ISO 4217 code of the invoice currency.
	Currency string `yaml:"currency"`

	// PaymentReference is the communication the bank shows to the recipient.
	PaymentReference string `yaml:"payment_reference"`

	// Origin is the source document of the bill (purchase order, etc.).
	Origin string `yaml:"invoice_origin"`

	// Ref is the vendor's bill reference.
	Ref string `yaml:"ref"`

	// Narration is the free-text terms and conditions field. It may hold HTML.
	Narration string `yaml:"narration"`

	// JournalName is the name of the journal the bill was posted in.
	JournalName string `yaml:"journal_name"`

	// Related records. A nil pointer means the relation is not set.
	FiscalPosition *FiscalPosition `yaml:"fiscal_position,omitempty"`
	PaymentTerm    *PaymentTerm    `yaml:"payment_term,omitempty"`
	Partner        *Partner        `yaml:"partner,omitempty"`
	PartnerBank    *PartnerBank    `yaml:"partner_bank,omitempty"`
	Company        *Company        `yaml:"company,omitempty"`
}

// Posted reports whether the invoice may be exported.
func (inv *Invoice) Posted() bool {
	return inv.State == StatePosted
}

// =============================================================================
// RELATED RECORDS
// =============================================================================

// FiscalPosition carries the bank transfer classification tag.
type FiscalPosition struct {
	Name string `yaml:"name"`

	// BankTransferType is one of "domestic", "international", "payment_card"
	// or empty.
	BankTransferType string `yaml:"bank_trans_type"`
}

// PaymentTerm carries the transfer speed and transfer type tags.
type PaymentTerm struct {
	Name              string `yaml:"name"`
	TransactionOption string `yaml:"transaction_option"`
	TransferType      string `yaml:"transfer_type"`
}

// Partner is the counterparty (the vendor being paid).
type Partner struct {
	Name    string `yaml:"name"`
	Street  string `yaml:"street"`
	Street2 string `yaml:"street2"`
	Zip     string `yaml:"zip"`
	City    string `yaml:"city"`
	Country string `yaml:"country"`
}

// PartnerBank is the counterparty's bank account.
type PartnerBank struct {
	// AccNumber is the account number: 14 digits for domestic transfers,
	// an IBAN for international transfers.
	AccNumber string `yaml:"acc_number"`

	// FromType tells the bank which kind of account the money leaves from.
	FromType string `yaml:"from_type"`

	// CardCode is required for payment card transfers.
	CardCode string `yaml:"card_code"`

	Bank *Bank `yaml:"bank,omitempty"`
}

// Bank is the institution holding a PartnerBank account.
type Bank struct {
	Name string `yaml:"name"`
	BIC  string `yaml:"bic"`
}

// Company is the paying company.
type Company struct {
	Name string `yaml:"name"`

	// BankAccounts lists the company's own account numbers. The first one
	// is the account the transfer is debited from.
	BankAccounts []string `yaml:"bank_accounts"`
}
