// =============================================================================
// Bank Payment Generator - Record Layouts
// =============================================================================
//
// A layout is the ordered list of slots of one record type. Each slot names
// the rule that encodes it and the extracted value it carries; filler slots
// carry no value and encode as blanks of a fixed width.
//
// RECORD TYPES:
//   Header        - one per file, before any invoice
//   Domestic      - body record, 35 slots
//   International - body record, 24 slots
//   Payment card  - body record, 27 slots
//   Footer        - one per file, after all invoices
//
// The slot order and the filler widths are the bank's import contract and
// must not change.
//
// =============================================================================

package layout

import (
	"fmt"

	"github.com/flexerp/bankpay/internal/fieldcodec"
)

// Constant values of the control and body records.
const (
	HeaderMarker    = "IB000000000000"
	FooterMarker    = "IB999999999999"
	RecordIndex     = "0001"
	TransactionType = "2"
)

// Names of the extracted values a slot can carry.
const (
	ValTransType          = "trans_type"
	ValIndex              = "index"
	ValDueDate            = "due_date"
	ValAmount             = "amount"
	ValCurrency           = "currency"
	ValFromType           = "from_type"
	ValFromAccount        = "from_account"
	ValTransactionType    = "transaction_type"
	ValCustReg            = "cust_reg"
	ValCustAcc            = "cust_acc"
	ValTransactionOption  = "transaction_option"
	ValTransferType       = "transfer_type"
	ValPaymentReference   = "payment_reference"
	ValDocumentReference  = "document_reference"
	ValPartnerName        = "partner_name"
	ValStreet             = "street"
	ValStreet2            = "street2"
	ValZip                = "zip"
	ValCity               = "city"
	ValCountry            = "country"
	ValInvoiceName        = "invoice_name"
	ValRecipientAccount   = "recipient_account"
	ValSwift              = "swift"
	ValCardCode           = "card_code"
	ValCreationDate       = "creation_date"
	ValTotalLines         = "total_lines"
	ValTotalAmount        = "total_amount"
	ValNotificationPrefix = "notification_text"
)

// Notification returns the value name of notification line i (1-based).
func Notification(i int) string {
	return fmt.Sprintf("%s%d", ValNotificationPrefix, i)
}

// Slot is one position of a record.
type Slot struct {
	// Label names the position in the bank's documentation.
	Label string

	// Field is the rule table entry that encodes the slot.
	Field string

	// Value is the extracted value carried by the slot. Empty for fillers.
	Value string

	// Signed appends the credit sign to numeric tokens.
	Signed bool
}

// Filler reports whether the slot is a permanent blank.
func (s Slot) Filler() bool {
	return s.Value == ""
}

// Layout is the ordered slot list of one record type.
type Layout struct {
	Name  string
	Slots []Slot
}

func slot(label, field, value string) Slot {
	return Slot{Label: label, Field: field, Value: value}
}

func signed(label, field, value string) Slot {
	return Slot{Label: label, Field: field, Value: value, Signed: true}
}

func blank(label, field string) Slot {
	return Slot{Label: label, Field: field}
}

// blanks returns count filler slots labelled blankN, numbered from first.
func blanks(first, count int, field string) []Slot {
	out := make([]Slot, count)
	for i := range out {
		out[i] = blank(fmt.Sprintf("blank%d", first+i), field)
	}
	return out
}

func concat(groups ...[]Slot) []Slot {
	var out []Slot
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// =============================================================================
// CONTROL RECORDS
// =============================================================================

var header = Layout{
	Name: "header",
	Slots: concat(
		[]Slot{
			slot("trans_type", "trans_type", ValTransType),
			slot("creation_date", "eksp_date", ValCreationDate),
			blank("blank1", "blank90"),
		},
		blanks(2, 3, "blank255"),
	),
}

var footer = Layout{
	Name: "footer",
	Slots: concat(
		[]Slot{
			slot("trans_type", "trans_type", ValTransType),
			slot("creation_date", "eksp_date", ValCreationDate),
			slot("total_lines", "total_lines", ValTotalLines),
			signed("total_amount", "total_amount", ValTotalAmount),
			blank("blank1", "blank64"),
		},
		blanks(2, 3, "blank255"),
	),
}

// Header returns the layout of the first record of a file.
func Header() Layout { return header }

// Footer returns the layout of the last record of a file.
func Footer() Layout { return footer }

// =============================================================================
// BODY RECORDS
// =============================================================================

var domestic = Layout{
	Name: "domestic",
	Slots: concat(
		[]Slot{
			slot("trans_type", "trans_type", ValTransType),
			slot("index", "index", ValIndex),
			slot("eksp_date", "eksp_date", ValDueDate),
			signed("amount", "amount", ValAmount),
			slot("currency", "currency", ValCurrency),
			slot("from_type", "from_type", ValFromType),
			slot("from_account", "from_account", ValFromAccount),
			slot("transaction_type", "transaction_type", ValTransactionType),
			slot("cust_reg", "cust_reg", ValCustReg),
			slot("cust_acc", "cust_acc", ValCustAcc),
			slot("transaction_option", "transaction_option", ValTransactionOption),
			slot("journal_text", "journal_text", ValPaymentReference),
			slot("name", "name", ValPartnerName),
			slot("street", "street", ValStreet),
			slot("street2", "street2", ValStreet2),
			slot("zip_code", "zip_code", ValZip),
			slot("city", "city", ValCity),
			slot("own_journal_number", "journal_name", ValInvoiceName),
			slot("notification_text1", "notification_text", Notification(1)),
			slot("notification_text2", "notification_text", Notification(2)),
			slot("notification_text3", "notification_text", Notification(3)),
			slot("notification_text4", "notification_text", Notification(4)),
			slot("notification_text5", "notification_text", Notification(5)),
			blank("blank1", "blank35"),
			slot("document_reference", "document_reference", ValDocumentReference),
		},
		blanks(2, 3, "blank35"),
		[]Slot{blank("blank5", "blank3")},
		blanks(6, 4, "blank35"),
		[]Slot{
			blank("blank10", "blank6"),
			blank("blank11", "blank14"),
		},
	),
}

var international = Layout{
	Name: "international",
	Slots: []Slot{
		slot("trans_type", "trans_type", ValTransType),
		slot("index", "index", ValIndex),
		slot("eksp_date", "eksp_date", ValDueDate),
		signed("amount", "amount", ValAmount),
		slot("from_type", "from_type", ValFromType),
		slot("from_account", "from_account", ValFromAccount),
		slot("currency", "currency", ValCurrency),
		slot("transfer_currency", "currency", ValCurrency),
		slot("transfer_type", "transfer_type", ValTransferType),
		slot("payment_text1", "document_reference", ValDocumentReference),
		blank("payment_text2", "blank35"),
		blank("payment_text3", "blank35"),
		blank("payment_text4", "blank35"),
		slot("recipient", "recipient", ValPartnerName),
		slot("recipient_street", "recipient_street", ValStreet),
		slot("recipient_street2", "recipient_street2", ValStreet2),
		slot("recipient_country", "recipient_country", ValCountry),
		slot("recipient_acc_number", "recipient_acc_number", ValRecipientAccount),
		slot("swift_number", "swift_number", ValSwift),
		blank("blank1", "blank45"),
		blank("blank2", "blank75"),
		blank("blank3", "blank75"),
		blank("blank4", "blank24"),
		blank("blank5", "blank215"),
	},
}

var paymentCard = Layout{
	Name: "payment_card",
	Slots: concat(
		[]Slot{
			slot("trans_type", "trans_type", ValTransType),
			slot("index", "index", ValIndex),
			slot("eksp_date", "eksp_date", ValDueDate),
			signed("amount", "amount", ValAmount),
			slot("from_type", "from_type", ValFromType),
			slot("from_account", "from_account", ValFromAccount),
			slot("card_code", "card_code", ValCardCode),
			slot("payment_id", "payment_id", ValPaymentReference),
			blank("blank1", "blank4"),
			blank("blank2", "blank10"),
			blank("blank3", "blank8"),
			slot("recipient_name", "name", ValPartnerName),
			blank("blank4", "blank32"),
			slot("journal_nr", "document_reference", ValDocumentReference),
		},
		blanks(5, 11, "blank35"),
		[]Slot{
			blank("blank16", "blank16"),
			blank("blank17", "blank215"),
		},
	),
}

// For returns the body layout of classification c.
func For(c Classification) (Layout, error) {
	switch c {
	case Domestic:
		return domestic, nil
	case International:
		return international, nil
	case PaymentCard:
		return paymentCard, nil
	default:
		return Layout{}, &UnsupportedClassificationError{Value: c.Tag()}
	}
}

// All returns every layout, control records first.
func All() []Layout {
	return []Layout{header, domestic, international, paymentCard, footer}
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode encodes values into one record line. Every non-filler slot must
// find its value in values; an empty string is a valid value.
func (l Layout) Encode(rules *fieldcodec.RuleTable, values map[string]string) (string, error) {
	tokens := make([]string, 0, len(l.Slots))

	for _, s := range l.Slots {
		raw := ""
		if !s.Filler() {
			v, ok := values[s.Value]
			if !ok {
				return "", fmt.Errorf("layout %s: slot %s: value %q was not extracted", l.Name, s.Label, s.Value)
			}
			raw = v
		}

		token, err := rules.Encode(s.Field, raw, s.Signed)
		if err != nil {
			return "", fmt.Errorf("layout %s: slot %s: %w", l.Name, s.Label, err)
		}
		tokens = append(tokens, token)
	}

	return fieldcodec.BuildLine(tokens), nil
}

// Width returns the number of characters of an encoded record, quotes,
// signs and delimiters included.
func (l Layout) Width(rules *fieldcodec.RuleTable) (int, error) {
	width := 0
	for i, s := range l.Slots {
		rule, ok := rules.Lookup(s.Field)
		if !ok {
			return 0, &fieldcodec.UnknownFieldError{Name: s.Field}
		}
		width += rule.Width + 2
		if s.Signed {
			width++
		}
		if i > 0 {
			width += len(fieldcodec.Delimiter)
		}
	}
	return width, nil
}

// Check verifies that every slot of every layout is declared in rules and
// that signed slots are numeric.
func Check(rules *fieldcodec.RuleTable) error {
	for _, l := range All() {
		for _, s := range l.Slots {
			rule, ok := rules.Lookup(s.Field)
			if !ok {
				return fmt.Errorf("layout %s: slot %s: %w", l.Name, s.Label, &fieldcodec.UnknownFieldError{Name: s.Field})
			}
			if s.Signed && rule.Kind != fieldcodec.KindNumeric {
				return fmt.Errorf("layout %s: slot %s: signed slot uses %s field %s", l.Name, s.Label, rule.Kind, s.Field)
			}
		}
	}
	return nil
}
