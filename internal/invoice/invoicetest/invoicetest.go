// Package invoicetest provides invoice fixtures for tests.
package invoicetest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flexerp/bankpay/internal/invoice"
)

// Domestic returns a posted invoice with every field a domestic transfer
// needs. Each call returns a fresh value.
func Domestic() *invoice.Invoice {
	return &invoice.Invoice{
		Name:             "BILL/2024/01/0001",
		State:            invoice.StatePosted,
		DueDate:          time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),
		AmountTotal:      decimal.RequireFromString("1250.50"),
		Currency:         "DKK",
		PaymentReference: "INV 4711",
		Origin:           "P00042",
		Ref:              "VENDOR-REF-9",
		JournalName:      "Vendor Bills",
		Partner: &invoice.Partner{
			Name:    "Nordic Supplies ApS",
			Street:  "Vestergade 12",
			Street2: "2. sal",
			Zip:     "8000",
			City:    "Aarhus C",
			Country: "Denmark",
		},
		PartnerBank: &invoice.PartnerBank{
			AccNumber: "12345678901234",
			FromType:  "2",
			Bank:      &invoice.Bank{Name: "Danske Bank", BIC: "DABADKKK"},
		},
		Company: &invoice.Company{
			Name:         "FlexERP ApS",
			BankAccounts: []string{"987654321012345"},
		},
	}
}

// International returns a posted invoice classified as an international
// transfer.
func International() *invoice.Invoice {
	inv := Domestic()
	inv.Name = "BILL/2024/01/0002"
	inv.Currency = "EUR"
	inv.FiscalPosition = &invoice.FiscalPosition{Name: "EU", BankTransferType: "international"}
	inv.PaymentTerm = &invoice.PaymentTerm{Name: "Express", TransferType: "57"}
	inv.PartnerBank = &invoice.PartnerBank{
		AccNumber: "DE89370400440532013000",
		FromType:  "1",
		Bank:      &invoice.Bank{Name: "Commerzbank", BIC: "COBADEFFXXX"},
	}
	return inv
}

// PaymentCard returns a posted invoice classified as a payment card transfer.
func PaymentCard() *invoice.Invoice {
	inv := Domestic()
	inv.Name = "BILL/2024/01/0003"
	inv.FiscalPosition = &invoice.FiscalPosition{Name: "FIK", BankTransferType: "payment_card"}
	inv.PaymentReference = "+71<000000012345678"
	inv.PartnerBank = &invoice.PartnerBank{
		AccNumber: "12345678",
		FromType:  "2",
		CardCode:  "71",
	}
	return inv
}
