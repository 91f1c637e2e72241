package models

import "time"

// ReportContext is the fixed data handed to the document templates.
type ReportContext struct {
	Invoices    Invoices
	Expenses    Expenses
	Totals      Totals
	Period      Period
	SigningDate string // DD.MM.YYYY
	User        User
	Account     Account
}

// PaymentInstruction describes a domestic bank transfer settling the tax difference.
type PaymentInstruction struct {
	Account        string    // Domestic account (prefix-number/bank) or IBAN
	Amount         int64     // Whole CZK
	VariableSymbol string    // Payer identification, the filer's VAT number
	Message        string    // Message for the recipient
	DueDate        time.Time // Requested settlement date
}
