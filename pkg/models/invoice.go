package models

import "time"

// Invoice is an issued document normalized for VAT reporting.
// Amounts are whole CZK; Total always equals Subtotal + Tax.
type Invoice struct {
	// Core identifiers
	ID          string // Source primary key
	Number      string // Human-readable invoice number
	OrderNumber string // Client's order reference

	// Dates
	IssuedOn              time.Time
	DueOn                 time.Time
	TaxableFulfillmentDue time.Time // Decides the filing period

	// Counterparty
	ClientRegistrationNumber string
	ClientVatNumber          string

	// Amounts
	Subtotal int64
	Tax      int64
	Total    int64

	// Metadata
	Note           string
	HTMLURL        string
	VariableSymbol string
	VatPriceMode   string
}

// Expense is a received document normalized for VAT reporting.
type Expense struct {
	ID             string
	Number         string
	OriginalNumber string // Supplier's own document number
	DocumentType   string

	IssuedOn              time.Time
	DueOn                 time.Time
	TaxableFulfillmentDue time.Time

	SupplierRegistrationNumber string
	SupplierVatNumber          string

	Subtotal int64
	Tax      int64
	Total    int64

	HTMLURL        string
	VariableSymbol string
	VatPriceMode   string
}

// Invoices is a list of invoices with aggregate helpers usable from templates.
type Invoices []Invoice

// Subtotal sums the invoice tax bases.
func (l Invoices) Subtotal() int64 {
	var sum int64
	for _, i := range l {
		sum += i.Subtotal
	}
	return sum
}

// Tax sums the invoice taxes.
func (l Invoices) Tax() int64 {
	var sum int64
	for _, i := range l {
		sum += i.Tax
	}
	return sum
}

// Total sums the invoice totals.
func (l Invoices) Total() int64 {
	var sum int64
	for _, i := range l {
		sum += i.Total
	}
	return sum
}

// Over returns the invoices whose total exceeds limit.
func (l Invoices) Over(limit int64) Invoices {
	out := Invoices{}
	for _, i := range l {
		if i.Total > limit {
			out = append(out, i)
		}
	}
	return out
}

// UpTo returns the invoices whose total does not exceed limit.
func (l Invoices) UpTo(limit int64) Invoices {
	out := Invoices{}
	for _, i := range l {
		if i.Total <= limit {
			out = append(out, i)
		}
	}
	return out
}

// Expenses is a list of expenses with aggregate helpers usable from templates.
type Expenses []Expense

// Subtotal sums the expense tax bases.
func (l Expenses) Subtotal() int64 {
	var sum int64
	for _, e := range l {
		sum += e.Subtotal
	}
	return sum
}

// Tax sums the expense taxes.
func (l Expenses) Tax() int64 {
	var sum int64
	for _, e := range l {
		sum += e.Tax
	}
	return sum
}

// Total sums the expense totals.
func (l Expenses) Total() int64 {
	var sum int64
	for _, e := range l {
		sum += e.Total
	}
	return sum
}

// Over returns the expenses whose total exceeds limit.
func (l Expenses) Over(limit int64) Expenses {
	out := Expenses{}
	for _, e := range l {
		if e.Total > limit {
			out = append(out, e)
		}
	}
	return out
}

// UpTo returns the expenses whose total does not exceed limit.
func (l Expenses) UpTo(limit int64) Expenses {
	out := Expenses{}
	for _, e := range l {
		if e.Total <= limit {
			out = append(out, e)
		}
	}
	return out
}

// Totals is the monetary summary of one period.
type Totals struct {
	Total    int64 `json:"total"`
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`

	SupplierTotal    int64 `json:"supplier_total"`
	SupplierSubtotal int64 `json:"supplier_subtotal"`
	SupplierTax      int64 `json:"supplier_tax"`

	TotalDiff int64 `json:"total_diff"` // Total - SupplierTotal
	TaxDiff   int64 `json:"tax_diff"`   // Tax - SupplierTax, positive means tax to pay
}
