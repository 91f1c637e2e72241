package report

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fsreport/pkg/models"
)

// amounts holds the rounded monetary fields of one document.
type amounts struct {
	subtotal int64
	tax      int64
	total    int64
}

// roundAmounts rounds subtotal and total up to whole units independently.
// Tax is derived from the rounded values so that subtotal + tax == total.
func roundAmounts(kind, id string, subtotal, total models.Amount) (amounts, error) {
	sub, err := decimal.NewFromString(strings.TrimSpace(string(subtotal)))
	if err != nil {
		return amounts{}, NewMalformedRecordError(kind, id, "subtotal", string(subtotal), err)
	}
	tot, err := decimal.NewFromString(strings.TrimSpace(string(total)))
	if err != nil {
		return amounts{}, NewMalformedRecordError(kind, id, "total", string(total), err)
	}

	sub, tot = sub.Ceil(), tot.Ceil()
	if !fitsInt64(sub) {
		return amounts{}, NewMalformedRecordError(kind, id, "subtotal", string(subtotal), errOutOfRange)
	}
	if !fitsInt64(tot) || !fitsInt64(tot.Sub(sub)) {
		return amounts{}, NewMalformedRecordError(kind, id, "total", string(total), errOutOfRange)
	}

	s := sub.IntPart()
	t := tot.IntPart()
	return amounts{subtotal: s, tax: t - s, total: t}, nil
}

var (
	errOutOfRange = errors.New("amount out of range")
	minInt64      = decimal.NewFromInt(math.MinInt64)
	maxInt64      = decimal.NewFromInt(math.MaxInt64)
)

func fitsInt64(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(minInt64) && d.LessThanOrEqual(maxInt64)
}

// documentDates parses the three dates every document carries.
func documentDates(kind, id, issuedOn, dueOn, taxableFulfillmentDue string) (issued, due, fulfilled time.Time, err error) {
	if issued, err = parseDate(kind, id, "issued_on", issuedOn); err != nil {
		return
	}
	if due, err = parseDate(kind, id, "due_on", dueOn); err != nil {
		return
	}
	fulfilled, err = parseDate(kind, id, "taxable_fulfillment_due", taxableFulfillmentDue)
	return
}

// TransformInvoice normalizes an API invoice record.
func TransformInvoice(r models.InvoiceRecord) (models.Invoice, error) {
	id := strconv.FormatInt(r.ID, 10)

	issued, due, fulfilled, err := documentDates("invoice", id, r.IssuedOn, r.DueOn, r.TaxableFulfillmentDue)
	if err != nil {
		return models.Invoice{}, err
	}
	a, err := roundAmounts("invoice", id, r.Subtotal, r.Total)
	if err != nil {
		return models.Invoice{}, err
	}

	return models.Invoice{
		ID:                       id,
		Number:                   r.Number,
		OrderNumber:              r.OrderNumber,
		IssuedOn:                 issued,
		DueOn:                    due,
		TaxableFulfillmentDue:    fulfilled,
		ClientRegistrationNumber: r.ClientRegistrationNo,
		ClientVatNumber:          strings.TrimSpace(r.ClientVatNo),
		Subtotal:                 a.subtotal,
		Tax:                      a.tax,
		Total:                    a.total,
		Note:                     r.Note,
		HTMLURL:                  r.HTMLURL,
		VariableSymbol:           r.VariableSymbol,
		VatPriceMode:             r.VatPriceMode,
	}, nil
}

// TransformExpense normalizes an API expense record.
func TransformExpense(r models.ExpenseRecord) (models.Expense, error) {
	id := strconv.FormatInt(r.ID, 10)

	issued, due, fulfilled, err := documentDates("expense", id, r.IssuedOn, r.DueOn, r.TaxableFulfillmentDue)
	if err != nil {
		return models.Expense{}, err
	}
	a, err := roundAmounts("expense", id, r.Subtotal, r.Total)
	if err != nil {
		return models.Expense{}, err
	}

	return models.Expense{
		ID:                         id,
		Number:                     r.Number,
		OriginalNumber:             r.OriginalNumber,
		DocumentType:               r.DocumentType,
		IssuedOn:                   issued,
		DueOn:                      due,
		TaxableFulfillmentDue:      fulfilled,
		SupplierRegistrationNumber: r.SupplierRegistrationNo,
		SupplierVatNumber:          strings.TrimSpace(r.SupplierVatNo),
		Subtotal:                   a.subtotal,
		Tax:                        a.tax,
		Total:                      a.total,
		HTMLURL:                    r.HTMLURL,
		VariableSymbol:             r.VariableSymbol,
		VatPriceMode:               r.VatPriceMode,
	}, nil
}

// cachedID returns the record id, or registration number and variable symbol
// joined by a dash when the cache entry has none.
func cachedID(r models.CachedExpenseRecord) string {
	if r.ID != "" {
		return string(r.ID)
	}
	return r.SupplierRegistrationNumber + "-" + r.VariableSymbol
}

// TransformCachedExpense normalizes a cached expense record. Fields the cache
// does not carry are left empty.
func TransformCachedExpense(r models.CachedExpenseRecord) (models.Expense, error) {
	id := cachedID(r)

	issued, due, fulfilled, err := documentDates("expense", id, r.IssuedOn, r.DueOn, r.TaxableFulfillmentDue)
	if err != nil {
		return models.Expense{}, err
	}
	a, err := roundAmounts("expense", id, r.Subtotal, r.Total)
	if err != nil {
		return models.Expense{}, err
	}

	return models.Expense{
		ID:                         id,
		Number:                     "",
		OriginalNumber:             r.OriginalNumber,
		DocumentType:               "",
		IssuedOn:                   issued,
		DueOn:                      due,
		TaxableFulfillmentDue:      fulfilled,
		SupplierRegistrationNumber: r.SupplierRegistrationNumber,
		SupplierVatNumber:          strings.TrimSpace(r.SupplierVatNumber),
		Subtotal:                   a.subtotal,
		Tax:                        a.tax,
		Total:                      a.total,
		HTMLURL:                    "",
		VariableSymbol:             r.VariableSymbol,
		VatPriceMode:               "",
	}, nil
}

// TransformInvoices normalizes all records, stopping at the first malformed one.
func TransformInvoices(records []models.InvoiceRecord) (models.Invoices, error) {
	out := make(models.Invoices, 0, len(records))
	for _, r := range records {
		inv, err := TransformInvoice(r)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// TransformExpenses normalizes API records followed by cached records.
func TransformExpenses(records []models.ExpenseRecord, cached []models.CachedExpenseRecord) (models.Expenses, error) {
	out := make(models.Expenses, 0, len(records)+len(cached))
	for _, r := range records {
		exp, err := TransformExpense(r)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	for _, r := range cached {
		exp, err := TransformCachedExpense(r)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, nil
}
