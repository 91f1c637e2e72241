package report

import (
	"github.com/hashicorp/go-multierror"

	"fsreport/pkg/models"
)

// Validate checks every counterparty against its allow-list and returns a
// ValidationError for the first unknown VAT number.
func Validate(invoices models.Invoices, expenses models.Expenses, clients, suppliers models.VatAllowList) error {
	for _, inv := range invoices {
		if !clients.Contains(inv.ClientVatNumber) {
			return NewValidationError("invoice", inv.ID, inv.ClientVatNumber)
		}
	}
	for _, exp := range expenses {
		if !suppliers.Contains(exp.SupplierVatNumber) {
			return NewValidationError("expense", exp.ID, exp.SupplierVatNumber)
		}
	}
	return nil
}

// CollectViolations checks every document and returns all violations at once,
// or nil when every counterparty is known.
func CollectViolations(invoices models.Invoices, expenses models.Expenses, clients, suppliers models.VatAllowList) error {
	var result *multierror.Error
	for _, inv := range invoices {
		if !clients.Contains(inv.ClientVatNumber) {
			result = multierror.Append(result, NewValidationError("invoice", inv.ID, inv.ClientVatNumber))
		}
	}
	for _, exp := range expenses {
		if !suppliers.Contains(exp.SupplierVatNumber) {
			result = multierror.Append(result, NewValidationError("expense", exp.ID, exp.SupplierVatNumber))
		}
	}
	return result.ErrorOrNil()
}
