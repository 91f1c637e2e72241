package models

import (
	"bytes"
	"encoding/json"
)

// Amount keeps a monetary value exactly as the source sent it.
// The API sends decimals as strings, cache files usually as numbers;
// both are accepted and parsing is left to the transformer.
type Amount string

// UnmarshalJSON accepts a JSON string, number or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*a = Amount(s)
	return nil
}

// DocumentID is a record key. The API sends numeric ids while hand-edited
// cache files often quote them; both are accepted.
type DocumentID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *DocumentID) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*id = DocumentID(s)
	return nil
}

// scalarText returns the text of a JSON string or number, empty for null.
func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// InvoiceRecord is an issued invoice as listed by the accounting API.
type InvoiceRecord struct {
	ID                    int64  `json:"id"`
	Number                string `json:"number"`
	OrderNumber           string `json:"order_number"`
	Note                  string `json:"note"`
	IssuedOn              string `json:"issued_on"`
	DueOn                 string `json:"due_on"`
	TaxableFulfillmentDue string `json:"taxable_fulfillment_due"`
	ClientRegistrationNo  string `json:"client_registration_no"`
	ClientVatNo           string `json:"client_vat_no"`
	Subtotal              Amount `json:"subtotal"`
	Total                 Amount `json:"total"`
	HTMLURL               string `json:"html_url"`
	VariableSymbol        string `json:"variable_symbol"`
	VatPriceMode          string `json:"vat_price_mode"`
}

// ExpenseRecord is a received document as listed by the accounting API.
type ExpenseRecord struct {
	ID                     int64  `json:"id"`
	Number                 string `json:"number"`
	OriginalNumber         string `json:"original_number"`
	DocumentType           string `json:"document_type"`
	IssuedOn               string `json:"issued_on"`
	DueOn                  string `json:"due_on"`
	TaxableFulfillmentDue  string `json:"taxable_fulfillment_due"`
	SupplierRegistrationNo string `json:"supplier_registration_no"`
	SupplierVatNo          string `json:"supplier_vat_no"`
	Subtotal               Amount `json:"subtotal"`
	Total                  Amount `json:"total"`
	HTMLURL                string `json:"html_url"`
	VariableSymbol         string `json:"variable_symbol"`
	VatPriceMode           string `json:"vat_price_mode"`
}

// CachedExpenseRecord is an expense kept in a local cache file. It already
// uses normalized field names and may lack a primary key.
type CachedExpenseRecord struct {
	ID                         DocumentID `json:"id,omitempty"`
	OriginalNumber             string     `json:"original_number"`
	IssuedOn                   string     `json:"issued_on"`
	DueOn                      string     `json:"due_on"`
	TaxableFulfillmentDue      string     `json:"taxable_fulfillment_due"`
	SupplierRegistrationNumber string     `json:"supplier_registration_number"`
	SupplierVatNumber          string     `json:"supplier_vat_number"`
	Subtotal                   Amount     `json:"subtotal"`
	Total                      Amount     `json:"total"`
	VariableSymbol             string     `json:"variable_symbol"`
}
