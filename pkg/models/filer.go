package models

import "strings"

// Address is the filer's registered address.
type Address struct {
	City                    string `json:"city" mapstructure:"city" validate:"required"`
	StreetName              string `json:"street_name" mapstructure:"street_name" validate:"required"`
	StreetNumber            int    `json:"street_number" mapstructure:"street_number" validate:"required"`
	StreetOrientationNumber string `json:"street_orientation_number" mapstructure:"street_orientation_number"`
	ZipCode                 int    `json:"zip_code" mapstructure:"zip_code" validate:"required"`
	Country                 string `json:"country" mapstructure:"country" validate:"required"`
}

// User is the natural person signing the filing.
type User struct {
	FirstName   string  `json:"first_name" mapstructure:"first_name" validate:"required"`
	LastName    string  `json:"last_name" mapstructure:"last_name" validate:"required"`
	Title       string  `json:"title" mapstructure:"title"`
	PhoneNumber string  `json:"phone_number" mapstructure:"phone_number"`
	Email       string  `json:"email" mapstructure:"email" validate:"omitempty,email"`
	Address     Address `json:"address" mapstructure:"address"`
}

// Account describes the filer at the tax administration.
type Account struct {
	VatNumber    int64  `json:"vat_number" mapstructure:"vat_number" validate:"required"` // DIČ without the CZ prefix
	UfoCode      int    `json:"ufo_code" mapstructure:"ufo_code" validate:"required"`     // Regional tax office
	PracUfo      int    `json:"prac_ufo" mapstructure:"prac_ufo" validate:"required"`     // Local tax office branch
	IDDataBox    string `json:"id_data_box" mapstructure:"id_data_box"`
	FsTaxAccount string `json:"fs_tax_account" mapstructure:"fs_tax_account"` // Tax office bank account for VAT payments
}

// VatAllowList maps known VAT numbers to counterparty display names.
type VatAllowList map[string]string

// Contains reports whether the VAT number is allowed. Surrounding whitespace
// is ignored on both sides.
func (l VatAllowList) Contains(vatNumber string) bool {
	_, ok := l[strings.TrimSpace(vatNumber)]
	return ok
}
