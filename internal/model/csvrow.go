package model

import "github.com/shopspring/decimal"

// CsvRow is a disbursement row in canonical form, produced once per valid
// input row by a dialect parser. Optional fields are empty strings.
type CsvRow struct {
	OrgName    string
	EIN        string
	Amount     decimal.Decimal
	DatePaid   string // ISO date when the source date parsed cleanly
	Purpose    string
	Address    string
	City       string
	State      string
	PostalCode string
}

// EinLookupEntry is one row of the auxiliary charity-name → EIN reference
// CSV, used by dialects whose exports omit tax IDs.
type EinLookupEntry struct {
	Name string
	EIN  string
	Type string
}
