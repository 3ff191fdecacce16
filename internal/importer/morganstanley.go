package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/grantbook-dev/grantbook/internal/model"
)

// MorganStanleyParser parses Morgan Stanley GIFT disbursement exports.
// Each row carries its own Tax ID, so the lookup index is unused.
type MorganStanleyParser struct{}

const (
	msColRecipient = "Grant Recipient"
	msColTaxID     = "Tax ID"
	msColAmount    = "Amount"
	msColDatePaid  = "Date Paid"
	msColType      = "Type"
	msColPurpose   = "Purpose"
	msColAddress   = "Address 1"
	msColCity      = "City"
	msColState     = "State"
	msColPostal    = "Postal Code"
)

var msRequiredHeaders = []string{msColRecipient, msColTaxID, msColAmount, msColDatePaid}

// Format returns the parser name.
func (p *MorganStanleyParser) Format() string { return "morganstanley" }

// Parse reads a Morgan Stanley CSV. A missing Grant Recipient column is a
// hard stop; other problems degrade to per-row warnings.
func (p *MorganStanleyParser) Parse(r io.Reader, _ *EinIndex) (*ParseResult, error) {
	headers, records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("morganstanley: %w", err)
	}

	result := &ParseResult{}
	result.Errors = headers.missingHeaders(msRequiredHeaders)
	if !headers.has(msColRecipient) {
		return result, nil
	}

	for _, rec := range records {
		// Statement exports mix fee and contribution rows in; only rows
		// typed as grants are disbursements.
		if typ := headers.field(rec, msColType); typ != "" && !strings.EqualFold(typ, "grant") {
			continue
		}

		orgName := headers.field(rec, msColRecipient)
		if orgName == "" {
			continue
		}

		amount, ok := parseAmount(headers.field(rec, msColAmount))
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("skipped %q: invalid amount", orgName))
			continue
		}

		result.Rows = append(result.Rows, model.CsvRow{
			OrgName:    orgName,
			EIN:        headers.field(rec, msColTaxID),
			Amount:     amount,
			DatePaid:   normalizeDate(headers.field(rec, msColDatePaid)),
			Purpose:    headers.field(rec, msColPurpose),
			Address:    headers.field(rec, msColAddress),
			City:       headers.field(rec, msColCity),
			State:      headers.field(rec, msColState),
			PostalCode: headers.field(rec, msColPostal),
		})
	}

	return result, nil
}
