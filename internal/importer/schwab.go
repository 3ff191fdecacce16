package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/grantbook-dev/grantbook/internal/model"
)

// SchwabParser parses Schwab Charitable grant history exports. The export
// has no tax ID column, so EINs are resolved through the lookup index by
// normalized charity name.
type SchwabParser struct{}

const (
	schwabColDate    = "Requested Date"
	schwabColStatus  = "Status"
	schwabColCharity = "Charity Name"
	schwabColAmount  = "Amount"
)

var schwabRequiredHeaders = []string{schwabColDate, schwabColStatus, schwabColCharity, schwabColAmount}

// Format returns the parser name.
func (p *SchwabParser) Format() string { return "schwab" }

// Parse reads a Schwab CSV. Canceled grants are dropped silently; charities
// with no lookup hit still emit a row with an empty EIN and are collected
// once into UnmatchedNames for the reviewer.
func (p *SchwabParser) Parse(r io.Reader, lookup *EinIndex) (*ParseResult, error) {
	headers, records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("schwab: %w", err)
	}

	result := &ParseResult{}
	result.Errors = headers.missingHeaders(schwabRequiredHeaders)
	if !headers.has(schwabColCharity) {
		return result, nil
	}

	seenUnmatched := make(map[string]bool)

	for _, rec := range records {
		if status := headers.field(rec, schwabColStatus); strings.EqualFold(status, "canceled") {
			continue
		}

		charityName := headers.field(rec, schwabColCharity)
		if charityName == "" {
			continue
		}

		amount, ok := parseAmount(headers.field(rec, schwabColAmount))
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("skipped %q: invalid amount", charityName))
			continue
		}

		var ein string
		if entry := lookup.Lookup(charityName); entry != nil {
			ein = entry.EIN
		}
		if ein == "" && !seenUnmatched[charityName] {
			seenUnmatched[charityName] = true
			result.UnmatchedNames = append(result.UnmatchedNames, charityName)
		}

		result.Rows = append(result.Rows, model.CsvRow{
			OrgName:  charityName,
			EIN:      ein,
			Amount:   amount,
			DatePaid: normalizeDate(headers.field(rec, schwabColDate)),
		})
	}

	return result, nil
}
