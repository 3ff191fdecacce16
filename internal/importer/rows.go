package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// headerMap maps column names to their position in the header row.
type headerMap map[string]int

// readRecords reads a header-first CSV, returning the header map and data
// rows. Ragged rows are tolerated; dialect exports pad trailing columns
// inconsistently.
func readRecords(r io.Reader) (headerMap, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return headerMap{}, nil, nil
	}

	headers := make(headerMap, len(records[0]))
	for i, name := range records[0] {
		headers[strings.TrimSpace(name)] = i
	}
	return headers, records[1:], nil
}

// field returns the trimmed value of the named column, or "" when the
// column is absent or the row is short.
func (h headerMap) field(rec []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// has reports whether the named column appeared in the header row.
func (h headerMap) has(name string) bool {
	_, ok := h[name]
	return ok
}

// missingHeaders returns error strings for each required column absent from
// the header row.
func (h headerMap) missingHeaders(required []string) []string {
	var errs []string
	for _, name := range required {
		if !h.has(name) {
			errs = append(errs, fmt.Sprintf("missing required column: %q", name))
		}
	}
	return errs
}

// parseAmount parses a currency string, stripping $ and thousands
// separators. The bool is false when the value is unparsable or
// non-positive; such rows are dropped with a warning, not a fatal error.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// normalizeDate converts M/D/YYYY to YYYY-MM-DD. Anything that does not
// split into three slash-separated parts passes through unmodified rather
// than dropping the row over a cosmetic field.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return raw
	}
	month, day, year := pad2(parts[0]), pad2(parts[1]), parts[2]
	return fmt.Sprintf("%s-%s-%s", year, month, day)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
