package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/grantbook-dev/grantbook/internal/model"
)

const (
	lookupColName = "Charity Name"
	lookupColEIN  = "EIN"
	lookupColType = "Type"
)

// ParseEinLookup reads the auxiliary charity-name → EIN reference CSV.
// Rows without a name are skipped; a missing EIN is kept as an empty entry
// so the name still resolves (and surfaces as unmatched downstream).
func ParseEinLookup(r io.Reader) ([]model.EinLookupEntry, error) {
	headers, records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("ein lookup: %w", err)
	}

	var entries []model.EinLookupEntry
	for _, rec := range records {
		name := headers.field(rec, lookupColName)
		if name == "" {
			continue
		}
		entries = append(entries, model.EinLookupEntry{
			Name: name,
			EIN:  headers.field(rec, lookupColEIN),
			Type: headers.field(rec, lookupColType),
		})
	}
	return entries, nil
}

// EinIndex resolves charity names to lookup entries. Built once per import
// session; never shared across sessions.
type EinIndex struct {
	byName map[string]model.EinLookupEntry
	keys   []string // insertion order, for deterministic prefix scans
}

// NewEinIndex builds an index keyed by normalized charity name. Later
// duplicates of the same normalized name win, matching a last-entry-wins
// spreadsheet mental model.
func NewEinIndex(entries []model.EinLookupEntry) *EinIndex {
	idx := &EinIndex{byName: make(map[string]model.EinLookupEntry, len(entries))}
	for _, e := range entries {
		key := normalizeForLookup(e.Name)
		if key == "" {
			continue
		}
		if _, ok := idx.byName[key]; !ok {
			idx.keys = append(idx.keys, key)
		}
		idx.byName[key] = e
	}
	return idx
}

// Lookup resolves a charity name: exact normalized match first, then a
// prefix match in either direction to tolerate trailing qualifiers like
// "Inc." or "A Nonprofit Corporation" on one side. Returns nil on a miss
// or when the index itself is nil.
func (idx *EinIndex) Lookup(charityName string) *model.EinLookupEntry {
	if idx == nil {
		return nil
	}

	normalized := normalizeForLookup(charityName)
	if normalized == "" {
		return nil
	}

	if entry, ok := idx.byName[normalized]; ok {
		return &entry
	}

	for _, key := range idx.keys {
		if strings.HasPrefix(normalized, key) || strings.HasPrefix(key, normalized) {
			entry := idx.byName[key]
			return &entry
		}
	}
	return nil
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
var spaceRe = regexp.MustCompile(`\s+`)

// normalizeForLookup lowercases and strips punctuation but keeps legal
// suffix words; the lookup table stores full legal names, so stripping
// suffixes here would collapse distinct charities.
func normalizeForLookup(name string) string {
	name = strings.ToLower(name)
	name = nonAlnumRe.ReplaceAllString(name, "")
	name = spaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
