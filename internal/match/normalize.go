// Package match resolves parsed disbursement rows to existing organization
// and grant records. Matching is pure: it reads snapshots, never the store.
package match

import (
	"regexp"
	"strings"
)

// legalSuffixRe strips common legal-entity words during name normalization,
// as whole words only. The optional dot is handled by the punctuation pass.
var legalSuffixRe = regexp.MustCompile(`\b(inc\.?|incorporated|llc|corp\.?|corporation|foundation|fund|trust|org\.?|organization|co\.?|company|ltd\.?|limited|assoc\.?|association|the)\b`)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Normalize standardizes an organization name for similarity scoring:
// lowercase, legal suffixes removed, punctuation dropped, whitespace
// collapsed. "The Acme Foundation, Inc." and "ACME" normalize identically.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name = legalSuffixRe.ReplaceAllString(name, "")
	name = nonAlnumRe.ReplaceAllString(name, "")
	name = spaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Similarity returns the Jaccard index of the two names' normalized token
// sets, in [0,1]. Word-order and suffix noise don't affect it; single-token
// names score all-or-nothing, an accepted trade-off. Defined as 0 when both
// token sets are empty.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if setB[word] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(Normalize(name)) {
		set[word] = true
	}
	return set
}

// NormalizeEIN strips hyphens so "04-2694280" and "042694280" index
// identically. Empty stays empty.
func NormalizeEIN(ein string) string {
	return strings.ReplaceAll(strings.TrimSpace(ein), "-", "")
}
