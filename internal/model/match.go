package model

// MatchConfidence is the qualitative certainty of an organization match.
// It drives default inclusion in the commit batch: low-confidence rows are
// excluded until the reviewer opts them in.
type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
	ConfidenceLow    MatchConfidence = "low"
)

// OrgMatchKind discriminates the organization match variants.
type OrgMatchKind string

const (
	// OrgMatchExactEIN means the row's tax ID matched a stored organization.
	OrgMatchExactEIN OrgMatchKind = "exact_ein"
	// OrgMatchFuzzyName means the best name similarity met the threshold.
	OrgMatchFuzzyName OrgMatchKind = "fuzzy_name"
	// OrgMatchNew means no existing organization matched.
	OrgMatchNew OrgMatchKind = "new"
)

// OrgMatch is the resolution of one CSV row against the organization
// snapshot. Org is nil iff Kind is OrgMatchNew; Confidence is
// ConfidenceHigh iff Kind is OrgMatchExactEIN.
type OrgMatch struct {
	Kind       OrgMatchKind
	Confidence MatchConfidence
	Org        *Organization
	// NameChanged is set when the stored name differs from the CSV name
	// (case- and whitespace-insensitively), signaling a rename the commit
	// step may apply.
	NameChanged bool
}

// GrantMatchKind discriminates the grant match variants.
type GrantMatchKind string

const (
	// GrantMatchTransition means an existing approved grant should move to paid.
	GrantMatchTransition GrantMatchKind = "transition"
	// GrantMatchNew means a new paid grant record is required.
	GrantMatchNew GrantMatchKind = "new"
)

// GrantMatch is the resolution of one CSV row against the pending-grant
// snapshot. Grant is nil iff Kind is GrantMatchNew.
type GrantMatch struct {
	Kind  GrantMatchKind
	Grant *Grant
}

// ImportRow pairs a canonical CSV row with its match decisions. Included
// defaults to true unless the organization match is low confidence; the
// reviewer may toggle it before commit.
type ImportRow struct {
	Csv      CsvRow
	Org      OrgMatch
	Grant    GrantMatch
	Included bool
}
