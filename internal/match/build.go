package match

import (
	"github.com/grantbook-dev/grantbook/internal/model"
)

// ReviewSummary aggregates match outcomes for display before commit.
type ReviewSummary struct {
	Transitions   int // included rows that will mark a pending grant paid
	NewGrants     int // included rows that will create a paid grant
	NewOrgs       int // included rows that will create an organization
	LowConfidence int // rows excluded by default, over all rows
	Included      int
	Total         int
}

// BuildImportRows runs both matchers over the parsed rows and assembles the
// reviewable batch. Rows default to included unless their organization
// match is low confidence.
func BuildImportRows(rows []model.CsvRow, orgs []model.Organization, pending []model.Grant, threshold float64) []model.ImportRow {
	orgMatches := MatchOrganizations(rows, orgs, threshold)
	grantMatches := MatchGrants(rows, orgMatches, pending)

	out := make([]model.ImportRow, 0, len(rows))
	for i, csv := range rows {
		out = append(out, model.ImportRow{
			Csv:      csv,
			Org:      orgMatches[i],
			Grant:    grantMatches[i],
			Included: orgMatches[i].Confidence != model.ConfidenceLow,
		})
	}
	return out
}

// Summarize counts match outcomes across the batch.
func Summarize(rows []model.ImportRow) ReviewSummary {
	var s ReviewSummary
	s.Total = len(rows)
	for _, r := range rows {
		if r.Org.Confidence == model.ConfidenceLow {
			s.LowConfidence++
		}
		if !r.Included {
			continue
		}
		s.Included++
		if r.Grant.Kind == model.GrantMatchTransition {
			s.Transitions++
		} else {
			s.NewGrants++
		}
		if r.Org.Kind == model.OrgMatchNew {
			s.NewOrgs++
		}
	}
	return s
}
