package match

import (
	"github.com/grantbook-dev/grantbook/internal/model"
)

// MatchGrants resolves each row, given its organization match, against the
// pending-grant snapshot. rows and orgMatches are parallel slices.
//
// A single approved grant for the matched organization transitions
// regardless of amount: it is assumed to be the grant this payment
// settles. Multiple candidates disambiguate by closest committed amount,
// first candidate winning ties. Rows with no matched organization always
// resolve to new.
func MatchGrants(rows []model.CsvRow, orgMatches []model.OrgMatch, pending []model.Grant) []model.GrantMatch {
	matches := make([]model.GrantMatch, 0, len(rows))

	for i, row := range rows {
		org := orgMatches[i].Org
		if org == nil {
			matches = append(matches, model.GrantMatch{Kind: model.GrantMatchNew})
			continue
		}

		var candidates []*model.Grant
		for j := range pending {
			if pending[j].OrganizationID == org.ID && pending[j].Status == model.StatusApproved {
				candidates = append(candidates, &pending[j])
			}
		}

		switch {
		case len(candidates) == 0:
			matches = append(matches, model.GrantMatch{Kind: model.GrantMatchNew})
		case len(candidates) == 1:
			matches = append(matches, model.GrantMatch{Kind: model.GrantMatchTransition, Grant: candidates[0]})
		default:
			matches = append(matches, model.GrantMatch{Kind: model.GrantMatchTransition, Grant: closestAmount(candidates, row)})
		}
	}
	return matches
}

func closestAmount(candidates []*model.Grant, row model.CsvRow) *model.Grant {
	best := candidates[0]
	bestDiff := best.Amount.Sub(row.Amount).Abs()
	for _, g := range candidates[1:] {
		diff := g.Amount.Sub(row.Amount).Abs()
		if diff.LessThan(bestDiff) {
			best = g
			bestDiff = diff
		}
	}
	return best
}
