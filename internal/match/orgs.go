package match

import (
	"strings"

	"github.com/grantbook-dev/grantbook/internal/model"
)

// DefaultThreshold is the minimum similarity for accepting a fuzzy name
// match.
const DefaultThreshold = 0.70

// MatchOrganizations resolves each row, in file order, against the
// organization snapshot. Pure function: the same rows and snapshot always
// produce the same matches. Row order matters only for the intra-batch EIN
// rule, which marks later duplicates of an unseen EIN as new/medium so the
// commit step reuses the organization created for the first such row.
func MatchOrganizations(rows []model.CsvRow, orgs []model.Organization, threshold float64) []model.OrgMatch {
	einIndex := make(map[string]*model.Organization, len(orgs))
	for i := range orgs {
		if ein := NormalizeEIN(orgs[i].EIN); ein != "" {
			einIndex[ein] = &orgs[i]
		}
	}

	batchSeenEIN := make(map[string]bool)

	matches := make([]model.OrgMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, matchOne(row, orgs, einIndex, batchSeenEIN, threshold))
	}
	return matches
}

func matchOne(row model.CsvRow, orgs []model.Organization, einIndex map[string]*model.Organization, batchSeenEIN map[string]bool, threshold float64) model.OrgMatch {
	if ein := NormalizeEIN(row.EIN); ein != "" {
		if org := einIndex[ein]; org != nil {
			return model.OrgMatch{
				Kind:        model.OrgMatchExactEIN,
				Confidence:  model.ConfidenceHigh,
				Org:         org,
				NameChanged: nameDiffers(org.Name, row.OrgName),
			}
		}

		// An earlier row in this batch already introduced this EIN. Medium,
		// not low, so the row stays in the default selection; the committer
		// reuses the organization created for that first row.
		if batchSeenEIN[ein] {
			return model.OrgMatch{
				Kind:       model.OrgMatchNew,
				Confidence: model.ConfidenceMedium,
			}
		}
		batchSeenEIN[ein] = true
	}

	var best *model.Organization
	bestScore := 0.0
	for i := range orgs {
		if score := Similarity(row.OrgName, orgs[i].Name); score > bestScore {
			bestScore = score
			best = &orgs[i]
		}
	}

	if best != nil && bestScore >= threshold {
		return model.OrgMatch{
			Kind:        model.OrgMatchFuzzyName,
			Confidence:  model.ConfidenceMedium,
			Org:         best,
			NameChanged: nameDiffers(best.Name, row.OrgName),
		}
	}

	return model.OrgMatch{
		Kind:       model.OrgMatchNew,
		Confidence: model.ConfidenceLow,
	}
}

// nameDiffers compares names case- and surrounding-whitespace-insensitively.
func nameDiffers(stored, csv string) bool {
	return !strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(csv))
}
