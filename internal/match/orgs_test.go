package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantbook-dev/grantbook/internal/model"
)

func csvRow(name, ein string) model.CsvRow {
	return model.CsvRow{OrgName: name, EIN: ein, Amount: decimal.NewFromInt(100)}
}

func TestMatchOrganizations_ExactEIN(t *testing.T) {
	orgs := []model.Organization{
		{ID: "org-1", Name: "Partners In Health", EIN: "04-2694280"},
	}

	// Any hyphenation, any name.
	for _, ein := range []string{"04-2694280", "042694280"} {
		matches := MatchOrganizations([]model.CsvRow{csvRow("Totally Different Name", ein)}, orgs, DefaultThreshold)
		require.Len(t, matches, 1)
		m := matches[0]
		assert.Equal(t, model.OrgMatchExactEIN, m.Kind)
		assert.Equal(t, model.ConfidenceHigh, m.Confidence)
		require.NotNil(t, m.Org)
		assert.Equal(t, "org-1", m.Org.ID)
		assert.True(t, m.NameChanged)
	}
}

func TestMatchOrganizations_NameChangedCaseInsensitive(t *testing.T) {
	orgs := []model.Organization{
		{ID: "org-1", Name: "Partners In Health", EIN: "04-2694280"},
	}

	matches := MatchOrganizations([]model.CsvRow{csvRow("  PARTNERS IN HEALTH  ", "042694280")}, orgs, DefaultThreshold)
	assert.False(t, matches[0].NameChanged)
}

func TestMatchOrganizations_IntraBatchEINDuplicate(t *testing.T) {
	rows := []model.CsvRow{
		csvRow("Rivertown Mutual Aid", "95-0000001"),
		csvRow("Rivertown Mutual Aid Collective", "95-0000001"),
	}

	matches := MatchOrganizations(rows, nil, DefaultThreshold)
	require.Len(t, matches, 2)

	assert.Equal(t, model.OrgMatchNew, matches[0].Kind)
	assert.Equal(t, model.ConfidenceLow, matches[0].Confidence)

	// The duplicate stays in the default selection so the committer can
	// route it to the organization created for the first row.
	assert.Equal(t, model.OrgMatchNew, matches[1].Kind)
	assert.Equal(t, model.ConfidenceMedium, matches[1].Confidence)
	assert.Nil(t, matches[1].Org)
}

func TestMatchOrganizations_FuzzyName(t *testing.T) {
	orgs := []model.Organization{
		{ID: "org-1", Name: "Rivertown Mutual Aid Collective"},
		{ID: "org-2", Name: "Feeding America"},
	}

	matches := MatchOrganizations([]model.CsvRow{csvRow("Rivertown Mutual Aid Collective Inc", "")}, orgs, DefaultThreshold)
	m := matches[0]
	assert.Equal(t, model.OrgMatchFuzzyName, m.Kind)
	assert.Equal(t, model.ConfidenceMedium, m.Confidence)
	require.NotNil(t, m.Org)
	assert.Equal(t, "org-1", m.Org.ID)
	assert.True(t, m.NameChanged)
}

func TestMatchOrganizations_ThresholdBoundary(t *testing.T) {
	// 7 shared tokens of 10 distinct: similarity exactly 0.70.
	stored := "alpha beta gamma delta epsilon zeta eta"
	atBoundary := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	// 7 shared of 11 distinct: just below.
	below := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"

	orgs := []model.Organization{{ID: "org-1", Name: stored}}

	matches := MatchOrganizations([]model.CsvRow{csvRow(atBoundary, "")}, orgs, DefaultThreshold)
	assert.Equal(t, model.OrgMatchFuzzyName, matches[0].Kind)

	matches = MatchOrganizations([]model.CsvRow{csvRow(below, "")}, orgs, DefaultThreshold)
	assert.Equal(t, model.OrgMatchNew, matches[0].Kind)
	assert.Equal(t, model.ConfidenceLow, matches[0].Confidence)
}

func TestMatchOrganizations_NoMatch(t *testing.T) {
	orgs := []model.Organization{{ID: "org-1", Name: "Feeding America"}}

	matches := MatchOrganizations([]model.CsvRow{csvRow("Rivertown Mutual Aid", "")}, orgs, DefaultThreshold)
	m := matches[0]
	assert.Equal(t, model.OrgMatchNew, m.Kind)
	assert.Equal(t, model.ConfidenceLow, m.Confidence)
	assert.Nil(t, m.Org)
	assert.False(t, m.NameChanged)
}

func TestMatchOrganizations_Deterministic(t *testing.T) {
	orgs := []model.Organization{
		{ID: "org-1", Name: "Partners In Health", EIN: "04-2694280"},
		{ID: "org-2", Name: "Feeding America", EIN: "36-3673599"},
	}
	rows := []model.CsvRow{
		csvRow("Partners In Health", "04-2694280"),
		csvRow("Feeding America Inc", ""),
		csvRow("Rivertown Mutual Aid", "95-0000001"),
		csvRow("Rivertown Mutual Aid", "95-0000001"),
	}

	first := MatchOrganizations(rows, orgs, DefaultThreshold)
	second := MatchOrganizations(rows, orgs, DefaultThreshold)
	assert.Equal(t, first, second)
}
