package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantbook-dev/grantbook/internal/model"
)

func orgMatchFor(id string) model.OrgMatch {
	return model.OrgMatch{
		Kind:       model.OrgMatchExactEIN,
		Confidence: model.ConfidenceHigh,
		Org:        &model.Organization{ID: id, Name: "Test Org"},
	}
}

func pendingGrant(id, orgID string, amount int64) model.Grant {
	return model.Grant{
		ID:             id,
		OrganizationID: orgID,
		Amount:         decimal.NewFromInt(amount),
		Status:         model.StatusApproved,
	}
}

func TestMatchGrants_NoCandidates(t *testing.T) {
	rows := []model.CsvRow{{OrgName: "Test Org", Amount: decimal.NewFromInt(100)}}
	matches := MatchGrants(rows, []model.OrgMatch{orgMatchFor("org-1")}, nil)

	require.Len(t, matches, 1)
	assert.Equal(t, model.GrantMatchNew, matches[0].Kind)
	assert.Nil(t, matches[0].Grant)
}

func TestMatchGrants_SingleCandidateRegardlessOfAmount(t *testing.T) {
	rows := []model.CsvRow{{OrgName: "Test Org", Amount: decimal.NewFromInt(999)}}
	pending := []model.Grant{pendingGrant("grant-1", "org-1", 100)}

	matches := MatchGrants(rows, []model.OrgMatch{orgMatchFor("org-1")}, pending)
	require.Len(t, matches, 1)
	assert.Equal(t, model.GrantMatchTransition, matches[0].Kind)
	require.NotNil(t, matches[0].Grant)
	assert.Equal(t, "grant-1", matches[0].Grant.ID)
}

func TestMatchGrants_ClosestAmountWins(t *testing.T) {
	rows := []model.CsvRow{{OrgName: "Test Org", Amount: decimal.NewFromInt(480)}}
	pending := []model.Grant{
		pendingGrant("grant-100", "org-1", 100),
		pendingGrant("grant-500", "org-1", 500),
	}

	matches := MatchGrants(rows, []model.OrgMatch{orgMatchFor("org-1")}, pending)
	require.NotNil(t, matches[0].Grant)
	assert.Equal(t, "grant-500", matches[0].Grant.ID)
}

func TestMatchGrants_TieGoesToFirst(t *testing.T) {
	rows := []model.CsvRow{{OrgName: "Test Org", Amount: decimal.NewFromInt(300)}}
	pending := []model.Grant{
		pendingGrant("grant-a", "org-1", 200),
		pendingGrant("grant-b", "org-1", 400),
	}

	matches := MatchGrants(rows, []model.OrgMatch{orgMatchFor("org-1")}, pending)
	require.NotNil(t, matches[0].Grant)
	assert.Equal(t, "grant-a", matches[0].Grant.ID)
}

func TestMatchGrants_OtherOrgGrantsIgnored(t *testing.T) {
	rows := []model.CsvRow{{OrgName: "Test Org", Amount: decimal.NewFromInt(100)}}
	pending := []model.Grant{pendingGrant("grant-other", "org-2", 100)}

	matches := MatchGrants(rows, []model.OrgMatch{orgMatchFor("org-1")}, pending)
	assert.Equal(t, model.GrantMatchNew, matches[0].Kind)
}

func TestMatchGrants_UnmatchedOrgAlwaysNew(t *testing.T) {
	rows := []model.CsvRow{{OrgName: "Brand New Org", Amount: decimal.NewFromInt(100)}}
	orgMatches := []model.OrgMatch{{Kind: model.OrgMatchNew, Confidence: model.ConfidenceLow}}
	pending := []model.Grant{pendingGrant("grant-1", "org-1", 100)}

	matches := MatchGrants(rows, orgMatches, pending)
	assert.Equal(t, model.GrantMatchNew, matches[0].Kind)
	assert.Nil(t, matches[0].Grant)
}
