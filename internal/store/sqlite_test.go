package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantbook-dev/grantbook/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "grantbook.db"), "found-1", "user-1")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_Roundtrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	orgID, err := s.InsertOrganization(ctx, model.Organization{
		Name:    "Partners In Health",
		EIN:     "04-2694280",
		Address: "800 Boylston St, Boston, MA",
	})
	require.NoError(t, err)
	require.NotEmpty(t, orgID)

	orgs, err := s.Organizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, orgID, orgs[0].ID)
	assert.Equal(t, "Partners In Health", orgs[0].Name)
	assert.Equal(t, "04-2694280", orgs[0].EIN)

	grantID, err := s.InsertGrant(ctx, model.Grant{
		OrganizationID: orgID,
		Amount:         decimal.NewFromInt(1500),
		Status:         model.StatusApproved,
		Purpose:        "General support",
		RecurrenceType: model.RecurrenceOneTime,
		StartDate:      "2024-03-01",
	})
	require.NoError(t, err)

	pending, err := s.PendingGrants(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, grantID, pending[0].ID)
	assert.Equal(t, orgID, pending[0].OrganizationID)
	assert.Equal(t, "1500.00", pending[0].Amount.StringFixed(2))

	require.NoError(t, s.MarkGrantPaid(ctx, grantID))

	// Paid grants leave the pending set.
	pending, err = s.PendingGrants(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLiteStore_EmptyOptionalFieldsStoredAsNull(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	orgID, err := s.InsertOrganization(ctx, model.Organization{Name: "Rivertown Mutual Aid"})
	require.NoError(t, err)

	orgs, err := s.Organizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, orgID, orgs[0].ID)
	assert.Empty(t, orgs[0].EIN)
	assert.Empty(t, orgs[0].Address)
}

func TestSQLiteStore_UpdateOrganizationName(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	orgID, err := s.InsertOrganization(ctx, model.Organization{Name: "Old Name"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrganizationName(ctx, orgID, "New Name"))

	orgs, err := s.Organizations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Name", orgs[0].Name)

	err = s.UpdateOrganizationName(ctx, "no-such-id", "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_MarkGrantPaidNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	err := s.MarkGrantPaid(context.Background(), "no-such-grant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_LogActivity(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	err := s.LogActivity(ctx, model.ActivityEntry{
		Action:     model.ActionGrantStatusChanged,
		EntityType: "grant",
		EntityID:   "grant-1",
		Details:    map[string]any{"from": "approved", "to": "paid"},
	})
	require.NoError(t, err)

	var action, details string
	row := s.db.QueryRowContext(ctx, `SELECT action, details FROM activity_log WHERE entity_id = ?`, "grant-1")
	require.NoError(t, row.Scan(&action, &details))
	assert.Equal(t, string(model.ActionGrantStatusChanged), action)
	assert.Contains(t, details, `"to":"paid"`)
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
