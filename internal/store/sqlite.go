package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/grantbook-dev/grantbook/internal/model"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using modernc.org/sqlite, for local
// single-user use.
type SQLiteStore struct {
	db           *sql.DB
	foundationID string
	userID       string
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn, foundationID, userID string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, foundationID: foundationID, userID: userID}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id            TEXT PRIMARY KEY,
	foundation_id TEXT NOT NULL,
	name          TEXT NOT NULL,
	ein           TEXT,
	address       TEXT,
	created_by    TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS grants (
	id              TEXT PRIMARY KEY,
	foundation_id   TEXT NOT NULL,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	status          TEXT NOT NULL,
	amount          TEXT NOT NULL,
	purpose         TEXT,
	recurrence_type TEXT NOT NULL DEFAULT 'one_time',
	proposed_by     TEXT,
	start_date      TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS activity_log (
	id            TEXT PRIMARY KEY,
	foundation_id TEXT NOT NULL,
	user_id       TEXT,
	action        TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	details       TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_organizations_foundation ON organizations(foundation_id);
CREATE INDEX IF NOT EXISTS idx_grants_foundation_status ON grants(foundation_id, status);
CREATE INDEX IF NOT EXISTS idx_activity_log_foundation ON activity_log(foundation_id);
`

// Migrate creates the schema if absent.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "store: migrate sqlite")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Organizations fetches the organization snapshot for the foundation.
func (s *SQLiteStore) Organizations(ctx context.Context) ([]model.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(ein, ''), COALESCE(address, '') FROM organizations WHERE foundation_id = ? ORDER BY name`,
		s.foundationID)
	if err != nil {
		return nil, eris.Wrap(err, "store: list organizations")
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var org model.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.EIN, &org.Address); err != nil {
			return nil, eris.Wrap(err, "store: scan organization")
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: list organizations")
	}
	return orgs, nil
}

// PendingGrants fetches grants with status approved for the foundation.
func (s *SQLiteStore) PendingGrants(ctx context.Context) ([]model.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organization_id, amount, status FROM grants WHERE foundation_id = ? AND status = ? ORDER BY created_at`,
		s.foundationID, string(model.StatusApproved))
	if err != nil {
		return nil, eris.Wrap(err, "store: list pending grants")
	}
	defer rows.Close()

	var grants []model.Grant
	for rows.Next() {
		var g model.Grant
		var amount string
		if err := rows.Scan(&g.ID, &g.OrganizationID, &amount, &g.Status); err != nil {
			return nil, eris.Wrap(err, "store: scan grant")
		}
		g.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, eris.Wrapf(err, "store: grant %s amount %q", g.ID, amount)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: list pending grants")
	}
	return grants, nil
}

// InsertOrganization creates an organization and returns its id.
func (s *SQLiteStore) InsertOrganization(ctx context.Context, org model.Organization) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, foundation_id, name, ein, address, created_by) VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)`,
		id, s.foundationID, org.Name, org.EIN, org.Address, s.userID)
	if err != nil {
		return "", eris.Wrapf(err, "store: insert organization %q", org.Name)
	}
	return id, nil
}

// UpdateOrganizationName renames an organization.
func (s *SQLiteStore) UpdateOrganizationName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET name = ?, updated_at = datetime('now') WHERE id = ? AND foundation_id = ?`,
		name, id, s.foundationID)
	if err != nil {
		return eris.Wrapf(err, "store: rename organization %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("store: organization %s not found", id)
	}
	return nil
}

// InsertGrant creates a grant and returns its id.
func (s *SQLiteStore) InsertGrant(ctx context.Context, grant model.Grant) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grants (id, foundation_id, organization_id, status, amount, purpose, recurrence_type, proposed_by, start_date) VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, NULLIF(?, ''))`,
		id, s.foundationID, grant.OrganizationID, string(grant.Status), grant.Amount.StringFixed(2),
		grant.Purpose, grant.RecurrenceType, s.userID, grant.StartDate)
	if err != nil {
		return "", eris.Wrapf(err, "store: insert grant for org %s", grant.OrganizationID)
	}
	return id, nil
}

// MarkGrantPaid transitions a grant to paid and touches its update
// timestamp.
func (s *SQLiteStore) MarkGrantPaid(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE grants SET status = ?, updated_at = datetime('now') WHERE id = ? AND foundation_id = ?`,
		string(model.StatusPaid), id, s.foundationID)
	if err != nil {
		return eris.Wrapf(err, "store: mark grant %s paid", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("store: grant %s not found", id)
	}
	return nil
}

// LogActivity appends an audit entry.
func (s *SQLiteStore) LogActivity(ctx context.Context, entry model.ActivityEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return eris.Wrap(err, "store: marshal activity details")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activity_log (id, foundation_id, user_id, action, entity_type, entity_id, details) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), s.foundationID, s.userID, entry.Action, entry.EntityType, entry.EntityID, string(details))
	if err != nil {
		return eris.Wrapf(err, "store: log %s", entry.Action)
	}
	return nil
}
