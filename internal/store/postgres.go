package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/grantbook-dev/grantbook/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool         Pool
	foundationID string
	userID       string
}

// NewPostgres creates a PostgresStore with a connection pool scoped to one
// foundation and acting user.
func NewPostgres(ctx context.Context, connString, foundationID, userID string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse postgres config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping postgres")
	}
	return &PostgresStore{pool: pool, foundationID: foundationID, userID: userID}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id            TEXT PRIMARY KEY,
	foundation_id TEXT NOT NULL,
	name          TEXT NOT NULL,
	ein           TEXT,
	address       TEXT,
	created_by    TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS grants (
	id              TEXT PRIMARY KEY,
	foundation_id   TEXT NOT NULL,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	status          TEXT NOT NULL,
	amount          NUMERIC(14,2) NOT NULL,
	purpose         TEXT,
	recurrence_type TEXT NOT NULL DEFAULT 'one_time',
	proposed_by     TEXT,
	start_date      TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS activity_log (
	id            TEXT PRIMARY KEY,
	foundation_id TEXT NOT NULL,
	user_id       TEXT,
	action        TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	details       JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_organizations_foundation ON organizations(foundation_id);
CREATE INDEX IF NOT EXISTS idx_grants_foundation_status ON grants(foundation_id, status);
CREATE INDEX IF NOT EXISTS idx_activity_log_foundation ON activity_log(foundation_id);
`

// Migrate creates the schema if absent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "store: migrate postgres")
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Organizations fetches the organization snapshot for the foundation.
func (s *PostgresStore) Organizations(ctx context.Context) ([]model.Organization, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(ein, ''), COALESCE(address, '') FROM organizations WHERE foundation_id = $1 ORDER BY name`,
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
func (s *PostgresStore) PendingGrants(ctx context.Context) ([]model.Grant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, organization_id, amount::text, status FROM grants WHERE foundation_id = $1 AND status = $2 ORDER BY created_at`,
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
func (s *PostgresStore) InsertOrganization(ctx context.Context, org model.Organization) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO organizations (id, foundation_id, name, ein, address, created_by) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)`,
		id, s.foundationID, org.Name, org.EIN, org.Address, s.userID)
	if err != nil {
		return "", eris.Wrapf(err, "store: insert organization %q", org.Name)
	}
	return id, nil
}

// UpdateOrganizationName renames an organization.
func (s *PostgresStore) UpdateOrganizationName(ctx context.Context, id, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE organizations SET name = $1, updated_at = now() WHERE id = $2 AND foundation_id = $3`,
		name, id, s.foundationID)
	if err != nil {
		return eris.Wrapf(err, "store: rename organization %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: organization %s not found", id)
	}
	return nil
}

// InsertGrant creates a grant and returns its id.
func (s *PostgresStore) InsertGrant(ctx context.Context, grant model.Grant) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO grants (id, foundation_id, organization_id, status, amount, purpose, recurrence_type, proposed_by, start_date) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''))`,
		id, s.foundationID, grant.OrganizationID, string(grant.Status), grant.Amount.StringFixed(2),
		grant.Purpose, grant.RecurrenceType, s.userID, grant.StartDate)
	if err != nil {
		return "", eris.Wrapf(err, "store: insert grant for org %s", grant.OrganizationID)
	}
	return id, nil
}

// MarkGrantPaid transitions a grant to paid and touches its update
// timestamp.
func (s *PostgresStore) MarkGrantPaid(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE grants SET status = $1, updated_at = now() WHERE id = $2 AND foundation_id = $3`,
		string(model.StatusPaid), id, s.foundationID)
	if err != nil {
		return eris.Wrapf(err, "store: mark grant %s paid", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: grant %s not found", id)
	}
	return nil
}

// LogActivity appends an audit entry.
func (s *PostgresStore) LogActivity(ctx context.Context, entry model.ActivityEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return eris.Wrap(err, "store: marshal activity details")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO activity_log (id, foundation_id, user_id, action, entity_type, entity_id, details) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), s.foundationID, s.userID, entry.Action, entry.EntityType, entry.EntityID, details)
	if err != nil {
		return eris.Wrapf(err, "store: log %s", entry.Action)
	}
	return nil
}
