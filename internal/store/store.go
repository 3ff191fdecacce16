// Package store provides the transactional record store consumed by the
// import committer. Each operation is atomic at single-row granularity; no
// multi-row transaction is assumed, which is what makes partial batch
// success possible.
package store

import (
	"context"

	"github.com/grantbook-dev/grantbook/internal/model"
)

// Store is the persistence interface for organizations, grants, and the
// activity log, scoped to one foundation and acting user at construction.
type Store interface {
	// Snapshots fetched once at import start.
	Organizations(ctx context.Context) ([]model.Organization, error)
	PendingGrants(ctx context.Context) ([]model.Grant, error)

	// Mutations performed by the committer.
	InsertOrganization(ctx context.Context, org model.Organization) (string, error)
	UpdateOrganizationName(ctx context.Context, id, name string) error
	InsertGrant(ctx context.Context, grant model.Grant) (string, error)
	MarkGrantPaid(ctx context.Context, id string) error
	LogActivity(ctx context.Context, entry model.ActivityEntry) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
