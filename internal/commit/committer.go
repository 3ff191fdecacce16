// Package commit applies a reviewed import batch against the record store.
// Processing is strictly sequential: intra-batch deduplication depends on
// each row seeing the organizations created by the rows before it.
package commit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grantbook-dev/grantbook/internal/match"
	"github.com/grantbook-dev/grantbook/internal/model"
	"github.com/grantbook-dev/grantbook/internal/store"
)

// DefaultRowTimeout bounds the store work for a single row. Expiry counts
// as that row's failure, never the batch's.
const DefaultRowTimeout = 30 * time.Second

// ProgressFunc is invoked after every processed row, succeeded or failed,
// so callers can render a deterministic completion percentage.
type ProgressFunc func(processed, total int)

// Summary reports batch outcomes. Failures are additive, not blocking; a
// batch never rolls back partial progress.
type Summary struct {
	Transitioned int // pending grants marked paid
	Created      int // new paid grants inserted
	OrgsCreated  int // new organizations inserted
	OrgErrors    int // rows skipped because the organization insert failed
	Processed    int
	Total        int
}

// Options tunes a Committer.
type Options struct {
	RowTimeout time.Duration // zero means DefaultRowTimeout
	OnProgress ProgressFunc  // optional
	Logger     *zap.Logger   // optional, defaults to the global logger
}

// Committer walks the included rows of a reviewed batch in file order and
// performs the create/transition side effects. Intra-run dedup maps live on
// the run, never on the package.
type Committer struct {
	store      store.Store
	rowTimeout time.Duration
	onProgress ProgressFunc
	log        *zap.Logger
}

// New creates a Committer over the given store.
func New(st store.Store, opts Options) *Committer {
	if opts.RowTimeout <= 0 {
		opts.RowTimeout = DefaultRowTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	return &Committer{
		store:      st,
		rowTimeout: opts.RowTimeout,
		onProgress: opts.OnProgress,
		log:        opts.Logger,
	}
}

// run carries the per-batch mutable state.
type run struct {
	createdByEIN  map[string]string // normalized EIN -> new org id
	createdByName map[string]string // folded CSV name -> new org id
}

// Run commits the included rows in original order. Cancellation is checked
// at each row boundary; on cancellation the partial summary is returned
// with ctx.Err(). Store failures never abort the batch.
func (c *Committer) Run(ctx context.Context, rows []model.ImportRow) (Summary, error) {
	var included []model.ImportRow
	for _, row := range rows {
		if row.Included {
			included = append(included, row)
		}
	}

	sum := Summary{Total: len(included)}
	r := &run{
		createdByEIN:  make(map[string]string),
		createdByName: make(map[string]string),
	}

	for _, row := range included {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rowCtx, cancel := context.WithTimeout(ctx, c.rowTimeout)
		c.commitRow(rowCtx, row, r, &sum)
		cancel()

		sum.Processed++
		if c.onProgress != nil {
			c.onProgress(sum.Processed, sum.Total)
		}
	}

	return sum, nil
}

func (c *Committer) commitRow(ctx context.Context, row model.ImportRow, r *run, sum *Summary) {
	orgID, ok := c.resolveOrg(ctx, row, r, sum)
	if !ok {
		sum.OrgErrors++
		return
	}

	if row.Grant.Kind == model.GrantMatchTransition && row.Grant.Grant != nil {
		c.transitionGrant(ctx, row, sum)
		return
	}
	c.createGrant(ctx, row, orgID, sum)
}

// resolveOrg returns the organization id for a row: the matched record
// (renamed first when a high-confidence match detected one), an earlier
// in-batch creation with the same EIN or name, or a fresh insert.
func (c *Committer) resolveOrg(ctx context.Context, row model.ImportRow, r *run, sum *Summary) (string, bool) {
	if org := row.Org.Org; org != nil {
		if row.Org.NameChanged && row.Org.Confidence == model.ConfidenceHigh {
			if err := c.store.UpdateOrganizationName(ctx, org.ID, row.Csv.OrgName); err != nil {
				// The stale name is still usable; keep going.
				c.log.Warn("rename failed", zap.String("org_id", org.ID), zap.Error(err))
			}
		}
		return org.ID, true
	}

	ein := match.NormalizeEIN(row.Csv.EIN)
	nameKey := strings.ToLower(strings.TrimSpace(row.Csv.OrgName))

	if ein != "" {
		if id, ok := r.createdByEIN[ein]; ok {
			return id, true
		}
	}
	if id, ok := r.createdByName[nameKey]; ok {
		return id, true
	}

	id, err := c.store.InsertOrganization(ctx, model.Organization{
		Name:    row.Csv.OrgName,
		EIN:     row.Csv.EIN,
		Address: joinAddress(row.Csv),
	})
	if err != nil {
		c.log.Warn("organization insert failed", zap.String("name", row.Csv.OrgName), zap.Error(err))
		return "", false
	}

	if ein != "" {
		r.createdByEIN[ein] = id
	}
	r.createdByName[nameKey] = id
	sum.OrgsCreated++

	c.logActivity(ctx, model.ActivityEntry{
		Action:     model.ActionOrganizationCreated,
		EntityType: "organization",
		EntityID:   id,
		Details: map[string]any{
			"name":   row.Csv.OrgName,
			"source": model.ActivitySourceImport,
		},
	})
	return id, true
}

func (c *Committer) transitionGrant(ctx context.Context, row model.ImportRow, sum *Summary) {
	grant := row.Grant.Grant
	if err := c.store.MarkGrantPaid(ctx, grant.ID); err != nil {
		c.log.Warn("grant transition failed", zap.String("grant_id", grant.ID), zap.Error(err))
		return
	}
	sum.Transitioned++

	c.logActivity(ctx, model.ActivityEntry{
		Action:     model.ActionGrantStatusChanged,
		EntityType: "grant",
		EntityID:   grant.ID,
		Details: map[string]any{
			"from":   string(model.StatusApproved),
			"to":     string(model.StatusPaid),
			"source": model.ActivitySourceImport,
		},
	})
}

func (c *Committer) createGrant(ctx context.Context, row model.ImportRow, orgID string, sum *Summary) {
	id, err := c.store.InsertGrant(ctx, model.Grant{
		OrganizationID: orgID,
		Status:         model.StatusPaid,
		Amount:         row.Csv.Amount,
		Purpose:        row.Csv.Purpose,
		RecurrenceType: model.RecurrenceOneTime,
		StartDate:      row.Csv.DatePaid,
	})
	if err != nil {
		c.log.Warn("grant insert failed", zap.String("org_id", orgID), zap.Error(err))
		return
	}
	sum.Created++

	c.logActivity(ctx, model.ActivityEntry{
		Action:     model.ActionGrantCreated,
		EntityType: "grant",
		EntityID:   id,
		Details: map[string]any{
			"amount":       row.Csv.Amount.StringFixed(2),
			"organization": row.Csv.OrgName,
			"source":       model.ActivitySourceImport,
		},
	})
}

// logActivity is best-effort; a failed audit write does not fail the row.
func (c *Committer) logActivity(ctx context.Context, entry model.ActivityEntry) {
	if err := c.store.LogActivity(ctx, entry); err != nil {
		c.log.Warn("activity log failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

// joinAddress builds a single address string from the row's parts, skipping
// empty ones.
func joinAddress(csv model.CsvRow) string {
	var parts []string
	for _, p := range []string{csv.Address, csv.City, csv.State, csv.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
