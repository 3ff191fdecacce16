package model

// Activity log actions emitted by the import committer.
const (
	ActionOrganizationCreated = "organization_created"
	ActionGrantCreated        = "grant_created"
	ActionGrantStatusChanged  = "grant_status_changed"
)

// ActivitySourceImport tags audit entries that originate from a CSV import.
const ActivitySourceImport = "csv_import"

// ActivityEntry is an audit record written to the record store alongside
// each mutation. Foundation and user scoping is applied by the store.
type ActivityEntry struct {
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
}
