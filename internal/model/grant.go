package model

import "github.com/shopspring/decimal"

// GrantStatus represents the lifecycle state of a grant.
type GrantStatus string

const (
	// StatusApproved marks a grant that has been approved but not yet paid out.
	StatusApproved GrantStatus = "approved"
	// StatusPaid marks a grant whose disbursement has been recorded.
	StatusPaid GrantStatus = "paid"
)

// RecurrenceOneTime is the recurrence type for grants created from a
// disbursement import; each CSV row represents a single payment.
const RecurrenceOneTime = "one_time"

// Grant is a grant record. Snapshot queries fill only the fields needed for
// matching (ID, OrganizationID, Amount, Status); inserts carry the rest.
type Grant struct {
	ID             string
	OrganizationID string
	Amount         decimal.Decimal
	Status         GrantStatus
	Purpose        string
	RecurrenceType string
	StartDate      string // ISO date, empty when unknown
}
