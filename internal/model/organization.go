package model

// Organization is a grantee organization record.
type Organization struct {
	ID      string
	Name    string
	EIN     string // empty when unknown
	Address string
}
