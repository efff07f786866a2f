package models

import "strings"

// StudentRecord is one row of the roster ledger.
type StudentRecord struct {
	StudentID             string       `json:"student_id"`
	FirstName             string       `json:"first_name"`
	LastName              string       `json:"last_name"`
	Consent               bool         `json:"has_consent"`
	HasClaimedExtraCredit bool         `json:"has_extra"`
	Classes               []ClassEntry `json:"classes,omitempty"`
}

// FullName joins first and last name, skipping blanks.
func (s StudentRecord) FullName() string {
	return strings.TrimSpace(strings.Join([]string{s.FirstName, s.LastName}, " "))
}

// ClassEntry is a class slot owned by a student, with its accumulated extra credit.
type ClassEntry struct {
	Key               string `json:"key"`
	Name              string `json:"name"`
	ExtraCreditColumn string `json:"extra_credit_column"`
	Points            int    `json:"extra_credit_points"`
}

// ExtraCreditClaim is the outcome of a successful claim.
type ExtraCreditClaim struct {
	StudentID         string `json:"student_id"`
	ClassKey          string `json:"class_key"`
	ClassName         string `json:"class_name"`
	ExtraCreditColumn string `json:"extra_credit_column"`
	PointsAwarded     int    `json:"points_awarded"`
	TotalPoints       int    `json:"total_points"`
}
