package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusApplying   ApplicationStatus = "Applying"
	StatusWaiting    ApplicationStatus = "Waiting"
	StatusAccepted   ApplicationStatus = "Accepted"
	StatusWaitlisted ApplicationStatus = "Waitlisted"
	StatusRejected   ApplicationStatus = "Rejected"
)

// DefaultStatus is assigned when a form is submitted without a status.
const DefaultStatus = StatusApplying

// ApplicationStatuses lists every status in display order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplying,
	StatusWaiting,
	StatusAccepted,
	StatusWaitlisted,
	StatusRejected,
}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// University is one tracked application, owned by exactly one user.
type University struct {
	ID                    string            `db:"id" json:"id"`
	UserID                string            `db:"user_id" json:"user_id"`
	Name                  string            `db:"name" json:"name"`
	Country               string            `db:"country" json:"country"`
	Deadline              Date              `db:"deadline" json:"deadline"`
	ScholarshipPercentage float64           `db:"scholarship_percentage" json:"scholarship_percentage"`
	ApplicationFees       decimal.Decimal   `db:"application_fees" json:"application_fees"`
	Notes                 string            `db:"notes" json:"notes"`
	Status                ApplicationStatus `db:"status" json:"status"`
	CreatedAt             time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time         `db:"updated_at" json:"updated_at"`
}

// UniversityChanges carries the mutable fields of an update.
type UniversityChanges struct {
	Name                  string
	Country               string
	Deadline              Date
	ScholarshipPercentage float64
	ApplicationFees       decimal.Decimal
	Notes                 string
	Status                ApplicationStatus
}

// Apply copies the changes onto u, leaving identity and ownership untouched.
func (c UniversityChanges) Apply(u *University) {
	u.Name = c.Name
	u.Country = c.Country
	u.Deadline = c.Deadline
	u.ScholarshipPercentage = c.ScholarshipPercentage
	u.ApplicationFees = c.ApplicationFees
	u.Notes = c.Notes
	u.Status = c.Status
}
