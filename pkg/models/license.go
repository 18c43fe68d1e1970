package models

import (
	"fmt"
	"time"
)

// LicenseStatus is the lifecycle state of a license request.
type LicenseStatus string

const (
	LicensePending   LicenseStatus = "pending"
	LicenseApproved  LicenseStatus = "approved"
	LicenseRejected  LicenseStatus = "rejected"
	LicenseCompleted LicenseStatus = "completed"
)

// licenseTransitions is the closed set of legal moves. Rejected and
// completed are terminal.
var licenseTransitions = map[LicenseStatus][]LicenseStatus{
	LicensePending:  {LicenseApproved, LicenseRejected},
	LicenseApproved: {LicenseCompleted},
}

// InvalidTransitionError is returned when a status change is not in the
// transition table.
type InvalidTransitionError struct {
	From LicenseStatus
	To   LicenseStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid license status transition: %s -> %s", e.From, e.To)
}

// IsValidStatus reports whether s is one of the four enumerated values.
func IsValidStatus(s LicenseStatus) bool {
	switch s {
	case LicensePending, LicenseApproved, LicenseRejected, LicenseCompleted:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to LicenseStatus) bool {
	for _, next := range licenseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LicenseRequest ties a brand, a track and the requesting user, carrying a
// price/terms snapshot taken at creation time.
type LicenseRequest struct {
	ID                 string        `json:"id" db:"id"`
	Status             LicenseStatus `json:"status" db:"status"`
	LicenseType        string        `json:"license_type" db:"license_type"`
	ProjectTitle       string        `json:"project_title" db:"project_title"`
	ProjectDescription string        `json:"project_description,omitempty" db:"project_description"`
	UsageDescription   string        `json:"usage_description,omitempty" db:"usage_description"`
	Territory          string        `json:"territory" db:"territory"`
	Duration           int           `json:"duration" db:"duration"` // months
	Price              float64       `json:"price" db:"price"`
	LicenseDocument    *string       `json:"license_document,omitempty" db:"license_document"`
	TrackID            string        `json:"track_id" db:"track_id"`
	BrandID            string        `json:"brand_id" db:"brand_id"`
	UserID             string        `json:"user_id" db:"user_id"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`

	// Joined for display.
	Track *Track `json:"track,omitempty"`
	Brand *Brand `json:"brand,omitempty"`
}

// Transition moves the request to the target status, attaching the license
// document when one is provided. Documents may only be attached on moves
// into approved or completed.
func (lr *LicenseRequest) Transition(to LicenseStatus, document *string) error {
	if !IsValidStatus(to) {
		return fmt.Errorf("unknown license status: %s", to)
	}
	if !CanTransition(lr.Status, to) {
		return &InvalidTransitionError{From: lr.Status, To: to}
	}
	if document != nil && to != LicenseApproved && to != LicenseCompleted {
		return fmt.Errorf("license document may only be attached on approval or completion")
	}
	lr.Status = to
	if document != nil {
		lr.LicenseDocument = document
	}
	return nil
}
