// Package collaborator holds the entity for an admitted person and the rules
// of the onboarding lifecycle.
//
// pending_documentation <-> rescheduled_admission, either of which may become
// active (a plain status write) or declined (a move into the declined pool).
package collaborator

import (
	"fmt"
	"time"

	"hrpipeline/internal/common"
)

const Collection = "collaborators"

type Status string

const (
	StatusPendingDocumentation Status = "pending_documentation"
	StatusRescheduledAdmission Status = "rescheduled_admission"
	StatusActive               Status = "active"
	StatusDeclined             Status = "declined"
)

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	switch status {
	case StatusPendingDocumentation, StatusRescheduledAdmission, StatusActive, StatusDeclined:
		return status, nil
	}
	return "", common.NewError(common.CodeValidation, fmt.Sprintf("unknown collaborator status %q", value), nil)
}

func IsTerminal(status Status) bool {
	return status == StatusActive || status == StatusDeclined
}

func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	switch to {
	case StatusPendingDocumentation, StatusRescheduledAdmission, StatusActive, StatusDeclined:
		return true
	}
	return false
}

// Collaborator merges the contract snapshot with the admission-form fields.
type Collaborator struct {
	ID                   common.UUID `json:"id"`
	JobID                common.UUID `json:"jobId,omitempty"`
	Name                 string      `json:"name"`
	FullName             string      `json:"fullName"`
	Source               string      `json:"source,omitempty"`
	Notes                string      `json:"notes,omitempty"`
	ContactNumber        string      `json:"contactNumber"`
	Status               Status      `json:"status"`
	JobTitle             string      `json:"jobTitle"`
	JobValue             float64     `json:"jobValue"`
	Team                 string      `json:"team"`
	VP                   string      `json:"vp,omitempty"`
	CostCenter           string      `json:"costCenter"`
	HiringCompany        string      `json:"hiringCompany"`
	AdmissionDate        string      `json:"admissionDate"`
	DocumentDeliveryDate string      `json:"documentDeliveryDate"`
	CreatedAt            time.Time   `json:"createdAt"`
}
