// Package history records immutable per-collaborator change entries. Entries
// are appended within the same atomic unit as the mutation they document and
// are never updated or deleted.
package history

import (
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/collaborator"
)

// CollectionFor returns the per-collaborator history subcollection.
func CollectionFor(collaboratorID common.UUID) string {
	return collaborator.Collection + "/" + collaboratorID.String() + "/history"
}

type ChangeType string

const (
	ChangeTransfer    ChangeType = "transfer"
	ChangeTermination ChangeType = "termination"
	ChangeDecline     ChangeType = "decline"
)

// FieldSet is the transferable slice of a collaborator's profile, captured
// before and after a transfer.
type FieldSet struct {
	JobTitle      string `json:"jobTitle"`
	Team          string `json:"team"`
	VP            string `json:"vp,omitempty"`
	HiringCompany string `json:"hiringCompany"`
}

type Details struct {
	From              *FieldSet `json:"from,omitempty"`
	To                *FieldSet `json:"to,omitempty"`
	TransferDate      string    `json:"transferDate,omitempty"`
	TerminationDate   string    `json:"terminationDate,omitempty"`
	TerminationReason string    `json:"terminationReason,omitempty"`
	DeclineReason     string    `json:"declineReason,omitempty"`
}

type Entry struct {
	ID             common.UUID `json:"id"`
	CollaboratorID common.UUID `json:"collaboratorId"`
	ChangeType     ChangeType  `json:"changeType"`
	Timestamp      time.Time   `json:"timestamp"`
	Details        Details     `json:"details"`
}
