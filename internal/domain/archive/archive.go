// Package archive holds the terminal profile pools. Each pool is a one-way
// destination: records are inserted by a pipeline move and never leave.
package archive

import (
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/candidate"
	"hrpipeline/internal/domain/collaborator"
)

const (
	DisapprovedCollection = "disapprovedProfiles"
	DeclinedCollection    = "declinedProfiles"
	TerminatedCollection  = "terminatedProfiles"
)

// The pools carry the source record's id in an explicitly tagged field. The
// embedded snapshot also declares json:"id", which loses to the profile's own
// id under encoding/json's depth rule and never reaches the stored document.

// DisapprovedProfile is a rejected candidate kept in the talent pool.
type DisapprovedProfile struct {
	ID          common.UUID `json:"id"`
	CandidateID common.UUID `json:"candidateId"`
	candidate.Candidate
	RejectionReason string    `json:"rejectionReason"`
	RejectedAt      time.Time `json:"rejectedAt"`
}

// DeclinedProfile is a collaborator who withdrew before activation.
type DeclinedProfile struct {
	ID             common.UUID `json:"id"`
	CollaboratorID common.UUID `json:"collaboratorId"`
	collaborator.Collaborator
	DeclineReason string    `json:"declineReason"`
	DeclinedAt    time.Time `json:"declinedAt"`
}

// TerminatedProfile is a collaborator whose engagement ended.
type TerminatedProfile struct {
	ID             common.UUID `json:"id"`
	CollaboratorID common.UUID `json:"collaboratorId"`
	collaborator.Collaborator
	TerminationDate   string    `json:"terminationDate"`
	TerminationReason string    `json:"terminationReason"`
	TerminatedAt      time.Time `json:"terminatedAt"`
}
