// Package candidate holds the pipeline entity for a person under evaluation
// and the state machine governing stage moves.
//
// Valid status graph (initial: screening):
//
//	screening <-> interview_recruiter <-> reschedule_recruiter <-> interview_manager <-> reschedule_manager
//
// approved and rejected are terminal and reachable from any non-terminal
// stage; reaching them relocates the record out of the candidates collection.
package candidate

import (
	"fmt"
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/job"
)

// CollectionFor returns the per-job subcollection holding a job's candidates.
func CollectionFor(jobID common.UUID) string {
	return job.Collection + "/" + jobID.String() + "/candidates"
}

type Status string

const (
	StatusScreening           Status = "screening"
	StatusInterviewRecruiter  Status = "interview_recruiter"
	StatusRescheduleRecruiter Status = "reschedule_recruiter"
	StatusInterviewManager    Status = "interview_manager"
	StatusRescheduleManager   Status = "reschedule_manager"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
)

// adjacent lists the non-terminal neighbours of each stage; moves are allowed
// in both directions along the chain.
var adjacent = map[Status][]Status{
	StatusScreening:           {StatusInterviewRecruiter},
	StatusInterviewRecruiter:  {StatusScreening, StatusRescheduleRecruiter},
	StatusRescheduleRecruiter: {StatusInterviewRecruiter, StatusInterviewManager},
	StatusInterviewManager:    {StatusRescheduleRecruiter, StatusRescheduleManager},
	StatusRescheduleManager:   {StatusInterviewManager},
}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	switch status {
	case StatusScreening, StatusInterviewRecruiter, StatusRescheduleRecruiter,
		StatusInterviewManager, StatusRescheduleManager, StatusApproved, StatusRejected:
		return status, nil
	}
	return "", common.NewError(common.CodeValidation, fmt.Sprintf("unknown candidate status %q", value), nil)
}

func IsTerminal(status Status) bool {
	return status == StatusApproved || status == StatusRejected
}

// CanTransition reports whether moving from one stage to another is allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	if IsTerminal(to) {
		return true
	}
	for _, neighbour := range adjacent[from] {
		if neighbour == to {
			return true
		}
	}
	return false
}

// RequiresInterviewDate reports whether entering the stage needs a scheduled
// interview date.
func RequiresInterviewDate(status Status) bool {
	switch status {
	case StatusInterviewRecruiter, StatusRescheduleRecruiter, StatusInterviewManager, StatusRescheduleManager:
		return true
	}
	return false
}

// MirroredJobStatus maps an interview/reschedule stage to the job-opening
// status that mirrors it; ok is false for stages with no mirror.
func MirroredJobStatus(status Status) (job.Status, bool) {
	switch status {
	case StatusInterviewRecruiter:
		return job.StatusInterviewRecruiter, true
	case StatusRescheduleRecruiter:
		return job.StatusRescheduleRecruiter, true
	case StatusInterviewManager:
		return job.StatusInterviewManager, true
	case StatusRescheduleManager:
		return job.StatusRescheduleManager, true
	}
	return "", false
}

// Candidate carries a snapshot of its job opening's metadata so the record
// stays self-describing as it moves through the terminal pools.
type Candidate struct {
	ID              common.UUID `json:"id"`
	JobID           common.UUID `json:"jobId"`
	Name            string      `json:"name"`
	Source          string      `json:"source"`
	Notes           string      `json:"notes,omitempty"`
	ContactNumber   string      `json:"contactNumber,omitempty"`
	Status          Status      `json:"status"`
	InterviewDate   string      `json:"interviewDate,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
	JobTitle        string      `json:"jobTitle"`
	JobValue        float64     `json:"jobValue"`
	Team            string      `json:"team"`
	CostCenter      string      `json:"costCenter"`
	HiringCompany   string      `json:"hiringCompany"`
	CreatedAt       time.Time   `json:"createdAt"`
}
