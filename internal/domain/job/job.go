package job

import (
	"time"

	"hrpipeline/internal/common"
)

// Collection is where job openings live in the record store.
const Collection = "jobOpenings"

type Status string

const (
	StatusOpen                Status = "open"
	StatusReopened            Status = "reopened"
	StatusInProgress          Status = "in_progress"
	StatusInterviewRecruiter  Status = "interview_recruiter"
	StatusRescheduleRecruiter Status = "reschedule_recruiter"
	StatusInterviewManager    Status = "interview_manager"
	StatusRescheduleManager   Status = "reschedule_manager"
	StatusFinished            Status = "finished"
)

// JobOpening is a requisition with a target headcount and a running count of
// approved hires. approvedCount is mutated only by the capacity ledger;
// status may additionally mirror the stage of the candidate currently being
// interviewed.
type JobOpening struct {
	ID              common.UUID `json:"id"`
	JobTitle        string      `json:"jobTitle"`
	Team            string      `json:"team"`
	JobDescription  string      `json:"jobDescription,omitempty"`
	HiringManager   string      `json:"hiringManager"`
	HiringManagerID common.UUID `json:"hiringManagerId,omitempty"`
	Recruiter       string      `json:"recruiter,omitempty"`
	RecruiterID     common.UUID `json:"recruiterId,omitempty"`
	WorkedPositions int         `json:"workedPositions,omitempty"`
	Positions       int         `json:"positions"`
	ApprovedCount   int         `json:"approvedCount"`
	JobValue        float64     `json:"jobValue"`
	CostCenter      string      `json:"costCenter"`
	HiringCompany   string      `json:"hiringCompany"`
	Status          Status      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
