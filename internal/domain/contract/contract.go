package contract

import (
	"time"

	"hrpipeline/internal/common"
)

const Collection = "contracts"

type Status string

// A contract only ever awaits admission; filling the admission form moves it
// to the collaborators collection.
const StatusAwaitingAdmission Status = "awaiting_admission"

// Contract is the candidate snapshot held between approval and completed
// admission paperwork.
type Contract struct {
	ID            common.UUID `json:"id"`
	JobID         common.UUID `json:"jobId"`
	Name          string      `json:"name"`
	Source        string      `json:"source"`
	Notes         string      `json:"notes,omitempty"`
	ContactNumber string      `json:"contactNumber,omitempty"`
	Status        Status      `json:"status"`
	JobTitle      string      `json:"jobTitle"`
	JobValue      float64     `json:"jobValue"`
	Team          string      `json:"team"`
	CostCenter    string      `json:"costCenter"`
	HiringCompany string      `json:"hiringCompany"`
	ApprovedAt    time.Time   `json:"approvedAt"`
}
