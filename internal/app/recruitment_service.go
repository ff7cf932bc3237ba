package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"hrpipeline/internal/assist"
	"hrpipeline/internal/audit"
	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/archive"
	"hrpipeline/internal/domain/candidate"
	"hrpipeline/internal/domain/contract"
	"hrpipeline/internal/domain/job"
	"hrpipeline/internal/notify"
	"hrpipeline/internal/store"
)

// RecruitmentService owns job openings and the candidate pipeline up to the
// approve/reject boundary. Every move that crosses a collection commits as a
// single transaction together with its capacity-ledger update.
type RecruitmentService struct {
	store     store.Store
	audit     audit.Sink
	notify    notify.Sink
	generator assist.Generator
	logger    *logrus.Logger
}

func NewRecruitmentService(s store.Store, auditSink audit.Sink, notifySink notify.Sink, generator assist.Generator, logger *logrus.Logger) *RecruitmentService {
	return &RecruitmentService{store: s, audit: auditSink, notify: notifySink, generator: generator, logger: logger}
}

type CreateJobOpeningInput struct {
	JobTitle            string
	Team                string
	JobDescription      string
	GenerateDescription bool
	HiringManager       string
	HiringManagerID     common.UUID
	Positions           int
	JobValue            float64
	CostCenter          string
	HiringCompany       string
}

func (s *RecruitmentService) CreateJobOpening(ctx context.Context, input CreateJobOpeningInput) (*job.JobOpening, error) {
	fields := map[string]string{}
	if input.JobTitle == "" {
		fields["jobTitle"] = "job title is required"
	}
	if input.Team == "" {
		fields["team"] = "team is required"
	}
	if input.HiringManager == "" {
		fields["hiringManager"] = "hiring manager is required"
	}
	if input.Positions < 1 {
		fields["positions"] = "positions must be at least 1"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid job opening", fields)
	}

	description := input.JobDescription
	if description == "" && input.GenerateDescription && s.generator != nil {
		generated, err := s.generator.GenerateText(ctx, assist.JobDescriptionPrompt(input.JobTitle, input.Team))
		if err != nil {
			s.logger.WithError(err).Warn("job description generation failed, creating opening without one")
		} else {
			description = generated
		}
	}

	now := time.Now().UTC()
	opening := job.JobOpening{
		ID:              common.NewUUID(),
		JobTitle:        input.JobTitle,
		Team:            input.Team,
		JobDescription:  description,
		HiringManager:   input.HiringManager,
		HiringManagerID: input.HiringManagerID,
		Positions:       input.Positions,
		JobValue:        input.JobValue,
		CostCenter:      input.CostCenter,
		HiringCompany:   input.HiringCompany,
		Status:          job.StatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	doc, err := store.Encode(opening)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode job opening", err)
	}
	if err := s.store.Put(ctx, job.Collection, opening.ID.String(), doc); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job opening", err)
	}
	return &opening, nil
}

func (s *RecruitmentService) GetJobOpening(ctx context.Context, id common.UUID) (*job.JobOpening, error) {
	doc, err := s.store.Get(ctx, job.Collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "job opening not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job opening", err)
	}
	var opening job.JobOpening
	if err := store.Decode(doc, &opening); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode job opening", err)
	}
	return &opening, nil
}

func (s *RecruitmentService) ListJobOpenings(ctx context.Context) ([]job.JobOpening, error) {
	docs, err := s.store.Query(ctx, job.Collection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list job openings", err)
	}
	openings := make([]job.JobOpening, 0, len(docs))
	for _, doc := range docs {
		var opening job.JobOpening
		if err := store.Decode(doc, &opening); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode job opening", err)
		}
		openings = append(openings, opening)
	}
	sort.Slice(openings, func(i, j int) bool {
		return openings[i].CreatedAt.After(openings[j].CreatedAt)
	})
	return openings, nil
}

type AssignRecruiterInput struct {
	RecruiterID     common.UUID
	Recruiter       string
	WorkedPositions int
}

// AssignRecruiter sets the recruiter on an opening, moves it to in_progress
// and notifies the hiring manager that work started.
func (s *RecruitmentService) AssignRecruiter(ctx context.Context, jobID common.UUID, input AssignRecruiterInput) (*job.JobOpening, error) {
	if input.Recruiter == "" {
		return nil, common.NewValidationError("invalid assignment", map[string]string{"recruiter": "recruiter name is required"})
	}
	var updated *job.JobOpening
	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		doc, err := tx.Get(job.Collection, jobID.String())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.NewError(common.CodeNotFound, "job opening not found", err)
			}
			return err
		}
		var opening job.JobOpening
		if err := store.Decode(doc, &opening); err != nil {
			return common.NewError(common.CodeInternal, "failed to decode job opening", err)
		}
		opening.Recruiter = input.Recruiter
		opening.RecruiterID = input.RecruiterID
		if input.WorkedPositions > 0 {
			opening.WorkedPositions = input.WorkedPositions
		}
		if opening.Status == job.StatusOpen || opening.Status == job.StatusReopened {
			opening.Status = job.StatusInProgress
		}
		opening.UpdatedAt = time.Now().UTC()
		encoded, err := store.Encode(opening)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode job opening", err)
		}
		tx.Put(job.Collection, jobID.String(), encoded)
		updated = &opening
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		notifyErr := s.notify.Notify(ctx, updated.HiringManagerID,
			input.Recruiter+" started working on your opening: "+updated.JobTitle, map[string]any{
				"jobId":     updated.ID.String(),
				"jobTitle":  updated.JobTitle,
				"recruiter": input.Recruiter,
			})
		if notifyErr != nil {
			s.logger.WithError(notifyErr).Warn("hiring manager notification failed")
		}
	}
	return updated, nil
}

type AddCandidateInput struct {
	Name          string
	Source        string
	Notes         string
	ContactNumber string
}

// AddCandidate creates a candidate in screening with a snapshot of the
// opening's metadata.
func (s *RecruitmentService) AddCandidate(ctx context.Context, jobID common.UUID, input AddCandidateInput) (*candidate.Candidate, error) {
	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "name is required"
	}
	if input.Source == "" {
		fields["source"] = "source is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid candidate", fields)
	}

	opening, err := s.GetJobOpening(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if opening.Status == job.StatusFinished {
		return nil, common.NewError(common.CodeValidation, "job opening is finished", nil)
	}

	cand := candidate.Candidate{
		ID:            common.NewUUID(),
		JobID:         jobID,
		Name:          input.Name,
		Source:        input.Source,
		Notes:         input.Notes,
		ContactNumber: input.ContactNumber,
		Status:        candidate.StatusScreening,
		JobTitle:      opening.JobTitle,
		JobValue:      opening.JobValue,
		Team:          opening.Team,
		CostCenter:    opening.CostCenter,
		HiringCompany: opening.HiringCompany,
		CreatedAt:     time.Now().UTC(),
	}
	doc, err := store.Encode(cand)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode candidate", err)
	}
	if err := s.store.Put(ctx, candidate.CollectionFor(jobID), cand.ID.String(), doc); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create candidate", err)
	}
	return &cand, nil
}

func (s *RecruitmentService) ListCandidates(ctx context.Context, jobID common.UUID) ([]candidate.Candidate, error) {
	docs, err := s.store.Query(ctx, candidate.CollectionFor(jobID), nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list candidates", err)
	}
	candidates := make([]candidate.Candidate, 0, len(docs))
	for _, doc := range docs {
		var cand candidate.Candidate
		if err := store.Decode(doc, &cand); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode candidate", err)
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

type CandidateStatusInput struct {
	Status          string
	InterviewDate   string
	RejectionReason string
}

// SetCandidateStatus performs a pipeline move. Approvals run as one
// transaction covering the candidate delete, the contract insert and the
// capacity increment; rejections move the record to the talent pool in one
// transaction; stage moves update the candidate and mirror the opening's
// status in one transaction.
func (s *RecruitmentService) SetCandidateStatus(ctx context.Context, actorID, jobID, candidateID common.UUID, input CandidateStatusInput) error {
	target, err := candidate.ParseStatus(input.Status)
	if err != nil {
		return err
	}
	switch target {
	case candidate.StatusApproved:
		return s.approveCandidate(ctx, actorID, jobID, candidateID)
	case candidate.StatusRejected:
		return s.rejectCandidate(ctx, actorID, jobID, candidateID, input.RejectionReason)
	default:
		return s.moveCandidate(ctx, jobID, candidateID, target, input.InterviewDate)
	}
}

func (s *RecruitmentService) approveCandidate(ctx context.Context, actorID, jobID, candidateID common.UUID) error {
	collection := candidate.CollectionFor(jobID)
	contractID := common.NewUUID()
	var approved candidate.Candidate

	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		cand, err := getCandidate(tx, collection, candidateID)
		if err != nil {
			return err
		}
		if !candidate.CanTransition(cand.Status, candidate.StatusApproved) {
			return common.NewError(common.CodeInvalidTransition, "candidate cannot be approved from its current stage", nil)
		}

		if _, err := job.ApproveCapacity(tx, jobID); err != nil {
			return err
		}

		agreement := contract.Contract{
			ID:            contractID,
			JobID:         cand.JobID,
			Name:          cand.Name,
			Source:        cand.Source,
			Notes:         cand.Notes,
			ContactNumber: cand.ContactNumber,
			Status:        contract.StatusAwaitingAdmission,
			JobTitle:      cand.JobTitle,
			JobValue:      cand.JobValue,
			Team:          cand.Team,
			CostCenter:    cand.CostCenter,
			HiringCompany: cand.HiringCompany,
			ApprovedAt:    time.Now().UTC(),
		}
		doc, err := store.Encode(agreement)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode contract", err)
		}
		tx.Delete(collection, candidateID.String())
		tx.Put(contract.Collection, contractID.String(), doc)
		approved = *cand
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return common.NewError(common.CodeConflict, "approval conflicted with a concurrent update, try again", err)
		}
		return err
	}

	s.recordAudit(ctx, actorID, audit.ActionApproveCandidate, map[string]any{
		"jobId":       jobID.String(),
		"candidateId": candidateID.String(),
		"contractId":  contractID.String(),
		"name":        approved.Name,
	})
	return nil
}

func (s *RecruitmentService) rejectCandidate(ctx context.Context, actorID, jobID, candidateID common.UUID, reason string) error {
	if reason == "" {
		return common.NewValidationError("invalid rejection", map[string]string{"rejectionReason": "rejection reason is required"})
	}

	collection := candidate.CollectionFor(jobID)
	profileID := common.NewUUID()

	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		cand, err := getCandidate(tx, collection, candidateID)
		if err != nil {
			return err
		}
		if !candidate.CanTransition(cand.Status, candidate.StatusRejected) {
			return common.NewError(common.CodeInvalidTransition, "candidate cannot be rejected from its current stage", nil)
		}

		cand.Status = candidate.StatusRejected
		cand.RejectionReason = reason
		profile := archive.DisapprovedProfile{
			ID:              profileID,
			CandidateID:     cand.ID,
			Candidate:       *cand,
			RejectionReason: reason,
			RejectedAt:      time.Now().UTC(),
		}
		profileDoc, err := store.Encode(profile)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode disapproved profile", err)
		}
		tx.Delete(collection, candidateID.String())
		tx.Put(archive.DisapprovedCollection, profileID.String(), profileDoc)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return common.NewError(common.CodeConflict, "rejection conflicted with a concurrent update, try again", err)
		}
		return err
	}

	s.recordAudit(ctx, actorID, audit.ActionRejectCandidate, map[string]any{
		"jobId":       jobID.String(),
		"candidateId": candidateID.String(),
		"profileId":   profileID.String(),
		"reason":      reason,
	})
	return nil
}

func (s *RecruitmentService) moveCandidate(ctx context.Context, jobID, candidateID common.UUID, target candidate.Status, interviewDate string) error {
	collection := candidate.CollectionFor(jobID)
	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		cand, err := getCandidate(tx, collection, candidateID)
		if err != nil {
			return err
		}
		if !candidate.CanTransition(cand.Status, target) {
			return common.NewError(common.CodeInvalidTransition, "stage move is not allowed", nil)
		}
		if candidate.RequiresInterviewDate(target) && interviewDate == "" {
			return common.NewValidationError("invalid stage move", map[string]string{"interviewDate": "interview date is required for this stage"})
		}

		cand.Status = target
		if candidate.RequiresInterviewDate(target) {
			cand.InterviewDate = interviewDate
		} else {
			cand.InterviewDate = ""
		}
		candDoc, err := store.Encode(cand)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode candidate", err)
		}
		tx.Put(collection, candidateID.String(), candDoc)

		// The opening's status shadows the stage of the candidate in flight so
		// listings show what the requisition is waiting on.
		if mirrored, ok := candidate.MirroredJobStatus(target); ok {
			doc, err := tx.Get(job.Collection, jobID.String())
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return common.NewError(common.CodeNotFound, "job opening not found", err)
				}
				return common.NewError(common.CodeInternal, "failed to load job opening", err)
			}
			var opening job.JobOpening
			if err := store.Decode(doc, &opening); err != nil {
				return common.NewError(common.CodeInternal, "failed to decode job opening", err)
			}
			if opening.Status != job.StatusFinished {
				opening.Status = mirrored
				opening.UpdatedAt = time.Now().UTC()
				openingDoc, err := store.Encode(opening)
				if err != nil {
					return common.NewError(common.CodeInternal, "failed to encode job opening", err)
				}
				tx.Put(job.Collection, jobID.String(), openingDoc)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return common.NewError(common.CodeConflict, "stage move conflicted with a concurrent update, try again", err)
		}
		return err
	}
	return nil
}

// ListDisapprovedProfiles returns the talent pool, most recent first.
func (s *RecruitmentService) ListDisapprovedProfiles(ctx context.Context) ([]archive.DisapprovedProfile, error) {
	docs, err := s.store.Query(ctx, archive.DisapprovedCollection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list talent pool", err)
	}
	profiles := make([]archive.DisapprovedProfile, 0, len(docs))
	for _, doc := range docs {
		var profile archive.DisapprovedProfile
		if err := store.Decode(doc, &profile); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode disapproved profile", err)
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].RejectedAt.After(profiles[j].RejectedAt)
	})
	return profiles, nil
}

// SuggestJobDescription generates a description for an opening being drafted.
func (s *RecruitmentService) SuggestJobDescription(ctx context.Context, jobTitle, team string) (string, error) {
	if s.generator == nil {
		return "", common.NewError(common.CodeUnavailable, "text generation is not configured", nil)
	}
	if jobTitle == "" {
		return "", common.NewValidationError("invalid request", map[string]string{"jobTitle": "job title is required"})
	}
	return s.generator.GenerateText(ctx, assist.JobDescriptionPrompt(jobTitle, team))
}

// SuggestInterviewQuestions generates behavioral and technical questions for
// an existing opening.
func (s *RecruitmentService) SuggestInterviewQuestions(ctx context.Context, jobID common.UUID) (*assist.InterviewQuestions, error) {
	if s.generator == nil {
		return nil, common.NewError(common.CodeUnavailable, "text generation is not configured", nil)
	}
	opening, err := s.GetJobOpening(ctx, jobID)
	if err != nil {
		return nil, err
	}
	raw, err := s.generator.GenerateText(ctx, assist.InterviewQuestionsPrompt(opening.JobTitle, opening.JobDescription))
	if err != nil {
		return nil, err
	}
	return assist.ParseInterviewQuestions(raw)
}

func (s *RecruitmentService) recordAudit(ctx context.Context, actorID common.UUID, action audit.Action, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actorID, action, details); err != nil {
		s.logger.WithError(err).WithField("action", string(action)).Warn("audit record failed")
	}
}

func getCandidate(tx store.Txn, collection string, id common.UUID) (*candidate.Candidate, error) {
	doc, err := tx.Get(collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "candidate not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load candidate", err)
	}
	var cand candidate.Candidate
	if err := store.Decode(doc, &cand); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode candidate", err)
	}
	return &cand, nil
}
