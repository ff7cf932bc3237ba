package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"hrpipeline/internal/audit"
	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/archive"
	"hrpipeline/internal/domain/collaborator"
	"hrpipeline/internal/domain/history"
	"hrpipeline/internal/domain/job"
	"hrpipeline/internal/store"
)

// CollaboratorService manages onboarding, transfers and the exits into the
// declined and terminated pools. A decline is the only exit that returns
// capacity to the originating job opening.
type CollaboratorService struct {
	store  store.Store
	audit  audit.Sink
	logger *logrus.Logger
}

func NewCollaboratorService(s store.Store, auditSink audit.Sink, logger *logrus.Logger) *CollaboratorService {
	return &CollaboratorService{store: s, audit: auditSink, logger: logger}
}

func (s *CollaboratorService) Get(ctx context.Context, id common.UUID) (*collaborator.Collaborator, error) {
	doc, err := s.store.Get(ctx, collaborator.Collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "collaborator not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load collaborator", err)
	}
	var collab collaborator.Collaborator
	if err := store.Decode(doc, &collab); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode collaborator", err)
	}
	return &collab, nil
}

func (s *CollaboratorService) List(ctx context.Context) ([]collaborator.Collaborator, error) {
	docs, err := s.store.Query(ctx, collaborator.Collection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list collaborators", err)
	}
	collabs := make([]collaborator.Collaborator, 0, len(docs))
	for _, doc := range docs {
		var collab collaborator.Collaborator
		if err := store.Decode(doc, &collab); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode collaborator", err)
		}
		collabs = append(collabs, collab)
	}
	sort.Slice(collabs, func(i, j int) bool {
		return collabs[i].CreatedAt.After(collabs[j].CreatedAt)
	})
	return collabs, nil
}

// SetStatus handles the in-place onboarding moves: rescheduling admission and
// activation. Declines go through Decline.
func (s *CollaboratorService) SetStatus(ctx context.Context, id common.UUID, status string, admissionDate string) (*collaborator.Collaborator, error) {
	target, err := collaborator.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if target == collaborator.StatusDeclined {
		return nil, common.NewError(common.CodeValidation, "declines must include a reason, use the decline operation", nil)
	}
	if target == collaborator.StatusRescheduledAdmission && admissionDate == "" {
		return nil, common.NewValidationError("invalid reschedule", map[string]string{"admissionDate": "a new admission date is required"})
	}

	var updated *collaborator.Collaborator
	err = s.store.Transaction(ctx, func(tx store.Txn) error {
		collab, err := getCollaborator(tx, id)
		if err != nil {
			return err
		}
		if !collaborator.CanTransition(collab.Status, target) {
			return common.NewError(common.CodeInvalidTransition, "collaborator status move is not allowed", nil)
		}

		collab.Status = target
		if target == collaborator.StatusRescheduledAdmission {
			collab.AdmissionDate = admissionDate
		}
		doc, err := store.Encode(collab)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode collaborator", err)
		}
		tx.Put(collaborator.Collection, id.String(), doc)
		updated = collab
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, common.NewError(common.CodeConflict, "status move conflicted with a concurrent update, try again", err)
		}
		return nil, err
	}
	return updated, nil
}

// Decline moves a collaborator into the declined pool and returns their
// position to the originating opening, all in one transaction. Records that
// predate job linkage skip the capacity compensation.
func (s *CollaboratorService) Decline(ctx context.Context, actorID, id common.UUID, reason string) error {
	if reason == "" {
		return common.NewValidationError("invalid decline", map[string]string{"declineReason": "decline reason is required"})
	}

	profileID := common.NewUUID()
	entryID := common.NewUUID()
	var declined collaborator.Collaborator

	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		collab, err := getCollaborator(tx, id)
		if err != nil {
			return err
		}
		if !collaborator.CanTransition(collab.Status, collaborator.StatusDeclined) {
			return common.NewError(common.CodeInvalidTransition, "collaborator cannot be declined from its current status", nil)
		}

		if collab.JobID.IsZero() {
			s.logger.WithField("collaborator_id", id.String()).Warn("declined collaborator has no job opening, skipping capacity reopen")
		} else {
			if _, err := job.ReopenCapacity(tx, collab.JobID); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		collab.Status = collaborator.StatusDeclined
		profile := archive.DeclinedProfile{
			ID:             profileID,
			CollaboratorID: collab.ID,
			Collaborator:   *collab,
			DeclineReason:  reason,
			DeclinedAt:     now,
		}
		profileDoc, err := store.Encode(profile)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode declined profile", err)
		}
		entry := history.Entry{
			ID:             entryID,
			CollaboratorID: id,
			ChangeType:     history.ChangeDecline,
			Timestamp:      now,
			Details:        history.Details{DeclineReason: reason},
		}
		entryDoc, err := store.Encode(entry)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode history entry", err)
		}

		tx.Delete(collaborator.Collection, id.String())
		tx.Put(archive.DeclinedCollection, profileID.String(), profileDoc)
		tx.Put(history.CollectionFor(id), entryID.String(), entryDoc)
		declined = *collab
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return common.NewError(common.CodeConflict, "decline conflicted with a concurrent update, try again", err)
		}
		return err
	}

	s.recordAudit(ctx, actorID, audit.ActionDeclineCollaborator, map[string]any{
		"collaboratorId": id.String(),
		"profileId":      profileID.String(),
		"jobId":          declined.JobID.String(),
		"reason":         reason,
	})
	return nil
}

type TransferInput struct {
	JobTitle      string
	Team          string
	VP            string
	HiringCompany string
	TransferDate  string
}

// Transfer rewrites a collaborator's assignment and appends a history entry
// carrying the before and after field sets, in one transaction.
func (s *CollaboratorService) Transfer(ctx context.Context, actorID, id common.UUID, input TransferInput) (*collaborator.Collaborator, error) {
	fields := map[string]string{}
	if input.JobTitle == "" {
		fields["jobTitle"] = "job title is required"
	}
	if input.Team == "" {
		fields["team"] = "team is required"
	}
	if input.TransferDate == "" {
		fields["transferDate"] = "transfer date is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid transfer", fields)
	}

	entryID := common.NewUUID()
	var transferred *collaborator.Collaborator
	var from, to history.FieldSet

	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		collab, err := getCollaborator(tx, id)
		if err != nil {
			return err
		}
		if collab.Status != collaborator.StatusActive {
			return common.NewError(common.CodeInvalidTransition, "only active collaborators can be transferred", nil)
		}

		from = history.FieldSet{
			JobTitle:      collab.JobTitle,
			Team:          collab.Team,
			VP:            collab.VP,
			HiringCompany: collab.HiringCompany,
		}
		to = history.FieldSet{
			JobTitle:      input.JobTitle,
			Team:          input.Team,
			VP:            input.VP,
			HiringCompany: input.HiringCompany,
		}
		if to.HiringCompany == "" {
			to.HiringCompany = from.HiringCompany
		}

		collab.JobTitle = to.JobTitle
		collab.Team = to.Team
		collab.VP = to.VP
		collab.HiringCompany = to.HiringCompany

		entry := history.Entry{
			ID:             entryID,
			CollaboratorID: id,
			ChangeType:     history.ChangeTransfer,
			Timestamp:      time.Now().UTC(),
			Details: history.Details{
				From:         &from,
				To:           &to,
				TransferDate: input.TransferDate,
			},
		}

		collabDoc, err := store.Encode(collab)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode collaborator", err)
		}
		entryDoc, err := store.Encode(entry)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode history entry", err)
		}
		tx.Put(collaborator.Collection, id.String(), collabDoc)
		tx.Put(history.CollectionFor(id), entryID.String(), entryDoc)
		transferred = collab
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, common.NewError(common.CodeConflict, "transfer conflicted with a concurrent update, try again", err)
		}
		return nil, err
	}

	s.recordAudit(ctx, actorID, audit.ActionTransferCollaborator, map[string]any{
		"collaboratorId": id.String(),
		"from":           from.JobTitle + " / " + from.Team,
		"to":             to.JobTitle + " / " + to.Team,
		"transferDate":   input.TransferDate,
	})
	return transferred, nil
}

// Terminate moves a collaborator to the terminated pool with a final history
// entry. Termination never returns capacity to the opening.
func (s *CollaboratorService) Terminate(ctx context.Context, actorID, id common.UUID, terminationDate, reason string) error {
	fields := map[string]string{}
	if terminationDate == "" {
		fields["terminationDate"] = "termination date is required"
	}
	if reason == "" {
		fields["terminationReason"] = "termination reason is required"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid termination", fields)
	}

	profileID := common.NewUUID()
	entryID := common.NewUUID()

	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		collab, err := getCollaborator(tx, id)
		if err != nil {
			return err
		}
		if collab.Status != collaborator.StatusActive {
			return common.NewError(common.CodeInvalidTransition, "only active collaborators can be terminated", nil)
		}

		now := time.Now().UTC()
		profile := archive.TerminatedProfile{
			ID:                profileID,
			CollaboratorID:    collab.ID,
			Collaborator:      *collab,
			TerminationDate:   terminationDate,
			TerminationReason: reason,
			TerminatedAt:      now,
		}
		entry := history.Entry{
			ID:             entryID,
			CollaboratorID: id,
			ChangeType:     history.ChangeTermination,
			Timestamp:      now,
			Details: history.Details{
				TerminationDate:   terminationDate,
				TerminationReason: reason,
			},
		}

		profileDoc, err := store.Encode(profile)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode terminated profile", err)
		}
		entryDoc, err := store.Encode(entry)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode history entry", err)
		}
		tx.Delete(collaborator.Collection, id.String())
		tx.Put(archive.TerminatedCollection, profileID.String(), profileDoc)
		tx.Put(history.CollectionFor(id), entryID.String(), entryDoc)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return common.NewError(common.CodeConflict, "termination conflicted with a concurrent update, try again", err)
		}
		return err
	}

	s.recordAudit(ctx, actorID, audit.ActionTerminateCollaborator, map[string]any{
		"collaboratorId":  id.String(),
		"profileId":       profileID.String(),
		"terminationDate": terminationDate,
		"reason":          reason,
	})
	return nil
}

// History returns a collaborator's change entries, newest first. The trail
// survives the collaborator's exit from the active collection.
func (s *CollaboratorService) History(ctx context.Context, id common.UUID) ([]history.Entry, error) {
	docs, err := s.store.Query(ctx, history.CollectionFor(id), nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list history", err)
	}
	entries := make([]history.Entry, 0, len(docs))
	for _, doc := range docs {
		var entry history.Entry
		if err := store.Decode(doc, &entry); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode history entry", err)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func (s *CollaboratorService) ListDeclinedProfiles(ctx context.Context) ([]archive.DeclinedProfile, error) {
	docs, err := s.store.Query(ctx, archive.DeclinedCollection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list declined profiles", err)
	}
	profiles := make([]archive.DeclinedProfile, 0, len(docs))
	for _, doc := range docs {
		var profile archive.DeclinedProfile
		if err := store.Decode(doc, &profile); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode declined profile", err)
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].DeclinedAt.After(profiles[j].DeclinedAt)
	})
	return profiles, nil
}

func (s *CollaboratorService) ListTerminatedProfiles(ctx context.Context) ([]archive.TerminatedProfile, error) {
	docs, err := s.store.Query(ctx, archive.TerminatedCollection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list terminated profiles", err)
	}
	profiles := make([]archive.TerminatedProfile, 0, len(docs))
	for _, doc := range docs {
		var profile archive.TerminatedProfile
		if err := store.Decode(doc, &profile); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode terminated profile", err)
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].TerminatedAt.After(profiles[j].TerminatedAt)
	})
	return profiles, nil
}

func (s *CollaboratorService) recordAudit(ctx context.Context, actorID common.UUID, action audit.Action, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actorID, action, details); err != nil {
		s.logger.WithError(err).WithField("action", string(action)).Warn("audit record failed")
	}
}

func getCollaborator(tx store.Txn, id common.UUID) (*collaborator.Collaborator, error) {
	doc, err := tx.Get(collaborator.Collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "collaborator not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load collaborator", err)
	}
	var collab collaborator.Collaborator
	if err := store.Decode(doc, &collab); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode collaborator", err)
	}
	return &collab, nil
}
