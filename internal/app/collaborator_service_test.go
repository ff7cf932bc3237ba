package app_test

import (
	"context"
	"sync"
	"testing"

	"hrpipeline/internal/app"
	"hrpipeline/internal/audit"
	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/collaborator"
	"hrpipeline/internal/domain/history"
	"hrpipeline/internal/domain/job"
	"hrpipeline/internal/store"
	"hrpipeline/internal/store/memstore"
)

type pipelineFixture struct {
	mem           *memstore.Memstore
	audit         *audit.StoreSink
	recruitment   *app.RecruitmentService
	admission     *app.AdmissionService
	collaborators *app.CollaboratorService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	mem := memstore.New()
	auditSink := audit.NewStoreSink(mem)
	logger := quietLogger()
	return &pipelineFixture{
		mem:           mem,
		audit:         auditSink,
		recruitment:   app.NewRecruitmentService(mem, auditSink, nil, nil, logger),
		admission:     app.NewAdmissionService(mem, logger),
		collaborators: app.NewCollaboratorService(mem, auditSink, logger),
	}
}

// admitCollaborator runs a candidate through approval and admission, returning
// the collaborator and its opening.
func (f *pipelineFixture) admitCollaborator(t *testing.T, positions int) (*collaborator.Collaborator, *job.JobOpening) {
	t.Helper()
	ctx := context.Background()
	opening, err := f.recruitment.CreateJobOpening(ctx, app.CreateJobOpeningInput{
		JobTitle:      "Data Analyst",
		Team:          "Insights",
		HiringManager: "Dana",
		Positions:     positions,
		HiringCompany: "Acme Ltda",
	})
	if err != nil {
		t.Fatalf("create opening: %v", err)
	}
	cand, err := f.recruitment.AddCandidate(ctx, opening.ID, app.AddCandidateInput{Name: "Ana", Source: "referral"})
	if err != nil {
		t.Fatalf("add candidate: %v", err)
	}
	err = f.recruitment.SetCandidateStatus(ctx, common.NewUUID(), opening.ID, cand.ID, app.CandidateStatusInput{
		Status: "approved",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	contracts, err := f.admission.ListContracts(ctx)
	if err != nil {
		t.Fatalf("list contracts: %v", err)
	}
	if len(contracts) != 1 {
		t.Fatalf("contracts = %d, want 1", len(contracts))
	}
	collab, err := f.admission.FillAdmissionForm(ctx, contracts[0].ID, app.AdmissionForm{
		FullName:             "Ana Maria Souza",
		ContactNumber:        "+55 11 99999-0000",
		AdmissionDate:        "2026-10-01",
		DocumentDeliveryDate: "2026-09-20",
		VP:                   "Operations",
	})
	if err != nil {
		t.Fatalf("fill admission form: %v", err)
	}
	return collab, opening
}

func TestFillAdmissionFormMovesContractToCollaborator(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, _ := f.admitCollaborator(t, 1)

	if collab.Status != collaborator.StatusPendingDocumentation {
		t.Fatalf("status = %q, want pending_documentation", collab.Status)
	}
	if collab.FullName != "Ana Maria Souza" || collab.Name != "Ana" {
		t.Fatalf("names = %q / %q", collab.Name, collab.FullName)
	}

	contracts, _ := f.admission.ListContracts(ctx)
	if len(contracts) != 0 {
		t.Fatalf("contracts = %d after admission, want 0", len(contracts))
	}
	if _, err := f.collaborators.Get(ctx, collab.ID); err != nil {
		t.Fatalf("collaborator missing: %v", err)
	}
}

func TestFillAdmissionFormValidation(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.admission.FillAdmissionForm(ctx, common.NewUUID(), app.AdmissionForm{
		FullName:      "Ana",
		AdmissionDate: "October 1st",
	})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRescheduleAdmissionUpdatesDate(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, _ := f.admitCollaborator(t, 1)

	updated, err := f.collaborators.SetStatus(ctx, collab.ID, string(collaborator.StatusRescheduledAdmission), "2026-10-15")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if updated.Status != collaborator.StatusRescheduledAdmission || updated.AdmissionDate != "2026-10-15" {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := f.collaborators.SetStatus(ctx, collab.ID, string(collaborator.StatusRescheduledAdmission), ""); !common.Is(err, common.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDeclineReturnsCapacityToOpening(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, opening := f.admitCollaborator(t, 1)

	before, _ := f.recruitment.GetJobOpening(ctx, opening.ID)
	if before.ApprovedCount != 1 || before.Status != job.StatusFinished {
		t.Fatalf("opening before decline = %+v", before)
	}

	if err := f.collaborators.Decline(ctx, common.NewUUID(), collab.ID, "accepted another offer"); err != nil {
		t.Fatalf("decline: %v", err)
	}

	after, _ := f.recruitment.GetJobOpening(ctx, opening.ID)
	if after.ApprovedCount != 0 {
		t.Fatalf("approvedCount = %d after decline, want 0", after.ApprovedCount)
	}
	if after.Status != job.StatusReopened {
		t.Fatalf("status = %q after decline, want reopened", after.Status)
	}

	if _, err := f.collaborators.Get(ctx, collab.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("collaborator still active after decline: %v", err)
	}
	declined, err := f.collaborators.ListDeclinedProfiles(ctx)
	if err != nil {
		t.Fatalf("list declined: %v", err)
	}
	if len(declined) != 1 || declined[0].DeclineReason != "accepted another offer" {
		t.Fatalf("declined profiles = %+v", declined)
	}
	if declined[0].Collaborator.Status != collaborator.StatusDeclined {
		t.Fatalf("archived status = %q", declined[0].Collaborator.Status)
	}
	if declined[0].CollaboratorID != collab.ID {
		t.Fatalf("collaboratorId = %s, want %s", declined[0].CollaboratorID, collab.ID)
	}

	entries, err := f.collaborators.History(ctx, collab.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].ChangeType != history.ChangeDecline {
		t.Fatalf("history = %+v", entries)
	}
}

func TestDeclineRequiresReason(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, _ := f.admitCollaborator(t, 1)

	if err := f.collaborators.Decline(ctx, common.NewUUID(), collab.ID, ""); !common.Is(err, common.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, err := f.collaborators.Get(ctx, collab.ID); err != nil {
		t.Fatalf("collaborator missing after failed decline: %v", err)
	}
}

func TestDeclineWithoutJobLinkSkipsReopen(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	// legacy record with no originating opening
	legacy := collaborator.Collaborator{
		ID:       common.NewUUID(),
		Name:     "Bruno",
		FullName: "Bruno Lima",
		Status:   collaborator.StatusPendingDocumentation,
	}
	doc, err := store.Encode(legacy)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.mem.Put(ctx, collaborator.Collection, legacy.ID.String(), doc); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := f.collaborators.Decline(ctx, common.NewUUID(), legacy.ID, "changed plans"); err != nil {
		t.Fatalf("decline: %v", err)
	}
	declined, _ := f.collaborators.ListDeclinedProfiles(ctx)
	if len(declined) != 1 {
		t.Fatalf("declined profiles = %d, want 1", len(declined))
	}
}

func TestTransferRecordsHistory(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, _ := f.admitCollaborator(t, 1)
	if _, err := f.collaborators.SetStatus(ctx, collab.ID, string(collaborator.StatusActive), ""); err != nil {
		t.Fatalf("activate: %v", err)
	}

	updated, err := f.collaborators.Transfer(ctx, common.NewUUID(), collab.ID, app.TransferInput{
		JobTitle:     "Senior Data Analyst",
		Team:         "Forecasting",
		VP:           "Finance",
		TransferDate: "2026-11-01",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if updated.JobTitle != "Senior Data Analyst" || updated.Team != "Forecasting" {
		t.Fatalf("updated = %+v", updated)
	}
	// hiring company carries over when the transfer leaves it blank
	if updated.HiringCompany != "Acme Ltda" {
		t.Fatalf("hiringCompany = %q", updated.HiringCompany)
	}

	entries, err := f.collaborators.History(ctx, collab.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].ChangeType != history.ChangeTransfer {
		t.Fatalf("history = %+v", entries)
	}
	details := entries[0].Details
	if details.From == nil || details.To == nil {
		t.Fatal("transfer history missing field sets")
	}
	if details.From.JobTitle != "Data Analyst" || details.To.JobTitle != "Senior Data Analyst" {
		t.Fatalf("field sets = %+v -> %+v", details.From, details.To)
	}
	if details.TransferDate != "2026-11-01" {
		t.Fatalf("transferDate = %q", details.TransferDate)
	}
}

func TestTransferRequiresActiveStatus(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, _ := f.admitCollaborator(t, 1)

	_, err := f.collaborators.Transfer(ctx, common.NewUUID(), collab.ID, app.TransferInput{
		JobTitle:     "Senior Data Analyst",
		Team:         "Forecasting",
		TransferDate: "2026-11-01",
	})
	if !common.Is(err, common.CodeInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}
}

func TestTerminateMovesToPoolWithoutReopeningCapacity(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, opening := f.admitCollaborator(t, 1)
	if _, err := f.collaborators.SetStatus(ctx, collab.ID, string(collaborator.StatusActive), ""); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := f.collaborators.Terminate(ctx, common.NewUUID(), collab.ID, "2026-12-31", "position eliminated"); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	if _, err := f.collaborators.Get(ctx, collab.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("collaborator still active after termination: %v", err)
	}
	terminated, err := f.collaborators.ListTerminatedProfiles(ctx)
	if err != nil {
		t.Fatalf("list terminated: %v", err)
	}
	if len(terminated) != 1 || terminated[0].TerminationReason != "position eliminated" {
		t.Fatalf("terminated profiles = %+v", terminated)
	}
	if terminated[0].CollaboratorID != collab.ID {
		t.Fatalf("collaboratorId = %s, want %s", terminated[0].CollaboratorID, collab.ID)
	}

	// terminations never free up the opening
	after, _ := f.recruitment.GetJobOpening(ctx, opening.ID)
	if after.ApprovedCount != 1 || after.Status != job.StatusFinished {
		t.Fatalf("opening after termination = %+v", after)
	}

	entries, _ := f.collaborators.History(ctx, collab.ID)
	if len(entries) != 1 || entries[0].ChangeType != history.ChangeTermination {
		t.Fatalf("history = %+v", entries)
	}
}

func TestConcurrentTransferAndTerminateDoNotResurrect(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	collab, _ := f.admitCollaborator(t, 1)
	if _, err := f.collaborators.SetStatus(ctx, collab.ID, string(collaborator.StatusActive), ""); err != nil {
		t.Fatalf("activate: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = f.collaborators.Transfer(ctx, common.NewUUID(), collab.ID, app.TransferInput{
			JobTitle:     "Senior Data Analyst",
			Team:         "Forecasting",
			TransferDate: "2026-11-01",
		})
	}()
	go func() {
		defer wg.Done()
		if err := f.collaborators.Terminate(ctx, common.NewUUID(), collab.ID, "2026-12-31", "position eliminated"); err != nil {
			t.Errorf("terminate: %v", err)
		}
	}()
	wg.Wait()

	// a transfer racing the termination must not write the collaborator back
	if _, err := f.collaborators.Get(ctx, collab.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("collaborator still active after termination: %v", err)
	}
	terminated, err := f.collaborators.ListTerminatedProfiles(ctx)
	if err != nil {
		t.Fatalf("list terminated: %v", err)
	}
	if len(terminated) != 1 {
		t.Fatalf("terminated profiles = %d, want 1", len(terminated))
	}
}

func TestConcurrentAdmissionsCreateOneCollaborator(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	opening, err := f.recruitment.CreateJobOpening(ctx, app.CreateJobOpeningInput{
		JobTitle:      "Data Analyst",
		Team:          "Insights",
		HiringManager: "Dana",
		Positions:     1,
	})
	if err != nil {
		t.Fatalf("create opening: %v", err)
	}
	cand, err := f.recruitment.AddCandidate(ctx, opening.ID, app.AddCandidateInput{Name: "Ana", Source: "referral"})
	if err != nil {
		t.Fatalf("add candidate: %v", err)
	}
	if err := f.recruitment.SetCandidateStatus(ctx, common.NewUUID(), opening.ID, cand.ID, app.CandidateStatusInput{
		Status: "approved",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	contracts, err := f.admission.ListContracts(ctx)
	if err != nil || len(contracts) != 1 {
		t.Fatalf("contracts = %d (%v), want 1", len(contracts), err)
	}
	form := app.AdmissionForm{
		FullName:             "Ana Maria Souza",
		ContactNumber:        "+55 11 99999-0000",
		AdmissionDate:        "2026-10-01",
		DocumentDeliveryDate: "2026-09-20",
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.admission.FillAdmissionForm(ctx, contracts[0].ID, form)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	collabs, err := f.collaborators.List(ctx)
	if err != nil {
		t.Fatalf("list collaborators: %v", err)
	}
	if len(collabs) != 1 {
		t.Fatalf("collaborators = %d, want 1", len(collabs))
	}
	remaining, _ := f.admission.ListContracts(ctx)
	if len(remaining) != 0 {
		t.Fatalf("contracts = %d after admission, want 0", len(remaining))
	}
}

func TestContractSnapshotSurvivesAdmission(t *testing.T) {
	f := newPipelineFixture(t)
	collab, opening := f.admitCollaborator(t, 1)

	if collab.JobID != opening.ID {
		t.Fatalf("jobId = %s, want %s", collab.JobID, opening.ID)
	}
	if collab.JobTitle != opening.JobTitle || collab.Team != opening.Team || collab.HiringCompany != opening.HiringCompany {
		t.Fatalf("snapshot mismatch: %+v", collab)
	}
	if collab.Status != collaborator.StatusPendingDocumentation {
		t.Fatalf("status = %q", collab.Status)
	}
}
