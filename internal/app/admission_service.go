package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/collaborator"
	"hrpipeline/internal/domain/contract"
	"hrpipeline/internal/store"
)

// AdmissionService manages contracts awaiting paperwork and converts them into
// collaborators once the admission form is complete.
type AdmissionService struct {
	store    store.Store
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewAdmissionService(s store.Store, logger *logrus.Logger) *AdmissionService {
	return &AdmissionService{store: s, validate: validator.New(), logger: logger}
}

func (s *AdmissionService) ListContracts(ctx context.Context) ([]contract.Contract, error) {
	docs, err := s.store.Query(ctx, contract.Collection, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list contracts", err)
	}
	contracts := make([]contract.Contract, 0, len(docs))
	for _, doc := range docs {
		var agreement contract.Contract
		if err := store.Decode(doc, &agreement); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode contract", err)
		}
		contracts = append(contracts, agreement)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].ApprovedAt.After(contracts[j].ApprovedAt)
	})
	return contracts, nil
}

type AdmissionForm struct {
	FullName             string `json:"fullName" validate:"required"`
	ContactNumber        string `json:"contactNumber" validate:"required"`
	AdmissionDate        string `json:"admissionDate" validate:"required,datetime=2006-01-02"`
	DocumentDeliveryDate string `json:"documentDeliveryDate" validate:"required,datetime=2006-01-02"`
	VP                   string `json:"vp"`
}

// FillAdmissionForm completes a contract: the contract record is deleted and
// the collaborator created in the same transaction.
func (s *AdmissionService) FillAdmissionForm(ctx context.Context, contractID common.UUID, form AdmissionForm) (*collaborator.Collaborator, error) {
	if err := s.validate.Struct(form); err != nil {
		fields := map[string]string{}
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			for _, fieldErr := range invalid {
				fields[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
			}
		}
		return nil, common.NewValidationError("invalid admission form", fields)
	}

	collabID := common.NewUUID()
	var admitted *collaborator.Collaborator

	err := s.store.Transaction(ctx, func(tx store.Txn) error {
		doc, err := tx.Get(contract.Collection, contractID.String())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return common.NewError(common.CodeNotFound, "contract not found", err)
			}
			return common.NewError(common.CodeInternal, "failed to load contract", err)
		}
		var agreement contract.Contract
		if err := store.Decode(doc, &agreement); err != nil {
			return common.NewError(common.CodeInternal, "failed to decode contract", err)
		}

		collab := collaborator.Collaborator{
			ID:                   collabID,
			JobID:                agreement.JobID,
			Name:                 agreement.Name,
			FullName:             form.FullName,
			Source:               agreement.Source,
			Notes:                agreement.Notes,
			ContactNumber:        form.ContactNumber,
			Status:               collaborator.StatusPendingDocumentation,
			JobTitle:             agreement.JobTitle,
			JobValue:             agreement.JobValue,
			Team:                 agreement.Team,
			VP:                   form.VP,
			CostCenter:           agreement.CostCenter,
			HiringCompany:        agreement.HiringCompany,
			AdmissionDate:        form.AdmissionDate,
			DocumentDeliveryDate: form.DocumentDeliveryDate,
			CreatedAt:            time.Now().UTC(),
		}
		collabDoc, err := store.Encode(collab)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode collaborator", err)
		}
		tx.Delete(contract.Collection, contractID.String())
		tx.Put(collaborator.Collection, collabID.String(), collabDoc)
		admitted = &collab
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, common.NewError(common.CodeConflict, "admission conflicted with a concurrent update, try again", err)
		}
		return nil, err
	}
	return admitted, nil
}
