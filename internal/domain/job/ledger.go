package job

import (
	"errors"
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/store"
)

// The capacity ledger owns the approvedCount/positions invariant. Both
// operations run inside the caller's transaction so the counter update and
// the record move that triggered it commit as one unit; they must run exactly
// once per logical event and are never exposed as standalone store calls.

// ApproveCapacity increments approvedCount and marks the opening finished
// when the target headcount is reached.
func ApproveCapacity(tx store.Txn, id common.UUID) (*JobOpening, error) {
	opening, err := getInTxn(tx, id)
	if err != nil {
		return nil, err
	}
	if opening.ApprovedCount >= opening.Positions {
		return nil, common.NewError(common.CodeCapacityExceeded, "job opening has no remaining positions", nil)
	}
	opening.ApprovedCount++
	if opening.ApprovedCount == opening.Positions {
		opening.Status = StatusFinished
	}
	if err := putInTxn(tx, opening); err != nil {
		return nil, err
	}
	return opening, nil
}

// ReopenCapacity returns one position to the opening, flooring the counter at
// zero. Used only by the decline compensating transaction.
func ReopenCapacity(tx store.Txn, id common.UUID) (*JobOpening, error) {
	opening, err := getInTxn(tx, id)
	if err != nil {
		return nil, err
	}
	if opening.ApprovedCount > 0 {
		opening.ApprovedCount--
	}
	opening.Status = StatusReopened
	if err := putInTxn(tx, opening); err != nil {
		return nil, err
	}
	return opening, nil
}

func getInTxn(tx store.Txn, id common.UUID) (*JobOpening, error) {
	doc, err := tx.Get(Collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "job opening not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job opening", err)
	}
	var opening JobOpening
	if err := store.Decode(doc, &opening); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode job opening", err)
	}
	return &opening, nil
}

func putInTxn(tx store.Txn, opening *JobOpening) error {
	opening.UpdatedAt = time.Now().UTC()
	doc, err := store.Encode(opening)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to encode job opening", err)
	}
	tx.Put(Collection, opening.ID.String(), doc)
	return nil
}
