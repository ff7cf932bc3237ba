package job_test

import (
	"context"
	"testing"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/job"
	"hrpipeline/internal/store"
	"hrpipeline/internal/store/memstore"
)

func seedOpening(t *testing.T, mem *memstore.Memstore, positions, approved int) common.UUID {
	t.Helper()
	opening := job.JobOpening{
		ID:            common.NewUUID(),
		JobTitle:      "Data Engineer",
		Team:          "Platform",
		Positions:     positions,
		ApprovedCount: approved,
		Status:        job.StatusOpen,
	}
	doc, err := store.Encode(opening)
	if err != nil {
		t.Fatalf("encode opening: %v", err)
	}
	if err := mem.Put(context.Background(), job.Collection, opening.ID.String(), doc); err != nil {
		t.Fatalf("seed opening: %v", err)
	}
	return opening.ID
}

func loadOpening(t *testing.T, mem *memstore.Memstore, id common.UUID) job.JobOpening {
	t.Helper()
	doc, err := mem.Get(context.Background(), job.Collection, id.String())
	if err != nil {
		t.Fatalf("get opening: %v", err)
	}
	var opening job.JobOpening
	if err := store.Decode(doc, &opening); err != nil {
		t.Fatalf("decode opening: %v", err)
	}
	return opening
}

func TestApproveCapacityIncrementsCounter(t *testing.T) {
	mem := memstore.New()
	id := seedOpening(t, mem, 3, 0)

	err := mem.Transaction(context.Background(), func(tx store.Txn) error {
		_, err := job.ApproveCapacity(tx, id)
		return err
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	opening := loadOpening(t, mem, id)
	if opening.ApprovedCount != 1 {
		t.Fatalf("approvedCount = %d, want 1", opening.ApprovedCount)
	}
	if opening.Status != job.StatusOpen {
		t.Fatalf("status = %q, want %q", opening.Status, job.StatusOpen)
	}
}

func TestApproveCapacityFinishesAtTarget(t *testing.T) {
	mem := memstore.New()
	id := seedOpening(t, mem, 2, 1)

	err := mem.Transaction(context.Background(), func(tx store.Txn) error {
		_, err := job.ApproveCapacity(tx, id)
		return err
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	opening := loadOpening(t, mem, id)
	if opening.ApprovedCount != 2 {
		t.Fatalf("approvedCount = %d, want 2", opening.ApprovedCount)
	}
	if opening.Status != job.StatusFinished {
		t.Fatalf("status = %q, want %q", opening.Status, job.StatusFinished)
	}
}

func TestApproveCapacityRejectsWhenFull(t *testing.T) {
	mem := memstore.New()
	id := seedOpening(t, mem, 1, 1)

	err := mem.Transaction(context.Background(), func(tx store.Txn) error {
		_, err := job.ApproveCapacity(tx, id)
		return err
	})
	if !common.Is(err, common.CodeCapacityExceeded) {
		t.Fatalf("err = %v, want capacity exceeded", err)
	}

	opening := loadOpening(t, mem, id)
	if opening.ApprovedCount != 1 {
		t.Fatalf("approvedCount changed to %d after failed approve", opening.ApprovedCount)
	}
}

func TestApproveCapacityUnknownOpening(t *testing.T) {
	mem := memstore.New()

	err := mem.Transaction(context.Background(), func(tx store.Txn) error {
		_, err := job.ApproveCapacity(tx, common.NewUUID())
		return err
	})
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestReopenCapacityDecrementsAndReopens(t *testing.T) {
	mem := memstore.New()
	id := seedOpening(t, mem, 2, 2)

	err := mem.Transaction(context.Background(), func(tx store.Txn) error {
		_, err := job.ReopenCapacity(tx, id)
		return err
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	opening := loadOpening(t, mem, id)
	if opening.ApprovedCount != 1 {
		t.Fatalf("approvedCount = %d, want 1", opening.ApprovedCount)
	}
	if opening.Status != job.StatusReopened {
		t.Fatalf("status = %q, want %q", opening.Status, job.StatusReopened)
	}
}

func TestReopenCapacityFloorsAtZero(t *testing.T) {
	mem := memstore.New()
	id := seedOpening(t, mem, 2, 0)

	err := mem.Transaction(context.Background(), func(tx store.Txn) error {
		_, err := job.ReopenCapacity(tx, id)
		return err
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	opening := loadOpening(t, mem, id)
	if opening.ApprovedCount != 0 {
		t.Fatalf("approvedCount = %d, want 0", opening.ApprovedCount)
	}
}

func TestApproveCapacitySingleWinnerUnderContention(t *testing.T) {
	mem := memstore.NewWithRetries(1)
	id := seedOpening(t, mem, 1, 0)

	const contenders = 8
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		go func() {
			results <- mem.Transaction(context.Background(), func(tx store.Txn) error {
				_, err := job.ApproveCapacity(tx, id)
				return err
			})
		}()
	}

	wins := 0
	for i := 0; i < contenders; i++ {
		if err := <-results; err == nil {
			wins++
		}
	}
	if wins == 0 {
		t.Fatal("no approve committed")
	}

	opening := loadOpening(t, mem, id)
	if opening.ApprovedCount != wins {
		t.Fatalf("approvedCount = %d, want %d committed approvals", opening.ApprovedCount, wins)
	}
	if opening.ApprovedCount > opening.Positions {
		t.Fatalf("approvedCount %d exceeds positions %d", opening.ApprovedCount, opening.Positions)
	}
}
