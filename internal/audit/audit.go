// Package audit is the boundary through which committed transitions are
// reported to the audit trail. Recording happens after commit and is
// best-effort: a failure here never rolls back or fails the transition.
package audit

import (
	"context"
	"sort"
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/store"
)

const Collection = "audit_logs"

type Action string

const (
	ActionApproveCandidate      Action = "APPROVE_CANDIDATE"
	ActionRejectCandidate       Action = "REJECT_CANDIDATE"
	ActionDeclineCollaborator   Action = "DECLINE_COLLABORATOR"
	ActionTransferCollaborator  Action = "TRANSFER_COLLABORATOR"
	ActionTerminateCollaborator Action = "TERMINATE_COLLABORATOR"
	ActionCreateRole            Action = "CREATE_ROLE"
	ActionUpdateRole            Action = "UPDATE_ROLE"
	ActionDeleteRole            Action = "DELETE_ROLE"
	ActionAssignRole            Action = "ASSIGN_ROLE"
)

type Record struct {
	ID        common.UUID    `json:"id"`
	ActorID   common.UUID    `json:"actorId"`
	Action    Action         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink receives audit records after a transition commits.
type Sink interface {
	Record(ctx context.Context, actorID common.UUID, action Action, details map[string]any) error
}

// StoreSink appends audit records to the audit_logs collection.
type StoreSink struct {
	store store.Store
}

func NewStoreSink(s store.Store) *StoreSink {
	return &StoreSink{store: s}
}

func (s *StoreSink) Record(ctx context.Context, actorID common.UUID, action Action, details map[string]any) error {
	rec := Record{
		ID:        common.NewUUID(),
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	doc, err := store.Encode(rec)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, Collection, rec.ID.String(), doc)
}

// List returns audit records, newest first.
func (s *StoreSink) List(ctx context.Context) ([]Record, error) {
	docs, err := s.store.Query(ctx, Collection, nil)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		var rec Record
		if err := store.Decode(doc, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}
