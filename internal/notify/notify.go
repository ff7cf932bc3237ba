// Package notify delivers in-app notifications. Like the audit sink it is a
// post-commit, best-effort boundary.
package notify

import (
	"context"
	"errors"
	"sort"
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/store"
)

const Collection = "notifications"

type Notification struct {
	ID           common.UUID    `json:"id"`
	TargetUserID common.UUID    `json:"targetUserId"`
	Message      string         `json:"message"`
	Details      map[string]any `json:"details,omitempty"`
	Read         bool           `json:"read"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type Sink interface {
	Notify(ctx context.Context, targetUserID common.UUID, message string, details map[string]any) error
}

type StoreSink struct {
	store store.Store
}

func NewStoreSink(s store.Store) *StoreSink {
	return &StoreSink{store: s}
}

func (s *StoreSink) Notify(ctx context.Context, targetUserID common.UUID, message string, details map[string]any) error {
	if targetUserID.IsZero() {
		return nil
	}
	notification := Notification{
		ID:           common.NewUUID(),
		TargetUserID: targetUserID,
		Message:      message,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	doc, err := store.Encode(notification)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, Collection, notification.ID.String(), doc)
}

// ListFor returns a user's notifications, newest first.
func (s *StoreSink) ListFor(ctx context.Context, userID common.UUID) ([]Notification, error) {
	docs, err := s.store.Query(ctx, Collection, func(doc store.Document) bool {
		return doc["targetUserId"] == userID.String()
	})
	if err != nil {
		return nil, err
	}
	items := make([]Notification, 0, len(docs))
	for _, doc := range docs {
		var n Notification
		if err := store.Decode(doc, &n); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *StoreSink) MarkRead(ctx context.Context, id common.UUID) error {
	doc, err := s.store.Get(ctx, Collection, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NewError(common.CodeNotFound, "notification not found", err)
		}
		return err
	}
	doc["read"] = true
	return s.store.Put(ctx, Collection, id.String(), doc)
}
