package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"share-ingest-service/internal/entity"
	"share-ingest-service/internal/metrics"
)

// QueueWriter is the repository port the publisher needs
// (implementation: postgresql.QueueRepository).
type QueueWriter interface {
	Insert(ctx context.Context, item entity.WorkItem) (uuid.UUID, time.Time, error)
}

// Draft describes a work item before the store assigns id and created_at.
type Draft struct {
	Type        entity.ItemType
	Content     string
	URL         *string
	Mode        entity.Mode
	StoragePath *string
}

type QueuePublisher struct {
	repo QueueWriter
}

func NewQueuePublisher(repo QueueWriter) *QueuePublisher {
	return &QueuePublisher{repo: repo}
}

// Publish appends one work item with status=waiting. onSuccess runs only
// after the record is durably written, so a fan-in counter driven from it
// can never advance on a failed attempt.
func (p *QueuePublisher) Publish(ctx context.Context, draft Draft, onSuccess func()) (uuid.UUID, error) {
	if err := validateDraft(draft); err != nil {
		return uuid.Nil, &PublishError{Err: err}
	}

	item := entity.WorkItem{
		Type:        draft.Type,
		Content:     draft.Content,
		URL:         draft.URL,
		Mode:        draft.Mode,
		Status:      entity.StatusWaiting,
		Origin:      entity.Origin,
		StoragePath: draft.StoragePath,
	}

	id, _, err := p.repo.Insert(ctx, item)
	if err != nil {
		metrics.PublishesTotal.WithLabelValues("error").Inc()
		return uuid.Nil, &PublishError{Err: err}
	}
	metrics.PublishesTotal.WithLabelValues("ok").Inc()

	if onSuccess != nil {
		onSuccess()
	}
	return id, nil
}

// validateDraft enforces the shape invariant: url and storage path are
// present iff the item is an image.
func validateDraft(d Draft) error {
	switch d.Type {
	case entity.TypeText:
		if d.URL != nil || d.StoragePath != nil {
			return fmt.Errorf("text item must not carry url or storage path")
		}
	case entity.TypeImage:
		if d.URL == nil || d.StoragePath == nil {
			return fmt.Errorf("image item requires url and storage path")
		}
	default:
		return fmt.Errorf("unknown item type %q", d.Type)
	}
	if d.Content == "" {
		return fmt.Errorf("content is required")
	}
	if d.Mode == "" {
		return fmt.Errorf("mode is required")
	}
	return nil
}
