package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/internal/infrastructure/buffer"
	"github.com/fastygo/questify/usecase"
)

// BufferBridge turns domain edits into buffer items for the processor.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityTask, operation, task.UserID, task.ID, task)
}

func (b *BufferBridge) BufferProject(ctx context.Context, operation string, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityProject, operation, project.UserID, project.ID, project)
}

func (b *BufferBridge) BufferArea(ctx context.Context, operation string, area *domain.Area) error {
	if area == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityArea, operation, area.UserID, area.ID, area)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, operation, userID, entityID string, v any) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Operation: operation,
		Data:      payload,
	})
}
