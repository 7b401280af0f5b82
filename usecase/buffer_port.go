package usecase

import (
	"context"

	"github.com/fastygo/questify/domain"
)

// Buffered operation names.
const (
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
// Only plain edits are buffered; progression events never are.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferProject(ctx context.Context, operation string, project *domain.Project) error
	BufferArea(ctx context.Context, operation string, area *domain.Area) error
}
