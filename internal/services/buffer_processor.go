package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/internal/infrastructure/buffer"
	"github.com/fastygo/questify/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention drops pending edits older than this; zero keeps them forever.
	Retention time.Duration
}

// Replayers are the repositories buffered edits are written back to.
type Replayers struct {
	Tasks    repository.TaskRepository
	Projects repository.ProjectRepository
	Areas    repository.AreaRepository
}

// BufferProcessor replays buffered edits once Postgres is reachable again.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	repos   Replayers
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	repos Replayers,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		repos:   repos,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", max(int(cfg.Interval.Seconds()), 1))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})

	if cfg.Retention > 0 {
		_, _ = bp.cron.AddFunc("@hourly", bp.expire)
	}

	return bp
}

func (bp *BufferProcessor) expire() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Warn("expired buffered edits", zap.Int("count", removed))
	}
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running drain to finish or for ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch. Items whose target no longer exists are discarded;
// other failures are retried until MaxRetries, then buried.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := bp.processItem(ctx, item)
		switch {
		case err == nil, domain.IsDomainError(err, domain.ErrCodeNotFound):
			if err != nil {
				bp.logger.Info("discarding buffered edit for missing entity",
					zap.String("entity", item.Entity),
					zap.String("entity_id", item.EntityID))
			}
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}
		case item.Retries+1 >= bp.cfg.MaxRetries:
			bp.logger.Warn("burying buffer item (max retries reached)",
				zap.String("item_id", item.ID),
				zap.Error(err))
			if err := bp.store.Bury(item, err); err != nil {
				bp.logger.Error("failed to bury buffer item", zap.Error(err))
			}
		default:
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Error(err))
			if err := bp.store.Retry(item, err); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
		}
	}
	return nil
}

// BufferOperation attempts the edit immediately when the monitor says we are
// online and persists it otherwise.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return errors.New("buffer processor not configured")
	}

	if bp.monitor != nil && bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			return nil
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityTask:
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return err
		}
		switch item.Operation {
		case buffer.OperationUpdate:
			return bp.replayTaskUpdate(ctx, &task)
		case buffer.OperationDelete:
			return bp.repos.Tasks.Delete(ctx, task.ID)
		}

	case buffer.EntityProject:
		var project domain.Project
		if err := json.Unmarshal(item.Data, &project); err != nil {
			return err
		}
		switch item.Operation {
		case buffer.OperationUpdate:
			return bp.repos.Projects.Update(ctx, &project)
		case buffer.OperationDelete:
			return bp.repos.Projects.Delete(ctx, project.ID)
		}

	case buffer.EntityArea:
		var area domain.Area
		if err := json.Unmarshal(item.Data, &area); err != nil {
			return err
		}
		switch item.Operation {
		case buffer.OperationUpdate:
			return bp.repos.Areas.Update(ctx, &area)
		case buffer.OperationDelete:
			return bp.repos.Areas.Delete(ctx, area.ID)
		}

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
	return fmt.Errorf("unsupported operation %s for %s", item.Operation, item.Entity)
}

// replayTaskUpdate writes only editable fields. Completion, focus time and
// bonus XP may have moved on while the edit was parked and stay as stored; a
// parked reward change is dropped if the task was completed in the meantime.
func (bp *BufferProcessor) replayTaskUpdate(ctx context.Context, task *domain.Task) error {
	err := bp.repos.Tasks.UpdateDetails(ctx, task, true)
	if errors.Is(err, domain.ErrRewardLocked) {
		bp.logger.Debug("buffered reward change dropped for completed task", zap.String("task_id", task.ID))
		return bp.repos.Tasks.UpdateDetails(ctx, task, false)
	}
	return err
}
