package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/internal/infrastructure/buffer"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/repository/memory"
	"github.com/fastygo/questify/usecase"
)

type switchHealth struct{ online atomic.Bool }

func (h *switchHealth) IsOnline() bool { return h.online.Load() }

type failingTasks struct{ repository.TaskRepository }

func (failingTasks) UpdateDetails(context.Context, *domain.Task, bool) error {
	return errors.New("connection refused")
}

type processorFixture struct {
	store     *memory.Store
	buf       *buffer.Store
	health    *switchHealth
	processor *BufferProcessor
	bridge    *BufferBridge
}

func newProcessorFixture(t *testing.T, tasks repository.TaskRepository) *processorFixture {
	t.Helper()
	store := memory.NewStore()
	buf, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "pending")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { _ = buf.Close() })

	if tasks == nil {
		tasks = store.Tasks()
	}
	health := &switchHealth{}
	processor := NewBufferProcessor(buf, health, Replayers{
		Tasks:    tasks,
		Projects: store.Projects(),
		Areas:    store.Areas(),
	}, nil, ProcessorConfig{MaxRetries: 2})

	return &processorFixture{store: store, buf: buf, health: health, processor: processor, bridge: NewBufferBridge(processor)}
}

func TestBufferedTaskUpdateReplays(t *testing.T) {
	f := newProcessorFixture(t, nil)
	ctx := context.Background()

	task, err := f.store.Tasks().Create(ctx, &domain.Task{UserID: "u1", Title: "draft", XP: 50, Tokens: 5})
	if err != nil {
		t.Fatal(err)
	}

	edited := *task
	edited.Title = "final"
	edited.XP = 90
	if err := f.bridge.BufferTask(ctx, usecase.OperationUpdate, &edited); err != nil {
		t.Fatalf("buffer: %v", err)
	}
	if f.processor.Size() != 1 {
		t.Fatalf("size = %d", f.processor.Size())
	}

	// completion lands while the edit is parked
	task.Completed = true
	task.FocusSeconds = 600
	if err := f.store.Tasks().Update(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := f.processor.Drain(ctx); err != nil {
		t.Fatalf("offline drain: %v", err)
	}
	if f.processor.Size() != 1 {
		t.Fatal("offline drain must keep the item")
	}

	f.health.online.Store(true)
	if err := f.processor.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if f.processor.Size() != 0 {
		t.Fatalf("size after drain = %d", f.processor.Size())
	}

	stored, _ := f.store.Tasks().GetByID(ctx, task.ID)
	if stored.Title != "final" {
		t.Fatalf("title = %q", stored.Title)
	}
	if !stored.Completed || stored.FocusSeconds != 600 || stored.XP != 50 {
		t.Fatalf("replay overwrote progression state: %+v", stored)
	}
}

func TestBufferOperationOnlineAppliesImmediately(t *testing.T) {
	f := newProcessorFixture(t, nil)
	ctx := context.Background()
	f.health.online.Store(true)

	area := &domain.Area{UserID: "u1", Name: "Home"}
	if err := f.store.Areas().Create(ctx, area); err != nil {
		t.Fatal(err)
	}
	if err := f.bridge.BufferArea(ctx, usecase.OperationDelete, area); err != nil {
		t.Fatalf("buffer: %v", err)
	}
	if f.processor.Size() != 0 {
		t.Fatal("online edit should not be parked")
	}
	if _, err := f.store.Areas().GetByID(ctx, area.ID); !errors.Is(err, domain.ErrAreaNotFound) {
		t.Fatalf("area still present: %v", err)
	}
}

func TestDrainDiscardsMissingEntity(t *testing.T) {
	f := newProcessorFixture(t, nil)
	ctx := context.Background()

	if err := f.bridge.BufferTask(ctx, usecase.OperationDelete, &domain.Task{ID: "gone", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	f.health.online.Store(true)
	if err := f.processor.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	if f.processor.Size() != 0 {
		t.Fatal("item for a missing entity was kept")
	}
	if dead, _ := f.buf.Dead(0); len(dead) != 0 {
		t.Fatal("item for a missing entity was buried")
	}
}

func TestDrainBuriesAfterMaxRetries(t *testing.T) {
	f := newProcessorFixture(t, failingTasks{})
	ctx := context.Background()

	if err := f.bridge.BufferTask(ctx, usecase.OperationUpdate, &domain.Task{ID: "t1", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	f.health.online.Store(true)

	if err := f.processor.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	items, _ := f.buf.Peek(10)
	if len(items) != 1 || items[0].Retries != 1 {
		t.Fatalf("after first drain = %+v", items)
	}

	if err := f.processor.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	if f.processor.Size() != 0 {
		t.Fatal("item not removed after max retries")
	}
	dead, _ := f.buf.Dead(0)
	if len(dead) != 1 || dead[0].LastError == "" {
		t.Fatalf("dead = %+v", dead)
	}
}

func TestBufferBridgeRejectsNil(t *testing.T) {
	f := newProcessorFixture(t, nil)
	if err := f.bridge.BufferTask(context.Background(), usecase.OperationUpdate, nil); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("err = %v", err)
	}
}
