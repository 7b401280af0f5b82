package task

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/repository/memory"
	"github.com/fastygo/questify/usecase"
	"github.com/fastygo/questify/usecase/gamification"
)

type stubSuggester struct {
	xp  int
	err error
}

func (s stubSuggester) SuggestTaskXP(context.Context, usecase.TaskXPRequest) (int, error) {
	return s.xp, s.err
}

func (s stubSuggester) SuggestWeeklyMissions(context.Context, usecase.MissionRequest) ([]domain.MissionDraft, error) {
	return nil, errors.New("not used")
}

type recordingBuffer struct {
	tasks []string
}

func (b *recordingBuffer) BufferTask(_ context.Context, op string, task *domain.Task) error {
	b.tasks = append(b.tasks, op+":"+task.ID)
	return nil
}
func (b *recordingBuffer) BufferProject(context.Context, string, *domain.Project) error { return nil }
func (b *recordingBuffer) BufferArea(context.Context, string, *domain.Area) error       { return nil }

// offlineTasks fails writes the way a dropped database connection does.
type offlineTasks struct{ repository.TaskRepository }

func (offlineTasks) UpdateDetails(context.Context, *domain.Task, bool) error {
	return errors.New("conn reset")
}
func (offlineTasks) Delete(context.Context, string) error { return errors.New("conn reset") }

func newUseCase(store *memory.Store, s usecase.Suggester, tasks repository.TaskRepository, buf usecase.OperationBuffer) *UseCase {
	if tasks == nil {
		tasks = store.Tasks()
	}
	return New(tasks, store.Projects(), store.Skills(), s, buf, nil)
}

func TestCreateTaskUsesSuggestedReward(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store, stubSuggester{xp: 85}, nil, nil)

	task, err := uc.CreateTask(context.Background(), "u1", CreateInput{Title: "  Ship release  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "Ship release" || task.XP != 85 || task.Tokens != 8 || task.Completed {
		t.Fatalf("task = %+v", task)
	}
	if task.Difficulty() != domain.DifficultyHard {
		t.Fatalf("difficulty = %s", task.Difficulty())
	}
}

func TestCreateTaskFailures(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	parent := &domain.Skill{UserID: "u1", Name: "Fitness"}
	_ = store.Skills().Create(ctx, parent)
	_ = store.Skills().Create(ctx, &domain.Skill{UserID: "u1", Name: "Running", ParentID: &parent.ID})
	foreign := &domain.Skill{UserID: "u2", Name: "Chess"}
	_ = store.Skills().Create(ctx, foreign)

	tests := []struct {
		name      string
		suggester usecase.Suggester
		in        CreateInput
		code      domain.ErrorCode
	}{
		{"no suggester", nil, CreateInput{Title: "x"}, domain.ErrCodeUnavailable},
		{"suggester down", stubSuggester{err: errors.New("timeout")}, CreateInput{Title: "x"}, domain.ErrCodeUnavailable},
		{"blank title", stubSuggester{xp: 20}, CreateInput{Title: "   "}, domain.ErrCodeInvalid},
		{"parent skill", stubSuggester{xp: 20}, CreateInput{Title: "x", SkillID: parent.ID}, domain.ErrCodeInvalid},
		{"foreign skill", stubSuggester{xp: 20}, CreateInput{Title: "x", SkillID: foreign.ID}, domain.ErrCodeNotFound},
		{"unknown project", stubSuggester{xp: 20}, CreateInput{Title: "x", ProjectID: "missing"}, domain.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(store, tt.suggester, nil, nil)
			if _, err := uc.CreateTask(ctx, "u1", tt.in); !domain.IsDomainError(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
		})
	}

	tasks, _ := store.Tasks().List(ctx, repository.TaskFilter{UserID: "u1"})
	if len(tasks) != 0 {
		t.Fatalf("failed creates stored %d tasks", len(tasks))
	}
}

func TestUpdateTask(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	uc := newUseCase(store, stubSuggester{xp: 50}, nil, nil)
	open, _ := store.Tasks().Create(ctx, &domain.Task{UserID: "u1", Title: "open", XP: 50})
	done, _ := store.Tasks().Create(ctx, &domain.Task{UserID: "u1", Title: "done", XP: 50, Completed: true})

	title := "renamed"
	xp := 120

	tests := []struct {
		name  string
		user  string
		id    string
		patch domain.TaskPatch
		want  error
	}{
		{"rename open", "u1", open.ID, domain.TaskPatch{Title: &title}, nil},
		{"reprice open", "u1", open.ID, domain.TaskPatch{XP: &xp}, nil},
		{"rename completed", "u1", done.ID, domain.TaskPatch{Title: &title}, nil},
		{"reprice completed", "u1", done.ID, domain.TaskPatch{XP: &xp}, domain.ErrRewardLocked},
		{"other user", "u2", open.ID, domain.TaskPatch{Title: &title}, domain.ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.UpdateTask(ctx, tt.user, tt.id, tt.patch)
			if tt.want == nil && err != nil {
				t.Fatalf("update: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := uc.UpdateTask(ctx, "u1", open.ID, domain.TaskPatch{}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("empty patch err = %v", err)
	}

	stored, _ := store.Tasks().GetByID(ctx, done.ID)
	if stored.XP != 50 || stored.Title != "renamed" || !stored.Completed {
		t.Fatalf("completed task = %+v", stored)
	}
}

func TestUpdateTaskBuffersWhenOffline(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	task, _ := store.Tasks().Create(ctx, &domain.Task{UserID: "u1", Title: "draft"})
	buf := &recordingBuffer{}
	uc := newUseCase(store, nil, offlineTasks{store.Tasks()}, buf)

	title := "final"
	got, err := uc.UpdateTask(ctx, "u1", task.ID, domain.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "final" {
		t.Fatalf("title = %q", got.Title)
	}
	if err := uc.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{"update:" + task.ID, "delete:" + task.ID}
	if len(buf.tasks) != 2 || buf.tasks[0] != want[0] || buf.tasks[1] != want[1] {
		t.Fatalf("buffered = %v", buf.tasks)
	}
}

func TestDuplicateTask(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	uc := newUseCase(store, nil, nil, nil)
	src, _ := store.Tasks().Create(ctx, &domain.Task{UserID: "u1", Title: "weekly review", XP: 40, Tokens: 4, Completed: true, FocusSeconds: 900, BonusXP: 150})

	dup, err := uc.DuplicateTask(ctx, "u1", src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == src.ID || dup.Completed || dup.FocusSeconds != 0 || dup.BonusXP != 0 || dup.XP != 40 {
		t.Fatalf("dup = %+v", dup)
	}
	if _, err := uc.DuplicateTask(ctx, "u2", src.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("foreign duplicate err = %v", err)
	}
}

// completingTasks lets a completion commit between the read and the write of
// an edit.
type completingTasks struct {
	repository.TaskRepository
	complete func()
}

func (r *completingTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	task, err := r.TaskRepository.GetByID(ctx, id)
	if r.complete != nil {
		r.complete()
		r.complete = nil
	}
	return task, err
}

func TestUpdateTaskKeepsConcurrentCompletion(t *testing.T) {
	ctx := context.Background()
	title := "renamed"
	xp := 120

	tests := []struct {
		name  string
		patch domain.TaskPatch
		want  error
	}{
		{"rename", domain.TaskPatch{Title: &title}, nil},
		{"reprice", domain.TaskPatch{XP: &xp}, domain.ErrRewardLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			user := domain.NewUser("hero@example.com", "Hero")
			if err := store.Users().Create(ctx, user); err != nil {
				t.Fatal(err)
			}
			task, _ := store.Tasks().Create(ctx, &domain.Task{UserID: user.ID, Title: "run", XP: 100, Tokens: 10})
			engine := gamification.New(store, store.Repositories(), nil, memory.NewSessionStore(), nil, gamification.Config{})

			tasks := &completingTasks{TaskRepository: store.Tasks()}
			tasks.complete = func() {
				if _, err := engine.CompleteTask(ctx, user.ID, task.ID, gamification.CompleteTaskInput{Completed: true}); err != nil {
					t.Errorf("complete: %v", err)
				}
			}
			uc := newUseCase(store, nil, tasks, nil)

			got, err := uc.UpdateTask(ctx, user.ID, task.ID, tt.patch)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("err = %v, want %v", err, tt.want)
				}
			} else if err != nil || !got.Completed || got.Title != title {
				t.Fatalf("update = %+v, err = %v", got, err)
			}

			stored, _ := store.Tasks().GetByID(ctx, task.ID)
			if !stored.Completed || stored.CompletedAt == nil || stored.XP != 100 {
				t.Fatalf("edit reverted the completion: %+v", stored)
			}
			if _, err := engine.CompleteTask(ctx, user.ID, task.ID, gamification.CompleteTaskInput{Completed: true}); !errors.Is(err, domain.ErrAlreadyInState) {
				t.Fatalf("second completion err = %v", err)
			}
			hero, _ := store.Users().GetByID(ctx, user.ID)
			if hero.XP != 100 || hero.Tokens != 10 {
				t.Fatalf("user xp=%d tokens=%d, want 100/10", hero.XP, hero.Tokens)
			}
		})
	}
}
