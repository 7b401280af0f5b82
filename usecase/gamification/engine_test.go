package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/repository/memory"
	"github.com/fastygo/questify/usecase"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type fakeSuggester struct {
	calls atomic.Int32
	err   error
	count int
}

func (f *fakeSuggester) SuggestTaskXP(ctx context.Context, req usecase.TaskXPRequest) (int, error) {
	return 50, f.err
}

func (f *fakeSuggester) SuggestWeeklyMissions(ctx context.Context, req usecase.MissionRequest) ([]domain.MissionDraft, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	n := f.count
	if n == 0 {
		n = domain.MissionsPerWeek
	}
	drafts := make([]domain.MissionDraft, n)
	for i := range drafts {
		drafts[i] = domain.MissionDraft{Title: fmt.Sprintf("mission %d", i+1), XP: 100, Tokens: 20}
	}
	return drafts, nil
}

type fixture struct {
	store  *memory.Store
	engine *Engine
	user   *domain.User
}

func newFixture(t *testing.T, suggester usecase.Suggester) *fixture {
	t.Helper()
	store := memory.NewStore()
	user := domain.NewUser("hero@example.com", "Hero")
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	engine := New(store, store.Repositories(), suggester, memory.NewSessionStore(), nil, Config{
		Now: func() time.Time { return fixedNow },
	})
	return &fixture{store: store, engine: engine, user: user}
}

func (f *fixture) setProgress(t *testing.T, p domain.Progress, tokens int) {
	t.Helper()
	f.user.SetProgress(p)
	f.user.Tokens = tokens
	if err := f.store.Users().UpdateProgress(context.Background(), f.user); err != nil {
		t.Fatalf("update progress: %v", err)
	}
}

func (f *fixture) addTask(t *testing.T, task domain.Task) *domain.Task {
	t.Helper()
	task.UserID = f.user.ID
	created, err := f.store.Tasks().Create(context.Background(), &task)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func (f *fixture) reloadUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u
}

func TestCompleteTaskRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.addTask(t, domain.Task{Title: "write tests", XP: 50, Tokens: 5})

	out, err := f.engine.CompleteTask(ctx, f.user.ID, task.ID, CompleteTaskInput{Completed: true, BonusXP: 10, FocusSeconds: 1500})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.XPDelta != 60 || out.TokensDelta != 5 {
		t.Fatalf("deltas = %d/%d", out.XPDelta, out.TokensDelta)
	}
	if u := f.reloadUser(t); u.XP != 60 || u.Tokens != 5 {
		t.Fatalf("after complete xp=%d tokens=%d", u.XP, u.Tokens)
	}

	out, err = f.engine.CompleteTask(ctx, f.user.ID, task.ID, CompleteTaskInput{Completed: false})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if out.XPDelta != -50 || out.TokensDelta != 0 {
		t.Fatalf("reopen deltas = %d/%d", out.XPDelta, out.TokensDelta)
	}
	u := f.reloadUser(t)
	if u.XP != 10 || u.Tokens != 5 {
		t.Fatalf("after reopen xp=%d tokens=%d", u.XP, u.Tokens)
	}

	stored, _ := f.store.Tasks().GetByID(ctx, task.ID)
	if stored.Completed || stored.CompletedAt != nil || stored.FocusSeconds != 1500 {
		t.Fatalf("stored task = %+v", stored)
	}

	events, _ := f.store.Events().ListByUser(ctx, f.user.ID, 10)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
}

func TestCompleteTaskErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.addTask(t, domain.Task{Title: "t", XP: 20, Tokens: 2})

	tests := []struct {
		name   string
		userID string
		taskID string
		in     CompleteTaskInput
		want   error
		code   domain.ErrorCode
	}{
		{name: "same state", userID: f.user.ID, taskID: task.ID, in: CompleteTaskInput{Completed: false}, want: domain.ErrAlreadyInState},
		{name: "other user", userID: "someone-else", taskID: task.ID, in: CompleteTaskInput{Completed: true}, want: domain.ErrTaskNotFound},
		{name: "missing task", userID: f.user.ID, taskID: "nope", in: CompleteTaskInput{Completed: true}, want: domain.ErrTaskNotFound},
		{name: "negative focus", userID: f.user.ID, taskID: task.ID, in: CompleteTaskInput{Completed: true, FocusSeconds: -1}, code: domain.ErrCodeInvalid},
		{name: "focus over a day", userID: f.user.ID, taskID: task.ID, in: CompleteTaskInput{Completed: true, FocusSeconds: MaxFocusSeconds + 1}, code: domain.ErrCodeInvalid},
		{name: "negative bonus", userID: f.user.ID, taskID: task.ID, in: CompleteTaskInput{Completed: true, BonusXP: -5}, code: domain.ErrCodeInvalid},
		{name: "bonus over limit", userID: f.user.ID, taskID: task.ID, in: CompleteTaskInput{Completed: true, BonusXP: MaxBonusXP + 1}, code: domain.ErrCodeInvalid},
		{name: "huge bonus", userID: f.user.ID, taskID: task.ID, in: CompleteTaskInput{Completed: true, BonusXP: 5_000_000_000}, code: domain.ErrCodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CompleteTask(ctx, tt.userID, tt.taskID, tt.in)
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.code != "" && !domain.IsDomainError(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
		})
	}
	if stored, _ := f.store.Tasks().GetByID(ctx, task.ID); stored.Completed || stored.BonusXP != 0 {
		t.Fatalf("rejected completion touched the task: %+v", stored)
	}
	if u := f.reloadUser(t); u.XP != 0 || u.Tokens != 0 {
		t.Fatalf("failed calls changed progression: %+v", u.Progress())
	}
}

func TestCompleteTaskLevelUp(t *testing.T) {
	f := newFixture(t, nil)
	f.setProgress(t, domain.Progress{Level: 5, XP: 1250, NextLevelXP: 2000}, 0)
	task := f.addTask(t, domain.Task{Title: "big", XP: 800, Tokens: 80})

	out, err := f.engine.CompleteTask(context.Background(), f.user.ID, task.ID, CompleteTaskInput{Completed: true})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !out.LevelUp || out.Level != 6 {
		t.Fatalf("outcome = %+v", out)
	}
	u := f.reloadUser(t)
	if u.Level != 6 || u.XP != 2050 || u.NextLevelXP != 4000 || u.Tokens != 80 {
		t.Fatalf("user = %+v", u)
	}

	// reopening never takes the level back
	if _, err := f.engine.CompleteTask(context.Background(), f.user.ID, task.ID, CompleteTaskInput{Completed: false}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	u = f.reloadUser(t)
	if u.Level != 6 || u.XP != 1250 || u.NextLevelXP != 4000 {
		t.Fatalf("after reopen = %+v", u.Progress())
	}
}

func TestCompleteTaskCreditsSkill(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	skill := &domain.Skill{UserID: f.user.ID, Name: "Go", Level: 1, MaxPoints: domain.StartingSkillMaxPoints}
	if err := f.store.Skills().Create(ctx, skill); err != nil {
		t.Fatalf("create skill: %v", err)
	}
	task := f.addTask(t, domain.Task{Title: "t", XP: 120, Tokens: 12, SkillID: &skill.ID})

	out, err := f.engine.CompleteTask(ctx, f.user.ID, task.ID, CompleteTaskInput{Completed: true})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !out.SkillLevelUp || out.Skill.Level != 2 || out.Skill.Points != 120 || out.Skill.MaxPoints != 200 {
		t.Fatalf("skill = %+v", out.Skill)
	}
}

// failingEvents makes every append fail so the unit of work must roll back.
type failingEvents struct{ repository.EventRepository }

func (failingEvents) Append(ctx context.Context, event domain.ProgressEvent) error {
	return errors.New("ledger offline")
}

type failingUoW struct{ store *memory.Store }

func (u failingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Events = failingEvents{repos.Events}
		return fn(ctx, repos)
	})
}

func TestCompleteTaskIsAtomic(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.addTask(t, domain.Task{Title: "t", XP: 50, Tokens: 5})
	engine := New(failingUoW{f.store}, f.store.Repositories(), nil, nil, nil, Config{})

	if _, err := engine.CompleteTask(ctx, f.user.ID, task.ID, CompleteTaskInput{Completed: true}); err == nil {
		t.Fatal("expected ledger failure")
	}

	stored, _ := f.store.Tasks().GetByID(ctx, task.ID)
	if stored.Completed {
		t.Fatal("task completion survived a rolled back event")
	}
	if u := f.reloadUser(t); u.XP != 0 || u.Tokens != 0 {
		t.Fatalf("user progression survived a rolled back event: %+v", u)
	}
}

func TestCompleteWeeklyMissionKeepsRewards(t *testing.T) {
	suggester := &fakeSuggester{}
	f := newFixture(t, suggester)
	ctx := context.Background()
	f.setProgress(t, domain.Progress{Level: 1, XP: 100, NextLevelXP: 1000}, 420)

	week, err := f.engine.MaybeGenerateWeeklyMissions(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	mission := week.Missions[0]

	out, err := f.engine.CompleteWeeklyMission(ctx, f.user.ID, mission.ID, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.User.Tokens != 440 || out.User.XP != 200 {
		t.Fatalf("after complete tokens=%d xp=%d", out.User.Tokens, out.User.XP)
	}

	out, err = f.engine.CompleteWeeklyMission(ctx, f.user.ID, mission.ID, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if out.User.Tokens != 440 || out.User.XP != 200 || out.XPDelta != 0 {
		t.Fatalf("after reopen tokens=%d xp=%d", out.User.Tokens, out.User.XP)
	}

	if _, err := f.engine.CompleteWeeklyMission(ctx, f.user.ID, mission.ID, false); !errors.Is(err, domain.ErrAlreadyInState) {
		t.Fatalf("err = %v", err)
	}
	if _, err := f.engine.CompleteWeeklyMission(ctx, "intruder", mission.ID, true); !errors.Is(err, domain.ErrMissionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestMaybeGenerateWeeklyMissionsOncePerWeek(t *testing.T) {
	suggester := &fakeSuggester{}
	f := newFixture(t, suggester)
	ctx := context.Background()

	first, err := f.engine.MaybeGenerateWeeklyMissions(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !first.Generated || len(first.Missions) != domain.MissionsPerWeek || first.WeekID != "2026-W43" {
		t.Fatalf("first = %+v", first)
	}
	for i, m := range first.Missions {
		if m.ID == "" || m.Position != i+1 {
			t.Fatalf("mission %d = %+v", i, m)
		}
	}

	second, err := f.engine.MaybeGenerateWeeklyMissions(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Generated || len(second.Missions) != domain.MissionsPerWeek {
		t.Fatalf("second = %+v", second)
	}
	if n := suggester.calls.Load(); n != 1 {
		t.Fatalf("suggester called %d times", n)
	}
}

func TestMaybeGenerateWeeklyMissionsConcurrent(t *testing.T) {
	suggester := &fakeSuggester{}
	f := newFixture(t, suggester)

	var wg sync.WaitGroup
	results := make(chan *WeekMissions, 8)
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			week, err := f.engine.MaybeGenerateWeeklyMissions(context.Background(), f.user.ID)
			if err != nil {
				errs <- err
				return
			}
			results <- week
		}()
	}
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		t.Fatalf("concurrent caller failed: %v", err)
	}
	generated := 0
	for week := range results {
		if len(week.Missions) != domain.MissionsPerWeek {
			t.Fatalf("caller got %d missions", len(week.Missions))
		}
		if week.Generated {
			generated++
		}
	}
	if generated != 1 {
		t.Fatalf("%d callers generated the week", generated)
	}
	missions, _ := f.store.Missions().ListByWeek(context.Background(), f.user.ID, domain.WeekIdentifier(fixedNow))
	if len(missions) != domain.MissionsPerWeek {
		t.Fatalf("stored %d missions", len(missions))
	}
	if n := suggester.calls.Load(); n != 1 {
		t.Fatalf("suggester called %d times", n)
	}
}

func TestMaybeGenerateWeeklyMissionsLockHeld(t *testing.T) {
	store := memory.NewStore()
	user := domain.NewUser("hero@example.com", "Hero")
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	locks := memory.NewSessionStore()
	suggester := &fakeSuggester{}
	engine := New(store, store.Repositories(), suggester, locks, nil, Config{
		MissionWait: 250 * time.Millisecond,
		Now:         func() time.Time { return fixedNow },
	})
	key := "missions:" + user.ID + ":" + domain.WeekIdentifier(fixedNow)
	release, err := locks.Acquire(context.Background(), key, time.Hour)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	if _, err := engine.MaybeGenerateWeeklyMissions(context.Background(), user.ID); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.MaybeGenerateWeeklyMissions(ctx, user.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n := suggester.calls.Load(); n != 0 {
		t.Fatalf("suggester called %d times while locked", n)
	}
}

func TestMaybeGenerateWeeklyMissionsFailures(t *testing.T) {
	tests := []struct {
		name      string
		suggester usecase.Suggester
	}{
		{"no suggester", nil},
		{"suggester error", &fakeSuggester{err: errors.New("timeout")}},
		{"wrong count", &fakeSuggester{count: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.suggester)
			_, err := f.engine.MaybeGenerateWeeklyMissions(context.Background(), f.user.ID)
			if !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
				t.Fatalf("err = %v", err)
			}
			missions, _ := f.store.Missions().ListByWeek(context.Background(), f.user.ID, domain.WeekIdentifier(fixedNow))
			if len(missions) != 0 {
				t.Fatalf("stored %d missions after failure", len(missions))
			}
		})
	}
}

func TestGrantXP(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	parent := &domain.Skill{UserID: f.user.ID, Name: "Fitness", Level: 1, MaxPoints: 100}
	if err := f.store.Skills().Create(ctx, parent); err != nil {
		t.Fatal(err)
	}
	leaf := &domain.Skill{UserID: f.user.ID, Name: "Running", ParentID: &parent.ID, Level: 1, MaxPoints: 100}
	if err := f.store.Skills().Create(ctx, leaf); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		amount  int
		skillID string
		code    domain.ErrorCode
	}{
		{"zero amount", 0, "", domain.ErrCodeInvalid},
		{"negative amount", -40, "", domain.ErrCodeInvalid},
		{"amount over limit", MaxGrantXP + 1, "", domain.ErrCodeInvalid},
		{"huge amount", 5_000_000_000, "", domain.ErrCodeInvalid},
		{"parent skill", 30, parent.ID, domain.ErrCodeInvalid},
		{"unknown skill", 30, "missing", domain.ErrCodeNotFound},
		{"leaf skill", 30, leaf.ID, ""},
		{"no skill", 30, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.engine.GrantXP(ctx, f.user.ID, tt.amount, tt.skillID)
			if tt.code != "" {
				if !domain.IsDomainError(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("grant: %v", err)
			}
			if out.TokensDelta != 0 || out.XPDelta != tt.amount {
				t.Fatalf("outcome = %+v", out)
			}
		})
	}

	if u := f.reloadUser(t); u.XP != 60 || u.Tokens != 0 {
		t.Fatalf("user = %+v", u)
	}
}
