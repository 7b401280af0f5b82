// Package memory implements the repository ports on process memory for the
// use case and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

type state struct {
	users    map[string]domain.User
	tasks    map[string]domain.Task
	skills   map[string]domain.Skill
	areas    map[string]domain.Area
	projects map[string]domain.Project
	missions map[string]domain.WeeklyMission
	events   []domain.ProgressEvent
	order    map[string]int64
	seq      int64
}

func newState() *state {
	return &state{
		users:    make(map[string]domain.User),
		tasks:    make(map[string]domain.Task),
		skills:   make(map[string]domain.Skill),
		areas:    make(map[string]domain.Area),
		projects: make(map[string]domain.Project),
		missions: make(map[string]domain.WeeklyMission),
		order:    make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = cloneTask(v)
	}
	for k, v := range s.skills {
		c.skills[k] = v
	}
	for k, v := range s.areas {
		c.areas[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.missions {
		c.missions[k] = v
	}
	for k, v := range s.order {
		c.order[k] = v
	}
	c.events = append([]domain.ProgressEvent(nil), s.events...)
	c.seq = s.seq
	return c
}

// stamp records the insertion order of id on first use and returns the current time.
func (s *state) stamp(id string) time.Time {
	if _, ok := s.order[id]; !ok {
		s.seq++
		s.order[id] = s.seq
	}
	return time.Now().UTC()
}

// Store holds every entity behind one mutex. A unit of work keeps the mutex for
// its whole duration and works on a copy that replaces the state on commit, so
// calling the Store's own repositories from inside WithinTx deadlocks.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// view routes repository calls either to the shared state (under the mutex)
// or to the private copy of a running unit of work.
type view struct {
	store *Store
	tx    *state
}

func (v view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.st.clone()
	if err := fn(ctx, bind(view{store: s, tx: tx})); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Repositories returns repositories that operate outside of any unit of work.
func (s *Store) Repositories() repository.Repositories {
	return bind(view{store: s})
}

func (s *Store) Users() repository.UserRepository       { return &userRepository{view{store: s}} }
func (s *Store) Tasks() repository.TaskRepository       { return &taskRepository{view{store: s}} }
func (s *Store) Skills() repository.SkillRepository     { return &skillRepository{view{store: s}} }
func (s *Store) Missions() repository.MissionRepository { return &missionRepository{view{store: s}} }
func (s *Store) Events() repository.EventRepository     { return &eventRepository{view{store: s}} }
func (s *Store) Areas() repository.AreaRepository       { return &areaRepository{view{store: s}} }
func (s *Store) Projects() repository.ProjectRepository { return &projectRepository{view{store: s}} }

func bind(v view) repository.Repositories {
	return repository.Repositories{
		Users:    &userRepository{v},
		Tasks:    &taskRepository{v},
		Skills:   &skillRepository{v},
		Missions: &missionRepository{v},
		Events:   &eventRepository{v},
	}
}

func cloneTask(t domain.Task) domain.Task {
	if t.Links != nil {
		t.Links = append([]string(nil), t.Links...)
	}
	return t
}

// sortByOrder sorts ids by insertion sequence.
func sortByOrder(st *state, ids []string, desc bool) {
	sort.SliceStable(ids, func(i, j int) bool {
		if desc {
			return st.order[ids[i]] > st.order[ids[j]]
		}
		return st.order[ids[i]] < st.order[ids[j]]
	})
}

var _ repository.UnitOfWork = (*Store)(nil)
