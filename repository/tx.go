package repository

import "context"

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Users    UserRepository
	Tasks    TaskRepository
	Skills   SkillRepository
	Missions MissionRepository
	Events   EventRepository
}

// UnitOfWork runs fn inside a single transaction. Any error returned by fn
// rolls back every write made through the provided repositories.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
