package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/questify/repository"
)

type unitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a UnitOfWork that binds repositories to one pgx transaction.
func NewUnitOfWork(pool *pgxpool.Pool) repository.UnitOfWork {
	return &unitOfWork{pool: pool}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, bindRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

func bindRepositories(db querier) repository.Repositories {
	return repository.Repositories{
		Users:    &userRepository{db: db},
		Tasks:    &taskRepository{db: db},
		Skills:   &skillRepository{db: db},
		Missions: &missionRepository{db: db},
		Events:   &eventRepository{db: db},
	}
}
