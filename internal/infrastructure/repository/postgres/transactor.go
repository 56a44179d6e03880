package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-rating/internal/domain/store"
)

type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx commits only when fn returns nil.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewRepositories binds both repositories to db, which may be a transaction.
func NewRepositories(db sqlx.ExtContext) store.Repositories {
	return store.Repositories{
		Players: NewPlayerRepository(db),
		Matches: NewMatchRepository(db),
	}
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// inTx runs fn in a new transaction when db can start one, and directly on db
// when it is already a transaction.
func inTx(ctx context.Context, db sqlx.ExtContext, op string, fn func(tx sqlx.ExtContext) error) error {
	beginner, ok := db.(txBeginner)
	if !ok {
		return fn(db)
	}

	tx, err := beginner.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx %s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", op, err)
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
