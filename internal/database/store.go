package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Publisher receives every journaled change, already encoded.
type Publisher interface {
	Publish(message []byte)
}

type Store struct {
	pool *pgxpool.Pool
	*Queries
	hub Publisher
}

// NewStore wraps pool. hub may be nil when nothing listens for changes.
func NewStore(pool *pgxpool.Pool, hub Publisher) *Store {
	return &Store{
		pool:    pool,
		Queries: New(pool),
		hub:     hub,
	}
}

func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Record journals a change inside fn's transaction and, once committed,
// pushes it to connected operators.
func (s *Store) Record(ctx context.Context, userID int64, change Change, fn func(*Queries) (int64, error)) error {
	var event *Event
	err := s.ExecTx(ctx, func(q *Queries) error {
		id, err := fn(q)
		if err != nil {
			return err
		}
		change.ID = id
		event, err = q.LogEvent(ctx, userID, change)
		return err
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		msg, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		s.hub.Publish(msg)
	}
	return nil
}
