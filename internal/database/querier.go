package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("status change not allowed from the current state")
	ErrUnsupportedStatus = errors.New("status change type not supported for this entity")
	ErrDuplicate         = errors.New("a record with the same unique value already exists")
	ErrReference         = errors.New("record references a missing row or is still referenced")
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// DB exposes the connection or transaction behind q for the generic tables.
func (q *Queries) DB() DBTX {
	return q.db
}

// translate maps constraint violations onto the package errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrReference
		}
	}
	return err
}
