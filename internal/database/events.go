package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionStatus  = "status_changed"
)

// Change is the payload of a journal entry.
type Change struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

type Event struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	EventType string          `json:"event_type" db:"event_type"`
	EventTime time.Time       `json:"event_time" db:"event_time"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
}

func (q *Queries) LogEvent(ctx context.Context, userID int64, change Change) (*Event, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO event_journal (user_id, event_type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, event_type, event_time, payload
	`
	rows, err := q.db.Query(ctx, query, userID, change.Entity+"."+change.Action, payload)
	if err != nil {
		return nil, err
	}
	event, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Event])
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetEventsSince returns up to 100 journal entries after sinceID, oldest first.
// Every operator sees every change.
func (q *Queries) GetEventsSince(ctx context.Context, sinceID int64) ([]Event, error) {
	query := `
		SELECT id, user_id, event_type, event_time, payload
		FROM event_journal
		WHERE id > $1
		ORDER BY id ASC
		LIMIT 100
	`
	rows, err := q.db.Query(ctx, query, sinceID)
	if err != nil {
		return nil, err
	}

	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[Event])
	if err != nil {
		return nil, err
	}
	if events == nil {
		return []Event{}, nil
	}
	return events, nil
}
