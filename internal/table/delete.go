package table

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReloadDelay is how long a successful delete waits before refetching the list.
const ReloadDelay = 1500 * time.Millisecond

type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

type Notifier interface {
	Success(message string)
	Error(err error)
}

type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadFunc adapts a function to Reloader.
type ReloadFunc func(ctx context.Context) error

func (f ReloadFunc) Reload(ctx context.Context) error { return f(ctx) }

// Source reloads c from list. A failed fetch leaves the current rows in place.
func Source[T any](c *Controller[T], list func(context.Context) ([]T, error)) ReloadFunc {
	return func(ctx context.Context) error {
		rows, err := list(ctx)
		if err != nil {
			return err
		}
		c.SetRows(rows)
		return nil
	}
}

type Outcome int

const (
	Canceled Outcome = iota
	Deleted
	Failed
)

// Deletion runs the confirm, delete, notify and reload sequence for rows of T.
type Deletion[T any] struct {
	Confirmer Confirmer
	Deleter   Deleter
	Notifier  Notifier
	Reloader  Reloader

	// ID and Label pick the record id and the name shown in the prompt.
	ID    func(T) int64
	Label func(T) string

	Delay     time.Duration
	AfterFunc func(d time.Duration, f func())

	pending sync.WaitGroup
}

// Delete asks for confirmation, deletes the row remotely and schedules a full
// reload. The row is never removed locally.
func (d *Deletion[T]) Delete(ctx context.Context, row Row[T]) (Outcome, error) {
	id := d.ID(row.Value)
	label := fmt.Sprintf("#%d", id)
	if d.Label != nil {
		label = d.Label(row.Value)
	}

	ok, err := d.Confirmer.Confirm(ctx, fmt.Sprintf("Delete %s?", label))
	if err != nil {
		return Canceled, err
	}
	if !ok {
		return Canceled, nil
	}

	if err := d.Deleter.Delete(ctx, id); err != nil {
		d.Notifier.Error(err)
		return Failed, err
	}

	d.Notifier.Success(fmt.Sprintf("%s deleted", label))
	d.scheduleReload(context.WithoutCancel(ctx))
	return Deleted, nil
}

func (d *Deletion[T]) scheduleReload(ctx context.Context) {
	delay := d.Delay
	if delay <= 0 {
		delay = ReloadDelay
	}
	after := d.AfterFunc
	if after == nil {
		after = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}

	d.pending.Add(1)
	after(delay, func() {
		defer d.pending.Done()
		if err := d.Reloader.Reload(ctx); err != nil {
			d.Notifier.Error(err)
		}
	})
}

// Wait blocks until every scheduled reload has run.
func (d *Deletion[T]) Wait() {
	d.pending.Wait()
}
