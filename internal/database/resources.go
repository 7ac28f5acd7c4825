package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	nanoid "github.com/jaevor/go-nanoid"

	"github.com/andriandrian/lifeline-admin/internal/models"
)

// Table maps one entity onto its table for writes and its view for reads.
type Table[T any] struct {
	Entity string

	table  string
	view   string
	insert []string
	update []string
	fields func(*T) map[string]any
	// extra supplies server-generated insert columns.
	extra func() (map[string]any, error)
}

func (t *Table[T]) CanCreate() bool {
	return len(t.insert) > 0
}

func (t *Table[T]) List(ctx context.Context, db DBTX) ([]T, error) {
	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY created_at DESC, id DESC`, t.view)
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}

// Get returns nil, nil when no row has the id.
func (t *Table[T]) Get(ctx context.Context, db DBTX, id int64) (*T, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, t.view)
	rows, err := db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (t *Table[T]) Create(ctx context.Context, db DBTX, v *T) (int64, error) {
	values := t.fields(v)
	cols := append([]string(nil), t.insert...)
	if t.extra != nil {
		generated, err := t.extra()
		if err != nil {
			return 0, err
		}
		for col, val := range generated {
			cols = append(cols, col)
			values[col] = val
		}
	}

	args := make([]any, len(cols))
	holders := make([]string, len(cols))
	for i, col := range cols {
		args[i] = values[col]
		holders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		t.table, strings.Join(cols, ", "), strings.Join(holders, ", "))

	var id int64
	if err := db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// Update reports ErrNotFound when no row has the id.
func (t *Table[T]) Update(ctx context.Context, db DBTX, id int64, v *T) error {
	values := t.fields(v)

	args := make([]any, 0, len(t.update)+1)
	sets := make([]string, 0, len(t.update))
	for i, col := range t.update {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, values[col])
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, t.table, strings.Join(sets, ", "), len(args))
	res, err := db.Exec(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete reports ErrNotFound when no row has the id.
func (t *Table[T]) Delete(ctx context.Context, db DBTX, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.table)
	res, err := db.Exec(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var Users = &Table[models.User]{
	Entity: "user",
	table:  "users",
	view:   "users",
	update: []string{"firstname", "lastname", "email", "phone", "blood_type", "gender", "dob", "is_admin"},
	fields: func(u *models.User) map[string]any {
		return map[string]any{
			"firstname": u.Firstname, "lastname": u.Lastname, "email": strings.ToLower(u.Email),
			"phone": u.Phone, "blood_type": u.BloodType, "gender": u.Gender, "dob": u.DOB,
			"is_admin": u.IsAdmin,
		}
	},
}

var Hospitals = &Table[models.Hospital]{
	Entity: "hospital",
	table:  "hospitals",
	view:   "hospitals",
	insert: []string{"name", "address", "phone"},
	update: []string{"name", "address", "phone"},
	fields: func(h *models.Hospital) map[string]any {
		return map[string]any{"name": h.Name, "address": h.Address, "phone": h.Phone}
	},
}

var DonationRequests = &Table[models.DonationRequest]{
	Entity: "donationRequest",
	table:  "donation_requests",
	view:   "donation_request_view",
	update: []string{
		"hospital_id", "blood_type", "reason", "description", "priority",
		"patient_record_number", "patient_gender", "needed_at",
	},
	fields: func(r *models.DonationRequest) map[string]any {
		return map[string]any{
			"user_id": r.UserID, "hospital_id": r.HospitalID, "blood_type": r.BloodType,
			"reason": r.Reason, "description": r.Description, "priority": r.Priority,
			"patient_record_number": r.PatientRecordNumber, "patient_gender": r.PatientGender,
			"needed_at": r.NeededAt,
		}
	},
}

var referenceCode = mustGenerator(nanoid.CustomASCII("ABCDEFGHJKLMNPQRSTUVWXYZ23456789", 10))

func mustGenerator(gen func() string, err error) func() string {
	if err != nil {
		panic(err)
	}
	return gen
}

// Donations are registered at the donation desk, so create is allowed and
// assigns the reference code.
var Donations = &Table[models.Donation]{
	Entity: "donation",
	table:  "donations",
	view:   "donation_view",
	insert: []string{"user_id", "donation_request_id", "blood_type", "donor_gender", "donor_dob"},
	update: []string{"blood_type", "donor_gender", "donor_dob"},
	fields: func(d *models.Donation) map[string]any {
		return map[string]any{
			"user_id": d.UserID, "donation_request_id": d.DonationRequestID,
			"blood_type": d.BloodType, "donor_gender": d.DonorGender, "donor_dob": d.DonorDOB,
		}
	},
	extra: func() (map[string]any, error) {
		return map[string]any{"reference_code": referenceCode()}, nil
	},
}

var News = &Table[models.News]{
	Entity: "news",
	table:  "news",
	view:   "news_view",
	insert: []string{"title", "content", "image", "user_id"},
	update: []string{"title", "content"},
	fields: func(n *models.News) map[string]any {
		return map[string]any{"title": n.Title, "content": n.Content, "image": n.Image, "user_id": n.UserID}
	},
}

var Events = &Table[models.Event]{
	Entity: "event",
	table:  "events",
	view:   "event_view",
	insert: []string{"title", "description", "location", "start_date", "end_date", "image", "user_id"},
	update: []string{"title", "description", "location", "start_date", "end_date"},
	fields: func(e *models.Event) map[string]any {
		return map[string]any{
			"title": e.Title, "description": e.Description, "location": e.Location,
			"start_date": e.StartDate, "end_date": e.EndDate, "image": e.Image, "user_id": e.UserID,
		}
	},
}

var Rewards = &Table[models.Reward]{
	Entity: "reward",
	table:  "rewards",
	view:   "rewards",
	insert: []string{"name", "description", "points", "stock"},
	update: []string{"name", "description", "points", "stock"},
	fields: func(r *models.Reward) map[string]any {
		return map[string]any{"name": r.Name, "description": r.Description, "points": r.Points, "stock": r.Stock}
	},
}

var FAQs = &Table[models.FAQ]{
	Entity: "faq",
	table:  "faqs",
	view:   "faqs",
	insert: []string{"question", "answer", "user_id"},
	update: []string{"question", "answer"},
	fields: func(f *models.FAQ) map[string]any {
		return map[string]any{"question": f.Question, "answer": f.Answer, "user_id": f.UserID}
	},
}
