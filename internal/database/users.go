package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/andriandrian/lifeline-admin/internal/models"
)

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT
			id,
			firstname,
			lastname,
			email,
			password_hash,
			phone,
			blood_type,
			gender,
			dob,
			is_admin,
			created_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	rows, err := q.db.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

type CreateUserParams struct {
	Firstname    string
	Lastname     string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// CreateUser registers an account. Operators are seeded with it by the server's
// bootstrap; donors sign up through the mobile app.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (firstname, lastname, email, password_hash, is_admin)
		VALUES ($1, $2, lower($3), $4, $5)
		RETURNING id, firstname, lastname, email, password_hash, phone, blood_type, gender, dob, is_admin, created_at
	`
	rows, err := q.db.Query(ctx, query, arg.Firstname, arg.Lastname, arg.Email, arg.PasswordHash, arg.IsAdmin)
	if err != nil {
		return nil, err
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[models.User])
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}
