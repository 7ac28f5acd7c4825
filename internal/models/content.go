package models

import "time"

type News struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title" validate:"notblank"`
	Content   string    `json:"content" db:"content" validate:"notblank"`
	Image     *string   `json:"image,omitempty" db:"image"`
	UserID    int64     `json:"userId" db:"user_id" validate:"required"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	AuthorFirstname string `json:"authorFirstname" db:"author_firstname"`
}

type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title" validate:"notblank"`
	Description string    `json:"description" db:"description" validate:"notblank"`
	Location    string    `json:"location" db:"location" validate:"notblank"`
	StartDate   time.Time `json:"startDate" db:"start_date" validate:"required"`
	EndDate     time.Time `json:"endDate" db:"end_date" validate:"required,gtefield=StartDate"`
	Image       *string   `json:"image,omitempty" db:"image"`
	UserID      int64     `json:"userId" db:"user_id" validate:"required"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	AuthorFirstname string `json:"authorFirstname" db:"author_firstname"`
}

type Reward struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"notblank"`
	Description string    `json:"description" db:"description" validate:"notblank"`
	Points      int       `json:"points" db:"points" validate:"gte=0"`
	Stock       int       `json:"stock" db:"stock" validate:"gte=0"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type FAQ struct {
	ID        int64     `json:"id" db:"id"`
	Question  string    `json:"question" db:"question" validate:"notblank"`
	Answer    string    `json:"answer" db:"answer" validate:"notblank"`
	UserID    int64     `json:"userId" db:"user_id" validate:"required"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
