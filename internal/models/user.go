package models

import "time"

type User struct {
	ID           int64      `json:"id" db:"id"`
	Firstname    string     `json:"firstname" db:"firstname" validate:"notblank"`
	Lastname     string     `json:"lastname" db:"lastname"`
	Email        string     `json:"email" db:"email" validate:"required,email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	BloodType    *string    `json:"blood_type,omitempty" db:"blood_type"`
	Gender       *string    `json:"gender,omitempty" db:"gender"`
	DOB          *time.Time `json:"dob,omitempty" db:"dob"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// DisplayName is what the dashboard shows in its header and stamps on writes.
func (u *User) DisplayName() string {
	if u.Firstname != "" {
		return u.Firstname
	}
	return u.Email
}
