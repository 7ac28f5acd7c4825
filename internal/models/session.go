package models

import "time"

// Identity is the part of a user carried inside signed tokens.
type Identity struct {
	ID   int64  `json:"id"`
	Name string `json:"firstname"`
}

// Session is the result of a successful login: both tokens plus the identity they were minted for.
type Session struct {
	User         Identity  `json:"user"`
	AccessToken  string    `json:"Authorization"`
	RefreshToken string    `json:"RefreshToken"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
