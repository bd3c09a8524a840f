package models

import "time"

// User is a server-side account entity. One user owns one
// identity-scoped root in the document store.
type User struct {
	// UserID is the internal unique identifier of the user; it is the
	// subject of every token issued for this account and is not
	// exposed via JSON.
	UserID int64 `json:"-"`

	// Email is the unique sign-in identifier.
	Email string `json:"email"`

	// PasswordHash stores the encoded argon2id derivation of the
	// user's password, never the plaintext. Excluded from JSON.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table backing the User model.
func (u User) TableName() string {
	return "users"
}
