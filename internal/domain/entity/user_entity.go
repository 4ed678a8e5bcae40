package entity

import (
	"time"
)

// User is the aggregate root of the credential domain.
//
// PasswordHash holds an argon2id PHC string and never leaves the
// repository/service layer. RefreshFingerprint is a SHA-256 hex digest of the
// single currently-valid refresh token; nil means no active session. At most
// one refresh token is valid per user at any time.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	DisplayName        *string
	RefreshFingerprint *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Public is the external projection of a user: everything except the
// credential material.
type Public struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Projection returns the public view of the user.
func (u *User) Projection() Public {
	return Public{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
