package repository

import (
	"context"
	"errors"

	"github.com/vrlink/vrlink-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the given key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when creating or updating a user would
	// violate the unique email constraint.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrFingerprintMismatch is returned by RotateRefreshFingerprint when the
	// stored fingerprint no longer equals the expected one, i.e. the token was
	// already rotated, the user logged out, or a concurrent refresh won.
	ErrFingerprintMismatch = errors.New("refresh fingerprint mismatch")
)

// UserRepository is the durable credential store: one row per user.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update persists email, display name and password hash changes.
	// It does not touch the refresh fingerprint.
	Update(ctx context.Context, u *entity.User) error

	// SetRefreshFingerprint unconditionally replaces the stored fingerprint;
	// nil clears it (logout).
	SetRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error

	// RotateRefreshFingerprint atomically swaps old for new. It must behave as
	// a compare-and-swap: of two concurrent rotations presenting the same old
	// fingerprint exactly one succeeds, the other gets ErrFingerprintMismatch.
	RotateRefreshFingerprint(ctx context.Context, id string, oldFingerprint, newFingerprint string) error

	Delete(ctx context.Context, id string) error
}
