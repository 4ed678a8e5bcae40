package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vrlink/vrlink-api/internal/domain/entity"
	"github.com/vrlink/vrlink-api/internal/domain/repository"
)

// DB is the subset of pgxpool.Pool the repository needs; satisfied by
// pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.DisplayName)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `
		SELECT id, email, password_hash, display_name, refresh_fingerprint, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `
		SELECT id, email, password_hash, display_name, refresh_fingerprint, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.RefreshFingerprint, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, display_name = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`, u.Email, u.PasswordHash, u.DisplayName, u.ID)

	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) SetRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET refresh_fingerprint = $1, updated_at = now()
		WHERE id = $2
	`, fingerprint, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RotateRefreshFingerprint is a single-statement compare-and-swap: the WHERE
// clause pins the fingerprint the caller verified, so of two concurrent
// rotations only one can match.
func (r *UserRepository) RotateRefreshFingerprint(ctx context.Context, id string, oldFingerprint, newFingerprint string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET refresh_fingerprint = $1, updated_at = now()
		WHERE id = $2 AND refresh_fingerprint = $3
	`, newFingerprint, id, oldFingerprint)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrFingerprintMismatch
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
