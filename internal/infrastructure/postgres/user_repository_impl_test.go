package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrlink/vrlink-api/internal/domain/entity"
	"github.com/vrlink/vrlink-api/internal/domain/repository"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func TestCreateAssignsRowDefaults(t *testing.T) {
	mock, r := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a@b.test", "hash", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("user-1", now, now))

	u := &entity.User{Email: "a@b.test", PasswordHash: "hash"}
	require.NoError(t, r.Create(context.Background(), u))
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	mock, r := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a@b.test", "hash", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(context.Background(), &entity.User{Email: "a@b.test", PasswordHash: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	mock, r := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, display_name, refresh_fingerprint, created_at, updated_at")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailScansFingerprint(t *testing.T) {
	mock, r := newMockRepo(t)
	now := time.Now()
	fp := "abc123"

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("a@b.test").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "display_name", "refresh_fingerprint", "created_at", "updated_at",
		}).AddRow("user-1", "a@b.test", "hash", nil, &fp, now, now))

	u, err := r.GetByEmail(context.Background(), "a@b.test")
	require.NoError(t, err)
	require.NotNil(t, u.RefreshFingerprint)
	assert.Equal(t, fp, *u.RefreshFingerprint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRefreshFingerprint(t *testing.T) {
	mock, r := newMockRepo(t)

	fp := "abc123"
	mock.ExpectExec(regexp.QuoteMeta("SET refresh_fingerprint = $1")).
		WithArgs(pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetRefreshFingerprint(context.Background(), "user-1", &fp))

	// Clearing on logout passes nil.
	mock.ExpectExec(regexp.QuoteMeta("SET refresh_fingerprint = $1")).
		WithArgs(pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetRefreshFingerprint(context.Background(), "user-1", nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateRefreshFingerprintCAS(t *testing.T) {
	mock, r := newMockRepo(t)

	t.Run("matching fingerprint swaps", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $2 AND refresh_fingerprint = $3")).
			WithArgs("new", "user-1", "old").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, r.RotateRefreshFingerprint(context.Background(), "user-1", "old", "new"))
	})

	t.Run("stale fingerprint loses the swap", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $2 AND refresh_fingerprint = $3")).
			WithArgs("new", "user-1", "stale").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := r.RotateRefreshFingerprint(context.Background(), "user-1", "stale", "new")
		assert.ErrorIs(t, err, repository.ErrFingerprintMismatch)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	mock, r := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(context.Background(), "user-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, r.Delete(context.Background(), "ghost"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDuplicateEmail(t *testing.T) {
	mock, r := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("taken@b.test", "hash", pgxmock.AnyArg(), "user-1").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Update(context.Background(), &entity.User{ID: "user-1", Email: "taken@b.test", PasswordHash: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}
