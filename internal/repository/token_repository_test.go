package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM refresh_tokens WHERE token=? LIMIT 1")).
		WithArgs("stored-token").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))

	userID, err := repo.Find(context.Background(), "stored-token")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), userID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM refresh_tokens WHERE token=? LIMIT 1")).
		WithArgs("revoked-token").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err = repo.Find(context.Background(), "revoked-token")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenStoreDuplicateIsSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	// Two logins in the same second sign identical tokens; the unique
	// index rejects the second row and Store treats that as stored.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token) VALUES (?,?)")).
		WithArgs(uint64(2), "same-second-token").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token) VALUES (?,?)")).
		WithArgs(uint64(2), "same-second-token").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'same-second-token' for key 'uq_refresh_tokens_token'"))

	require.NoError(t, repo.Store(context.Background(), 2, "same-second-token"))
	require.NoError(t, repo.Store(context.Background(), 2, "same-second-token"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDeleteIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token=?")).
		WithArgs("never-issued").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "never-issued"))
	require.NoError(t, mock.ExpectationsWereMet())
}
