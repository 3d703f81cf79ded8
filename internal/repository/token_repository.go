package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepo persists refresh tokens. The signed token string is stored
// verbatim (unique column) and checked for presence when a client asks for
// a new access token; signature and expiry are verified separately by the
// token service. Tokens are removed on logout but are not rotated on use.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row for the user. Two logins within the
// same second sign byte-identical tokens (second-resolution iat/exp), so a
// duplicate insert means the token is already stored and counts as success.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token) VALUES (?,?)",
		userID, token)
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

// Find returns the owning user ID for a stored refresh token, or
// ErrRefreshTokenNotFound when the token was never issued or has been
// removed by logout.
func (r *TokenRepo) Find(ctx context.Context, token string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRefreshTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Delete removes a stored refresh token. Deleting an unknown token is not
// an error; logout is idempotent.
func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token=?", token)
	return err
}
