package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and stores the signed token
// string verbatim so it can later be checked for presence when a
// new access token is requested. Tokens are removed on logout but
// are otherwise never rotated out.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – signed refresh token string (unique).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	Token     string    // refresh_tokens.token
	CreatedAt time.Time // refresh_tokens.created_at
}
