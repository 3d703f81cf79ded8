package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Verification failures are collapsed into two sentinel values so the
// middleware can answer with distinct messages: an expired token invites the
// client to refresh, anything else is simply rejected.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// SignedToken carries a serialized JWT along with its expiry. Access and
// refresh tokens share this shape; they differ only in TTL and in the
// secret used to sign them (access secret != refresh secret).
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs a short-lived HS256 JWT for a user. The
// JWT binds the user ID as the subject claim plus the standard exp/iat
// claims. Access tokens are presented in the Authorization header when
// calling protected endpoints and are never persisted server-side.
func NewAccessToken(secret string, userID uint64, ttlMin int) (SignedToken, error) {
	return signToken(secret, userID, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs a long-lived HS256 JWT for a user using
// the dedicated refresh secret. Unlike access tokens, refresh tokens are
// stored in the refresh_tokens table so their presence can be checked when
// a new access token is requested.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (SignedToken, error) {
	return signToken(secret, userID, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses a signed token with the given secret and returns the
// user ID from the subject claim. It returns ErrTokenExpired when the token
// is past its expiry and ErrTokenInvalid for any other failure: bad
// signature, wrong signing method, malformed input or a missing subject.
func VerifyToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !tok.Valid {
		return 0, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	// JWT numeric values decode as float64; some encoders emit strings.
	switch sub := claims["sub"].(type) {
	case float64:
		return uint64(sub), nil
	case string:
		if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, ErrTokenInvalid
}
