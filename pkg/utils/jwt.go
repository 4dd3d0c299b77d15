package utils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// ErrOpaqueToken is returned when a bearer token is not a JWT. Such tokens
// can only be checked by asking the backend.
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenClaims holds the claims the gateway reads from a backend-issued token.
// The signature is never verified here; the backend stays the authority.
type TokenClaims struct {
	UserID    string
	Role      string
	ExpiresAt *time.Time
}

// InspectToken decodes the claims of a JWT without verifying its signature.
func InspectToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	out := &TokenClaims{}
	if v, ok := claims["user_id"]; ok && v != nil {
		out.UserID = fmt.Sprint(v)
	}
	if v, ok := claims["role"].(string); ok {
		out.Role = v
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out, nil
}

// TokenExpired reports whether the token carries an exp claim that is not
// after now. Opaque tokens and tokens without exp are never reported expired.
func TokenExpired(token string, now time.Time) bool {
	claims, err := InspectToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(*claims.ExpiresAt)
}

// TokenDigest returns a hex BLAKE2b-256 digest of token, used as a storage key
// so raw bearer tokens never appear in session stores or logs.
func TokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
