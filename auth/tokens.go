package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	bearerPrefix = "Bearer "

	claimUserID = "_id"
)

var (
	// ErrNoToken is returned when the Authorization header is missing or not a bearer header.
	ErrNoToken = errors.New("no bearer token supplied")

	// ErrInvalidToken is returned when a token's signature is invalid, its
	// claims are malformed, or it has expired.
	ErrInvalidToken = errors.New("invalid auth token")
)

// TokenCodec issues and verifies stateless bearer tokens. Tokens are HS256
// signed JWTs embedding the user id; nothing is persisted server-side, so a
// token is valid exactly as long as its signature and expiry hold.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a TokenCodec signing with the given secret. Tokens
// expire after ttl.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token embedding the user's id, issued now and
// expiring after the configured TTL.
func (c *TokenCodec) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		claimUserID: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(c.ttl).Unix(),
		"jti":       uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the token's signature and expiry and returns the embedded
// user id.
func (c *TokenCodec) Verify(raw string) (int64, error) {
	token, parseErr := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return c.secret, nil
	})
	if parseErr != nil {
		return 0, errors.Join(ErrInvalidToken, parseErr)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, ok := claims[claimUserID].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int64(userID), nil
}

// Authenticate resolves the calling identity from a raw Authorization header
// value: it strips the bearer prefix, verifies the token and decodes the
// embedded user id. It does not check that the user still exists; that is
// the caller's responsibility.
func (c *TokenCodec) Authenticate(rawHeaderValue string) (int64, error) {
	if !strings.HasPrefix(rawHeaderValue, bearerPrefix) {
		return 0, ErrNoToken
	}

	return c.Verify(strings.TrimPrefix(rawHeaderValue, bearerPrefix))
}
