package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/devsfood/backend/internal/domain/user"
)

// ErrInvalidToken is returned when a bearer token is malformed, expired, or
// fails signature verification.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified content of a bearer token. The rest of the system
// trusts this pair without re-validating credentials.
type Identity struct {
	UserID string
	Role   user.Role
}

type claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HMAC-signed bearer tokens carrying an Identity.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer/verifier with the given signing secret and
// token lifetime.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the given identity, valid for the configured TTL.
func (t *Tokens) Issue(id Identity) (string, error) {
	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: id.UserID,
		Role:   string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning the identity it
// carries. Any failure maps to ErrInvalidToken; callers never see parser
// internals.
func (t *Tokens) Verify(token string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if c.UserID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID: c.UserID,
		Role:   user.Role(c.Role),
	}, nil
}
