package auth

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/devsfood/backend/internal/domain/user"
)

// ErrInvalidCredentials is returned when the email is unknown or the password
// does not match. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates users and issues bearer tokens.
type Service struct {
	users  user.Repository
	tokens *Tokens
}

// NewService creates an auth Service backed by the given user directory and
// token issuer.
func NewService(users user.Repository, tokens *Tokens) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// Login verifies the credentials and returns a signed token plus the safe
// projection of the authenticated user.
func (s *Service) Login(ctx context.Context, email, password string) (string, user.SafeUser, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.SafeUser{}, ErrInvalidCredentials
		}
		return "", user.SafeUser{}, errors.Wrap(err, "get user by email")
	}

	// Stored credential is compared as-is; hashing policy lives outside this
	// service.
	if u.Password != password {
		return "", user.SafeUser{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		return "", user.SafeUser{}, errors.Wrap(err, "issue token")
	}

	return token, u.Safe(), nil
}
