package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when creating a user with an email that is
	// already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// User is a registered account. Password is the stored credential and must
// never leave this package except through Login verification; use Safe for
// anything that is serialized.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}

// SafeUser is the projection of a User that is safe to return to callers.
type SafeUser struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Safe returns the non-sensitive projection of the user.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Repository defines persistence operations for users.
type Repository interface {
	// Create persists a new user. It returns ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, u *User) error
	// GetByID returns a user by identifier, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByEmail returns a user by email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List returns all users.
	List(ctx context.Context) ([]User, error)
}
