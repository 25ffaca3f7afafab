// Package auth implements the local sign-in: credentials are checked for
// shape only and the signed-in user is remembered in the key-value store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/taskcal/internal/core/kv"
)

// StorageKey is the logical name the signed-in user is persisted under.
const StorageKey = "user"

// MinPasswordLen is the shortest password accepted.
const MinPasswordLen = 4

var (
	// ErrInvalidCredentials is returned when the email is empty or the
	// password is too short.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotLoggedIn is returned by Current when nobody is signed in.
	ErrNotLoggedIn = errors.New("not logged in")
)

// User is the signed-in identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate checks credential shape. No password is ever stored.
func Validate(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidCredentials)
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidCredentials, MinPasswordLen)
	}
	return nil
}

// NameFromEmail returns the local part of email.
func NameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// Service signs users in and out. A positive ttl expires the sign-in.
type Service struct {
	users *kv.TypedKV[User]
	ttl   time.Duration
	now   func() time.Time
}

// NewService stores the user under namespace in store.
func NewService(store kv.KV, namespace string, ttl time.Duration) *Service {
	return &Service{
		users: kv.Scoped[User](store, namespace),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Login validates the credentials and remembers the user.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if err := Validate(email, password); err != nil {
		return User{}, err
	}

	email = strings.TrimSpace(email)
	u := User{
		ID:    strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:  NameFromEmail(email),
		Email: email,
	}

	var err error
	if s.ttl > 0 {
		err = s.users.SetTTL(ctx, StorageKey, u, s.ttl)
	} else {
		err = s.users.Set(ctx, StorageKey, u)
	}
	if err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// Logout forgets the signed-in user. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.users.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	return nil
}

// Current returns the signed-in user. A stored value that no longer decodes
// counts as signed out.
func (s *Service) Current(ctx context.Context) (User, error) {
	u, err := s.users.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return User{}, ErrNotLoggedIn
		}
		return User{}, fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
	}
	if u.Email == "" {
		return User{}, ErrNotLoggedIn
	}
	return u, nil
}
