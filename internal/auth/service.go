// Package auth implements the session/auth gate: it maps credential lookups
// to session state and nothing more. Passwords are compared as plain text by
// the store, matching the original schema; this is a known gap, kept on
// purpose.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/session"
	"budgetbuddy/internal/store"
)

// ErrInvalidCredentials is returned on login failure. Wrong-email and
// wrong-password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	users    store.UserStore
	sessions session.Store
}

func NewService(users store.UserStore, sessions session.Store) *Service {
	return &Service{users: users, sessions: sessions}
}

// Register inserts a new user. Duplicate emails are not pre-checked; the
// storage constraint surfaces as store.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, name, email, password string) (int64, error) {
	u := core.User{Name: name, Email: email, Password: password}
	if err := u.Validate(); err != nil {
		return 0, err
	}
	id, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "id", id, "email", email)
	return id, nil
}

// Login looks up the credentials and, on a match, creates a session holding
// the user's display name. On no match the session store is untouched and
// ErrInvalidCredentials is returned.
func (s *Service) Login(ctx context.Context, email, password string) (token, displayName string, err error) {
	u, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("credential lookup: %w", err)
	}
	token = s.sessions.Create(u.Name)
	slog.InfoContext(ctx, "User logged in", "user_id", u.ID)
	return token, u.Name, nil
}

// Logout unconditionally discards the session.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// Authenticated resolves a session token to the stored display name.
func (s *Service) Authenticated(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return s.sessions.Get(token)
}
