// Package authtest provides an in-memory stand-in for the Postgres
// storage, behind the same interfaces the auth service consumes.
package authtest

import (
	"context"
	"sync"
	"time"

	"finflow/internal/models"
	"finflow/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	tokens map[string]*models.ResetToken

	Messages []models.EmailMessage
	// PublishErr, when set, makes SendMessage fail.
	PublishErr error
}

func NewStore() *Store {
	return &Store{
		users:  make(map[int64]models.User),
		tokens: make(map[string]*models.ResetToken),
	}
}

func (s *Store) SaveUser(
	_ context.Context,
	username, email string,
	passHash []byte,
	firstName, lastName *string,
) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return models.User{}, storage.ErrUserExists
		}
	}

	s.nextID++
	now := time.Now()
	user := models.User{
		ID:        s.nextID,
		Username:  username,
		Email:     email,
		PassHash:  passHash,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user

	return user, nil
}

func (s *Store) UserExists(_ context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (s *Store) UserByLogin(_ context.Context, login string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if (u.Username == login || u.Email == login) && u.IsActive {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Store) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.IsActive {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID int64, passHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.PassHash = passHash
	u.UpdatedAt = time.Now()
	s.users[userID] = u

	return nil
}

func (s *Store) SaveResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = &models.ResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	return nil
}

// ConsumeResetToken mirrors the conditional-update semantics of the
// Postgres implementation: marking the token used and swapping the
// password happen under one lock, so concurrent redemptions of the
// same token yield exactly one winner.
func (s *Store) ConsumeResetToken(_ context.Context, token string, passHash []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok || t.Used || time.Now().After(t.ExpiresAt) {
		return 0, storage.ErrResetTokenNotFound
	}

	t.Used = true

	u, ok := s.users[t.UserID]
	if !ok {
		return 0, storage.ErrResetTokenNotFound
	}
	u.PassHash = passHash
	u.UpdatedAt = time.Now()
	s.users[t.UserID] = u

	return t.UserID, nil
}

func (s *Store) SendMessage(_ context.Context, msg models.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PublishErr != nil {
		return s.PublishErr
	}

	s.Messages = append(s.Messages, msg)

	return nil
}

// Deactivate flips the active flag, simulating a disabled account.
func (s *Store) Deactivate(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[id]
	u.IsActive = false
	s.users[id] = u
}

// ExpireToken backdates a reset token.
func (s *Store) ExpireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tokens[token]; ok {
		t.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.users)
}

func (s *Store) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tokens)
}
