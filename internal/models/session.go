package models

import (
	"errors"
	"time"
)

// Session is a server-side browser session.
//
// Data holds the securecookie-encoded session values; it is opaque to the repository.
type Session struct {
	id        string
	data      string
	expiresAt time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates a session that expires maxAge from now.
func NewSession(id, data string, maxAge time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		id:        id,
		data:      data,
		expiresAt: now.Add(maxAge),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Data() string         { return s.data }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func (s *Session) SetID(id string)          { s.id = id }
func (s *Session) SetData(data string)      { s.data = data }
func (s *Session) SetExpiresAt(t time.Time) { s.expiresAt = t }
func (s *Session) SetCreatedAt(t time.Time) { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time) { s.updatedAt = t }

// Expired reports whether the session has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.expiresAt.After(now)
}

// Validate checks required fields.
func (s *Session) Validate() error {
	if s.id == "" {
		return errors.New("session id is required")
	}
	if s.expiresAt.IsZero() {
		return errors.New("session expiry is required")
	}
	return nil
}
