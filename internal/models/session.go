package models

import (
	"fmt"
	"time"
)

// Session is an authenticated browser session created after a successful login.
type Session struct {
	id        string
	subject   string
	name      string
	email     string
	createdAt time.Time
	expiresAt time.Time
}

var _ Model = (*Session)(nil)

// NewSession creates a session for the identity provider subject valid for ttl.
func NewSession(subject, name, email string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		subject:   subject,
		name:      name,
		email:     email,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// RestoreSession rebuilds a session loaded from storage.
func RestoreSession(id, subject, name, email string, createdAt, expiresAt time.Time) *Session {
	return &Session{
		id:        id,
		subject:   subject,
		name:      name,
		email:     email,
		createdAt: createdAt,
		expiresAt: expiresAt,
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) SetID(id string)      { s.id = id }
func (s *Session) Subject() string      { return s.subject }
func (s *Session) Name() string         { return s.name }
func (s *Session) Email() string        { return s.email }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.expiresAt)
}

// Validate checks required fields.
func (s *Session) Validate() error {
	if s.subject == "" {
		return fmt.Errorf("session subject is required")
	}
	if !s.expiresAt.After(s.createdAt) {
		return fmt.Errorf("session expiry must be after creation")
	}
	return nil
}

// Favorite is a movie bookmarked by a logged-in user.
type Favorite struct {
	id         string
	sequence   int
	subject    string
	movieID    int
	title      string
	posterPath string
	createdAt  time.Time
}

var _ Model = (*Favorite)(nil)

// NewFavorite creates a favorite for subject from a movie summary.
func NewFavorite(subject string, movie Movie) *Favorite {
	return &Favorite{
		subject:    subject,
		movieID:    movie.ID,
		title:      movie.Title,
		posterPath: movie.PosterPath,
		createdAt:  time.Now().UTC(),
	}
}

// RestoreFavorite rebuilds a favorite loaded from storage.
func RestoreFavorite(id string, sequence int, subject string, movieID int, title, posterPath string, createdAt time.Time) *Favorite {
	return &Favorite{
		id:         id,
		sequence:   sequence,
		subject:    subject,
		movieID:    movieID,
		title:      title,
		posterPath: posterPath,
		createdAt:  createdAt,
	}
}

func (f *Favorite) ID() string           { return f.id }
func (f *Favorite) SetID(id string)      { f.id = id }
func (f *Favorite) Sequence() int        { return f.sequence }
func (f *Favorite) SetSequence(seq int)  { f.sequence = seq }
func (f *Favorite) Subject() string      { return f.subject }
func (f *Favorite) MovieID() int         { return f.movieID }
func (f *Favorite) Title() string        { return f.title }
func (f *Favorite) PosterPath() string   { return f.posterPath }
func (f *Favorite) CreatedAt() time.Time { return f.createdAt }

// Movie returns the summary fields kept for the favorite.
func (f *Favorite) Movie() Movie {
	return Movie{ID: f.movieID, Title: f.title, PosterPath: f.posterPath}
}

// Validate checks required fields.
func (f *Favorite) Validate() error {
	if f.subject == "" {
		return fmt.Errorf("favorite subject is required")
	}
	if f.movieID <= 0 {
		return fmt.Errorf("favorite movie id must be positive, got %d", f.movieID)
	}
	return nil
}
