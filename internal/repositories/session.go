package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
)

var _ models.SessionStorage = (*SessionRepository)(nil)

// SessionRepository implements [models.Repository] for [models.Session] persistence.
//
// Timestamps are stored in UTC so that expiry comparisons in SQL order correctly.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create inserts a new session, generating an id when none is set
func (r *SessionRepository) Create(session *models.Session) error {
	if session.ID() == "" {
		session.SetID(shared.GenerateID())
	}

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sessions (id, data, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, session.ID(), session.Data(), session.ExpiresAt().UTC(), session.CreatedAt().UTC(), session.UpdatedAt().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a live session by ID. Expired sessions are reported as not found.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `
		SELECT id, data, expires_at, created_at, updated_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`

	session, err := scanSession(r.db.QueryRow(query, id, r.now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// Update replaces the data and expiry of an existing session
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := r.now().UTC()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET data = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, session.Data(), session.ExpiresAt().UTC(), now, session.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return affected(result, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, session.ID()))
}

// Save inserts the session or, when the id already exists, updates it in place.
func (r *SessionRepository) Save(session *models.Session) error {
	if session.ID() == "" {
		return r.Create(session)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		if err := session.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		now := r.now().UTC()
		session.SetUpdatedAt(now)

		query := `
			INSERT INTO sessions (id, data, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at, updated_at = excluded.updated_at
		`
		if _, err := tx.Exec(query, session.ID(), session.Data(), session.ExpiresAt().UTC(), session.CreatedAt().UTC(), now); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// Delete removes a session by ID
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return affected(result, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id))
}

// List retrieves sessions ordered by creation time.
//
// Live sessions only, unless criteria["expired"] is true, which lists only the expired ones.
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `
		SELECT id, data, expires_at, created_at, updated_at
		FROM sessions
	`

	if expired, ok := criteria["expired"].(bool); ok && expired {
		query += " WHERE expires_at <= ?"
	} else {
		query += " WHERE expires_at > ?"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.Query(query, r.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// DeleteExpired purges every session that has lapsed and returns how many were removed.
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		id        string
		data      string
		expiresAt time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &data, &expiresAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	session := &models.Session{}
	session.SetID(id)
	session.SetData(data)
	session.SetExpiresAt(expiresAt)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	return session, nil
}
