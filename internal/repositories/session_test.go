package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func newTestRepo(t *testing.T) (*SessionRepository, *time.Time) {
	t.Helper()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewSessionRepository(setupTestDB(t))
	repo.now = func() time.Time { return clock }
	return repo, &clock
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		session := models.NewSession("", "payload", time.Hour)

		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if session.ID() == "" {
			t.Error("session ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo, clock := newTestRepo(t)
		session := models.NewSession("s1", "payload", time.Hour)
		session.SetExpiresAt(clock.Add(time.Hour))

		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		retrieved, err := repo.Get("s1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}

		if retrieved.Data() != "payload" {
			t.Errorf("expected data payload, got %s", retrieved.Data())
		}
		if !retrieved.ExpiresAt().Equal(session.ExpiresAt()) {
			t.Errorf("expected expiry %v, got %v", session.ExpiresAt(), retrieved.ExpiresAt())
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo, clock := newTestRepo(t)
		session := models.NewSession("s1", "old", time.Hour)
		session.SetExpiresAt(clock.Add(time.Hour))
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		session.SetData("new")
		if err := repo.Update(session); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		retrieved, err := repo.Get("s1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if retrieved.Data() != "new" {
			t.Errorf("expected data new, got %s", retrieved.Data())
		}
	})

	t.Run("Save", func(t *testing.T) {
		repo, clock := newTestRepo(t)
		session := models.NewSession("s1", "first", time.Hour)
		session.SetExpiresAt(clock.Add(time.Hour))

		if err := repo.Save(session); err != nil {
			t.Fatalf("failed to save new session: %v", err)
		}

		session.SetData("second")
		session.SetExpiresAt(clock.Add(2 * time.Hour))
		if err := repo.Save(session); err != nil {
			t.Fatalf("failed to save existing session: %v", err)
		}

		sessions, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 1 || sessions[0].Data() != "second" {
			t.Errorf("expected one updated session, got %d", len(sessions))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo, clock := newTestRepo(t)
		session := models.NewSession("s1", "payload", time.Hour)
		session.SetExpiresAt(clock.Add(time.Hour))
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := repo.Delete("s1"); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}

		if _, err := repo.Get("s1"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		repo, clock := newTestRepo(t)
		for id, ttl := range map[string]time.Duration{"live": time.Hour, "stale": time.Minute} {
			session := models.NewSession(id, "payload", ttl)
			session.SetCreatedAt(*clock)
			session.SetExpiresAt(clock.Add(ttl))
			if err := repo.Create(session); err != nil {
				t.Fatalf("failed to create session %s: %v", id, err)
			}
		}

		*clock = clock.Add(10 * time.Minute)

		if _, err := repo.Get("stale"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected expired session to be hidden, got %v", err)
		}

		live, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(live) != 1 || live[0].ID() != "live" {
			t.Errorf("expected only the live session, got %d", len(live))
		}

		expired, err := repo.List(map[string]any{"expired": true})
		if err != nil {
			t.Fatalf("failed to list expired sessions: %v", err)
		}
		if len(expired) != 1 || expired[0].ID() != "stale" {
			t.Errorf("expected only the stale session, got %d", len(expired))
		}

		n, err := repo.DeleteExpired()
		if err != nil {
			t.Fatalf("failed to purge sessions: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 purged session, got %d", n)
		}
	})
}

func TestSessionRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo, _ := newTestRepo(t)
			session := models.NewSession("s1", "payload", time.Hour)
			session.SetExpiresAt(time.Time{})

			if err := repo.Create(session); err == nil {
				t.Fatal("expected validation error for missing expiry")
			}
		})

		t.Run("DuplicateID", func(t *testing.T) {
			repo, _ := newTestRepo(t)

			if err := repo.Create(models.NewSession("s1", "a", time.Hour)); err != nil {
				t.Fatalf("failed to create first session: %v", err)
			}
			if err := repo.Create(models.NewSession("s1", "b", time.Hour)); err == nil {
				t.Fatal("expected error when creating session with duplicate id")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo, _ := newTestRepo(t)

			err := repo.Update(models.NewSession("missing", "a", time.Hour))
			if !errors.Is(err, shared.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo, _ := newTestRepo(t)

			if err := repo.Delete("missing"); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		repo.db.Close()

		if _, err := repo.Get("s1"); err == nil || errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected query error, got %v", err)
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected list error")
		}
		if _, err := repo.DeleteExpired(); err == nil {
			t.Error("expected purge error")
		}
	})
}
