package web

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/repositories"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/time/rate"
)

var _ sessions.Store = (*SQLiteStore)(nil)

// browserSessionTTL is how long rows for browser-session cookies (MaxAge 0) are kept.
const browserSessionTTL = 24 * time.Hour

// SQLiteStore is a [sessions.Store] that keeps session values in the sessions table.
//
// The cookie only carries the signed session id. Values are encoded with the same codecs before they are stored.
type SQLiteStore struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options

	repo   models.SessionStorage
	purge  *rate.Sometimes
	logger *log.Logger
}

// NewSQLiteStore returns a new SQLiteStore backed by repo.
//
// Keys are defined in pairs to allow key rotation, as in [sessions.NewCookieStore].
func NewSQLiteStore(repo models.SessionStorage, logger *log.Logger, keyPairs ...[]byte) *SQLiteStore {
	s := &SQLiteStore{
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:   "/",
			MaxAge: 86400 * 30,
		},
		repo:   repo,
		purge:  &rate.Sometimes{First: 1, Interval: time.Minute},
		logger: logger,
	}
	s.MaxAge(s.Options.MaxAge)
	for _, c := range s.Codecs {
		if codec, ok := c.(*securecookie.SecureCookie); ok {
			codec.MaxLength(0)
		}
	}
	return s
}

// Get returns a session for the given name after adding it to the registry.
func (s *SQLiteStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session named by the request cookie, or a fresh one when there is none or it has expired.
func (s *SQLiteStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		return session, err
	}

	row, err := s.repo.Get(session.ID)
	if errors.Is(err, shared.ErrSessionNotFound) {
		session.ID = ""
		return session, nil
	}
	if err != nil {
		return session, err
	}

	if err := securecookie.DecodeMulti(name, row.Data(), &session.Values, s.Codecs...); err != nil {
		return session, err
	}
	session.IsNew = false
	return session, nil
}

// Save writes the session row and sets the id cookie. A negative MaxAge deletes both.
func (s *SQLiteStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	s.purge.Do(s.purgeExpired)

	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.repo.Delete(session.ID); err != nil && !errors.Is(err, shared.ErrSessionNotFound) {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = shared.GenerateID()
	}

	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if ttl == 0 {
		ttl = browserSessionTTL
	}
	row := models.NewSession(session.ID, data, ttl)
	if err := s.repo.Save(row); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session id: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// MaxAge sets the maximum age for the store and the underlying cookie implementation.
func (s *SQLiteStore) MaxAge(age int) {
	s.Options.MaxAge = age

	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

func (s *SQLiteStore) purgeExpired() {
	n, err := s.repo.DeleteExpired()
	if err != nil {
		s.logger.Warn("failed to purge expired sessions", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("purged expired sessions", "count", n)
	}
}

// SessionKeys derives the signing and encryption keys from the configured secret.
//
// An empty secret yields random keys, so sessions do not survive a restart.
func SessionKeys(secret string) (hashKey, blockKey []byte) {
	if secret == "" {
		return securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32)
	}
	sum := sha256.Sum256([]byte("ytdash-session-block:" + secret))
	return []byte(secret), sum[:]
}

// NewStore builds the session store selected by cfg.SessionStore. db is only used by the sqlite backend.
func NewStore(cfg shared.ServerConfig, db *sql.DB, logger *log.Logger) (sessions.Store, error) {
	if cfg.SessionSecret == "" {
		logger.Warn("no session secret configured; using random keys, sessions will not survive a restart")
	}
	hashKey, blockKey := SessionKeys(cfg.SessionSecret)

	opts := sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	switch cfg.SessionStore {
	case "cookie":
		store := sessions.NewCookieStore(hashKey, blockKey)
		store.Options = &opts
		store.MaxAge(opts.MaxAge)
		return store, nil
	case "", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite session store needs a database", shared.ErrInvalidConfig)
		}
		store := NewSQLiteStore(repositories.NewSessionRepository(db), logger, hashKey, blockKey)
		store.Options = &opts
		store.MaxAge(opts.MaxAge)
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown session_store %q", shared.ErrInvalidConfig, cfg.SessionStore)
	}
}
