package web

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie name of the browser session.
const SessionName = "ytdash_session"

const (
	tokenKey = "google_token"
	stateKey = "oauth_state"
)

func init() {
	gob.Register(&models.TokenBundle{})
}

// TokenHolder keeps the [models.TokenBundle], the pending OAuth state and flash messages in the browser session.
type TokenHolder struct {
	store sessions.Store
	name  string
}

// NewTokenHolder creates a [TokenHolder] over store.
func NewTokenHolder(store sessions.Store) *TokenHolder {
	return &TokenHolder{store: store, name: SessionName}
}

func (h *TokenHolder) session(r *http.Request) *sessions.Session {
	// A decode failure (rotated keys, tampered cookie) still yields a usable empty session.
	session, _ := h.store.Get(r, h.name)
	return session
}

// Bundle returns the session's token bundle, or an [shared.AuthenticationError] when there is none.
func (h *TokenHolder) Bundle(r *http.Request) (*models.TokenBundle, error) {
	bundle, ok := h.session(r).Values[tokenKey].(*models.TokenBundle)
	if !ok || bundle == nil || bundle.AccessToken == "" {
		return nil, &shared.AuthenticationError{}
	}
	return bundle, nil
}

// Store saves bundle in the session.
func (h *TokenHolder) Store(w http.ResponseWriter, r *http.Request, bundle *models.TokenBundle) error {
	session := h.session(r)
	session.Values[tokenKey] = bundle
	return h.save(w, r, session)
}

// Clear removes the token bundle and any pending state from the session.
func (h *TokenHolder) Clear(w http.ResponseWriter, r *http.Request) error {
	session := h.session(r)
	delete(session.Values, tokenKey)
	delete(session.Values, stateKey)
	return h.save(w, r, session)
}

// SetState remembers the OAuth state parameter for the callback to verify.
func (h *TokenHolder) SetState(w http.ResponseWriter, r *http.Request, state string) error {
	session := h.session(r)
	session.Values[stateKey] = state
	return h.save(w, r, session)
}

// TakeState returns and forgets the pending OAuth state.
func (h *TokenHolder) TakeState(w http.ResponseWriter, r *http.Request) (string, error) {
	session := h.session(r)
	state, _ := session.Values[stateKey].(string)
	delete(session.Values, stateKey)
	if err := h.save(w, r, session); err != nil {
		return "", err
	}
	if state == "" {
		return "", shared.ErrInvalidState
	}
	return state, nil
}

// Flash queues a message for the next rendered page.
func (h *TokenHolder) Flash(w http.ResponseWriter, r *http.Request, msg string) error {
	session := h.session(r)
	session.AddFlash(msg)
	return h.save(w, r, session)
}

// Flashes returns and clears the queued messages.
func (h *TokenHolder) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session := h.session(r)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	h.save(w, r, session)

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		msgs = append(msgs, fmt.Sprint(f))
	}
	return msgs
}

func (h *TokenHolder) save(w http.ResponseWriter, r *http.Request, session *sessions.Session) error {
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
