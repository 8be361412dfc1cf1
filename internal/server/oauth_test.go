package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytdash/internal/models"
	"github.com/desertthunder/ytdash/internal/shared"
)

type exchangeFunc func(ctx context.Context, code string) (*models.TokenBundle, error)

func (f exchangeFunc) Exchange(ctx context.Context, code string) (*models.TokenBundle, error) {
	return f(ctx, code)
}

func okExchanger(code string) exchangeFunc {
	return func(ctx context.Context, got string) (*models.TokenBundle, error) {
		if got != code {
			return nil, errors.New("unexpected code")
		}
		return &models.TokenBundle{AccessToken: "access", RefreshToken: "refresh"}, nil
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		h := NewOAuthHandler(okExchanger("code-1"), "state-1", "")
		if h.Routes()[0] != "/authorized" {
			t.Errorf("expected default route /authorized, got %v", h.Routes())
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorized?state=state-1&code=code-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Bundle.AccessToken != "access" {
			t.Errorf("unexpected bundle %+v", result.Bundle)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		h := NewOAuthHandler(okExchanger("code-1"), "state-1", "/cb")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cb?state=forged&code=code-1", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", result.Error())
		}
	})

	t.Run("consent denied", func(t *testing.T) {
		h := NewOAuthHandler(okExchanger("code-1"), "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorized?state=s&error=access_denied", nil))

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(okExchanger("other"), "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorized?state=s&code=code-1", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("replayed callback", func(t *testing.T) {
		h := NewOAuthHandler(okExchanger("code-1"), "s", "")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/authorized?state=s&code=code-1", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorized?state=s&code=code-1", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
	})
}
