package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/ytdash/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// mapError converts a failure from the API client into a typed error.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &shared.AuthenticationError{Err: fmt.Errorf("%w: %w", shared.ErrTokenExpired, err)}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return &shared.AuthenticationError{Err: err}
		}
		return &shared.RemoteAPIError{Op: op, StatusCode: apiErr.Code, Err: err}
	}

	return &shared.RemoteAPIError{Op: op, Err: err}
}
