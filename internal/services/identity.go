package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tourzen-backend/internal/apperr"
)

// Identity is the verified identity returned by the provider for an
// assertion.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IdentityVerifier verifies a third-party identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// HTTPIdentityVerifier verifies assertions against the identity provider's
// token verification endpoint.
type HTTPIdentityVerifier struct {
	client *http.Client
	url    string
}

// NewHTTPIdentityVerifier creates a verifier for the given endpoint
func NewHTTPIdentityVerifier(url string, client *http.Client) *HTTPIdentityVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPIdentityVerifier{client: client, url: url}
}

// Verify POSTs the raw ID token to the provider and decodes the verified
// identity. A 4xx from the provider means the assertion was rejected; any
// other failure is an upstream problem.
func (v *HTTPIdentityVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	body, err := json.Marshal(map[string]string{"id_token": idToken})
	if err != nil {
		return nil, fmt.Errorf("failed to encode verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("identity provider unavailable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, apperr.Unauthenticated("identity assertion rejected")
	case resp.StatusCode != http.StatusOK:
		return nil, apperr.Upstream("identity provider unavailable",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, apperr.Upstream("identity provider returned malformed response", err)
	}

	if identity.Subject == "" || identity.Email == "" {
		return nil, apperr.Unauthenticated("identity assertion missing subject or email")
	}

	return &identity, nil
}
