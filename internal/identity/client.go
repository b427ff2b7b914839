// Package identity wraps the external identity service. It provisions user
// accounts; token validation happens in the auth middleware against the
// shared signing secret.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client talks to the identity service over HTTP.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL. The secret
// authenticates server-to-server calls.
func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpResponse struct {
	UserID uuid.UUID `json:"userId"`
}

// SignUp provisions an account and returns the stable user id.
func (c *Client) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	body, err := json.Marshal(signUpRequest{Email: email, Password: password})
	if err != nil {
		return uuid.Nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/users", bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return uuid.Nil, fmt.Errorf("identity service: unexpected status %d", resp.StatusCode)
	}

	var out signUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uuid.Nil, fmt.Errorf("identity service: decode response: %w", err)
	}
	if out.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("identity service: empty user id")
	}
	return out.UserID, nil
}
