// Package api defines the marketplace backend operations the session
// core depends on, and a thin JSON-over-HTTP client for them. The core
// only consumes their success/failure outcome and the credential fields
// on the payload; everything else the backend returns is opaque here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pawmart/frontgate/internal/models"
)

// Client is the set of backend operations that can change session facts.
type Client interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (models.LoginResult, error)
	// VerifyOTP confirms the one-time code sent to the account email.
	VerifyOTP(ctx context.Context, token, code string) error
	// FetchCurrentUser returns the account record for the token. When
	// populate is set the profile relation is included.
	FetchCurrentUser(ctx context.Context, token string, populate bool) (models.UserRecord, error)
	// InitiateProfile creates the customer profile, returning its id.
	InitiateProfile(ctx context.Context, token string) (string, error)
	// UpdateProfile applies a partial update to the profile.
	UpdateProfile(ctx context.Context, token, profileID string, patch map[string]any) error
	// CreatePet registers a pet under the profile, returning the pet id.
	CreatePet(ctx context.Context, token, profileID string, pet models.PetRecord) (string, error)
}

// RemoteError is a failed backend operation, carrying the HTTP status
// and the backend's human-readable message. It is propagated to the
// caller unchanged; no retry is automatic.
type RemoteError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// HTTPClient talks to the real marketplace backend.
type HTTPClient struct {
	base string
	hc   *http.Client
}

// NewHTTPClient returns a client for the backend at baseURL. hc may be
// nil, in which case http.DefaultClient is used.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{base: baseURL, hc: hc}
}

// Login implements Client.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	var res models.LoginResult
	err := c.call(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	return res, err
}

// VerifyOTP implements Client.
func (c *HTTPClient) VerifyOTP(ctx context.Context, token, code string) error {
	return c.call(ctx, http.MethodPost, "/api/auth/otp/verify", token, map[string]string{
		"code": code,
	}, nil)
}

// FetchCurrentUser implements Client.
func (c *HTTPClient) FetchCurrentUser(ctx context.Context, token string, populate bool) (models.UserRecord, error) {
	path := "/api/users/me"
	if populate {
		path += "?populate=profile"
	}
	var user models.UserRecord
	err := c.call(ctx, http.MethodGet, path, token, nil, &user)
	return user, err
}

// InitiateProfile implements Client.
func (c *HTTPClient) InitiateProfile(ctx context.Context, token string) (string, error) {
	var res struct {
		ProfileID string `json:"profile_id"`
	}
	err := c.call(ctx, http.MethodPost, "/api/profiles", token, map[string]string{}, &res)
	return res.ProfileID, err
}

// UpdateProfile implements Client.
func (c *HTTPClient) UpdateProfile(ctx context.Context, token, profileID string, patch map[string]any) error {
	return c.call(ctx, http.MethodPatch, "/api/profiles/"+profileID, token, patch, nil)
}

// CreatePet implements Client.
func (c *HTTPClient) CreatePet(ctx context.Context, token, profileID string, pet models.PetRecord) (string, error) {
	var res struct {
		PetID string `json:"pet_id"`
	}
	err := c.call(ctx, http.MethodPost, "/api/profiles/"+profileID+"/pets", token, pet, &res)
	return res.PetID, err
}

// call performs one JSON request against the backend. Non-2xx responses
// become RemoteError with the backend's message when one is present.
func (c *HTTPClient) call(ctx context.Context, method, path, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Message == "" {
			payload.Message = http.StatusText(resp.StatusCode)
		}
		return &RemoteError{Status: resp.StatusCode, Message: payload.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
