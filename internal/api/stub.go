package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/pawmart/frontgate/internal/models"
)

// stubOTP is the code the stub backend accepts for any account.
const stubOTP = "000000"

// stubAccount is one seeded account in the stub backend.
type stubAccount struct {
	password string
	verified bool
	user     models.UserRecord
}

// Stub is an in-memory backend for local development and tests. It
// hands out uuid tokens and profile ids and accepts a fixed OTP code.
// It implements Client; it is not an authentication system.
type Stub struct {
	mu       sync.Mutex
	accounts map[string]*stubAccount // by email
	tokens   map[string]*stubAccount // by bearer token
}

// NewStub returns an empty stub backend.
func NewStub() *Stub {
	return &Stub{
		accounts: make(map[string]*stubAccount),
		tokens:   make(map[string]*stubAccount),
	}
}

// Seed adds an account with the given credentials.
func (s *Stub) Seed(email, password string, verified bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &stubAccount{
		password: password,
		verified: verified,
		user: models.UserRecord{
			ID:         uuid.NewString(),
			Email:      email,
			IsVerified: verified,
		},
	}
}

// Login implements Client.
func (s *Stub) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok || acct.password != password {
		return models.LoginResult{}, &RemoteError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	token := uuid.NewString()
	s.tokens[token] = acct
	return models.LoginResult{
		Token:      token,
		IsVerified: acct.verified,
		Email:      email,
		Profile:    acct.user.Profile,
	}, nil
}

// VerifyOTP implements Client.
func (s *Stub) VerifyOTP(ctx context.Context, token, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.tokens[token]
	if !ok {
		return &RemoteError{Status: http.StatusUnauthorized, Message: "unknown token"}
	}
	if code != stubOTP {
		return &RemoteError{Status: http.StatusBadRequest, Message: "wrong code"}
	}
	acct.verified = true
	acct.user.IsVerified = true
	return nil
}

// FetchCurrentUser implements Client.
func (s *Stub) FetchCurrentUser(ctx context.Context, token string, populate bool) (models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.tokens[token]
	if !ok {
		return models.UserRecord{}, &RemoteError{Status: http.StatusUnauthorized, Message: "unknown token"}
	}
	user := acct.user
	if !populate {
		user.Profile = nil
	}
	return user, nil
}

// InitiateProfile implements Client.
func (s *Stub) InitiateProfile(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.tokens[token]
	if !ok {
		return "", &RemoteError{Status: http.StatusUnauthorized, Message: "unknown token"}
	}
	if acct.user.Profile == nil {
		acct.user.Profile = &models.Profile{ID: uuid.NewString()}
	}
	return acct.user.Profile.ID, nil
}

// UpdateProfile implements Client. A patch carrying "onboarding_step"
// advances the recorded step, mirroring the real backend.
func (s *Stub) UpdateProfile(ctx context.Context, token, profileID string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.tokens[token]
	if !ok {
		return &RemoteError{Status: http.StatusUnauthorized, Message: "unknown token"}
	}
	if acct.user.Profile == nil || acct.user.Profile.ID != profileID {
		return &RemoteError{Status: http.StatusNotFound, Message: "profile not found"}
	}
	if v, ok := patch["onboarding_step"]; ok {
		switch step := v.(type) {
		case int:
			if step > acct.user.Profile.OnboardingStep {
				acct.user.Profile.OnboardingStep = step
			}
		case float64:
			if int(step) > acct.user.Profile.OnboardingStep {
				acct.user.Profile.OnboardingStep = int(step)
			}
		}
	}
	return nil
}

// CreatePet implements Client.
func (s *Stub) CreatePet(ctx context.Context, token, profileID string, pet models.PetRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.tokens[token]
	if !ok {
		return "", &RemoteError{Status: http.StatusUnauthorized, Message: "unknown token"}
	}
	if acct.user.Profile == nil || acct.user.Profile.ID != profileID {
		return "", &RemoteError{Status: http.StatusNotFound, Message: "profile not found"}
	}
	return uuid.NewString(), nil
}
