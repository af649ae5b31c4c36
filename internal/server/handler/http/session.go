// Package http provides the HTTP handlers and router of the front end:
// the session endpoints driving credential synchronization, the
// onboarding endpoints, and the gated page subtree.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pawmart/frontgate/internal/api"
	"github.com/pawmart/frontgate/internal/models"
	"github.com/pawmart/frontgate/internal/service"
	"github.com/pawmart/frontgate/internal/session"
)

// SessionService defines the session operations required by the HTTP
// handlers. Cookie side effects ride on the passed ResponseWriter.
type SessionService interface {
	// Login authenticates and synchronizes credentials on success.
	Login(ctx context.Context, w http.ResponseWriter, email, password string) error
	// VerifyOTP confirms the one-time code and marks the session verified.
	VerifyOTP(ctx context.Context, w http.ResponseWriter, code string) error
	// RefreshUser fetches the current user and folds it into the session.
	RefreshUser(ctx context.Context, w http.ResponseWriter) (models.UserRecord, error)
	// Logout destroys the session.
	Logout(ctx context.Context, w http.ResponseWriter) error
}

// SessionHandler handles the /api/session endpoints.
type SessionHandler struct {
	// Sessions performs the underlying session operations.
	Sessions SessionService
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OTPRequest represents the JSON payload for OTP verification.
type OTPRequest struct {
	Code string `json:"code"`
}

// Login handles POST /api/session/login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Sessions.Login(r.Context(), w, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// VerifyOTP handles POST /api/session/otp.
func (h *SessionHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Sessions.VerifyOTP(r.Context(), w, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// Me handles GET /api/session/me.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Sessions.RefreshUser(r.Context(), w)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}

// Logout handles POST /api/session/logout.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), w); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// writeOK writes the generic success body.
func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeError maps service errors onto HTTP responses. Backend failures
// keep their status and message; synchronization failures surface as a
// retryable failure of the triggering action.
func writeError(w http.ResponseWriter, err error) {
	var remote *api.RemoteError
	switch {
	case errors.As(err, &remote):
		http.Error(w, remote.Message, remote.Status)
	case errors.Is(err, session.ErrSyncFailed):
		http.Error(w, "could not save session, please try again", http.StatusInternalServerError)
	case errors.Is(err, session.ErrUploadInFlight):
		http.Error(w, "upload in progress", http.StatusConflict)
	case errors.Is(err, session.ErrInvalidStep):
		http.Error(w, "invalid step", http.StatusBadRequest)
	case errors.Is(err, service.ErrUnknownUpload):
		http.Error(w, "unknown upload kind", http.StatusBadRequest)
	case errors.Is(err, session.ErrNotHydrated):
		http.Error(w, "session store not ready", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
