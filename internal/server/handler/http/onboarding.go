package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pawmart/frontgate/internal/service"
	"github.com/pawmart/frontgate/internal/session"
)

// OnboardingService defines the onboarding operations required by the
// HTTP handlers.
type OnboardingService interface {
	// Progress returns the current onboarding state.
	Progress(ctx context.Context) (session.OnboardingProgress, error)
	// Navigate repositions the wizard.
	Navigate(ctx context.Context, step int) error
	// SetUploading flips an upload-in-flight flag.
	SetUploading(ctx context.Context, kind service.UploadKind, active bool) error
	// CompleteStep performs the step's remote write and records it.
	CompleteStep(ctx context.Context, w http.ResponseWriter, step int, data json.RawMessage) error
}

// OnboardingHandler handles the /api/onboarding endpoints.
type OnboardingHandler struct {
	// Onboarding performs the underlying onboarding operations.
	Onboarding OnboardingService
}

// Progress handles GET /api/onboarding.
func (h *OnboardingHandler) Progress(w http.ResponseWriter, r *http.Request) {
	prog, err := h.Onboarding.Progress(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(prog)
}

// CompleteStep handles POST /api/onboarding/steps/{step}.
func (h *OnboardingHandler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		http.Error(w, "invalid step", http.StatusBadRequest)
		return
	}

	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.Onboarding.CompleteStep(r.Context(), w, step, req.Data); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// Navigate handles POST /api/onboarding/navigate.
func (h *OnboardingHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step int `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Onboarding.Navigate(r.Context(), req.Step); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// Uploads handles POST /api/onboarding/uploads, signalling the start or
// end of a background upload.
func (h *OnboardingHandler) Uploads(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind   string `json:"kind"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	kind := service.UploadKind(req.Kind)
	if kind != service.UploadPetPhoto && kind != service.UploadMedicalFiles {
		http.Error(w, "unknown upload kind", http.StatusBadRequest)
		return
	}
	if err := h.Onboarding.SetUploading(r.Context(), kind, req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}
