package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pawmart/frontgate/internal/service"
	"github.com/pawmart/frontgate/internal/session"
)

// fakeOnboardingService implements OnboardingService for testing.
type fakeOnboardingService struct {
	prog        session.OnboardingProgress
	progErr     error
	navErr      error
	uploadErr   error
	completeErr error

	completedStep int
	completedData json.RawMessage
	uploadKind    service.UploadKind
	uploadActive  bool
}

func (f *fakeOnboardingService) Progress(ctx context.Context) (session.OnboardingProgress, error) {
	return f.prog, f.progErr
}

func (f *fakeOnboardingService) Navigate(ctx context.Context, step int) error {
	return f.navErr
}

func (f *fakeOnboardingService) SetUploading(ctx context.Context, kind service.UploadKind, active bool) error {
	f.uploadKind = kind
	f.uploadActive = active
	return f.uploadErr
}

func (f *fakeOnboardingService) CompleteStep(ctx context.Context, w http.ResponseWriter, step int, data json.RawMessage) error {
	f.completedStep = step
	f.completedData = data
	return f.completeErr
}

// routerFor mounts the handler the way NewRouter does, so URL
// parameters resolve.
func routerFor(h *OnboardingHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/onboarding", h.Progress)
	r.Post("/api/onboarding/steps/{step}", h.CompleteStep)
	r.Post("/api/onboarding/navigate", h.Navigate)
	r.Post("/api/onboarding/uploads", h.Uploads)
	return r
}

func TestOnboardingHandler_Progress(t *testing.T) {
	fake := &fakeOnboardingService{prog: session.OnboardingProgress{ProfileID: "p1", CurrentStep: 2}}
	rec := httptest.NewRecorder()
	routerFor(&OnboardingHandler{Onboarding: fake}).ServeHTTP(rec,
		httptest.NewRequest("GET", "/api/onboarding", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var prog session.OnboardingProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &prog); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if prog.ProfileID != "p1" || prog.CurrentStep != 2 {
		t.Errorf("progress = %+v", prog)
	}
}

func TestOnboardingHandler_CompleteStep(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		body         string
		service      *fakeOnboardingService
		expectedCode int
		expectedStep int
	}{
		{
			name:         "non-numeric step",
			url:          "/api/onboarding/steps/abc",
			body:         `{"data":{}}`,
			service:      &fakeOnboardingService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "invalid body",
			url:          "/api/onboarding/steps/1",
			body:         `not json`,
			service:      &fakeOnboardingService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "out of range step",
			url:          "/api/onboarding/steps/9",
			body:         `{"data":{}}`,
			service:      &fakeOnboardingService{completeErr: session.ErrInvalidStep},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "success",
			url:          "/api/onboarding/steps/2",
			body:         `{"data":{"services":["checkup"]}}`,
			service:      &fakeOnboardingService{},
			expectedCode: http.StatusOK,
			expectedStep: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", tt.url, bytes.NewBufferString(tt.body))
			routerFor(&OnboardingHandler{Onboarding: tt.service}).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.expectedCode)
			}
			if tt.expectedStep != 0 && tt.service.completedStep != tt.expectedStep {
				t.Errorf("completed step = %d, want %d", tt.service.completedStep, tt.expectedStep)
			}
		})
	}
}

func TestOnboardingHandler_Navigate(t *testing.T) {
	fake := &fakeOnboardingService{navErr: session.ErrUploadInFlight}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/onboarding/navigate", bytes.NewBufferString(`{"step":3}`))
	routerFor(&OnboardingHandler{Onboarding: fake}).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status during upload = %d, want 409", rec.Code)
	}
}

func TestOnboardingHandler_Uploads(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{"unknown kind", `{"kind":"selfie","active":true}`, http.StatusBadRequest},
		{"pet photo", `{"kind":"pet_photo","active":true}`, http.StatusOK},
		{"medical files", `{"kind":"medical_files","active":false}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeOnboardingService{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/onboarding/uploads", bytes.NewBufferString(tt.body))
			routerFor(&OnboardingHandler{Onboarding: fake}).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedCode)
			}
		})
	}
}
