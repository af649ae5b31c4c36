package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pawmart/frontgate/internal/api"
	"github.com/pawmart/frontgate/internal/models"
	"github.com/pawmart/frontgate/internal/session"
)

// UploadKind names the two background uploads that gate wizard
// navigation.
type UploadKind string

const (
	// UploadPetPhoto is the pet photo upload on the pet identity step.
	UploadPetPhoto UploadKind = "pet_photo"
	// UploadMedicalFiles is the records upload on the medical step.
	UploadMedicalFiles UploadKind = "medical_files"
)

// ErrUnknownUpload is returned for upload kinds outside the two above.
var ErrUnknownUpload = errors.New("unknown upload kind")

// OnboardingService drives the four-step onboarding flow. A step is
// marked completed only after its remote write succeeds, never
// optimistically.
type OnboardingService struct {
	api   api.Client
	store *session.Store
	sync  *session.CredentialSync
}

// NewOnboardingService constructs an OnboardingService.
func NewOnboardingService(client api.Client, store *session.Store, sync *session.CredentialSync) *OnboardingService {
	return &OnboardingService{api: client, store: store, sync: sync}
}

// Progress returns the current onboarding state.
func (s *OnboardingService) Progress(ctx context.Context) (session.OnboardingProgress, error) {
	return s.store.Onboarding()
}

// Navigate repositions the wizard. Completion flags are untouched;
// revisiting completed steps is a non-terminal read.
func (s *OnboardingService) Navigate(ctx context.Context, step int) error {
	var navErr error
	err := s.store.Update(func(_ *session.AccountSession, prog *session.OnboardingProgress) {
		navErr = prog.NavigateTo(step)
	})
	if navErr != nil {
		return navErr
	}
	return err
}

// SetUploading flips one of the upload-in-flight flags.
func (s *OnboardingService) SetUploading(ctx context.Context, kind UploadKind, active bool) error {
	if kind != UploadPetPhoto && kind != UploadMedicalFiles {
		return fmt.Errorf("%w: %q", ErrUnknownUpload, kind)
	}
	return s.store.Update(func(_ *session.AccountSession, prog *session.OnboardingProgress) {
		if kind == UploadPetPhoto {
			prog.PetPhotoUploading = active
		} else {
			prog.MedicalFilesUploading = active
		}
	})
}

// CompleteStep performs the step's remote write and, on success, marks
// the step completed and refreshes the onboarding_step cookie so the
// next gated navigation sees the new progress.
func (s *OnboardingService) CompleteStep(ctx context.Context, w http.ResponseWriter, step int, data json.RawMessage) error {
	if step < 1 || step > session.StepCount {
		return fmt.Errorf("%w: %d", session.ErrInvalidStep, step)
	}

	acct, err := s.store.Account()
	if err != nil {
		return err
	}
	prog, err := s.store.Onboarding()
	if err != nil {
		return err
	}

	profileID := prog.ProfileID
	if profileID == "" {
		profileID, err = s.api.InitiateProfile(ctx, acct.Token)
		if err != nil {
			return err
		}
		err = s.store.Update(func(_ *session.AccountSession, p *session.OnboardingProgress) {
			p.ProfileID = profileID
		})
		if err != nil {
			return err
		}
	}

	if err := s.remoteWrite(ctx, acct.Token, profileID, step, data); err != nil {
		return err
	}

	var stepErr error
	err = s.store.Update(func(_ *session.AccountSession, p *session.OnboardingProgress) {
		stepErr = p.CompleteStep(step, data)
	})
	if stepErr != nil {
		return stepErr
	}
	if err != nil {
		return err
	}
	return s.sync.OnboardingAdvanced(w)
}

// remoteWrite issues the backend call backing one step: pet identity is
// a pet creation, every other step is a profile patch.
func (s *OnboardingService) remoteWrite(ctx context.Context, token, profileID string, step int, data json.RawMessage) error {
	if step == session.StepPetIdentity {
		var pet models.PetRecord
		if err := json.Unmarshal(data, &pet); err != nil {
			return fmt.Errorf("decode pet payload: %w", err)
		}
		_, err := s.api.CreatePet(ctx, token, profileID, pet)
		return err
	}

	patch := map[string]any{"onboarding_step": step}
	if len(data) > 0 {
		patch[patchKey(step)] = data
	}
	return s.api.UpdateProfile(ctx, token, profileID, patch)
}

func patchKey(step int) string {
	switch step {
	case session.StepTermsConsent:
		return "terms_consent"
	case session.StepServiceSelection:
		return "service_selection"
	case session.StepMedicalHistory:
		return "medical_history"
	default:
		return fmt.Sprintf("step_%d", step)
	}
}
