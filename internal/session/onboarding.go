package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Onboarding step identifiers. The flow is linear; StepMedicalHistory is
// the completion threshold projected into the onboarding_step cookie.
const (
	StepTermsConsent     = 1
	StepServiceSelection = 2
	StepPetIdentity      = 3
	StepMedicalHistory   = 4

	// StepCount is the number of onboarding steps.
	StepCount = 4
)

// ErrUploadInFlight is returned when navigation is attempted while a
// background upload is still running.
var ErrUploadInFlight = errors.New("upload in flight")

// ErrInvalidStep is returned for step numbers outside 1..StepCount.
var ErrInvalidStep = errors.New("invalid onboarding step")

// StepState tracks one onboarding step: whether its remote write has
// succeeded and the payload that was submitted.
type StepState struct {
	// Completed is set only after the step's remote write succeeds.
	// Once true it is never cleared except by Reset.
	Completed bool `json:"completed"`
	// Data is the step payload as submitted.
	Data json.RawMessage `json:"data,omitempty"`
}

// OnboardingProgress is the authoritative onboarding state held in the
// persisted store.
type OnboardingProgress struct {
	// ProfileID is set when profile creation has been initiated.
	ProfileID string `json:"profile_id"`
	// Steps holds the four step slots, index 0 is step 1.
	Steps [StepCount]StepState `json:"steps"`
	// CurrentStep is the step the wizard UI is positioned on. It is
	// advanced by navigation, independently of completion flags.
	CurrentStep int `json:"current_step"`
	// PetPhotoUploading is set while the pet photo upload runs.
	PetPhotoUploading bool `json:"pet_photo_uploading"`
	// MedicalFilesUploading is set while medical record uploads run.
	MedicalFilesUploading bool `json:"medical_files_uploading"`
}

// NewOnboardingProgress returns the initial onboarding state, positioned
// on the first step with nothing completed.
func NewOnboardingProgress() OnboardingProgress {
	return OnboardingProgress{CurrentStep: StepTermsConsent}
}

// Reset returns the progress to its initial value wholesale.
func (p *OnboardingProgress) Reset() {
	*p = NewOnboardingProgress()
}

// Started reports whether profile creation has been initiated.
func (p *OnboardingProgress) Started() bool { return p.ProfileID != "" }

// CompleteStep marks the given step completed and records its payload.
// Completion flags are monotonic: the flag is never cleared here, and a
// repeat completion only refreshes the payload.
func (p *OnboardingProgress) CompleteStep(step int, data json.RawMessage) error {
	if step < 1 || step > StepCount {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	p.Steps[step-1].Completed = true
	if data != nil {
		p.Steps[step-1].Data = data
	}
	return nil
}

// NavigateTo moves the wizard position to the given step. Navigation is
// allowed to any step, forward or backward, but is blocked while a
// background upload is in flight.
func (p *OnboardingProgress) NavigateTo(step int) error {
	if step < 1 || step > StepCount {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	if p.PetPhotoUploading || p.MedicalFilesUploading {
		return ErrUploadInFlight
	}
	p.CurrentStep = step
	return nil
}

// CompletedThrough returns the highest step n such that steps 1..n are
// all completed. This is the value projected into the onboarding_step
// cookie.
func (p *OnboardingProgress) CompletedThrough() int {
	for i, s := range p.Steps {
		if !s.Completed {
			return i
		}
	}
	return StepCount
}

// IsComplete reports whether every onboarding step has been completed.
func (p *OnboardingProgress) IsComplete() bool {
	return p.CompletedThrough() == StepCount
}

// MergeRemoteStep folds the backend's recorded onboarding step into the
// local flags. Steps the backend already considers done are marked
// completed; local completion is never rolled back.
func (p *OnboardingProgress) MergeRemoteStep(step int) {
	if step > StepCount {
		step = StepCount
	}
	for i := 0; i < step; i++ {
		p.Steps[i].Completed = true
	}
}
