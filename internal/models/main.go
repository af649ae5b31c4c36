// Package models defines the core data structures for accounts, profiles
// and credentials exchanged with the marketplace backend.
package models

// PortalType identifies which portal an account belongs to.
type PortalType string

const (
	// PortalCustomer is the pet-owner portal. It is the only portal this
	// front end serves.
	PortalCustomer PortalType = "CUSTOMER"
)

// UserRecord represents the account as returned by the backend's
// current-user endpoint.
type UserRecord struct {
	// ID is the unique identifier of the account.
	ID string `json:"id"`
	// Email is the account's login email.
	Email string `json:"email"`
	// FirstName is the owner's given name.
	FirstName string `json:"first_name"`
	// LastName is the owner's family name.
	LastName string `json:"last_name"`
	// IsVerified reports whether the account passed OTP verification.
	IsVerified bool `json:"is_verified"`
	// Profile is the customer profile, nil until onboarding has been
	// initiated.
	Profile *Profile `json:"profile,omitempty"`
}

// Profile is the customer's domain profile created during onboarding.
type Profile struct {
	// ID is the unique identifier of the profile.
	ID string `json:"id"`
	// OnboardingStep is the highest onboarding step the backend has
	// recorded as completed, 0 if none.
	OnboardingStep int `json:"onboarding_step"`
}

// LoginResult is the credential payload returned by a successful login
// or registration call.
type LoginResult struct {
	// Token is the bearer token for subsequent API calls.
	Token string `json:"token"`
	// IsVerified reports whether the account is already OTP-verified.
	IsVerified bool `json:"is_verified"`
	// Email is the account email the token was issued for.
	Email string `json:"email"`
	// Profile is present when the account already has a customer profile.
	Profile *Profile `json:"profile,omitempty"`
}

// PetRecord carries the pet identity submitted during onboarding.
type PetRecord struct {
	// Name is the pet's name.
	Name string `json:"name"`
	// Species is the pet's species ("dog", "cat", ...).
	Species string `json:"species"`
	// Breed is the pet's breed, free-form.
	Breed string `json:"breed"`
	// BirthDate is the pet's date of birth in YYYY-MM-DD form.
	BirthDate string `json:"birth_date"`
}
