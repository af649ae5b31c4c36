package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pawmart/frontgate/internal/api"
	"github.com/pawmart/frontgate/internal/models"
	"github.com/pawmart/frontgate/internal/session"
)

// fakeClient implements api.Client for testing.
type fakeClient struct {
	loginRes models.LoginResult
	loginErr error

	verifyErr   error
	verifyToken string

	user       models.UserRecord
	userErr    error
	fetchCalls int

	profileID string
	initErr   error
	initCalls int

	patches   []map[string]any
	updateErr error

	pets      []models.PetRecord
	createErr error
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeClient) VerifyOTP(ctx context.Context, token, code string) error {
	f.verifyToken = token
	return f.verifyErr
}

func (f *fakeClient) FetchCurrentUser(ctx context.Context, token string, populate bool) (models.UserRecord, error) {
	f.fetchCalls++
	return f.user, f.userErr
}

func (f *fakeClient) InitiateProfile(ctx context.Context, token string) (string, error) {
	f.initCalls++
	return f.profileID, f.initErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, token, profileID string, patch map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeClient) CreatePet(ctx context.Context, token, profileID string, pet models.PetRecord) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.pets = append(f.pets, pet)
	return "pet-1", nil
}

func newFixture(t *testing.T, client api.Client) (*SessionService, *OnboardingService, *session.Store) {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "session.store"), "secret", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Hydrate())

	sync := session.NewCredentialSync(store, session.CookieCodec{MaxAge: 300}, zap.NewNop())
	cache := session.NewMemCache()
	sync.RegisterCache(cache)

	return NewSessionService(client, sync, store, cache),
		NewOnboardingService(client, store, sync),
		store
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	remote := &api.RemoteError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	sessions, _, store := newFixture(t, &fakeClient{loginErr: remote})

	rec := httptest.NewRecorder()
	err := sessions.Login(context.Background(), rec, "a@b.c", "pw")
	require.ErrorIs(t, err, remote)

	acct, err := store.Account()
	require.NoError(t, err)
	require.Empty(t, acct.Token)
	require.Empty(t, rec.Result().Cookies())
}

func TestLoginSuccessSynchronizes(t *testing.T) {
	client := &fakeClient{loginRes: models.LoginResult{Token: "tok", Email: "a@b.c"}}
	sessions, _, store := newFixture(t, client)

	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Login(context.Background(), rec, "a@b.c", "pw"))

	acct, err := store.Account()
	require.NoError(t, err)
	require.Equal(t, "tok", acct.Token)
	require.NotEmpty(t, rec.Result().Cookies())
}

func TestVerifyOTPUsesStoredToken(t *testing.T) {
	client := &fakeClient{loginRes: models.LoginResult{Token: "tok", Email: "a@b.c"}}
	sessions, _, store := newFixture(t, client)

	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Login(context.Background(), rec, "a@b.c", "pw"))
	require.NoError(t, sessions.VerifyOTP(context.Background(), httptest.NewRecorder(), "000000"))
	require.Equal(t, "tok", client.verifyToken)

	acct, err := store.Account()
	require.NoError(t, err)
	require.True(t, acct.IsVerified)
}

func TestRefreshUserServedFromCache(t *testing.T) {
	client := &fakeClient{
		loginRes: models.LoginResult{Token: "tok", Email: "a@b.c"},
		user:     models.UserRecord{ID: "u1", Email: "a@b.c", IsVerified: true},
	}
	sessions, _, _ := newFixture(t, client)

	require.NoError(t, sessions.Login(context.Background(), httptest.NewRecorder(), "a@b.c", "pw"))

	_, err := sessions.RefreshUser(context.Background(), httptest.NewRecorder())
	require.NoError(t, err)
	_, err = sessions.RefreshUser(context.Background(), httptest.NewRecorder())
	require.NoError(t, err)
	require.Equal(t, 1, client.fetchCalls)
}

func TestCompleteStepInitiatesProfileOnce(t *testing.T) {
	client := &fakeClient{
		loginRes:  models.LoginResult{Token: "tok", Email: "a@b.c", IsVerified: true},
		profileID: "p1",
	}
	sessions, onboarding, store := newFixture(t, client)
	require.NoError(t, sessions.Login(context.Background(), httptest.NewRecorder(), "a@b.c", "pw"))

	rec := httptest.NewRecorder()
	err := onboarding.CompleteStep(context.Background(), rec, session.StepTermsConsent, json.RawMessage(`{"accepted":true}`))
	require.NoError(t, err)
	require.Equal(t, 1, client.initCalls)

	prog, err := store.Onboarding()
	require.NoError(t, err)
	require.Equal(t, "p1", prog.ProfileID)
	require.Equal(t, 1, prog.CompletedThrough())

	// The refreshed cookie projection rides on the step response.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var step string
	for _, ck := range cookies {
		if ck.Name == session.CookieOnboardingStep {
			step = ck.Value
		}
	}
	require.Equal(t, "1", step)

	err = onboarding.CompleteStep(context.Background(), httptest.NewRecorder(), session.StepServiceSelection, json.RawMessage(`{"services":["checkup"]}`))
	require.NoError(t, err)
	require.Equal(t, 1, client.initCalls, "profile initiated again")
}

func TestCompleteStepNeverOptimistic(t *testing.T) {
	remote := &api.RemoteError{Status: http.StatusBadGateway, Message: "backend down"}
	client := &fakeClient{
		loginRes:  models.LoginResult{Token: "tok", Email: "a@b.c", IsVerified: true, Profile: &models.Profile{ID: "p1"}},
		updateErr: remote,
	}
	sessions, onboarding, store := newFixture(t, client)
	require.NoError(t, sessions.Login(context.Background(), httptest.NewRecorder(), "a@b.c", "pw"))

	err := onboarding.CompleteStep(context.Background(), httptest.NewRecorder(), session.StepTermsConsent, json.RawMessage(`{}`))
	require.ErrorIs(t, err, remote)

	prog, err := store.Onboarding()
	require.NoError(t, err)
	require.Equal(t, 0, prog.CompletedThrough(), "step completed despite remote failure")
}

func TestCompleteStepPetIdentityCreatesPet(t *testing.T) {
	client := &fakeClient{
		loginRes: models.LoginResult{Token: "tok", Email: "a@b.c", IsVerified: true, Profile: &models.Profile{ID: "p1"}},
	}
	sessions, onboarding, _ := newFixture(t, client)
	require.NoError(t, sessions.Login(context.Background(), httptest.NewRecorder(), "a@b.c", "pw"))

	payload := json.RawMessage(`{"name":"Rex","species":"dog","breed":"corgi","birth_date":"2020-01-02"}`)
	err := onboarding.CompleteStep(context.Background(), httptest.NewRecorder(), session.StepPetIdentity, payload)
	require.NoError(t, err)
	require.Len(t, client.pets, 1)
	require.Equal(t, "Rex", client.pets[0].Name)
	require.Empty(t, client.patches, "pet step must not patch the profile")
}

func TestNavigateBlockedDuringUpload(t *testing.T) {
	client := &fakeClient{loginRes: models.LoginResult{Token: "tok", Email: "a@b.c", IsVerified: true}}
	sessions, onboarding, _ := newFixture(t, client)
	require.NoError(t, sessions.Login(context.Background(), httptest.NewRecorder(), "a@b.c", "pw"))

	require.NoError(t, onboarding.SetUploading(context.Background(), UploadPetPhoto, true))
	err := onboarding.Navigate(context.Background(), session.StepMedicalHistory)
	require.ErrorIs(t, err, session.ErrUploadInFlight)

	require.NoError(t, onboarding.SetUploading(context.Background(), UploadPetPhoto, false))
	require.NoError(t, onboarding.Navigate(context.Background(), session.StepMedicalHistory))
}

func TestLogoutDestroysSession(t *testing.T) {
	client := &fakeClient{loginRes: models.LoginResult{Token: "tok", Email: "a@b.c", IsVerified: true}}
	sessions, _, store := newFixture(t, client)
	require.NoError(t, sessions.Login(context.Background(), httptest.NewRecorder(), "a@b.c", "pw"))

	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Logout(context.Background(), rec))

	acct, err := store.Account()
	require.NoError(t, err)
	require.Empty(t, acct.Token)
	for _, ck := range rec.Result().Cookies() {
		require.Empty(t, ck.Value)
	}
}
