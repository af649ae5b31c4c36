package session

import (
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// schemaVersion is the on-disk schema of the persisted blob. Blobs
// carrying a different version are discarded instead of being
// deserialized into a mismatched shape.
const schemaVersion = 1

// ErrNotHydrated is returned when the store is read before Hydrate has
// completed. Callers must gate on Ready or Await first.
var ErrNotHydrated = errors.New("store not hydrated")

// ErrStorageWrite wraps failures to commit the persisted blob.
var ErrStorageWrite = errors.New("storage write failed")

// persistedState is the on-disk shape. Only the allow-listed slices
// (account session and onboarding progress) are ever persisted; all
// other application state lives in memory for the process lifetime.
type persistedState struct {
	SchemaVersion int                `json:"schema_version"`
	Auth          AccountSession     `json:"auth"`
	Onboarding    OnboardingProgress `json:"onboarding"`
}

func defaultState() persistedState {
	return persistedState{
		SchemaVersion: schemaVersion,
		Auth:          NewAccountSession(),
		Onboarding:    NewOnboardingProgress(),
	}
}

// Store is the encrypted, versioned persisted store for session state.
// It is an explicit object passed to its consumers, created at process
// start and never a package-level singleton. A single active instance
// per store file is assumed; concurrent instances are not reconciled.
type Store struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD
	log  *zap.Logger

	state    persistedState
	hydrated bool
	ready    chan struct{}

	destroyedHooks []func(*OnboardingProgress)
}

// Open prepares a store backed by the file at path, deriving the
// encryption key from secret. The store is unusable until Hydrate runs.
func Open(path, secret string, log *zap.Logger) (*Store, error) {
	aead, err := NewAEAD(secret, path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:  path,
		aead:  aead,
		log:   log,
		state: defaultState(),
		ready: make(chan struct{}),
	}, nil
}

// OnAccountDestroyed registers an observer invoked when the account
// session is destroyed. The hook runs inside the destroying commit, so
// its mutations land atomically with the account reset.
func (s *Store) OnAccountDestroyed(fn func(*OnboardingProgress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyedHooks = append(s.destroyedHooks, fn)
}

// Hydrate loads, decrypts and deserializes the persisted blob into
// memory. It runs once per process; later calls are no-ops. A missing
// file, an undecryptable blob or a schema mismatch all fall back to the
// initial defaults, as if this were a first run.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return nil
	}

	blob, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		// First run.
	case err != nil:
		return fmt.Errorf("read store: %w", err)
	default:
		if st, ok := s.decode(blob); ok {
			s.state = st
		}
	}

	s.hydrated = true
	close(s.ready)
	return nil
}

// decode decrypts and deserializes a blob, reporting whether the result
// is usable. Any failure is recovered by discarding the blob.
func (s *Store) decode(blob []byte) (persistedState, bool) {
	plain, err := open(s.aead, blob)
	if err != nil {
		s.log.Warn("discarding undecryptable session store", zap.Error(err))
		return persistedState{}, false
	}
	var st persistedState
	if err := json.Unmarshal(plain, &st); err != nil {
		s.log.Warn("discarding malformed session store", zap.Error(err))
		return persistedState{}, false
	}
	if st.SchemaVersion != schemaVersion {
		s.log.Warn("discarding session store with unknown schema",
			zap.Int("found", st.SchemaVersion),
			zap.Int("want", schemaVersion))
		return persistedState{}, false
	}
	return st, true
}

// Ready is closed once hydration has completed.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Account returns a copy of the account session slice.
func (s *Store) Account() (AccountSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return AccountSession{}, ErrNotHydrated
	}
	return s.state.Auth, nil
}

// Onboarding returns a copy of the onboarding progress slice.
func (s *Store) Onboarding() (OnboardingProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return OnboardingProgress{}, ErrNotHydrated
	}
	return s.state.Onboarding, nil
}

// Facts projects the current store state into routing facts.
func (s *Store) Facts() (Facts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return Facts{}, ErrNotHydrated
	}
	return Project(s.state.Auth, s.state.Onboarding), nil
}

// Update applies a mutation to the persisted slices and commits it
// write-through: the blob is rewritten before Update returns, so a
// crash cannot lose an acknowledged mutation.
func (s *Store) Update(mutate func(*AccountSession, *OnboardingProgress)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	mutate(&s.state.Auth, &s.state.Onboarding)
	return s.commit()
}

// DestroyAccount resets the account session to its initial value and
// notifies destroyed-hooks inside the same commit, so dependent slices
// (onboarding) are reset atomically with the account.
func (s *Store) DestroyAccount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	s.state.Auth = NewAccountSession()
	for _, fn := range s.destroyedHooks {
		fn(&s.state.Onboarding)
	}
	return s.commit()
}

// commit serializes, encrypts and writes the state. Callers hold s.mu.
func (s *Store) commit() error {
	plain, err := json.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	blob, err := seal(s.aead, plain)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err := os.WriteFile(s.path, blob, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}
