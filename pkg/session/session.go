// Package session holds the bearer credential and the principal it belongs
// to. The credential is persisted so it survives restarts; the principal is
// only ever learned from the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/store"
)

// CredentialKey is the persistence key the credential is stored under.
const CredentialKey = "credential"

// ErrUnauthenticated is returned when an operation needs a session and none
// is established.
var ErrUnauthenticated = errors.New("session: not logged in")

// Validator resolves the principal for the credential currently in use.
type Validator interface {
	Me(ctx context.Context) (*note.Principal, error)
}

// Store is safe for concurrent use. It satisfies api.CredentialSource.
type Store struct {
	kv  store.Persistence
	log zerolog.Logger

	mu         sync.RWMutex
	credential string
	principal  *note.Principal
}

// New builds a Store over kv. A nil kv keeps the session in memory only.
func New(kv store.Persistence, log *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "session").Logger()
	}
	return &Store{kv: kv, log: l}
}

// Load restores a persisted credential and validates it. Any validation
// failure clears the session without reporting an error; the caller simply
// ends up unauthenticated. Only persistence failures are returned.
func (s *Store) Load(ctx context.Context, v Validator) (*note.Principal, error) {
	if s.kv == nil {
		return nil, nil
	}
	cred, err := s.kv.Read(CredentialKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	cred = strings.TrimSpace(cred)
	if cred == "" {
		return nil, s.Clear()
	}

	s.mu.Lock()
	s.credential = cred
	s.principal = nil
	s.mu.Unlock()

	p, err := v.Me(ctx)
	if err != nil || p == nil {
		s.log.Debug().Err(err).Msg("persisted credential rejected")
		return nil, s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent Set or Clear wins over the bootstrap.
	if s.credential != cred {
		return s.principal, nil
	}
	s.principal = p
	return p, nil
}

// Set installs a credential and its principal, and persists the credential.
func (s *Store) Set(credential string, principal *note.Principal) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return errors.New("session: empty credential")
	}
	s.mu.Lock()
	s.credential = credential
	s.principal = principal
	s.mu.Unlock()

	if s.kv == nil {
		return nil
	}
	if err := s.kv.Write(CredentialKey, credential); err != nil {
		return fmt.Errorf("session: persist: %w", err)
	}
	return nil
}

// Clear drops the credential and principal together.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.credential = ""
	s.principal = nil
	s.mu.Unlock()

	if s.kv == nil {
		return nil
	}
	if err := s.kv.Erase(CredentialKey); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// Credential returns the current bearer credential, or "".
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Principal returns a copy of the authenticated principal, or nil.
func (s *Store) Principal() *note.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// Authenticated reports whether both a credential and a principal are held.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != "" && s.principal != nil
}
