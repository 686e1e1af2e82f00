// Package memory provides an in-process credential and role store. It backs
// local runs with STORE_DRIVER=memory and the service tests.
package memory

import (
	"sync"

	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/infrastructure/crypto"
)

type accountRecord struct {
	account      domain.Account
	passwordHash string
	roles        map[string]struct{} // normalized role names
}

// Store keeps accounts and roles in maps keyed by their canonical names.
// Credentials and Roles expose the two port views over the shared state.
type Store struct {
	mu       sync.RWMutex
	hasher   *crypto.Hasher
	accounts map[string]*accountRecord
	roles    map[string]domain.Role
}

func NewStore(hasher *crypto.Hasher) *Store {
	return &Store{
		hasher:   hasher,
		accounts: make(map[string]*accountRecord),
		roles:    make(map[string]domain.Role),
	}
}

func (s *Store) Credentials() *CredentialStore { return &CredentialStore{store: s} }

func (s *Store) Roles() *RoleStore { return &RoleStore{store: s} }
