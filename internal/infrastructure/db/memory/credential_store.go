package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/identification/identity-service/internal/core/domain"
)

// CredentialStore implements ports.CredentialStore over a Store.
type CredentialStore struct {
	store *Store
}

func (c *CredentialStore) FindByUsername(_ context.Context, normalizedUsername string) (*domain.Account, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	rec, ok := c.store.accounts[normalizedUsername]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	acc := rec.account
	return &acc, nil
}

func (c *CredentialStore) Create(_ context.Context, account *domain.Account, password string) error {
	if err := c.store.hasher.CheckPolicy(password); err != nil {
		return domain.NewStoreRejection(err)
	}
	hash, err := c.store.hasher.Hash(password)
	if err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if _, exists := c.store.accounts[account.NormalizedUsername]; exists {
		return domain.NewStoreRejection(domain.ErrAccountExists, "username '"+account.Username+"' is already taken")
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	stored := *account
	stored.Roles = nil
	c.store.accounts[account.NormalizedUsername] = &accountRecord{
		account:      stored,
		passwordHash: hash,
		roles:        make(map[string]struct{}),
	}
	return nil
}

func (c *CredentialStore) VerifyPassword(_ context.Context, account *domain.Account, password string) (bool, error) {
	c.store.mu.RLock()
	rec, ok := c.store.accounts[account.NormalizedUsername]
	c.store.mu.RUnlock()
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	return c.store.hasher.Compare(rec.passwordHash, password)
}

// RolesOf returns the display names of the account's roles, sorted.
func (c *CredentialStore) RolesOf(_ context.Context, account *domain.Account) ([]string, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	rec, ok := c.store.accounts[account.NormalizedUsername]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	names := make([]string, 0, len(rec.roles))
	for normalized := range rec.roles {
		names = append(names, c.store.roles[normalized].Name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *CredentialStore) AttachRoles(_ context.Context, account *domain.Account, roles []string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	rec, ok := c.store.accounts[account.NormalizedUsername]
	if !ok {
		return domain.ErrAccountNotFound
	}

	var missing []string
	for _, r := range roles {
		if _, ok := c.store.roles[domain.Normalize(r)]; !ok {
			missing = append(missing, "role '"+r+"' does not exist")
		}
	}
	if len(missing) > 0 {
		return domain.NewStoreRejection(domain.ErrRoleNotFound, missing...)
	}

	for _, r := range roles {
		rec.roles[domain.Normalize(r)] = struct{}{}
	}
	return nil
}

func (c *CredentialStore) Ping(context.Context) error { return nil }
