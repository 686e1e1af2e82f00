package service

import (
	"context"
	"errors"
	"strings"

	"github.com/identification/identity-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type staticSigning domain.SigningConfig

func (s staticSigning) SigningConfig() domain.SigningConfig { return domain.SigningConfig(s) }

var testSigning = staticSigning{Secret: "test-secret", Issuer: "identity", Audience: "services"}

type stubAccount struct {
	account  domain.Account
	password string
	roles    []string
}

// recordingCredentials is a credential store that counts every call.
type recordingCredentials struct {
	accounts  map[string]*stubAccount
	calls     int
	createErr error
	attachErr error
	findErr   error
}

func newRecordingCredentials() *recordingCredentials {
	return &recordingCredentials{accounts: make(map[string]*stubAccount)}
}

func (r *recordingCredentials) FindByUsername(_ context.Context, normalized string) (*domain.Account, error) {
	r.calls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.accounts[normalized]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	acc := a.account
	return &acc, nil
}

func (r *recordingCredentials) Create(_ context.Context, account *domain.Account, password string) error {
	r.calls++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.accounts[account.NormalizedUsername]; ok {
		return domain.NewStoreRejection(domain.ErrAccountExists, "username '"+account.Username+"' is already taken")
	}
	account.ID = "id-" + strings.ToLower(account.NormalizedUsername)
	r.accounts[account.NormalizedUsername] = &stubAccount{account: *account, password: password}
	return nil
}

func (r *recordingCredentials) VerifyPassword(_ context.Context, account *domain.Account, password string) (bool, error) {
	r.calls++
	a, ok := r.accounts[account.NormalizedUsername]
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	return a.password == password, nil
}

func (r *recordingCredentials) RolesOf(_ context.Context, account *domain.Account) ([]string, error) {
	r.calls++
	a, ok := r.accounts[account.NormalizedUsername]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return append([]string(nil), a.roles...), nil
}

func (r *recordingCredentials) AttachRoles(_ context.Context, account *domain.Account, roles []string) error {
	r.calls++
	if r.attachErr != nil {
		return r.attachErr
	}
	a, ok := r.accounts[account.NormalizedUsername]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.roles = append(a.roles, roles...)
	return nil
}

func (r *recordingCredentials) Ping(context.Context) error { return nil }

type recordingRoles struct {
	names     map[string]string
	calls     int
	createErr error
}

func newRecordingRoles(names ...string) *recordingRoles {
	r := &recordingRoles{names: make(map[string]string)}
	for _, n := range names {
		r.names[domain.Normalize(n)] = n
	}
	return r
}

func (r *recordingRoles) Exists(_ context.Context, name string) (bool, error) {
	r.calls++
	_, ok := r.names[domain.Normalize(name)]
	return ok, nil
}

func (r *recordingRoles) Create(_ context.Context, role *domain.Role) error {
	r.calls++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.names[role.NormalizedName]; ok {
		return domain.NewStoreRejection(domain.ErrRoleExists)
	}
	r.names[role.NormalizedName] = role.Name
	return nil
}

func (r *recordingRoles) List(context.Context) ([]*domain.Role, error) {
	r.calls++
	out := make([]*domain.Role, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, domain.NewRole(n))
	}
	return out, nil
}

var errBackend = errors.New("connection refused")
