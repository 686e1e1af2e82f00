package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/identification/identity-service/internal/core/domain"
)

// RoleStore implements ports.RoleStore over a Store.
type RoleStore struct {
	store *Store
}

func (r *RoleStore) Exists(_ context.Context, roleName string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.roles[domain.Normalize(roleName)]
	return ok, nil
}

func (r *RoleStore) Create(_ context.Context, role *domain.Role) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.roles[role.NormalizedName]; exists {
		return domain.NewStoreRejection(domain.ErrRoleExists, "role '"+role.Name+"' already exists")
	}
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	r.store.roles[role.NormalizedName] = *role
	return nil
}

func (r *RoleStore) List(_ context.Context) ([]*domain.Role, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Role, 0, len(r.store.roles))
	for _, role := range r.store.roles {
		role := role
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NormalizedName < out[j].NormalizedName })
	return out, nil
}
