package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/identification/identity-service/internal/core/domain"
)

type RoleStore struct {
	pool *pgxpool.Pool
}

func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

func (r *RoleStore) Exists(ctx context.Context, roleName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE normalized_name=$1)`,
		domain.Normalize(roleName),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("role exists: %w", err)
	}
	return exists, nil
}

func (r *RoleStore) Create(ctx context.Context, role *domain.Role) error {
	id := uuid.NewString()
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, name, normalized_name) VALUES ($1, $2, $3)`,
		id, role.Name, role.NormalizedName,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.NewStoreRejection(domain.ErrRoleExists, "role '"+role.Name+"' already exists")
		}
		return fmt.Errorf("insert role: %w", err)
	}
	role.ID = id
	return nil
}

func (r *RoleStore) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, normalized_name FROM roles ORDER BY normalized_name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Role, error) {
		var role domain.Role
		err := row.Scan(&role.ID, &role.Name, &role.NormalizedName)
		return &role, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan roles: %w", err)
	}
	return roles, nil
}
