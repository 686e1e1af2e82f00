package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/infrastructure/crypto"
)

const uniqueViolation = "23505"

type CredentialStore struct {
	pool   *pgxpool.Pool
	hasher *crypto.Hasher
}

func NewCredentialStore(pool *pgxpool.Pool, hasher *crypto.Hasher) *CredentialStore {
	return &CredentialStore{pool: pool, hasher: hasher}
}

func (r *CredentialStore) Create(ctx context.Context, account *domain.Account, password string) error {
	if err := r.hasher.CheckPolicy(password); err != nil {
		return domain.NewStoreRejection(err)
	}
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	const query = `
        INSERT INTO accounts (id, username, normalized_username, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	id := uuid.NewString()
	if _, err := r.pool.Exec(ctx, query, id, account.Username, account.NormalizedUsername, hash, account.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.NewStoreRejection(domain.ErrAccountExists, "username '"+account.Username+"' is already taken")
		}
		return fmt.Errorf("insert account: %w", err)
	}
	account.ID = id
	return nil
}

func (r *CredentialStore) FindByUsername(ctx context.Context, normalizedUsername string) (*domain.Account, error) {
	const query = `
        SELECT id, username, normalized_username, created_at
        FROM accounts WHERE normalized_username=$1`

	var acc domain.Account
	if err := r.pool.QueryRow(ctx, query, normalizedUsername).Scan(
		&acc.ID,
		&acc.Username,
		&acc.NormalizedUsername,
		&acc.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &acc, nil
}

func (r *CredentialStore) VerifyPassword(ctx context.Context, account *domain.Account, password string) (bool, error) {
	const query = `SELECT password_hash FROM accounts WHERE normalized_username=$1`

	var hash string
	if err := r.pool.QueryRow(ctx, query, account.NormalizedUsername).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrAccountNotFound
		}
		return false, fmt.Errorf("load password hash: %w", err)
	}
	return r.hasher.Compare(hash, password)
}

func (r *CredentialStore) RolesOf(ctx context.Context, account *domain.Account) ([]string, error) {
	const query = `
        SELECT ro.name
        FROM roles ro
        JOIN account_roles ar ON ar.role_id = ro.id
        JOIN accounts a ON a.id = ar.account_id
        WHERE a.normalized_username=$1
        ORDER BY ro.normalized_name`

	rows, err := r.pool.Query(ctx, query, account.NormalizedUsername)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan roles: %w", err)
	}
	return names, nil
}

// AttachRoles inserts all links inside one transaction.
func (r *CredentialStore) AttachRoles(ctx context.Context, account *domain.Account, roles []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var accountID string
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE normalized_username=$1`, account.NormalizedUsername).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("find account: %w", err)
	}

	var missing []string
	for _, role := range roles {
		var roleID string
		err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE normalized_name=$1`, domain.Normalize(role)).Scan(&roleID)
		if errors.Is(err, pgx.ErrNoRows) {
			missing = append(missing, roleMissing(role))
			continue
		}
		if err != nil {
			return fmt.Errorf("find role: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			accountID, roleID,
		); err != nil {
			return fmt.Errorf("link role: %w", err)
		}
	}
	if len(missing) > 0 {
		return domain.NewStoreRejection(domain.ErrRoleNotFound, missing...)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *CredentialStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func roleMissing(role string) string {
	return "role '" + role + "' does not exist"
}
