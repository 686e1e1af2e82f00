// Package seed creates the built-in roles and, when credentials are
// configured, the initial administrator and operator accounts.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

// Account describes one account to seed.
type Account struct {
	Username string
	Password string
	Role     string
}

// Seeder is idempotent: roles and accounts that already exist are skipped.
type Seeder struct {
	identity ports.IdentityService
	roles    ports.RoleStore
	log      zerolog.Logger
}

func NewSeeder(identity ports.IdentityService, roles ports.RoleStore, log zerolog.Logger) *Seeder {
	return &Seeder{identity: identity, roles: roles, log: log}
}

// Run seeds the Admin and Operator roles, then every account whose username
// and password are both set.
func (s *Seeder) Run(ctx context.Context, accounts ...Account) error {
	for _, name := range []string{domain.RoleAdmin, domain.RoleOperator} {
		exists, err := s.roles.Exists(ctx, name)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		if exists {
			continue
		}
		if _, err := s.identity.CreateRole(ctx, name); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		s.log.Info().Str("role", name).Msg("seeded role")
	}

	for _, a := range accounts {
		if a.Username == "" || a.Password == "" {
			continue
		}
		_, err := s.identity.CreateAccount(ctx, a.Username, a.Password, []string{a.Role})
		if err != nil {
			if errors.Is(err, domain.ErrAccountExists) {
				continue
			}
			return fmt.Errorf("seed account %s: %w", a.Username, err)
		}
		s.log.Info().Str("username", a.Username).Str("role", a.Role).Msg("seeded account")
	}
	return nil
}
