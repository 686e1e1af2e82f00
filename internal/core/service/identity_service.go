package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

// IdentityService implements account, role and login operations on top of
// the credential and role stores.
type IdentityService struct {
	credentials ports.CredentialStore
	roles       ports.RoleStore
	tokens      ports.TokenIssuer
	log         zerolog.Logger
}

func NewIdentityService(credentials ports.CredentialStore, roles ports.RoleStore, tokens ports.TokenIssuer, log zerolog.Logger) *IdentityService {
	return &IdentityService{credentials: credentials, roles: roles, tokens: tokens, log: log}
}

// CreateAccount registers username with password and attaches roles. When
// the account is stored but role attachment fails, the account is kept and
// the returned error wraps domain.ErrOrphanedAccount.
func (s *IdentityService) CreateAccount(ctx context.Context, username, password string, roles []string) (*domain.Account, error) {
	s.log.Info().Str("username", username).Msg("creating account")

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := ValidateRoles(roles); err != nil {
		return nil, err
	}

	account := domain.NewAccount(username)
	if err := s.credentials.Create(ctx, account, password); err != nil {
		var rej *domain.StoreRejection
		if errors.As(err, &rej) {
			s.log.Warn().Str("username", username).Str("errors", rej.Error()).Msg("account creation rejected")
			return nil, &domain.ValidationError{Reason: rej.Error(), Err: err}
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.credentials.AttachRoles(ctx, account, roles); err != nil {
		reason := "failed to attach roles"
		var rej *domain.StoreRejection
		if errors.As(err, &rej) {
			reason = rej.Error()
		}
		s.log.Error().
			Err(err).
			Str("username", username).
			Strs("roles", roles).
			Bool("orphaned_account", true).
			Msg("account stored but roles could not be attached")
		return nil, &domain.ValidationError{Reason: reason, Err: fmt.Errorf("%w: %w", domain.ErrOrphanedAccount, err)}
	}
	account.Roles = distinctRoles(roles)

	s.log.Info().Str("username", username).Msg("account created")
	return account, nil
}

// CreateRole registers a new role. Backend failures are reported with a
// generic message only.
func (s *IdentityService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	s.log.Info().Str("role", name).Msg("creating role")

	if err := ValidateRoleName(name); err != nil {
		return nil, err
	}

	role := domain.NewRole(name)
	if err := s.roles.Create(ctx, role); err != nil {
		s.log.Warn().Err(err).Str("role", name).Msg("role creation failed")
		return nil, &domain.OperationError{Err: err}
	}

	s.log.Info().Str("role", name).Msg("role created")
	return role, nil
}

// AssignRoles attaches existing roles to an existing account. Every role is
// checked first; if any is unknown nothing is attached. A store failure
// during attachment is logged and reported as false.
func (s *IdentityService) AssignRoles(ctx context.Context, username string, roles []string) (bool, error) {
	s.log.Info().Str("username", username).Msg("assigning roles")

	if err := ValidateUsername(username); err != nil {
		return false, err
	}
	if err := ValidateRoles(roles); err != nil {
		return false, err
	}

	account, err := s.credentials.FindByUsername(ctx, domain.Normalize(username))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return false, &domain.NotFoundError{}
		}
		return false, fmt.Errorf("assign roles: %w", err)
	}

	var unknown []string
	for _, r := range roles {
		ok, err := s.roles.Exists(ctx, r)
		if err != nil {
			return false, fmt.Errorf("assign roles: %w", err)
		}
		if !ok {
			unknown = append(unknown, r)
		}
	}
	if len(unknown) > 0 {
		s.log.Warn().Str("username", username).Strs("roles", unknown).Msg("unknown roles requested")
		return false, domain.NewValidationError("unknown roles: " + strings.Join(unknown, ", "))
	}

	if err := s.credentials.AttachRoles(ctx, account, roles); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to assign roles")
		return false, nil
	}

	s.log.Info().Str("username", username).Strs("roles", roles).Msg("roles assigned")
	return true, nil
}

// Login verifies the credentials and returns a signed access token. Unknown
// usernames and wrong passwords yield the same error.
func (s *IdentityService) Login(ctx context.Context, username, password string) (string, error) {
	s.log.Info().Str("username", username).Msg("logging in")

	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	account, err := s.credentials.FindByUsername(ctx, domain.Normalize(username))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Warn().Str("username", username).Msg("invalid credentials")
			return "", &domain.AuthenticationError{}
		}
		return "", fmt.Errorf("login: %w", err)
	}

	ok, err := s.credentials.VerifyPassword(ctx, account, password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.log.Warn().Str("username", username).Msg("invalid credentials")
		return "", &domain.AuthenticationError{}
	}

	token, err := s.tokens.Issue(ctx, account)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("username", username).Msg("logged in")
	return token, nil
}

func (s *IdentityService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// distinctRoles drops entries whose canonical form was already seen, keeping
// the first spelling.
func distinctRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		n := domain.Normalize(r)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, r)
	}
	return out
}
