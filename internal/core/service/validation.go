package service

import (
	"strings"

	"github.com/identification/identity-service/internal/core/domain"
)

// ValidateUsername rejects empty or whitespace-only usernames.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return domain.NewValidationError("invalid credentials")
	}
	return nil
}

// ValidatePassword rejects empty or whitespace-only passwords. Strength
// rules belong to the credential store.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return domain.NewValidationError("invalid credentials")
	}
	return nil
}

func ValidateRoleName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("role name cannot be empty")
	}
	return nil
}

// ValidateRoles rejects a nil or empty list, and lists holding a blank name.
func ValidateRoles(roles []string) error {
	if len(roles) == 0 {
		return domain.NewValidationError("roles cannot be empty")
	}
	for _, r := range roles {
		if err := ValidateRoleName(r); err != nil {
			return err
		}
	}
	return nil
}
