package domain

import (
	"strings"
	"time"
)

// Roles seeded on first start. Account and role creation over HTTP is
// restricted to holders of RoleAdmin.
const (
	RoleAdmin    = "Admin"
	RoleOperator = "Operator"
)

// Account models a registered identity. The password hash never leaves the
// credential store adapter.
type Account struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	NormalizedUsername string    `json:"-"`
	Roles              []string  `json:"roles"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewAccount builds an account with its canonical username filled in.
func NewAccount(username string) *Account {
	return &Account{
		Username:           username,
		NormalizedUsername: Normalize(username),
		CreatedAt:          time.Now().UTC(),
	}
}

// Role is a named permission group. Roles are immutable once created.
type Role struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"-"`
}

// NewRole builds a role with its canonical name filled in.
func NewRole(name string) *Role {
	return &Role{Name: name, NormalizedName: Normalize(name)}
}

// Normalize returns the canonical form used for uniqueness and lookup.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
