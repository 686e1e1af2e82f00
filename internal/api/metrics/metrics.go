// Package metrics defines the custom Prometheus metrics of the
// identification service. Metrics register with the default registry on
// package init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Authentication ────────────────────────────────────────────────────────────

// LoginsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_request", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ── Accounts and roles ───────────────────────────────────────────────────────

// AccountsCreatedTotal counts accounts created with all requested roles.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created.",
	},
)

// OrphanedAccountsTotal counts accounts persisted without their roles. Each
// one needs manual remediation.
var OrphanedAccountsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_accounts_total",
		Help:      "Total number of accounts stored but left without roles.",
	},
)

// RolesCreatedTotal counts created roles.
var RolesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roles_created_total",
		Help:      "Total number of roles created.",
	},
)

// RoleAssignmentsTotal counts role assignment requests.
// Label:
//   - result: "assigned", "rejected" or "failed"
var RoleAssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_assignments_total",
		Help:      "Total number of role assignment requests, by result.",
	},
	[]string{"result"},
)
