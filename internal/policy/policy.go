// Package policy maps an account role to its entitlements. The
// mapping is a total function: any role outside the closed set is
// treated as explorer, so unrecognized tiers fail closed.
package policy

import (
	"github.com/themastyogi/fica-fda-chatbot/internal/models"
)

// Unlimited is the ceiling sentinel for roles without a query cap
const Unlimited = -1

// MaxQueriesExplorer is the free-tier query ceiling
const MaxQueriesExplorer = 5

// Limits describes what a role is entitled to
type Limits struct {
	Ceiling       int  // Maximum query count, or Unlimited
	CanAdminister bool // May manage other accounts
}

// LimitsFor returns the entitlements for a role
func LimitsFor(role models.Role) Limits {
	switch role {
	case models.RoleAdmin:
		return Limits{Ceiling: Unlimited, CanAdminister: true}
	case models.RolePro:
		return Limits{Ceiling: Unlimited, CanAdminister: false}
	case models.RoleExplorer:
		return Limits{Ceiling: MaxQueriesExplorer, CanAdminister: false}
	default:
		return Limits{Ceiling: MaxQueriesExplorer, CanAdminister: false}
	}
}

// Allowed reports whether an account with the given role and usage
// count may perform another exchange.
func Allowed(role models.Role, used int) bool {
	limits := LimitsFor(role)
	return limits.Ceiling == Unlimited || used < limits.Ceiling
}

// Remaining returns how many exchanges are left, or Unlimited
func Remaining(role models.Role, used int) int {
	limits := LimitsFor(role)
	if limits.Ceiling == Unlimited {
		return Unlimited
	}
	if used >= limits.Ceiling {
		return 0
	}
	return limits.Ceiling - used
}
