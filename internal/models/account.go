package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents an account's entitlement tier
type Role string

const (
	RoleExplorer Role = "explorer" // Free tier, limited queries
	RolePro      Role = "pro"      // Paid tier, unlimited queries
	RoleAdmin    Role = "admin"    // Unlimited queries plus user management
)

// ParseRole normalizes a role string to the closed role set. Legacy
// tier names ("premium") map to pro; anything unrecognized falls back
// to explorer so an unknown tier never gains entitlements.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleExplorer:
		return RoleExplorer
	case RolePro, Role("premium"):
		return RolePro
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleExplorer
	}
}

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	return r == RoleExplorer || r == RolePro || r == RoleAdmin
}

// IsPaid reports whether the role is a paid tier. This is the derived
// view of the legacy boolean "paid" flag; it is never stored.
func (r Role) IsPaid() bool {
	return r != RoleExplorer
}

// Account represents a registered user in the system
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	SecretHash  string    `json:"-"` // bcrypt hash, never sent to client
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	UsageCount  int       `json:"usageCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAccount creates an account with a hashed secret. The caller is
// responsible for id assignment and validation.
func NewAccount(email, secret, displayName string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Account{
		Email:       strings.ToLower(email),
		SecretHash:  string(hash),
		DisplayName: strings.TrimSpace(displayName),
		Role:        RoleExplorer,
		UsageCount:  0,
		CreatedAt:   time.Now(),
	}, nil
}

// ValidateSecret checks the provided secret against the stored hash.
// bcrypt's comparison is constant-time, so a mismatch does not reveal
// which part of the credential pair was wrong.
func (a *Account) ValidateSecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.SecretHash), []byte(secret)) == nil
}

// Clone returns a detached copy safe to hand outside the store
func (a *Account) Clone() *Account {
	dup := *a
	return &dup
}
