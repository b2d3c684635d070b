// Package store owns the in-process credential registry. It is the
// only component allowed to mutate account records; everything else
// goes through its API so partial updates are never observable.
package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/themastyogi/fica-fda-chatbot/internal/models"
)

var (
	ErrNotFound         = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account with this email already exists")
	ErrInvalidInput     = errors.New("invalid input")
)

// MinSecretLength is the minimum accepted secret length
const MinSecretLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks if an email has a valid basic format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Store is the credential registry. All mutations are serialized
// under a single mutex.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account // keyed by account id
	byEmail  map[string]string          // lowercased email -> account id
}

// New creates an empty credential store
func New() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		byEmail:  make(map[string]string),
	}
}

// FindByEmail retrieves an account by email, case-insensitively
func (s *Store) FindByEmail(email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	return s.accounts[id].Clone(), nil
}

// FindByID retrieves an account by id
func (s *Store) FindByID(id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return account.Clone(), nil
}

// Create validates the fields, rejects duplicate emails and stores a
// new explorer account with a fresh id and a zero usage count.
func (s *Store) Create(email, secret, displayName string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(displayName) == "" || strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if !ValidateEmail(email) {
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: secret must be at least %d characters", ErrInvalidInput, MinSecretLength)
	}

	account, err := models.NewAccount(email, secret, displayName)
	if err != nil {
		return nil, err
	}
	account.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, ErrDuplicateAccount
	}
	s.accounts[account.ID] = account
	s.byEmail[email] = account.ID

	return account.Clone(), nil
}

// UpdateRole replaces an account's role in place and returns the
// updated record.
func (s *Store) UpdateRole(id string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	account.Role = role
	return account.Clone(), nil
}

// IncrementUsage adds exactly one to an account's usage counter
func (s *Store) IncrementUsage(id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	account.UsageCount++
	return account.Clone(), nil
}

// Delete removes an account from the registry
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEmail, account.Email)
	delete(s.accounts, id)
	return nil
}

// List returns detached copies of every account
func (s *Store) List() []*models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account.Clone())
	}
	return accounts
}

// SeedAccount describes a pre-provisioned demo account
type SeedAccount struct {
	Email       string
	Secret      string
	DisplayName string
	Role        models.Role
	UsageCount  int
}

// seedNamespace derives stable ids for seeded accounts so a session
// restored after a restart still resolves to the same account.
var seedNamespace = uuid.MustParse("9d1f4bfa-52cc-4c2d-8a1e-f0da42c9b7ce")

// Seed provisions demo accounts at startup. Existing emails are left
// untouched so seeding is safe to run on every boot.
func (s *Store) Seed(seeds []SeedAccount) error {
	for _, seed := range seeds {
		account, err := models.NewAccount(seed.Email, seed.Secret, seed.DisplayName)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", seed.Email, err)
		}
		account.ID = uuid.NewSHA1(seedNamespace, []byte(account.Email)).String()
		if seed.Role.Valid() {
			account.Role = seed.Role
		}
		if seed.UsageCount > 0 {
			account.UsageCount = seed.UsageCount
		}

		s.mu.Lock()
		if _, exists := s.byEmail[account.Email]; exists {
			s.mu.Unlock()
			continue
		}
		s.accounts[account.ID] = account
		s.byEmail[account.Email] = account.ID
		s.mu.Unlock()
	}
	return nil
}
