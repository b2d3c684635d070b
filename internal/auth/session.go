package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/themastyogi/fica-fda-chatbot/internal/models"
	"github.com/themastyogi/fica-fda-chatbot/internal/persist"
	"github.com/themastyogi/fica-fda-chatbot/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or secret")
	ErrNoSession          = errors.New("no active session")
)

// SessionTTL is how long a session token stays valid
const SessionTTL = 24 * time.Hour

// dummyHash keeps the credential check doing a bcrypt comparison even
// when the email does not resolve, so a lookup miss and a secret
// mismatch are not trivially distinguishable by timing.
var dummyHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
	return string(h)
}()

// Session is the live binding between the application and one account
type Session struct {
	Token   string
	account *models.Account
}

// Account returns the session's cached account view
func (s *Session) Account() *models.Account {
	return s.account
}

// StateStore persists the restoration record across restarts
type StateStore interface {
	Save(token, accountID string) error
	Load() (*persist.Record, error)
	Clear() error
}

// Manager authenticates credentials and owns the active session
type Manager struct {
	store   *store.Store
	state   StateStore
	tokens  *TokenManager
	latency time.Duration

	mu      sync.Mutex
	current *Session
}

// NewManager creates a session manager. latency simulates the
// original's authentication delay; pass zero in tests.
func NewManager(credentials *store.Store, state StateStore, tokens *TokenManager, latency time.Duration) *Manager {
	return &Manager{
		store:   credentials,
		state:   state,
		tokens:  tokens,
		latency: latency,
	}
}

// Login authenticates an email/secret pair and establishes a session.
// The error never reveals whether the email or the secret was wrong.
func (m *Manager) Login(email, secret string) (*Session, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: all fields are required", store.ErrInvalidInput)
	}
	if !store.ValidateEmail(strings.TrimSpace(email)) {
		return nil, fmt.Errorf("%w: malformed email address", store.ErrInvalidInput)
	}

	if m.latency > 0 {
		time.Sleep(m.latency)
	}

	account, err := m.store.FindByEmail(email)
	if err != nil {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(secret))
		return nil, ErrInvalidCredentials
	}
	if !account.ValidateSecret(secret) {
		return nil, ErrInvalidCredentials
	}

	return m.establish(account)
}

// Signup creates an account and establishes a session for it
func (m *Manager) Signup(email, secret, displayName string) (*Session, error) {
	if m.latency > 0 {
		time.Sleep(m.latency)
	}

	account, err := m.store.Create(email, secret, displayName)
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTH] New explorer account created: %s", account.Email)

	return m.establish(account)
}

func (m *Manager) establish(account *models.Account) (*Session, error) {
	token, err := m.tokens.Generate(account.ID, SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	if err := m.state.Save(token, account.ID); err != nil {
		log.Printf("[AUTH] Failed to persist restoration record: %v", err)
	}

	session := &Session{Token: token, account: account}
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	log.Printf("[AUTH] Account %s logged in as %s", account.Email, account.Role)
	return session, nil
}

// Restore attempts to resurrect a session from the persisted
// restoration record. It returns nil when there is nothing to
// restore; a stale or malformed record is cleared on the way out.
func (m *Manager) Restore() *Session {
	record, err := m.state.Load()
	if err != nil {
		if !errors.Is(err, persist.ErrNoRecord) {
			log.Printf("[AUTH] Failed to read restoration record: %v", err)
		}
		return nil
	}

	accountID, err := m.tokens.Validate(record.Token)
	if err != nil || accountID != record.AccountID {
		log.Printf("[AUTH] Discarding stale restoration record")
		m.state.Clear()
		return nil
	}

	account, err := m.store.FindByID(accountID)
	if err != nil {
		log.Printf("[AUTH] Restoration record points at unknown account; discarding")
		m.state.Clear()
		return nil
	}

	session := &Session{Token: record.Token, account: account}
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	log.Printf("[AUTH] Session restored for %s", account.Email)
	return session
}

// Logout destroys the active session and clears the persisted
// restoration record. Calling it without a session is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if err := m.state.Clear(); err != nil {
		log.Printf("[AUTH] Failed to clear restoration record: %v", err)
	}
	if had {
		log.Printf("[AUTH] Session destroyed")
	}
}

// Current returns the active session, or nil
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Refresh re-reads the active session's account from the credential
// store so the cached view never diverges after a mutation. If the
// account no longer exists the session is invalidated.
func (m *Manager) Refresh() error {
	m.mu.Lock()
	session := m.current
	m.mu.Unlock()
	if session == nil {
		return ErrNoSession
	}

	account, err := m.store.FindByID(session.account.ID)
	if err != nil {
		m.Logout()
		return err
	}

	m.mu.Lock()
	session.account = account
	m.mu.Unlock()
	return nil
}
