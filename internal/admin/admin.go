// Package admin implements privileged role management
package admin

import (
	"errors"
	"log"

	"github.com/themastyogi/fica-fda-chatbot/internal/auth"
	"github.com/themastyogi/fica-fda-chatbot/internal/models"
	"github.com/themastyogi/fica-fda-chatbot/internal/policy"
	"github.com/themastyogi/fica-fda-chatbot/internal/store"
)

// ErrForbidden indicates the caller lacks the administrative
// capability.
var ErrForbidden = errors.New("administrative capability required")

// Admin performs role mutations on behalf of a privileged session
type Admin struct {
	credentials *store.Store
	sessions    *auth.Manager
}

// New creates the role administration component
func New(credentials *store.Store, sessions *auth.Manager) *Admin {
	return &Admin{credentials: credentials, sessions: sessions}
}

// caller returns the active session's account if it can administer
func (a *Admin) caller() (*models.Account, error) {
	session := a.sessions.Current()
	if session == nil {
		return nil, ErrForbidden
	}
	account := session.Account()
	if !policy.LimitsFor(account.Role).CanAdminister {
		return nil, ErrForbidden
	}
	return account, nil
}

// ChangeRole sets another account's role. Changing one's own role is
// permitted; the session's cached view is refreshed in the same call
// so a self-demotion takes effect immediately.
func (a *Admin) ChangeRole(targetID string, role models.Role) error {
	caller, err := a.caller()
	if err != nil {
		return err
	}

	updated, err := a.credentials.UpdateRole(targetID, role)
	if err != nil {
		return err
	}

	if caller.ID == targetID {
		if err := a.sessions.Refresh(); err != nil {
			return err
		}
	}

	log.Printf("[ADMIN] %s changed role of %s to %s", caller.Email, updated.Email, role)
	return nil
}

// ListAccounts returns every account for the administering screen.
// Secret hashes are stripped from the copies.
func (a *Admin) ListAccounts() ([]*models.Account, error) {
	if _, err := a.caller(); err != nil {
		return nil, err
	}

	accounts := a.credentials.List()
	for _, account := range accounts {
		account.SecretHash = ""
	}
	return accounts, nil
}
