// Package app wires the credential store, session manager, view
// controller, message exchange and role administration into the
// single facade the front end drives.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/themastyogi/fica-fda-chatbot/internal/admin"
	"github.com/themastyogi/fica-fda-chatbot/internal/auth"
	"github.com/themastyogi/fica-fda-chatbot/internal/chat"
	"github.com/themastyogi/fica-fda-chatbot/internal/config"
	"github.com/themastyogi/fica-fda-chatbot/internal/models"
	"github.com/themastyogi/fica-fda-chatbot/internal/policy"
	"github.com/themastyogi/fica-fda-chatbot/internal/store"
	"github.com/themastyogi/fica-fda-chatbot/internal/view"
)

// App is the assembled assistant application
type App struct {
	Credentials *store.Store
	Sessions    *auth.Manager
	View        *view.Controller
	Exchange    *chat.Exchange
	Admin       *admin.Admin

	upgradeLatency time.Duration
}

// New assembles the application from its collaborators and seeds the
// demo accounts.
func New(cfg *config.Config, state auth.StateStore, responder chat.Responder) (*App, error) {
	credentials := store.New()

	seeds := make([]store.SeedAccount, 0, len(cfg.SeedAccounts))
	for _, s := range cfg.SeedAccounts {
		seeds = append(seeds, store.SeedAccount{
			Email:       s.Email,
			Secret:      s.Secret,
			DisplayName: s.DisplayName,
			Role:        models.ParseRole(s.Role),
			UsageCount:  s.UsageCount,
		})
	}
	if err := credentials.Seed(seeds); err != nil {
		return nil, fmt.Errorf("seeding accounts: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret)
	latency := time.Duration(cfg.Auth.SimulatedLatencyMs) * time.Millisecond
	sessions := auth.NewManager(credentials, state, tokens, latency)

	return &App{
		Credentials:    credentials,
		Sessions:       sessions,
		View:           view.NewController(),
		Exchange:       chat.NewExchange(credentials, sessions, responder),
		Admin:          admin.New(credentials, sessions),
		upgradeLatency: latency,
	}, nil
}

// Restore attempts to resurrect a persisted session at startup. On
// success the view opens on the conversing screen.
func (a *App) Restore() bool {
	if a.Sessions.Restore() == nil {
		return false
	}
	a.View.AuthSucceeded()
	return true
}

// Login authenticates and, on success, moves to the conversing screen
func (a *App) Login(email, secret string) error {
	if err := a.View.BeginAuth(); err != nil {
		return err
	}
	if _, err := a.Sessions.Login(email, secret); err != nil {
		a.View.AuthFailed()
		return err
	}
	a.View.AuthSucceeded()
	return nil
}

// Signup registers a new explorer account and logs it in
func (a *App) Signup(email, secret, displayName string) error {
	if err := a.View.BeginAuth(); err != nil {
		return err
	}
	if _, err := a.Sessions.Signup(email, secret, displayName); err != nil {
		a.View.AuthFailed()
		return err
	}
	a.View.AuthSucceeded()
	return nil
}

// Logout tears down the session, clears the transcript and resets the
// view. Safe to call with no active session.
func (a *App) Logout() {
	a.Sessions.Logout()
	a.Exchange.Clear()
	a.View.Logout()
}

// Send runs one message exchange from the conversing screen
func (a *App) Send(ctx context.Context, text string) (models.Message, error) {
	if a.View.State() != view.StateConversing {
		return models.Message{}, fmt.Errorf("%w: cannot send from %s", view.ErrInvalidTransition, a.View.State())
	}
	return a.Exchange.Send(ctx, text)
}

// RequestAdmin enters the administering screen if the session has the
// administrative capability.
func (a *App) RequestAdmin() error {
	session := a.Sessions.Current()
	if session == nil {
		return auth.ErrNoSession
	}
	limits := policy.LimitsFor(session.Account().Role)
	return a.View.RequestAdmin(limits.CanAdminister)
}

// Back returns from the administering screen
func (a *App) Back() error {
	return a.View.Back()
}

// RequestUpgrade enters the upgrading screen
func (a *App) RequestUpgrade() error {
	return a.View.RequestUpgrade()
}

// CompleteUpgrade promotes the session account to pro and returns to
// the conversing screen. Payment processing is simulated.
func (a *App) CompleteUpgrade() error {
	if a.View.State() != view.StateUpgrading {
		return fmt.Errorf("%w: not upgrading", view.ErrInvalidTransition)
	}
	session := a.Sessions.Current()
	if session == nil {
		return auth.ErrNoSession
	}

	if a.upgradeLatency > 0 {
		time.Sleep(a.upgradeLatency)
	}

	if _, err := a.Credentials.UpdateRole(session.Account().ID, models.RolePro); err != nil {
		return err
	}
	if err := a.Sessions.Refresh(); err != nil {
		return err
	}
	return a.View.UpgradeDone()
}

// CancelUpgrade abandons the upgrade and returns to conversing
func (a *App) CancelUpgrade() error {
	return a.View.UpgradeDone()
}

// ChangeRole mutates another account's role via the administration
// component.
func (a *App) ChangeRole(targetID string, role models.Role) error {
	return a.Admin.ChangeRole(targetID, role)
}

// Accounts lists every account for the administering screen
func (a *App) Accounts() ([]*models.Account, error) {
	return a.Admin.ListAccounts()
}
