// Package view is the finite-state machine that decides which
// top-level screen is active. Transitions are validated here,
// centrally, instead of being scattered across rendering guards.
package view

import (
	"errors"
	"fmt"
)

// State identifies a top-level screen
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateConversing      State = "conversing"
	StateAdministering   State = "administering"
	StateUpgrading       State = "upgrading"
)

var (
	ErrForbidden         = errors.New("administrative capability required")
	ErrInvalidTransition = errors.New("invalid view transition")
)

// Controller owns the current view state
type Controller struct {
	state State
}

// NewController starts in the unauthenticated state
func NewController() *Controller {
	return &Controller{state: StateUnauthenticated}
}

// State returns the current view state
func (c *Controller) State() State {
	return c.state
}

// BeginAuth marks an authentication attempt in progress
func (c *Controller) BeginAuth() error {
	if c.state != StateUnauthenticated {
		return fmt.Errorf("%w: cannot authenticate from %s", ErrInvalidTransition, c.state)
	}
	c.state = StateAuthenticating
	return nil
}

// AuthSucceeded moves to the conversing screen after login, signup or
// a successful session restore.
func (c *Controller) AuthSucceeded() {
	c.state = StateConversing
}

// AuthFailed returns to the unauthenticated screen
func (c *Controller) AuthFailed() {
	c.state = StateUnauthenticated
}

// RequestAdmin enters the administering screen. Callers without the
// administrative capability are refused and the state is unchanged.
func (c *Controller) RequestAdmin(canAdminister bool) error {
	if c.state != StateConversing {
		return fmt.Errorf("%w: cannot administer from %s", ErrInvalidTransition, c.state)
	}
	if !canAdminister {
		return ErrForbidden
	}
	c.state = StateAdministering
	return nil
}

// RequestUpgrade enters the upgrading screen
func (c *Controller) RequestUpgrade() error {
	if c.state != StateConversing {
		return fmt.Errorf("%w: cannot upgrade from %s", ErrInvalidTransition, c.state)
	}
	c.state = StateUpgrading
	return nil
}

// UpgradeDone returns from the upgrading screen, whether the upgrade
// completed or was cancelled.
func (c *Controller) UpgradeDone() error {
	if c.state != StateUpgrading {
		return fmt.Errorf("%w: not upgrading", ErrInvalidTransition)
	}
	c.state = StateConversing
	return nil
}

// Back returns from the administering screen to conversing
func (c *Controller) Back() error {
	if c.state != StateAdministering {
		return fmt.Errorf("%w: nothing to go back from", ErrInvalidTransition)
	}
	c.state = StateConversing
	return nil
}

// Logout resets to unauthenticated. Valid from every state.
func (c *Controller) Logout() {
	c.state = StateUnauthenticated
}
