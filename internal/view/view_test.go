package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialState(t *testing.T) {
	c := NewController()
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestAuthFlow(t *testing.T) {
	c := NewController()

	require.NoError(t, c.BeginAuth())
	assert.Equal(t, StateAuthenticating, c.State())

	c.AuthSucceeded()
	assert.Equal(t, StateConversing, c.State())

	t.Run("CannotAuthenticateTwice", func(t *testing.T) {
		assert.ErrorIs(t, c.BeginAuth(), ErrInvalidTransition)
		assert.Equal(t, StateConversing, c.State())
	})
}

func TestAuthFailed(t *testing.T) {
	c := NewController()
	require.NoError(t, c.BeginAuth())
	c.AuthFailed()
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestRequestAdmin(t *testing.T) {
	t.Run("WithCapability", func(t *testing.T) {
		c := NewController()
		c.AuthSucceeded()

		require.NoError(t, c.RequestAdmin(true))
		assert.Equal(t, StateAdministering, c.State())

		require.NoError(t, c.Back())
		assert.Equal(t, StateConversing, c.State())
	})

	t.Run("WithoutCapability", func(t *testing.T) {
		c := NewController()
		c.AuthSucceeded()

		assert.ErrorIs(t, c.RequestAdmin(false), ErrForbidden)
		assert.Equal(t, StateConversing, c.State(), "refused transition leaves state unchanged")
	})

	t.Run("FromWrongState", func(t *testing.T) {
		c := NewController()
		assert.ErrorIs(t, c.RequestAdmin(true), ErrInvalidTransition)
	})
}

func TestUpgradeFlow(t *testing.T) {
	c := NewController()
	c.AuthSucceeded()

	require.NoError(t, c.RequestUpgrade())
	assert.Equal(t, StateUpgrading, c.State())

	require.NoError(t, c.UpgradeDone())
	assert.Equal(t, StateConversing, c.State())

	assert.ErrorIs(t, c.UpgradeDone(), ErrInvalidTransition)
}

func TestLogoutFromEveryState(t *testing.T) {
	enter := map[State]func(*Controller){
		StateUnauthenticated: func(c *Controller) {},
		StateAuthenticating:  func(c *Controller) { c.BeginAuth() },
		StateConversing:      func(c *Controller) { c.AuthSucceeded() },
		StateAdministering:   func(c *Controller) { c.AuthSucceeded(); c.RequestAdmin(true) },
		StateUpgrading:       func(c *Controller) { c.AuthSucceeded(); c.RequestUpgrade() },
	}

	for state, setup := range enter {
		t.Run(string(state), func(t *testing.T) {
			c := NewController()
			setup(c)
			require.Equal(t, state, c.State())

			c.Logout()
			assert.Equal(t, StateUnauthenticated, c.State())
		})
	}
}
