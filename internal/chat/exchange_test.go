package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themastyogi/fica-fda-chatbot/internal/auth"
	"github.com/themastyogi/fica-fda-chatbot/internal/models"
	"github.com/themastyogi/fica-fda-chatbot/internal/persist"
	"github.com/themastyogi/fica-fda-chatbot/internal/store"
)

type memState struct {
	record *persist.Record
}

func (m *memState) Save(token, accountID string) error {
	m.record = &persist.Record{Token: token, AccountID: accountID, SavedAt: time.Now()}
	return nil
}

func (m *memState) Load() (*persist.Record, error) {
	if m.record == nil {
		return nil, persist.ErrNoRecord
	}
	return m.record, nil
}

func (m *memState) Clear() error {
	m.record = nil
	return nil
}

// scriptedResponder returns a fixed reply or error and counts calls
type scriptedResponder struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	release chan struct{} // when set, Reply blocks until closed
}

func (r *scriptedResponder) Reply(ctx context.Context, message string, role models.Role) (string, error) {
	r.mu.Lock()
	r.calls++
	release := r.release
	r.mu.Unlock()

	if release != nil {
		<-release
	}
	return r.reply, r.err
}

func (r *scriptedResponder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newTestExchange(t *testing.T, role models.Role, usage int, responder Responder) (*Exchange, *store.Store, *auth.Manager) {
	t.Helper()

	credentials := store.New()
	account, err := credentials.Create("user@example.com", "secret123", "Test User")
	require.NoError(t, err)
	if role != models.RoleExplorer {
		_, err = credentials.UpdateRole(account.ID, role)
		require.NoError(t, err)
	}
	for i := 0; i < usage; i++ {
		_, err = credentials.IncrementUsage(account.ID)
		require.NoError(t, err)
	}

	sessions := auth.NewManager(credentials, &memState{}, auth.NewTokenManager("test-secret"), 0)
	_, err = sessions.Login("user@example.com", "secret123")
	require.NoError(t, err)

	return NewExchange(credentials, sessions, responder), credentials, sessions
}

func TestSendSuccess(t *testing.T) {
	responder := &scriptedResponder{reply: "compliance requires documentation"}
	exchange, credentials, sessions := newTestExchange(t, models.RoleExplorer, 4, responder)

	entry, err := exchange.Send(context.Background(), "what about validation?")
	require.NoError(t, err)
	assert.Equal(t, models.OriginAssistant, entry.Origin)
	assert.Equal(t, "compliance requires documentation", entry.Text)

	transcript := exchange.Transcript()
	require.Len(t, transcript, 2, "user entry then assistant entry")
	assert.Equal(t, models.OriginUser, transcript[0].Origin)
	assert.Equal(t, "what about validation?", transcript[0].Text)
	assert.Equal(t, models.OriginAssistant, transcript[1].Origin)

	account := sessions.Current().Account()
	assert.Equal(t, 5, account.UsageCount, "session view reflects the increment")
	stored, err := credentials.FindByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.UsageCount)
}

func TestSendEmptyMessage(t *testing.T) {
	responder := &scriptedResponder{reply: "unused"}
	exchange, _, _ := newTestExchange(t, models.RoleExplorer, 0, responder)

	for _, input := range []string{"", "   ", "<script>alert(1)</script>"} {
		_, err := exchange.Send(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyMessage, "input %q", input)
	}

	assert.Empty(t, exchange.Transcript())
	assert.Zero(t, responder.callCount(), "no network call for empty input")
}

func TestSendQuotaExceeded(t *testing.T) {
	responder := &scriptedResponder{reply: "unused"}
	exchange, credentials, sessions := newTestExchange(t, models.RoleExplorer, 5, responder)

	_, err := exchange.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	assert.Empty(t, exchange.Transcript(), "no transcript mutation")
	assert.Zero(t, responder.callCount(), "no network call")
	stored, err := credentials.FindByID(sessions.Current().Account().ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.UsageCount)
}

func TestSendUnlimitedRoles(t *testing.T) {
	for _, role := range []models.Role{models.RolePro, models.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			responder := &scriptedResponder{reply: "ok"}
			exchange, _, _ := newTestExchange(t, role, 100, responder)

			_, err := exchange.Send(context.Background(), "hello")
			assert.NoError(t, err)
		})
	}
}

func TestSendTransportFailure(t *testing.T) {
	responder := &scriptedResponder{err: ErrTransportFailure}
	exchange, credentials, sessions := newTestExchange(t, models.RoleExplorer, 2, responder)

	entry, err := exchange.Send(context.Background(), "hello")
	require.NoError(t, err, "transport failure is recovered, not surfaced")
	assert.Equal(t, models.OriginAssistant, entry.Origin)
	assert.Equal(t, FailureNotice, entry.Text)

	transcript := exchange.Transcript()
	require.Len(t, transcript, 2, "user entry plus failure notice")
	assert.Equal(t, models.OriginUser, transcript[0].Origin)
	assert.Equal(t, FailureNotice, transcript[1].Text)

	stored, err := credentials.FindByID(sessions.Current().Account().ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsageCount, "failed exchange consumes no quota")
}

func TestSendSanitizesBothDirections(t *testing.T) {
	responder := &scriptedResponder{reply: `safe<script>evil()</script> reply`}
	exchange, _, _ := newTestExchange(t, models.RolePro, 0, responder)

	entry, err := exchange.Send(context.Background(), `hi<script>alert(1)</script> there`)
	require.NoError(t, err)
	assert.Equal(t, "safe reply", entry.Text)

	transcript := exchange.Transcript()
	assert.Equal(t, "hi there", transcript[0].Text)
}

func TestSendRejectsConcurrentExchange(t *testing.T) {
	release := make(chan struct{})
	responder := &scriptedResponder{reply: "slow reply", release: release}
	exchange, _, _ := newTestExchange(t, models.RolePro, 0, responder)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := exchange.Send(context.Background(), "first")
		assert.NoError(t, err)
	}()

	require.Eventually(t, exchange.Busy, time.Second, time.Millisecond, "first send in flight")

	_, err := exchange.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrExchangeInProgress)
	assert.Equal(t, 1, responder.callCount(), "no second outbound request")

	close(release)
	<-done

	transcript := exchange.Transcript()
	assert.Len(t, transcript, 2, "rejected send left no trace")
	assert.False(t, exchange.Busy())
}

func TestSendWithoutSession(t *testing.T) {
	credentials := store.New()
	sessions := auth.NewManager(credentials, &memState{}, auth.NewTokenManager("test-secret"), 0)
	exchange := NewExchange(credentials, sessions, &scriptedResponder{reply: "x"})

	_, err := exchange.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestClear(t *testing.T) {
	responder := &scriptedResponder{reply: "ok"}
	exchange, _, _ := newTestExchange(t, models.RolePro, 0, responder)

	_, err := exchange.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.NotEmpty(t, exchange.Transcript())

	exchange.Clear()
	assert.Empty(t, exchange.Transcript())
}

func TestHTTPResponderErrors(t *testing.T) {
	r := NewHTTPResponder("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := r.Reply(context.Background(), "hello", models.RoleExplorer)
	assert.True(t, errors.Is(err, ErrTransportFailure))
}
