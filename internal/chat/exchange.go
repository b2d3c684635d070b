// Package chat runs the quota-gated message exchange between the
// active session and the external responder.
package chat

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/themastyogi/fica-fda-chatbot/internal/auth"
	"github.com/themastyogi/fica-fda-chatbot/internal/models"
	"github.com/themastyogi/fica-fda-chatbot/internal/policy"
	"github.com/themastyogi/fica-fda-chatbot/internal/store"
)

var (
	ErrEmptyMessage       = errors.New("message is empty")
	ErrQuotaExceeded      = errors.New("query limit reached, upgrade to pro for unlimited access")
	ErrExchangeInProgress = errors.New("an exchange is already in progress")
)

// FailureNotice is appended to the transcript when the responder
// cannot be reached.
const FailureNotice = "Sorry, an error occurred. Please try again."

// Exchange owns the transcript and enforces at most one in-flight
// send per session.
type Exchange struct {
	credentials *store.Store
	sessions    *auth.Manager
	responder   Responder

	mu         sync.Mutex
	transcript []models.Message
	inFlight   bool
}

// NewExchange creates an exchange for the given collaborators
func NewExchange(credentials *store.Store, sessions *auth.Manager, responder Responder) *Exchange {
	return &Exchange{
		credentials: credentials,
		sessions:    sessions,
		responder:   responder,
	}
}

// Send runs one exchange cycle: validate, gate on quota, append the
// user entry, dispatch, then append the reply. The user entry is
// appended before the round trip completes so the input affordance
// can clear immediately. A failed round trip appends a failure notice
// and consumes no quota.
func (e *Exchange) Send(ctx context.Context, rawText string) (models.Message, error) {
	session := e.sessions.Current()
	if session == nil {
		return models.Message{}, auth.ErrNoSession
	}

	sanitized := Sanitize(rawText)
	if sanitized == "" {
		return models.Message{}, ErrEmptyMessage
	}

	account := session.Account()
	if !policy.Allowed(account.Role, account.UsageCount) {
		return models.Message{}, ErrQuotaExceeded
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return models.Message{}, ErrExchangeInProgress
	}
	e.inFlight = true
	e.transcript = append(e.transcript, models.Message{Origin: models.OriginUser, Text: sanitized})
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	reply, err := e.responder.Reply(ctx, sanitized, account.Role)
	if err != nil {
		log.Printf("[CHAT] Exchange failed: %v", err)
		notice := models.Message{Origin: models.OriginAssistant, Text: FailureNotice}
		e.mu.Lock()
		e.transcript = append(e.transcript, notice)
		e.mu.Unlock()
		return notice, nil
	}

	entry := models.Message{Origin: models.OriginAssistant, Text: Sanitize(reply)}
	e.mu.Lock()
	e.transcript = append(e.transcript, entry)
	e.mu.Unlock()

	if _, err := e.credentials.IncrementUsage(account.ID); err != nil {
		log.Printf("[CHAT] Failed to record usage for %s: %v", account.Email, err)
	} else if err := e.sessions.Refresh(); err != nil {
		log.Printf("[CHAT] Failed to refresh session view: %v", err)
	}

	return entry, nil
}

// Busy reports whether an exchange is in flight
func (e *Exchange) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Transcript returns a copy of the session transcript
func (e *Exchange) Transcript() []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Message, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// Clear empties the transcript. Called on logout.
func (e *Exchange) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transcript = nil
}
