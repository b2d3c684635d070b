package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/themastyogi/fica-fda-chatbot/internal/models"
)

// ErrTransportFailure wraps any failure to obtain a reply from the
// responder. It is always recovered into a transcript notice, never
// surfaced to the user as an error.
var ErrTransportFailure = errors.New("responder unavailable")

// Responder produces an assistant reply for a user message
type Responder interface {
	Reply(ctx context.Context, message string, role models.Role) (string, error)
}

// HTTPResponder talks to the gateway (or any compatible endpoint)
// over HTTP.
type HTTPResponder struct {
	url    string
	client *http.Client
}

// NewHTTPResponder creates a responder client for the given endpoint
func NewHTTPResponder(url string, timeout time.Duration) *HTTPResponder {
	return &HTTPResponder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type replyRequest struct {
	Message  string `json:"message"`
	UserRole string `json:"user_role,omitempty"`
}

type replyResponse struct {
	Response string `json:"response"`
	Reply    string `json:"reply"`
	Error    string `json:"error"`
}

// Reply posts the message and returns the textual reply. Timeouts,
// transport errors and non-success statuses all map to
// ErrTransportFailure.
func (r *HTTPResponder) Reply(ctx context.Context, message string, role models.Role) (string, error) {
	body, err := json.Marshal(replyRequest{Message: message, UserRole: string(role)})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrTransportFailure, resp.StatusCode)
	}

	var parsed replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	reply := parsed.Response
	if reply == "" {
		reply = parsed.Reply
	}
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrTransportFailure)
	}
	return reply, nil
}

// cannedResponses are the demo-mode compliance answers
var cannedResponses = []string{
	"Based on FICA-FDA regulations, this requires documentation of compliance procedures and thorough validation protocols.",
	"According to current FDA guidelines, you need to ensure proper validation protocols are implemented with detailed documentation.",
	"The FICA compliance framework suggests implementing robust security measures with regular auditing and monitoring.",
	"For regulatory compliance, please consider comprehensive documentation requirements and staff training programs.",
	"FDA regulations require systematic approach to quality management and continuous monitoring of compliance metrics.",
}

// CannedResponder answers from a fixed response pool. Used when no
// gateway is configured, and in tests.
type CannedResponder struct {
	latency time.Duration
}

// NewCannedResponder creates a demo responder with simulated latency
func NewCannedResponder(latency time.Duration) *CannedResponder {
	return &CannedResponder{latency: latency}
}

// Reply returns a random canned response
func (r *CannedResponder) Reply(ctx context.Context, message string, role models.Role) (string, error) {
	if r.latency > 0 {
		select {
		case <-time.After(r.latency):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransportFailure, ctx.Err())
		}
	}
	return cannedResponses[rand.Intn(len(cannedResponses))], nil
}
