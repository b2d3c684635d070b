// Package gateway is the proxy between clients and the model-serving
// endpoint. It validates the request shape, injects the upstream
// credentials and normalizes the reply to a single textual payload.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/themastyogi/fica-fda-chatbot/internal/config"
)

// Gateway forwards chat requests to the configured upstream responder
type Gateway struct {
	Config config.Config
	Router *chi.Mux
	client *http.Client
}

// New creates a gateway for the given configuration
func New(cfg config.Config) *Gateway {
	g := &Gateway{
		Config: cfg,
		Router: chi.NewRouter(),
		client: &http.Client{Timeout: time.Duration(cfg.Responder.TimeoutSeconds) * time.Second},
	}
	g.setupRoutes()
	return g
}

func (g *Gateway) setupRoutes() {
	r := g.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/heartbeat"))

	r.Post("/chat", g.ChatHandler)
}

type chatRequest struct {
	Message  string `json:"message"`
	UserRole string `json:"user_role,omitempty"`
}

type upstreamResponse struct {
	Response string `json:"response"`
	Message  string `json:"message"`
	Reply    string `json:"reply"`
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ChatHandler accepts {message, user_role} and returns {response,
// success}. Any upstream failure maps to a single service-unavailable
// outcome; upstream details are never exposed to the client.
func (g *Gateway) ChatHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "invalid JSON"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "Message required"})
		return
	}

	if g.Config.Upstream.URL == "" {
		log.Printf("[GATEWAY] No upstream configured")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{Error: "Service not configured"})
		return
	}

	reply, err := g.forward(r, req)
	if err != nil {
		log.Printf("[GATEWAY] Upstream error: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(errorResponse{Error: "Service temporarily unavailable"})
		return
	}

	json.NewEncoder(w).Encode(chatResponse{Response: reply, Success: true})
}

func (g *Gateway) forward(r *http.Request, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	upstream, err := http.NewRequestWithContext(r.Context(), http.MethodPost, g.Config.Upstream.URL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	upstream.Header.Set("Content-Type", "application/json")
	if g.Config.Upstream.Token != "" {
		upstream.Header.Set("Authorization", "Bearer "+g.Config.Upstream.Token)
	}

	resp, err := g.client.Do(upstream)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var parsed upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	// Upstreams disagree on the reply field name
	for _, candidate := range []string{parsed.Response, parsed.Message, parsed.Reply} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "No response", nil
}

// Serve starts the gateway HTTP server
func (g *Gateway) Serve() {
	addr := fmt.Sprintf("0.0.0.0:%d", g.Config.GatewayPort)
	log.Printf("[GATEWAY] Starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, g.Router))
}
