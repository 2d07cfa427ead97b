// Package server exposes the chat service over HTTP, a websocket, and the
// Model Context Protocol.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	log "github.com/sirupsen/logrus"

	"daybook/config"
	"daybook/pkg/chat"
	"daybook/pkg/provider"
	"daybook/pkg/store"
	"daybook/pkg/vault"
)

// Server is the HTTP front end.
type Server struct {
	addr     string
	service  *chat.Service
	catalog  *vault.Catalog
	verifier *oidc.IDTokenVerifier

	handler http.Handler

	mu       sync.Mutex
	inFlight map[string]bool
}

// New builds a server from the parsed configuration.
func New(cfg *config.Config) *Server {
	s := &Server{
		addr:     cfg.Address,
		service:  cfg.Service,
		catalog:  cfg.Catalog,
		verifier: cfg.Verifier,

		inFlight: map[string]bool{},
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if s.verifier != nil {
			r.Use(s.authenticate)
		}

		r.Post("/chat", s.handleChat)
		r.Get("/chat/ws", s.handleChatSocket)

		r.Get("/models", s.handleModels)

		r.Get("/documents", s.handleDocuments)
		r.Get("/documents/suggest", s.handleSuggest)
		r.Post("/index/refresh", s.handleRefresh)

		r.Get("/conversations", s.handleConversations)
		r.Get("/conversations/{id}", s.handleConversation)
		r.Post("/conversations/{id}/reset", s.handleReset)
	})

	s.handler = otelhttp.NewHandler(r, "server")

	return s
}

// Handler returns the routing tree.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe runs until the context is canceled, then drains connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var request ChatRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if strings.TrimSpace(request.Message) == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing message"))
		return
	}

	// One resolution per conversation at a time; the engine itself holds no
	// lock, so the transport enforces it.
	if request.ConversationID != "" {
		if !s.acquire(request.ConversationID) {
			writeError(w, http.StatusConflict, errors.New("a send is already in flight for this conversation"))
			return
		}

		defer s.release(request.ConversationID)
	}

	reply, err := s.service.Send(r.Context(), chat.SendInput{
		ConversationID: request.ConversationID,
		Text:           request.Message,

		IncludeCurrent: request.IncludeCurrent,
		Current:        request.Current,
	})

	if err != nil {
		writeError(w, sendStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, toChatResponse(reply))
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponse{
		Models: provider.Models(),
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	index, err := s.catalog.Index(r.Context())

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentsResponse{
		Documents: index.Documents(),
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	index, err := s.catalog.Index(r.Context())

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	limit := 10

	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)

		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}

		limit = parsed
	}

	suggestions := []string{}

	for _, document := range index.Suggest(r.URL.Query().Get("q"), limit) {
		suggestions = append(suggestions, document.Name)
	}

	writeJSON(w, http.StatusOK, SuggestResponse{
		Suggestions: suggestions,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	index, err := s.catalog.Refresh(r.Context())

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Documents: index.Len(),
	})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.service.Conversations(r.Context())

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, ConversationsResponse{
		Conversations: ids,
	})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.History(r.Context(), chi.URLParam(r, "id"))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}

		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, ConversationResponse{
		ConversationID:       record.ConversationID,
		Turns:                record.ChatHistory,
		AwaitingUserResponse: record.AwaitingUserResponse,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	fresh, err := s.service.Reset(r.Context(), chi.URLParam(r, "id"))

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, ResetResponse{
		ConversationID: fresh,
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")

		if token == "" || token == header {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		if _, err := s.verifier.Verify(r.Context(), token); err != nil {
			writeError(w, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) acquire(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[conversationID] {
		return false
	}

	s.inFlight[conversationID] = true

	return true
}

func (s *Server) release(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, conversationID)
}

// sendStatus maps a failed send to a response code, passing a backend status
// through when it carries one.
func sendStatus(err error) int {
	var providerError *provider.Error

	if errors.As(err, &providerError) && providerError.Status >= 400 && providerError.Status < 600 {
		return providerError.Status
	}

	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{
		Error: err.Error(),
	})
}
