// Package chat runs the resolution pipeline end to end: enrich the user
// message with notes from the vault, call the model, and commit the exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	log "github.com/sirupsen/logrus"

	"daybook/pkg/conversation"
	"daybook/pkg/provider"
	"daybook/pkg/store"
	"daybook/pkg/vault"
)

// Service ties the vault, the conversation store, and a completer together.
// Callers serialize sends per conversation; the service holds no per-turn
// locks of its own.
type Service struct {
	completer provider.Completer
	catalog   *vault.Catalog
	store     store.Store
	limiter   *rate.Limiter

	system      string
	temperature *float32
	maxTokens   *int

	now func() time.Time

	exchanges metric.Int64Counter
	latency   metric.Float64Histogram
}

// Option configures a Service.
type Option func(*Service)

// WithCompleter sets the model backend. Required.
func WithCompleter(completer provider.Completer) Option {
	return func(s *Service) {
		s.completer = completer
	}
}

// WithCatalog sets the vault catalog. Required.
func WithCatalog(catalog *vault.Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

// WithStore sets the conversation store. Required.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithLimiter rate-limits completion calls.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(s *Service) {
		s.limiter = limiter
	}
}

// WithSystem sets the system prompt sent on every completion.
func WithSystem(system string) Option {
	return func(s *Service) {
		s.system = system
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float32) Option {
	return func(s *Service) {
		s.temperature = &temperature
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(maxTokens int) Option {
	return func(s *Service) {
		s.maxTokens = &maxTokens
	}
}

// WithClock overrides the time source used for temporal resolution.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		now: time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.completer == nil {
		return nil, errors.New("missing completer")
	}

	if s.catalog == nil {
		return nil, errors.New("missing catalog")
	}

	if s.store == nil {
		return nil, errors.New("missing store")
	}

	meter := otel.Meter("daybook/chat")

	var err error

	s.exchanges, err = meter.Int64Counter("chat.exchanges",
		metric.WithDescription("Completed chat exchanges"))

	if err != nil {
		return nil, err
	}

	s.latency, err = meter.Float64Histogram("chat.completion.duration",
		metric.WithDescription("Model completion latency"),
		metric.WithUnit("s"))

	if err != nil {
		return nil, err
	}

	return s, nil
}

// SendInput is one user send.
type SendInput struct {
	ConversationID string
	Text           string

	// IncludeCurrent attaches the named open document as the last context
	// block.
	IncludeCurrent bool
	Current        string
}

// Reply is a completed exchange.
type Reply struct {
	ConversationID string   `json:"conversation_id"`
	Content        string   `json:"content"`
	Reason         string   `json:"reason,omitempty"`
	DisplayText    string   `json:"display_text"`
	Referenced     []string `json:"referenced,omitempty"`
	Notices        []Notice `json:"notices,omitempty"`
}

// Send resolves the message, calls the model, and commits the exchange. The
// user turn is committed only after the completion succeeds: a failed call
// leaves the conversation exactly as it was.
func (s *Service) Send(ctx context.Context, input SendInput) (*Reply, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.New("empty message")
	}

	state, err := s.loadState(ctx, input.ConversationID)

	if err != nil {
		return nil, err
	}

	index, err := s.catalog.Index(ctx)

	if err != nil {
		return nil, fmt.Errorf("index vault: %w", err)
	}

	enriched, notices := s.assemble(ctx, assembleInput{
		text:  input.Text,
		index: index,
		state: state,

		includeCurrent: input.IncludeCurrent,
		currentName:    input.Current,
	})

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	messages := make([]provider.Message, 0, len(state.Turns)+1)

	for _, turn := range state.Turns {
		messages = append(messages, provider.Message{
			Role:    provider.Role(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, provider.Message{
		Role:    provider.RoleUser,
		Content: enriched.WireText,
	})

	started := time.Now()

	completion, err := s.completer.Complete(ctx, provider.Request{
		System:      s.system,
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})

	s.latency.Record(ctx, time.Since(started).Seconds())

	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	state.Advance(input.Text, completion.Content)

	if err := s.store.Save(ctx, store.Serialize(state)); err != nil {
		log.Errorf("persist conversation %s: %v", state.ID, err)
	}

	s.exchanges.Add(ctx, 1)

	return &Reply{
		ConversationID: state.ID,
		Content:        completion.Content,
		Reason:         completion.Reason,
		DisplayText:    enriched.DisplayText,
		Referenced:     enriched.Referenced,
		Notices:        notices,
	}, nil
}

// Enrich runs the resolution pipeline without calling the model. It returns
// the message that would be sent, alongside any notices.
func (s *Service) Enrich(ctx context.Context, input SendInput) (*EnrichedMessage, []Notice, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, nil, errors.New("empty message")
	}

	state, err := s.loadState(ctx, input.ConversationID)

	if err != nil {
		return nil, nil, err
	}

	index, err := s.catalog.Index(ctx)

	if err != nil {
		return nil, nil, fmt.Errorf("index vault: %w", err)
	}

	enriched, notices := s.assemble(ctx, assembleInput{
		text:  input.Text,
		index: index,
		state: state,

		includeCurrent: input.IncludeCurrent,
		currentName:    input.Current,
	})

	return enriched, notices, nil
}

// Reset clears a conversation and issues a fresh identity. The old record is
// removed once the new one is written.
func (s *Service) Reset(ctx context.Context, conversationID string) (string, error) {
	state, err := s.loadState(ctx, conversationID)

	if err != nil {
		return "", err
	}

	previous := state.ID
	state.Reset()

	if err := s.store.Save(ctx, store.Serialize(state)); err != nil {
		return "", err
	}

	if previous != "" && previous != state.ID {
		if err := s.store.Delete(ctx, previous); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warnf("remove conversation %s: %v", previous, err)
		}
	}

	return state.ID, nil
}

// History returns a conversation's persisted record.
func (s *Service) History(ctx context.Context, conversationID string) (store.Record, error) {
	return s.store.Load(ctx, conversationID)
}

// Conversations lists the persisted conversation identities.
func (s *Service) Conversations(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

func (s *Service) loadState(ctx context.Context, conversationID string) (*conversation.State, error) {
	if conversationID == "" {
		return conversation.NewState(), nil
	}

	record, err := s.store.Load(ctx, conversationID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			state := conversation.NewState()
			state.ID = conversationID

			return state, nil
		}

		return nil, err
	}

	return store.Deserialize(record), nil
}
