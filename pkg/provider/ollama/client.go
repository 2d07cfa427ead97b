package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"daybook/pkg/provider"
)

// Client talks to a local Ollama server.
type Client struct {
	client *api.Client
	model  string
}

var _ provider.Completer = (*Client)(nil)

// New creates a client for the given model. An empty endpoint falls back to
// the default local server.
func New(model, endpoint string) (*Client, error) {
	if model == "" {
		return nil, errors.New("missing model")
	}

	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}

	parsed, err := url.Parse(endpoint)

	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint: %w", err)
	}

	return &Client{
		client: api.NewClient(parsed, http.DefaultClient),
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	messages := make([]api.Message, 0, len(request.Messages)+1)

	if request.System != "" {
		messages = append(messages, api.Message{
			Role:    "system",
			Content: request.System,
		})
	}

	for _, message := range request.Messages {
		messages = append(messages, api.Message{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	options := map[string]any{}

	if request.Temperature != nil {
		options["temperature"] = *request.Temperature
	}

	if request.MaxTokens != nil {
		options["num_predict"] = *request.MaxTokens
	}

	stream := false

	chatRequest := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var last api.ChatResponse

	handler := func(response api.ChatResponse) error {
		last = response
		return nil
	}

	if err := c.client.Chat(ctx, chatRequest, handler); err != nil {
		return nil, provider.NewError(0, err.Error())
	}

	return &provider.Completion{
		Content: last.Message.Content,
		Reason:  last.DoneReason,
	}, nil
}
