package cohere

import (
	"context"
	"errors"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/core"

	"daybook/pkg/provider"
)

// Client talks to the Cohere chat API.
type Client struct {
	client *cohereclient.Client
	model  string
}

var _ provider.Completer = (*Client)(nil)

// New creates a client for the given model.
func New(model, apiKey string) (*Client, error) {
	if model == "" {
		return nil, errors.New("missing model")
	}

	if apiKey == "" {
		return nil, errors.New("missing api key")
	}

	return &Client{
		client: cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("missing messages")
	}

	history := request.Messages[:len(request.Messages)-1]
	last := request.Messages[len(request.Messages)-1]

	model := c.model

	chatRequest := &cohere.ChatRequest{
		Message: last.Content,
		Model:   &model,
	}

	if request.System != "" {
		preamble := request.System
		chatRequest.Preamble = &preamble
	}

	if request.Temperature != nil {
		temperature := float64(*request.Temperature)
		chatRequest.Temperature = &temperature
	}

	if request.MaxTokens != nil {
		chatRequest.MaxTokens = request.MaxTokens
	}

	for _, message := range history {
		if message.Role == provider.RoleAssistant {
			chatRequest.ChatHistory = append(chatRequest.ChatHistory, &cohere.Message{
				Role:    "CHATBOT",
				Chatbot: &cohere.ChatMessage{Message: message.Content},
			})

			continue
		}

		chatRequest.ChatHistory = append(chatRequest.ChatHistory, &cohere.Message{
			Role: "USER",
			User: &cohere.ChatMessage{Message: message.Content},
		})
	}

	response, err := c.client.Chat(ctx, chatRequest)

	if err != nil {
		return nil, convertError(err)
	}

	return &provider.Completion{
		Content: response.Text,
		Reason:  "complete",
	}, nil
}

func convertError(err error) error {
	var apierr *core.APIError

	if errors.As(err, &apierr) {
		return provider.NewError(apierr.StatusCode, err.Error())
	}

	return provider.NewError(0, err.Error())
}
