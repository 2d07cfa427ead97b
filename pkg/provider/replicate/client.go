package replicate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/replicate/replicate-go"

	"daybook/pkg/provider"
)

// Client runs hosted models on Replicate.
type Client struct {
	client *replicate.Client
	model  string
}

var _ provider.Completer = (*Client)(nil)

// New creates a client for the given model, identified as owner/name.
func New(model, token string) (*Client, error) {
	if model == "" {
		return nil, errors.New("missing model")
	}

	if token == "" {
		return nil, errors.New("missing api token")
	}

	client, err := replicate.NewClient(replicate.WithToken(token))

	if err != nil {
		return nil, fmt.Errorf("replicate client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	input := replicate.PredictionInput{
		"prompt": transcript(request.Messages),
	}

	if request.System != "" {
		input["system_prompt"] = request.System
	}

	if request.Temperature != nil {
		input["temperature"] = *request.Temperature
	}

	if request.MaxTokens != nil {
		input["max_tokens"] = *request.MaxTokens
	}

	output, err := c.client.Run(ctx, c.model, input, nil)

	if err != nil {
		return nil, convertError(err)
	}

	return &provider.Completion{
		Content: joinOutput(output),
		Reason:  "complete",
	}, nil
}

func transcript(messages []provider.Message) string {
	if len(messages) == 1 {
		return messages[0].Content
	}

	var text strings.Builder

	for _, message := range messages {
		switch message.Role {
		case provider.RoleAssistant:
			text.WriteString("Assistant: ")

		default:
			text.WriteString("User: ")
		}

		text.WriteString(message.Content)
		text.WriteString("\n\n")
	}

	return strings.TrimSpace(text.String())
}

// joinOutput flattens a prediction output. Language models stream token
// chunks as a list of strings.
func joinOutput(output replicate.PredictionOutput) string {
	switch value := output.(type) {
	case string:
		return value

	case []any:
		var text strings.Builder

		for _, item := range value {
			if chunk, ok := item.(string); ok {
				text.WriteString(chunk)
			}
		}

		return text.String()
	}

	return ""
}

func convertError(err error) error {
	var apierr *replicate.APIError

	if errors.As(err, &apierr) {
		return provider.NewError(apierr.Status, err.Error())
	}

	return provider.NewError(0, err.Error())
}
