package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"daybook/pkg/provider"
)

// Client talks to the Anthropic Messages API.
type Client struct {
	client anthropic.Client
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
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens(request)),
		Messages:  toMessages(request.Messages),
	}

	if request.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.System, Type: "text"},
		}
	}

	if request.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*request.Temperature))
	}

	message, err := c.client.Messages.New(ctx, params)

	if err != nil {
		return nil, convertError(err)
	}

	var content strings.Builder

	for _, block := range message.Content {
		if block.Type == "text" {
			content.WriteString(block.AsText().Text)
		}
	}

	return &provider.Completion{
		Content: content.String(),
		Reason:  string(message.StopReason),
	}, nil
}

func toMessages(messages []provider.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, message := range messages {
		result = append(result, anthropic.MessageParam{
			Role: anthropic.MessageParamRole(message.Role),
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(message.Content),
			},
		})
	}

	return result
}

func maxTokens(request provider.Request) int {
	if request.MaxTokens != nil {
		return *request.MaxTokens
	}

	return 1024
}

func convertError(err error) error {
	var apierr *anthropic.Error

	if errors.As(err, &apierr) {
		return provider.NewError(apierr.StatusCode, err.Error())
	}

	return provider.NewError(0, err.Error())
}
