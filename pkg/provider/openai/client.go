package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"daybook/pkg/provider"
)

// Client talks to the OpenAI Responses API.
type Client struct {
	client openai.Client
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
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),

		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(transcript(request.Messages)),
		},
	}

	if request.System != "" {
		params.Instructions = openai.String(request.System)
	}

	if request.Temperature != nil {
		params.Temperature = openai.Float(float64(*request.Temperature))
	}

	if request.MaxTokens != nil {
		params.MaxOutputTokens = openai.Int(int64(*request.MaxTokens))
	}

	response, err := c.client.Responses.New(ctx, params)

	if err != nil {
		return nil, convertError(err)
	}

	return &provider.Completion{
		Content: response.OutputText(),
		Reason:  string(response.Status),
	}, nil
}

// transcript flattens ordered turns into the single-string input form.
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

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		return provider.NewError(apierr.StatusCode, err.Error())
	}

	return provider.NewError(0, err.Error())
}
