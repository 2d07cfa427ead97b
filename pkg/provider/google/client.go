package google

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"daybook/pkg/provider"
)

// Client talks to the Gemini API.
type Client struct {
	apiKey string
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
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("missing messages")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))

	if err != nil {
		return nil, convertError(err)
	}

	defer client.Close()

	model := client.GenerativeModel(c.model)

	if request.Temperature != nil {
		model.SetTemperature(*request.Temperature)
	}

	if request.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*request.MaxTokens))
	}

	if request.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(request.System)},
		}
	}

	session := model.StartChat()

	history := request.Messages[:len(request.Messages)-1]
	last := request.Messages[len(request.Messages)-1]

	for _, message := range history {
		role := "user"

		if message.Role == provider.RoleAssistant {
			role = "model"
		}

		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(message.Content)},
		})
	}

	response, err := session.SendMessage(ctx, genai.Text(last.Content))

	if err != nil {
		return nil, convertError(err)
	}

	if len(response.Candidates) == 0 {
		return nil, provider.NewError(0, "no candidates returned")
	}

	candidate := response.Candidates[0]

	var content strings.Builder

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}

	return &provider.Completion{
		Content: content.String(),
		Reason:  candidate.FinishReason.String(),
	}, nil
}

func convertError(err error) error {
	var apierr *googleapi.Error

	if errors.As(err, &apierr) {
		return provider.NewError(apierr.Code, err.Error())
	}

	return provider.NewError(0, err.Error())
}
