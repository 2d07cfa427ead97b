package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"daybook/pkg/provider"
)

// Client talks to Amazon Bedrock through the Converse API.
type Client struct {
	client *bedrockruntime.Client
	model  string
}

var _ provider.Completer = (*Client)(nil)

// New creates a client for the given model, using the default AWS credential
// chain.
func New(model, region string) (*Client, error) {
	if model == "" {
		return nil, errors.New("missing model")
	}

	var options []func(*awsconfig.LoadOptions) error

	if region != "" {
		options = append(options, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), options...)

	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Client{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, request provider.Request) (*provider.Completion, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.model),
	}

	if request.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: request.System},
		}
	}

	for _, message := range request.Messages {
		role := types.ConversationRoleUser

		if message.Role == provider.RoleAssistant {
			role = types.ConversationRoleAssistant
		}

		input.Messages = append(input.Messages, types.Message{
			Role: role,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: message.Content},
			},
		})
	}

	inference := &types.InferenceConfiguration{}

	if request.Temperature != nil {
		inference.Temperature = aws.Float32(*request.Temperature)
	}

	if request.MaxTokens != nil {
		inference.MaxTokens = aws.Int32(int32(*request.MaxTokens))
	}

	input.InferenceConfig = inference

	output, err := c.client.Converse(ctx, input)

	if err != nil {
		return nil, convertError(err)
	}

	message, ok := output.Output.(*types.ConverseOutputMemberMessage)

	if !ok {
		return nil, provider.NewError(0, "unexpected converse output")
	}

	var content strings.Builder

	for _, block := range message.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			content.WriteString(text.Value)
		}
	}

	return &provider.Completion{
		Content: content.String(),
		Reason:  string(output.StopReason),
	}, nil
}

func convertError(err error) error {
	var responseError *awshttp.ResponseError

	if errors.As(err, &responseError) {
		return provider.NewError(responseError.HTTPStatusCode(), err.Error())
	}

	return provider.NewError(0, err.Error())
}
