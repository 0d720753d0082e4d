package openai

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/pkg/errors"
)

// maxAnswerTokens caps the completion; the model only has to emit one
// of three short labels.
const maxAnswerTokens = 50

// Client implements ports.VerdictClient against the OpenAI
// chat-completions API.
type Client struct {
	client *azopenai.Client
	model  string
}

// NewClient creates a client for the public OpenAI API. Endpoint is
// configurable so the service can point at a proxy or an Azure OpenAI
// deployment instead.
func NewClient(endpoint, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientForOpenAI(endpoint, keyCredential, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating OpenAI client")
	}

	return &Client{client: client, model: model}, nil
}

// Classify sends the prompt and the screenshot to the vision model and
// returns its raw answer.
func (c *Client) Classify(ctx context.Context, prompt string, imageDataURL string) (string, error) {
	content := azopenai.NewChatRequestUserMessageContent([]azopenai.ChatCompletionRequestMessageContentPartClassification{
		&azopenai.ChatCompletionRequestMessageContentPartText{
			Text: to.Ptr(prompt),
		},
		&azopenai.ChatCompletionRequestMessageContentPartImage{
			ImageURL: &azopenai.ChatCompletionRequestMessageContentPartImageURL{
				URL: to.Ptr(imageDataURL),
			},
		},
	})

	resp, err := c.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(c.model),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestUserMessage{Content: content},
			},
			MaxTokens: to.Ptr(int32(maxAnswerTokens)),
		},
		nil,
	)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil && resp.Choices[0].Message.Content != nil {
		return strings.TrimSpace(*resp.Choices[0].Message.Content), nil
	}

	return "", errors.New("no completion received from model")
}
