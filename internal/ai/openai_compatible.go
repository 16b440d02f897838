package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyContent is returned when the endpoint answers 2xx without any text.
var ErrEmptyContent = errors.New("completion response has no content")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL             string
	APIKey              string
	Model               string
	MaxCompletionTokens int
	Temperature         float64
	TopP                float64
	Timeout             time.Duration
}

// StatusError carries a non-2xx answer from the completion endpoint with its raw body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm response status %d: %s", e.StatusCode, e.Body)
}

type OpenAICompatibleClient struct {
	client openai.Client
	cfg    ChatConfig
}

func NewOpenAICompatibleClient(cfg ChatConfig) *OpenAICompatibleClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/"

	return &OpenAICompatibleClient{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(&http.Client{Timeout: timeout}),
			option.WithMaxRetries(0),
		),
		cfg: cfg,
	}
}

func (c *OpenAICompatibleClient) Model() string {
	return c.cfg.Model
}

// Complete posts messages to <base>/chat/completions and returns the first choice's text.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.cfg.Model),
		Messages: toParams(messages),
	}
	if c.cfg.MaxCompletionTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.cfg.MaxCompletionTokens))
	}
	params.Temperature = openai.Float(c.cfg.Temperature)
	params.TopP = openai.Float(c.cfg.TopP)

	var httpResp *http.Response
	completion, err := c.client.Chat.Completions.New(ctx, params, option.WithResponseInto(&httpResp))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", newStatusError(apiErr)
		}
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	// Only 200 counts as an answer; other 2xx codes are reported like any failed status.
	if httpResp != nil && httpResp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: httpResp.StatusCode, Body: completion.RawJSON()}
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyContent
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

// newStatusError keeps the endpoint's body verbatim, whatever its shape.
// RawJSON only covers the parsed OpenAI error object, so it is the fallback.
func newStatusError(apiErr *openai.Error) *StatusError {
	body := apiErr.RawJSON()
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if raw, err := io.ReadAll(apiErr.Response.Body); err == nil && len(raw) > 0 {
			body = string(raw)
		}
	}
	return &StatusError{StatusCode: apiErr.StatusCode, Body: body}
}

func toParams(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
