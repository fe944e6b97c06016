package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// defaultMessagesURL is the Anthropic messages endpoint.
	defaultMessagesURL = "https://api.anthropic.com/v1/messages"

	// apiVersion is the pinned anthropic-version header value.
	apiVersion = "2023-06-01"

	// defaultMaxTokens caps responses when the caller does not set a
	// limit.
	defaultMaxTokens = 4096

	// defaultHTTPTimeout bounds a single HTTP attempt. Long enough for
	// a full review synthesis response.
	defaultHTTPTimeout = 120 * time.Second

	// maxRetries is how many times a rate limited request is retried.
	maxRetries = 3
)

// AnthropicConfig configures an AnthropicClient.
type AnthropicConfig struct {
	// APIKey is the endpoint credential. Required.
	APIKey string

	// Model is the model identifier to request. Required.
	Model string

	// BaseURL overrides the messages endpoint, used by tests. Empty
	// means the production endpoint.
	BaseURL string
}

// AnthropicClient talks to the Anthropic messages API over plain HTTP.
type AnthropicClient struct {
	cfg    AnthropicConfig
	url    string
	client *http.Client
}

// A compile-time check that AnthropicClient satisfies Client.
var _ Client = (*AnthropicClient)(nil)

// NewAnthropicClient creates a client for the Anthropic messages API.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}

	url := cfg.BaseURL
	if url == "" {
		url = defaultMessagesURL
	}

	return &AnthropicClient{
		cfg: cfg,
		url: url,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}, nil
}

// Name identifies the backing provider.
func (a *AnthropicClient) Name() string { return "anthropic" }

// Complete sends a single prompt exchange to the messages endpoint,
// retrying rate limited attempts with exponential backoff.
func (a *AnthropicClient) Complete(ctx context.Context,
	req CompletionRequest) (CompletionResponse, error) {

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body := messagesRequest{
		Model:     a.cfg.Model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages: []message{
			{Role: "user", Content: req.UserPrompt},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("unable to marshal "+
			"request: %w", err)
	}

	log.DebugS(ctx, "Sending completion request",
		"model", a.cfg.Model,
		"max_tokens", maxTokens,
		"prompt_bytes", len(req.UserPrompt))

	var resp CompletionResponse
	err = retryWithBackoff(ctx, maxRetries, func() error {
		httpReq, err := http.NewRequestWithContext(
			ctx, http.MethodPost, a.url,
			bytes.NewReader(payload),
		)
		if err != nil {
			return fmt.Errorf("unable to create request: %w",
				err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", a.cfg.APIKey)
		httpReq.Header.Set("anthropic-version", apiVersion)

		httpResp, err := a.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("unable to send request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("unable to read response: %w", err)
		}

		switch {
		case httpResp.StatusCode == http.StatusTooManyRequests:
			return &rateLimitError{}

		case httpResp.StatusCode == http.StatusUnauthorized,
			httpResp.StatusCode == http.StatusForbidden:

			return &authError{message: string(respBody)}

		case httpResp.StatusCode != http.StatusOK:
			return fmt.Errorf("API error (status %d): %s",
				httpResp.StatusCode, string(respBody))
		}

		var result messagesResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("unable to parse response: %w",
				err)
		}

		var content bytes.Buffer
		for _, block := range result.Content {
			if block.Type == "text" {
				content.WriteString(block.Text)
			}
		}

		resp = CompletionResponse{
			Content: content.String(),
			TokensUsed: result.Usage.InputTokens +
				result.Usage.OutputTokens,
		}

		return nil
	})
	if err != nil {
		return CompletionResponse{}, err
	}

	log.DebugS(ctx, "Received completion response",
		"tokens_used", resp.TokensUsed,
		"content_bytes", len(resp.Content))

	return resp, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
