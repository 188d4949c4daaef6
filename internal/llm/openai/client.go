package openai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/shared/telemetry"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Options configures the OpenAI client.
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float32
	httpClient  *http.Client
}

// NewClient constructs a new OpenAI client. An empty API key is accepted; calls
// then fail with llm.ErrNotConfigured before any request is made.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       opts.Model,
		maxTokens:   maxTokens,
		temperature: opts.Temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Ready reports whether an API key is configured.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return llm.ErrNotConfigured
	}
	return nil
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one chat completion and returns the message content.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	reqMessages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	temp := c.temperature
	payload, err := json.Marshal(chatRequest{
		Model:          model,
		Messages:       reqMessages,
		MaxTokens:      c.maxTokens,
		Temperature:    &temp,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "Client.Timeout") {
			msg = "openai request timeout"
		}
		return "", &llm.APIError{Operation: req.Operation, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.APIError{Operation: req.Operation, Status: resp.StatusCode, Message: "read response body", Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", &llm.APIError{Operation: req.Operation, Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return "", &llm.SchemaError{Operation: req.Operation, Reason: "openai response parse", Err: err}
	}
	if parsed.Error != nil {
		return "", &llm.APIError{Operation: req.Operation, Status: resp.StatusCode, Message: parsed.Error.Message, Type: parsed.Error.Type}
	}
	if resp.StatusCode >= 400 {
		return "", &llm.APIError{Operation: req.Operation, Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if len(parsed.Choices) == 0 {
		return "", &llm.SchemaError{Operation: req.Operation, Reason: "openai response missing choices"}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &llm.SchemaError{Operation: req.Operation, Reason: "openai response empty content"}
	}
	logUsage(req.Operation, model, hashMessages(req.Messages), parsed.Usage, time.Since(started))
	return content, nil
}

func logUsage(op llm.Operation, model, promptHash string, usage *chatUsage, elapsed time.Duration) {
	fields := map[string]any{
		"operation":   string(op),
		"model":       model,
		"prompt_hash": promptHash,
		"duration_ms": elapsed.Milliseconds(),
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func hashMessages(messages []llm.Message) string {
	h := sha256.New()
	for i, m := range messages {
		if i > 0 {
			h.Write([]byte("\n\n"))
		}
		h.Write([]byte(m.Role))
		h.Write([]byte(": "))
		h.Write([]byte(m.Content))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var _ llm.Completer = (*Client)(nil)
