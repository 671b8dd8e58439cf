package feynman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request is the provider-neutral shape of one generation call.
type Request struct {
	SystemInstruction string
	UserPrompt        string
	Temperature       float64
	MaxOutputTokens   int
	JSONOutput        bool
}

type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Completion, error)
}

type ChatConfig struct {
	Name    string
	BaseURL string // e.g. https://api.x.ai/v1
	Model   string
	APIKey  string
	Timeout time.Duration
	// USD per million tokens, used for cost logging only
	InputPrice  float64
	OutputPrice float64
}

// ChatClient talks to any OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	cfg        ChatConfig
	endpoint   string
	httpClient *http.Client
}

var _ Provider = (*ChatClient)(nil)

func NewChatClient(cfg ChatConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatClient{
		cfg:      cfg,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *ChatClient) Name() string { return c.cfg.Name }

// Cost estimates the USD price of a completion.
func (c *ChatClient) Cost(comp Completion) float64 {
	return float64(comp.PromptTokens)/1e6*c.cfg.InputPrice + float64(comp.CompletionTokens)/1e6*c.cfg.OutputPrice
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *ChatClient) Complete(ctx context.Context, req Request) (Completion, error) {
	if c.cfg.APIKey == "" || c.cfg.BaseURL == "" || c.cfg.Model == "" {
		return Completion{}, fmt.Errorf("%s client misconfigured", c.cfg.Name)
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemInstruction},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
	}
	if req.JSONOutput {
		payload.ResponseFormat = map[string]string{"type": "json_object"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("marshal %s payload: %w", c.cfg.Name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("%s request: %w", c.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Completion{}, fmt.Errorf("%s error %s: %s", c.cfg.Name, resp.Status, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Completion{}, fmt.Errorf("decode %s response: %w", c.cfg.Name, err)
	}
	if len(out.Choices) == 0 {
		return Completion{}, errors.New(c.cfg.Name + " returned no choices")
	}
	return Completion{
		Content:          out.Choices[0].Message.Content,
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}, nil
}
