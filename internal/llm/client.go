package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	defaultBaseURL = "http://localhost:11434/v1/"
	defaultModel   = "llama3.1:8b"
)

// Config holds client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxTokens  int
	SchemaName string
	Schema     json.Marshaler
}

// Client wraps an OpenAI-compatible completion API (Ollama, Nebius, OpenAI).
type Client struct {
	api        *openai.Client
	model      string
	maxTokens  int
	timeout    time.Duration
	schemaName string
	schema     json.Marshaler
}

// VerdictSchema constrains the model output to the two-field verdict shape.
func VerdictSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"valid": {Type: jsonschema.Boolean},
			"reasons": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required:             []string{"valid", "reasons"},
		AdditionalProperties: false,
	}
}

// New creates a client from config.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		// local Ollama ignores the key but go-openai requires one
		apiKey = "ollama"
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	openaiCfg.BaseURL = baseURL

	return &Client{
		api:        openai.NewClientWithConfig(openaiCfg),
		model:      model,
		maxTokens:  maxTokens,
		timeout:    timeout,
		schemaName: cfg.SchemaName,
		schema:     cfg.Schema,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Complete sends a single user-role prompt and returns the raw response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm: client is nil")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("llm: prompt must be provided")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
		// omitempty drops a literal 0, so the smallest positive float is
		// what keeps the temperature pinned on the wire
		Temperature: math.SmallestNonzeroFloat32,
	}
	if c.schema != nil {
		name := c.schemaName
		if name == "" {
			name = "response"
		}
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: c.schema,
				Strict: true,
			},
		}
	}

	resp, err := c.api.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
