package notification

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

const (
	OpenAITierName = "OpenAI"
	LocalTierName  = "Local AI"
)

var (
	errMissingAPIKey = errors.New("llm api key is not configured")
	errIncomplete    = errors.New("content is missing leave or employee")
)

type LLMConfig struct {
	Provider string // openai or ollama
	APIKey   string
	URL      string
	Model    string
	Timeout  time.Duration
}

// LLMGenerator asks a remote text-generation endpoint for the email body.
type LLMGenerator struct {
	cfg    LLMConfig
	client *http.Client
}

func NewLLMGenerator(cfg LLMConfig, client ...*http.Client) *LLMGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	c := &http.Client{Timeout: cfg.Timeout}
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &LLMGenerator{cfg: cfg, client: c}
}

func (g *LLMGenerator) Name() string {
	if g.cfg.Provider == "ollama" {
		return LocalTierName
	}
	return OpenAITierName
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (g *LLMGenerator) Generate(ctx context.Context, c Content) (string, error) {
	if c.Leave == nil || c.Employee == nil {
		return "", errIncomplete
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	prompt := buildPrompt(c)
	if g.cfg.Provider == "ollama" {
		return g.generateOllama(ctx, prompt)
	}
	return g.generateOpenAI(ctx, prompt)
}

func (g *LLMGenerator) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return "", errMissingAPIKey
	}

	var out chatResponse
	err := g.post(ctx, chatRequest{
		Model:       g.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   500,
		Temperature: 0.7,
	}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errEmptyContent
	}
	return cleanModelOutput(out.Choices[0].Message.Content), nil
}

func (g *LLMGenerator) generateOllama(ctx context.Context, prompt string) (string, error) {
	var out generateResponse
	if err := g.post(ctx, generateRequest{Model: g.cfg.Model, Prompt: prompt}, &out); err != nil {
		return "", err
	}
	return cleanModelOutput(out.Response), nil
}

func (g *LLMGenerator) post(ctx context.Context, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("llm endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// cleanModelOutput drops the markdown fence models like to wrap HTML in.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```html")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
