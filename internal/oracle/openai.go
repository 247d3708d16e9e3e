package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/freshmind/recommender/internal/config"
	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/recommend"
)

// ErrNotConfigured signals a missing API key at construction time, before
// any call is attempted.
var ErrNotConfigured = fmt.Errorf("oracle: API key not configured")

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// chatMessage represents a message in the chat-completions conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a client from config. Returns ErrNotConfigured if
// no API key is set; the caller decides whether to run oracle-less.
func NewOpenAIClient(cfg config.OracleConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}, nil
}

// ClassifyIntent asks the model whether the message needs a product
// recommendation. Implements intent.Classifier.
func (c *OpenAIClient) ClassifyIntent(ctx context.Context, message string) (intent.Analysis, error) {
	raw, err := c.complete(ctx, intentSystemPrompt, intentPrompt(message), 0.3, true)
	if err != nil {
		return intent.Analysis{}, err
	}
	return parseIntent(raw)
}

// AnalyzeSentiment extracts sentiment and search keywords from the message.
func (c *OpenAIClient) AnalyzeSentiment(ctx context.Context, message string) (domain.Sentiment, error) {
	raw, err := c.complete(ctx, sentimentSystemPrompt, sentimentPrompt(message), 0.3, true)
	if err != nil {
		return domain.Sentiment{}, err
	}
	return parseSentiment(raw)
}

// RankProducts asks the model to pick and justify 3-5 products from the
// candidate pool. Implements recommend.Ranker.
func (c *OpenAIClient) RankProducts(ctx context.Context, req recommend.RankRequest) ([]recommend.RankedEntry, error) {
	prompt, err := rankingPrompt(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.complete(ctx, rankingSystemPrompt, prompt, 0.7, true)
	if err != nil {
		return nil, err
	}
	return parseRanking(raw)
}

// CasualReply generates a short conversational answer for messages that
// need no recommendation.
func (c *OpenAIClient) CasualReply(ctx context.Context, req CasualReplyRequest) (string, error) {
	raw, err := c.complete(ctx, casualSystemPrompt, casualPrompt(req), 0.8, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// complete makes a single chat-completions request and returns the first
// choice's content.
func (c *OpenAIClient) complete(ctx context.Context, system, user string, temperature float64, jsonMode bool) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}
	if jsonMode {
		request.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return response.Choices[0].Message.Content, nil
}
