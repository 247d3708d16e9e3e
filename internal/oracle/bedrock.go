package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/freshmind/recommender/internal/config"
	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/recommend"
)

// BedrockClient is the AWS Bedrock (Claude) oracle backend. All calls stay
// within AWS - no external API calls.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
	region  string
}

// bedrockMessage represents a message in Bedrock format
type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

// bedrockContentBlock represents content in a message
type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewBedrockClient creates a Bedrock-backed oracle using the default AWS
// credential chain.
func NewBedrockClient(ctx context.Context, cfg config.OracleConfig) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.BedrockRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	b := &BedrockClient{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.BedrockModelID,
		region:  cfg.BedrockRegion,
	}
	log.Printf("oracle: Bedrock client initialized with model=%s, region=%s", b.modelID, b.region)
	return b, nil
}

// ClassifyIntent implements intent.Classifier via Bedrock.
func (b *BedrockClient) ClassifyIntent(ctx context.Context, message string) (intent.Analysis, error) {
	raw, err := b.invoke(ctx, intentSystemPrompt, intentPrompt(message), 0.3)
	if err != nil {
		return intent.Analysis{}, err
	}
	return parseIntent(raw)
}

// AnalyzeSentiment extracts sentiment and keywords via Bedrock.
func (b *BedrockClient) AnalyzeSentiment(ctx context.Context, message string) (domain.Sentiment, error) {
	raw, err := b.invoke(ctx, sentimentSystemPrompt, sentimentPrompt(message), 0.3)
	if err != nil {
		return domain.Sentiment{}, err
	}
	return parseSentiment(raw)
}

// RankProducts implements recommend.Ranker via Bedrock.
func (b *BedrockClient) RankProducts(ctx context.Context, req recommend.RankRequest) ([]recommend.RankedEntry, error) {
	prompt, err := rankingPrompt(req)
	if err != nil {
		return nil, err
	}
	raw, err := b.invoke(ctx, rankingSystemPrompt, prompt, 0.7)
	if err != nil {
		return nil, err
	}
	return parseRanking(raw)
}

// CasualReply generates a conversational answer via Bedrock.
func (b *BedrockClient) CasualReply(ctx context.Context, req CasualReplyRequest) (string, error) {
	raw, err := b.invoke(ctx, casualSystemPrompt, casualPrompt(req), 0.8)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// invoke makes a single InvokeModel call and concatenates the text blocks
// of the response.
func (b *BedrockClient) invoke(ctx context.Context, system, user string, temperature float64) (string, error) {
	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        2000,
		System:           system,
		Messages: []bedrockMessage{
			{Role: "user", Content: []bedrockContentBlock{{Type: "text", Text: user}}},
		},
		Temperature: temperature,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock API error: %w", err)
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var text string
	for _, content := range response.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	return text, nil
}
