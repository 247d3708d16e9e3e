package oracle

import (
	"context"
	"fmt"

	"github.com/freshmind/recommender/internal/config"
	"github.com/freshmind/recommender/internal/domain"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/recommend"
)

// Client is the full oracle surface the chat service consumes.
type Client interface {
	intent.Classifier
	recommend.Ranker
	AnalyzeSentiment(ctx context.Context, message string) (domain.Sentiment, error)
	CasualReply(ctx context.Context, req CasualReplyRequest) (string, error)
}

var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*BedrockClient)(nil)
)

// NewClient constructs the configured oracle backend.
func NewClient(ctx context.Context, cfg config.OracleConfig) (Client, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg)
	case "bedrock":
		return NewBedrockClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("oracle: unknown provider %q", cfg.Provider)
	}
}
