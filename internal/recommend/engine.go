package recommend

import (
	"context"
	"time"

	"github.com/freshmind/recommender/internal/domain"
)

// Engine ties the analyzer, scorer, selector, and finalizer together. It is
// stateless between calls; construct once and share, or construct per call.
type Engine struct {
	ranker Ranker
	cap    int
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCandidateCap overrides the candidate pool size handed to the oracle.
func WithCandidateCap(cap int) Option {
	return func(e *Engine) {
		if cap >= MinRecommendations {
			e.cap = cap
		}
	}
}

// WithClock overrides the time source. Used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine. A nil ranker is valid and
// yields deterministic-only results.
func NewEngine(ranker Ranker, opts ...Option) *Engine {
	e := &Engine{
		ranker: ranker,
		cap:    DefaultCandidateCap,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the engine's caller-facing output. Source distinguishes oracle
// rankings from deterministic fallbacks and a legitimately empty catalog.
type Result struct {
	Recommendations []domain.Recommendation     `json:"recommendations"`
	Source          domain.RecommendationSource `json:"source"`
}

// Recommend runs the full pipeline: analyze history, score and select
// candidates, then finalize against the ranking oracle with fallback.
func (e *Engine) Recommend(
	ctx context.Context,
	message string,
	sentimentKeywords []string,
	user domain.UserProfile,
	history []domain.PurchaseEvent,
	catalog []domain.Product,
) Result {
	if len(catalog) == 0 {
		return Result{Source: domain.SourceEmptyCatalog}
	}

	profile := Analyze(history, catalog, e.now())
	candidates := SelectCandidates(catalog, profile, &user, e.cap)
	recs, source := Finalize(ctx, e.ranker, message, sentimentKeywords, candidates, &user, profile, catalog)

	return Result{Recommendations: recs, Source: source}
}
