package agent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ad-rewriter/backend/internal/adapter"
	"ad-rewriter/backend/internal/constants"
	"ad-rewriter/backend/internal/strategy"
	apperrors "ad-rewriter/backend/pkg/errors"
	"ad-rewriter/backend/pkg/logger"
)

// ErrNoPlatforms rejects a batch before any unit of work starts.
var ErrNoPlatforms = errors.New("target_platforms must not be empty")

// MaxConcurrentPlatforms bounds the fan-out per batch.
const MaxConcurrentPlatforms = 8

// StrategyProvider resolves platform strategies, normally through the
// process-wide cache.
type StrategyProvider interface {
	Resolve(ctx context.Context, key strategy.Key) (*strategy.StrategyResult, error)
}

// Rewriter is the external rewrite collaborator.
type Rewriter interface {
	Rewrite(ctx context.Context, in adapter.RewriteInput) (*adapter.RewriteOutput, error)
}

// Request is one batch rewrite across N target platforms.
type Request struct {
	Text                        string
	TargetPlatforms             []string
	Audience                    string
	UserIntent                  string
	ProductCategory             string
	ToneMap                     map[string]string
	LengthPrefs                 map[string]int
	IncludeStrategyInsights     bool
	SuggestAlternativePlatforms bool
}

// PlatformResult is one slot of the batch: a success payload or a
// structured failure, never silently dropped.
type PlatformResult struct {
	Platform      string            `json:"platform"`
	RewrittenText string            `json:"rewritten_text,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
	Entities      *Entities         `json:"entities,omitempty"`
	Validation    *ValidationReport `json:"validation,omitempty"`
	Error         string            `json:"error,omitempty"`
	ErrorType     string            `json:"error_type,omitempty"`

	// Strategy carries the resolved snapshot for insight assembly; it
	// is reported through the insights section, not per item.
	Strategy *strategy.StrategyResult `json:"-"`
}

// Succeeded reports whether the slot holds a rewrite.
func (r *PlatformResult) Succeeded() bool {
	return r.Error == ""
}

// Insight is the per-platform strategy summary included in responses.
type Insight struct {
	RecommendedStyles        []string `json:"recommended_styles"`
	RecommendedCreativeTypes []string `json:"recommended_creative_types"`
	TargetAudiences          []string `json:"target_audiences"`
	AudiencePreferredStyles  []string `json:"audience_preferred_styles,omitempty"`
	IntentRequiredStyles     []string `json:"intent_required_styles,omitempty"`
	CategorySuitabilityScore *float64 `json:"category_suitability_score,omitempty"`
}

// Meta describes the batch run.
type Meta struct {
	BatchID        string            `json:"batch_id"`
	LatencyMS      int64             `json:"latency_ms"`
	TotalPlatforms int               `json:"total_platforms"`
	Context        map[string]string `json:"context"`
}

// Summary counts per-slot outcomes.
type Summary struct {
	Total  int `json:"total"`
	OK     int `json:"ok"`
	Failed int `json:"failed"`
}

// BatchResponse is the assembled batch in input-platform order.
type BatchResponse struct {
	Meta                 Meta                             `json:"meta"`
	ValidationSummary    Summary                          `json:"validation_summary"`
	Results              []PlatformResult                 `json:"results"`
	StrategyInsights     map[string]Insight               `json:"strategy_insights,omitempty"`
	AlternativePlatforms map[string][]strategy.RankedItem `json:"alternative_platforms,omitempty"`
}

// Orchestrator fans a rewrite request out across target platforms,
// isolating per-platform failures and reassembling results in input
// order.
type Orchestrator struct {
	strategies StrategyProvider
	rewriter   Rewriter
	logger     *zap.Logger
}

// NewOrchestrator creates a batch orchestrator.
func NewOrchestrator(strategies StrategyProvider, rewriter Rewriter) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		rewriter:   rewriter,
		logger:     logger.Get(),
	}
}

// RunBatch resolves and rewrites for every target platform in parallel.
// Each platform gets its own unit of work; one unit's failure lands in
// its slot only and never aborts the siblings. The response lists one
// entry per requested platform in request order regardless of
// completion order.
func (o *Orchestrator) RunBatch(ctx context.Context, req *Request) (*BatchResponse, error) {
	if len(req.TargetPlatforms) == 0 {
		return nil, ErrNoPlatforms
	}

	batchID := uuid.NewString()
	start := time.Now()
	o.logger.Info("Starting rewrite batch",
		zap.String("batch_id", batchID),
		zap.Int("platforms", len(req.TargetPlatforms)),
		zap.String("audience", req.Audience),
		zap.String("intent", req.UserIntent),
		zap.String("category", req.ProductCategory),
	)

	results := make([]PlatformResult, len(req.TargetPlatforms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentPlatforms)

	for i, platform := range req.TargetPlatforms {
		idx, name := i, platform
		g.Go(func() error {
			// Failures are captured in the slot; returning them here
			// would cancel sibling units.
			results[idx] = o.runPlatform(gctx, req, name)
			return nil
		})
	}
	_ = g.Wait()

	resp := o.assemble(req, results)
	resp.Meta = Meta{
		BatchID:        batchID,
		LatencyMS:      time.Since(start).Milliseconds(),
		TotalPlatforms: len(results),
		Context: map[string]string{
			"audience":         req.Audience,
			"user_intent":      req.UserIntent,
			"product_category": req.ProductCategory,
		},
	}

	o.logger.Info("Rewrite batch finished",
		zap.String("batch_id", batchID),
		zap.Int("ok", resp.ValidationSummary.OK),
		zap.Int("failed", resp.ValidationSummary.Failed),
		zap.Int64("latency_ms", resp.Meta.LatencyMS),
	)
	return resp, nil
}

// runPlatform is one unit of work: resolve strategy through the cache,
// sanitize, rewrite, validate. Every error path produces a structured
// failure slot.
func (o *Orchestrator) runPlatform(ctx context.Context, req *Request, platform string) PlatformResult {
	key := strategy.NewKey(platform, req.Audience, req.UserIntent, req.ProductCategory)

	resolved, err := o.strategies.Resolve(ctx, key)
	if err != nil {
		o.logger.Warn("Strategy resolution failed",
			zap.String("platform", platform),
			zap.Error(err),
		)
		return failureResult(platform, err)
	}

	constraints := resolved.Constraints
	if pref, ok := req.LengthPrefs[platform]; ok && pref > 0 && pref < constraints.MaxLengthChars {
		constraints.MaxLengthChars = pref
	}

	tone := req.ToneMap[platform]
	if tone == "" && len(resolved.Styles) > 0 {
		tone = resolved.Styles[0].Name
	}

	sanitized, sanitizeIssues := SanitizeText(req.Text)
	entities := ExtractEntities(sanitized)

	out, err := o.rewriter.Rewrite(ctx, adapter.RewriteInput{
		Platform:       key.Platform,
		Tone:           tone,
		Text:           sanitized,
		Entities:       entities.Map(),
		MaxLengthChars: constraints.MaxLengthChars,
		AllowEmojis:    constraints.AllowEmojis,
		CTARequired:    constraints.CTARequired,
		Styles:         topNames(resolved.Styles, constants.TopStyles),
		CreativeTypes:  topRankedNames(resolved.CreativeTypes, constants.TopCreativeTypes),
	})
	if err != nil {
		o.logger.Warn("Rewrite failed",
			zap.String("platform", platform),
			zap.Error(err),
		)
		result := failureResult(platform, err)
		// Resolution succeeded, keep the strategy for insights.
		result.Strategy = resolved
		return result
	}

	repaired, report := ValidateAndRepair(out.RewrittenText, constraints)
	report.Issues = append(sanitizeIssues, report.Issues...)
	report.OK = len(report.Issues) == 0

	return PlatformResult{
		Platform:      key.Platform,
		RewrittenText: repaired,
		Explanation:   out.Explanation,
		Entities:      &entities,
		Validation:    report,
		Strategy:      resolved,
	}
}

// assemble builds the ordered response plus the aggregate sections,
// reusing the already-resolved strategies instead of re-querying.
func (o *Orchestrator) assemble(req *Request, results []PlatformResult) *BatchResponse {
	resp := &BatchResponse{Results: results}

	resp.ValidationSummary.Total = len(results)
	for i := range results {
		if results[i].Succeeded() && results[i].Validation != nil && results[i].Validation.OK {
			resp.ValidationSummary.OK++
		} else {
			resp.ValidationSummary.Failed++
		}
	}

	if req.IncludeStrategyInsights {
		insights := make(map[string]Insight)
		for i := range results {
			resolved := results[i].Strategy
			if resolved == nil {
				continue
			}
			insight := Insight{
				RecommendedStyles:        topNames(resolved.Styles, constants.TopStyles),
				RecommendedCreativeTypes: topRankedNames(resolved.CreativeTypes, constants.TopCreativeTypes),
				TargetAudiences:          topRankedNames(resolved.TargetAudiences, constants.TopAudiences),
			}
			if req.Audience != "" {
				insight.AudiencePreferredStyles = topRankedNames(resolved.AudienceStyles, constants.TopStyles)
			}
			if req.UserIntent != "" {
				insight.IntentRequiredStyles = topRankedNames(resolved.IntentStyles, constants.TopStyles)
			}
			if req.ProductCategory != "" {
				insight.CategorySuitabilityScore = resolved.CategorySuitability
			}
			insights[results[i].Platform] = insight
		}
		if len(insights) > 0 {
			resp.StrategyInsights = insights
		}
	}

	if req.SuggestAlternativePlatforms {
		alternatives := make(map[string][]strategy.RankedItem)
		for i := range results {
			resolved := results[i].Strategy
			if resolved == nil || len(resolved.SimilarPlatforms) == 0 {
				continue
			}
			limit := constants.TopSimilarPlatforms
			if limit > len(resolved.SimilarPlatforms) {
				limit = len(resolved.SimilarPlatforms)
			}
			alternatives[results[i].Platform] = resolved.SimilarPlatforms[:limit]
		}
		if len(alternatives) > 0 {
			resp.AlternativePlatforms = alternatives
		}
	}

	return resp
}

func failureResult(platform string, err error) PlatformResult {
	return PlatformResult{
		Platform:  strategy.NewKey(platform, "", "", "").Platform,
		Error:     err.Error(),
		ErrorType: errorType(err),
	}
}

func errorType(err error) string {
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
		return string(apperrors.ErrorTypeNotFound)
	case apperrors.IsErrorType(err, apperrors.ErrorTypeGraph):
		return string(apperrors.ErrorTypeGraph)
	case apperrors.IsErrorType(err, apperrors.ErrorTypePool):
		return string(apperrors.ErrorTypePool)
	case apperrors.IsErrorType(err, apperrors.ErrorTypeQuery):
		return string(apperrors.ErrorTypeQuery)
	case apperrors.IsErrorType(err, apperrors.ErrorTypeRewrite):
		return string(apperrors.ErrorTypeRewrite)
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		return string(apperrors.ErrorTypeContext)
	default:
		return "internal"
	}
}

func topNames(styles []strategy.StyleScore, limit int) []string {
	if limit > len(styles) {
		limit = len(styles)
	}
	names := make([]string, 0, limit)
	for _, s := range styles[:limit] {
		names = append(names, s.Name)
	}
	return names
}

func topRankedNames(items []strategy.RankedItem, limit int) []string {
	if limit > len(items) {
		limit = len(items)
	}
	names := make([]string, 0, limit)
	for _, item := range items[:limit] {
		names = append(names, item.Name)
	}
	return names
}
