package strategy

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"ad-rewriter/backend/internal/constants"
	"ad-rewriter/backend/internal/graph"
	"ad-rewriter/backend/pkg/logger"
)

// PlatformReader is the slice of the graph repository the resolver
// depends on.
type PlatformReader interface {
	FetchPlatformData(ctx context.Context, platform, audience, intent, category string) (*graph.PlatformData, error)
}

// Weights are the per-source contributions to a combined score. A
// source the caller gave no context for contributes nothing, so a
// platform-only resolution is scored purely by platform preference.
type Weights struct {
	Platform float64
	Audience float64
	Intent   float64
}

// DefaultWeights mirrors the configured defaults.
var DefaultWeights = Weights{Platform: 0.4, Audience: 0.3, Intent: 0.3}

// defaultConstraints fills in validation rules for platforms without
// Constraint attachments in the graph.
var defaultConstraints = map[string]Constraints{
	"twitter":   {MaxLengthChars: 280, AllowEmojis: true, CTARequired: false},
	"youtube":   {MaxLengthChars: 5000, AllowEmojis: true, CTARequired: true},
	"pinterest": {MaxLengthChars: 500, AllowEmojis: true, CTARequired: false},
}

// Resolver turns raw graph edges into a ranked StrategyResult.
type Resolver struct {
	reader  PlatformReader
	weights Weights
	logger  *zap.Logger
}

// NewResolver creates a resolver with the given score weights.
func NewResolver(reader PlatformReader, weights Weights) *Resolver {
	return &Resolver{
		reader:  reader,
		weights: weights,
		logger:  logger.Get(),
	}
}

// Resolve issues the batched platform query and computes ranked styles,
// creative types, audiences, and cross-platform similarity. Optional
// context absent from the key is simply omitted from the result, never
// defaulted.
func (r *Resolver) Resolve(ctx context.Context, key Key) (*StrategyResult, error) {
	data, err := r.reader.FetchPlatformData(ctx, key.Platform, key.Audience, key.Intent, key.Category)
	if err != nil {
		return nil, err
	}

	result := &StrategyResult{
		Platform:         data.Platform,
		Styles:           r.combineStyles(data),
		CreativeTypes:    r.combineCreativeTypes(data),
		TargetAudiences:  rankAudiences(data.Audiences),
		Constraints:      decodeConstraints(data),
		SimilarPlatforms: overlapScores(data),
	}

	if key.Audience != "" {
		result.AudienceStyles = rankEdges(data.AudienceStyles)
	}
	if key.Intent != "" {
		result.IntentStyles = rankEdges(data.IntentStyles)
	}
	if key.Category != "" && data.CategoryScore != nil {
		score := clampScore(*data.CategoryScore)
		result.CategorySuitability = &score
	}

	r.logger.Debug("Strategy resolved",
		zap.String("platform", key.Platform),
		zap.Int("styles", len(result.Styles)),
		zap.Int("similar_platforms", len(result.SimilarPlatforms)),
	)
	return result, nil
}

// combineStyles merges platform, audience, and intent style preferences
// into one weighted ranking. Each present source contributes its
// configured weight times the edge score; styles absent from a source
// get zero from it.
func (r *Resolver) combineStyles(data *graph.PlatformData) []StyleScore {
	byName := make(map[string]*StyleScore)
	ensure := func(name string) *StyleScore {
		if s, ok := byName[name]; ok {
			return s
		}
		s := &StyleScore{Name: name}
		byName[name] = s
		return s
	}

	for _, edge := range data.Styles {
		ensure(edge.Name).PlatformScore = clampScore(edge.Score)
	}
	for _, edge := range data.AudienceStyles {
		ensure(edge.Name).AudienceScore = clampScore(edge.Score)
	}
	for _, edge := range data.IntentStyles {
		ensure(edge.Name).IntentScore = clampScore(edge.Score)
	}

	styles := make([]StyleScore, 0, len(byName))
	for _, s := range byName {
		s.Combined = r.weights.Platform*s.PlatformScore +
			r.weights.Audience*s.AudienceScore +
			r.weights.Intent*s.IntentScore
		styles = append(styles, *s)
	}

	// Descending by combined score, ties by name ascending so repeated
	// resolutions produce identical rankings.
	sort.Slice(styles, func(i, j int) bool {
		if styles[i].Combined != styles[j].Combined {
			return styles[i].Combined > styles[j].Combined
		}
		return styles[i].Name < styles[j].Name
	})
	return styles
}

// combineCreativeTypes ranks creative types the same way styles are
// ranked. Audiences carry no creative-type edges, so the category's
// WORKS_BEST_WITH source takes the audience weight slot.
func (r *Resolver) combineCreativeTypes(data *graph.PlatformData) []RankedItem {
	scores := make(map[string]float64)
	for _, edge := range data.CreativeTypes {
		scores[edge.Name] += r.weights.Platform * clampScore(edge.Score)
	}
	for _, edge := range data.IntentCreativeTypes {
		scores[edge.Name] += r.weights.Intent * clampScore(edge.Score)
	}
	for _, edge := range data.CategoryCreativeTypes {
		scores[edge.Name] += r.weights.Audience * clampScore(edge.Score)
	}

	items := make([]RankedItem, 0, len(scores))
	for name, score := range scores {
		items = append(items, RankedItem{Name: name, Score: score})
	}
	sortRanked(items)
	return items
}

// overlapScores computes cross-platform similarity from co-targeting
// rows: the shared audiences of two platforms, each weighted by the
// average of the two targeting weights, normalized by the size of the
// union of their targeting sets. The result always lies in [0,1].
func overlapScores(data *graph.PlatformData) []RankedItem {
	type accum struct {
		sum         float64
		shared      int
		otherDegree int
	}
	byPlatform := make(map[string]*accum)
	for _, row := range data.SharedAudiences {
		a, ok := byPlatform[row.Platform]
		if !ok {
			a = &accum{}
			byPlatform[row.Platform] = a
		}
		a.sum += (clampScore(row.SelfWeight) + clampScore(row.OtherWeight)) / 2
		a.shared++
		a.otherDegree = row.OtherDegree
	}

	selfDegree := len(data.Audiences)
	items := make([]RankedItem, 0, len(byPlatform))
	for name, a := range byPlatform {
		union := selfDegree + a.otherDegree - a.shared
		if union < a.shared {
			union = a.shared
		}
		if union == 0 {
			continue
		}
		items = append(items, RankedItem{Name: name, Score: clampScore(a.sum / float64(union))})
	}
	sortRanked(items)
	return items
}

// decodeConstraints maps raw Constraint attachments to typed rules,
// falling back to per-platform defaults when the platform carries none.
func decodeConstraints(data *graph.PlatformData) Constraints {
	if len(data.Constraints) == 0 {
		if c, ok := defaultConstraints[data.Platform]; ok {
			return c
		}
		return Constraints{
			MaxLengthChars: constants.DefaultMaxLengthChars,
			AllowEmojis:    constants.DefaultAllowEmojis,
			CTARequired:    constants.DefaultCTARequired,
		}
	}

	c := Constraints{
		MaxLengthChars: constants.DefaultMaxLengthChars,
		AllowEmojis:    constants.DefaultAllowEmojis,
		CTARequired:    constants.DefaultCTARequired,
	}
	for _, record := range data.Constraints {
		switch record.Name {
		case "max_length_chars":
			if n := constraintInt(record.Value); n > 0 {
				c.MaxLengthChars = n
			}
		case "allow_emojis":
			c.AllowEmojis = constraintBool(record.Value, c.AllowEmojis)
		case "cta_required":
			c.CTARequired = constraintBool(record.Value, c.CTARequired)
		}
	}
	return c
}

// constraintInt tolerates the value types a constraint edge may carry:
// driver integers, floats, and string-stored numbers.
func constraintInt(val interface{}) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func constraintBool(val interface{}, fallback bool) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return fallback
}

func rankAudiences(edges []graph.AudienceEdge) []RankedItem {
	items := make([]RankedItem, 0, len(edges))
	for _, edge := range edges {
		items = append(items, RankedItem{Name: edge.Name, Score: clampScore(edge.Weight)})
	}
	sortRanked(items)
	return items
}

func rankEdges(edges []graph.ScoredEdge) []RankedItem {
	items := make([]RankedItem, 0, len(edges))
	for _, edge := range edges {
		items = append(items, RankedItem{Name: edge.Name, Score: clampScore(edge.Score)})
	}
	sortRanked(items)
	return items
}

func sortRanked(items []RankedItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Name < items[j].Name
	})
}

// clampScore forces a stored edge weight into [0,1]; out-of-range data
// is tolerated rather than fatal.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
