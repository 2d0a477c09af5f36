package strategy

import (
	"fmt"
	"strings"
)

// Key identifies one platform context. Names are lowercased so
// "LinkedIn" and "linkedin" resolve to the same cache slot; optional
// fields are empty when the caller gave no context.
type Key struct {
	Platform string
	Audience string
	Intent   string
	Category string
}

// NewKey normalizes the context names into a cache key.
func NewKey(platform, audience, intent, category string) Key {
	return Key{
		Platform: normalizeName(platform),
		Audience: normalizeName(audience),
		Intent:   normalizeName(intent),
		Category: normalizeName(category),
	}
}

// String renders the composite cache/single-flight key.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Platform, k.Audience, k.Intent, k.Category)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StyleScore is one ranked content style with its per-source breakdown.
// A source the style is absent from contributes zero, not a penalty.
type StyleScore struct {
	Name          string  `json:"name"`
	Combined      float64 `json:"combined_score"`
	PlatformScore float64 `json:"platform_score"`
	AudienceScore float64 `json:"audience_score,omitempty"`
	IntentScore   float64 `json:"intent_score,omitempty"`
}

// RankedItem is a scored recommendation (creative type, audience,
// similar platform).
type RankedItem struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Constraints are a platform's validation rules, decoded from the
// graph's Constraint attachments or filled from per-platform defaults.
type Constraints struct {
	MaxLengthChars int  `json:"max_length_chars"`
	AllowEmojis    bool `json:"allow_emojis"`
	CTARequired    bool `json:"cta_required"`
}

// StrategyResult is an immutable snapshot of one platform context's
// resolved strategy. Once cached it is shared by reference and must not
// be mutated; a re-resolution replaces the cache slot instead.
type StrategyResult struct {
	Platform            string       `json:"platform"`
	Styles              []StyleScore `json:"styles"`
	CreativeTypes       []RankedItem `json:"creative_types"`
	TargetAudiences     []RankedItem `json:"target_audiences"`
	Constraints         Constraints  `json:"constraints"`
	AudienceStyles      []RankedItem `json:"audience_preferred_styles,omitempty"`
	IntentStyles        []RankedItem `json:"intent_required_styles,omitempty"`
	CategorySuitability *float64     `json:"category_suitability_score,omitempty"`
	SimilarPlatforms    []RankedItem `json:"similar_platforms,omitempty"`
}
