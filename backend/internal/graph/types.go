package graph

// ============================================================================
// Typed Graph Records
// ============================================================================

// ScoredEdge is a weighted edge to a vocabulary node (style, creative type)
type ScoredEdge struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// AudienceEdge is a platform's TARGETS edge
type AudienceEdge struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ConstraintRecord is a raw HAS_CONSTRAINT attachment as stored in the graph.
// Value is typed lazily: the Type field says how to interpret it.
type ConstraintRecord struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"` // "integer", "boolean", "string"
	Value interface{} `json:"value"`
}

// SharedAudience is one co-targeting row: another platform targeting the
// same audience as the queried platform, with both targeting weights.
type SharedAudience struct {
	Platform    string  `json:"platform"`
	Audience    string  `json:"audience"`
	SelfWeight  float64 `json:"weight_self"`
	OtherWeight float64 `json:"weight_other"`
	OtherDegree int     `json:"degree_other"` // other platform's total TARGETS edges
}

// PlatformData is everything the batched platform query returns in one
// round trip. Optional context slices are empty (never nil) when the
// corresponding audience/intent/category was not given.
type PlatformData struct {
	Platform              string
	Constraints           []ConstraintRecord
	Styles                []ScoredEdge // PREFERS_STYLE
	CreativeTypes         []ScoredEdge // SUPPORTS
	Audiences             []AudienceEdge
	AudienceStyles        []ScoredEdge // audience PREFERS_STYLE
	IntentStyles          []ScoredEdge // REQUIRES_STYLE
	IntentCreativeTypes   []ScoredEdge // WORKS_WITH
	CategoryScore         *float64     // SUITABLE_FOR suitability, nil when absent
	CategoryCreativeTypes []ScoredEdge // WORKS_BEST_WITH
	SharedAudiences       []SharedAudience
}
