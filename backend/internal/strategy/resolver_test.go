package strategy

import (
	"context"
	"math"
	"testing"

	"ad-rewriter/backend/internal/graph"
)

// Mock implementations for testing

type mockReader struct {
	data *graph.PlatformData
	err  error
}

func (m *mockReader) FetchPlatformData(ctx context.Context, platform, audience, intent, category string) (*graph.PlatformData, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolver_CombinedStyleScores(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "instagram",
			Styles: []graph.ScoredEdge{
				{Name: "visual", Score: 0.95},
				{Name: "fun", Score: 0.90},
			},
			AudienceStyles: []graph.ScoredEdge{
				{Name: "visual", Score: 0.85},
				{Name: "energetic", Score: 0.90},
			},
			IntentStyles: []graph.ScoredEdge{
				{Name: "visual", Score: 0.90},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("instagram", "gen-z", "awareness", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(result.Styles) != 3 {
		t.Fatalf("Expected 3 styles, got %d", len(result.Styles))
	}
	if result.Styles[0].Name != "visual" {
		t.Errorf("Expected 'visual' first, got '%s'", result.Styles[0].Name)
	}
	// 0.4*0.95 + 0.3*0.85 + 0.3*0.90
	if want := 0.905; !approxEqual(result.Styles[0].Combined, want) {
		t.Errorf("Expected combined score %v, got %v", want, result.Styles[0].Combined)
	}
	// fun has only the platform source: 0.4*0.90
	for _, s := range result.Styles {
		if s.Name == "fun" && !approxEqual(s.Combined, 0.36) {
			t.Errorf("Expected fun score 0.36, got %v", s.Combined)
		}
	}
}

func TestResolver_TieBreakByName(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "twitter",
			Styles: []graph.ScoredEdge{
				{Name: "concise", Score: 0.80},
				{Name: "bold", Score: 0.80},
				{Name: "casual", Score: 0.80},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("twitter", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []string{"bold", "casual", "concise"}
	for i, name := range want {
		if result.Styles[i].Name != name {
			t.Errorf("Position %d: expected '%s', got '%s'", i, name, result.Styles[i].Name)
		}
	}
}

func TestResolver_ScoreBounds(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "instagram",
			Styles: []graph.ScoredEdge{
				{Name: "visual", Score: 1.7},
				{Name: "fun", Score: -0.3},
			},
			Audiences: []graph.AudienceEdge{
				{Name: "gen-z", Weight: 2.5},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("instagram", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	for _, s := range result.Styles {
		if s.Combined < 0 || s.Combined > 1 {
			t.Errorf("Style %s combined score %v out of [0,1]", s.Name, s.Combined)
		}
	}
	if result.TargetAudiences[0].Score != 1.0 {
		t.Errorf("Expected clamped audience score 1.0, got %v", result.TargetAudiences[0].Score)
	}
}

func TestResolver_AbsentContextOmitted(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "instagram",
			Styles:   []graph.ScoredEdge{{Name: "visual", Score: 0.95}},
			// The batched query returns no audience/intent rows when
			// those parameters are null; a nil payload here mirrors that.
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("instagram", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.AudienceStyles != nil {
		t.Error("Expected no audience styles for platform-only resolution")
	}
	if result.IntentStyles != nil {
		t.Error("Expected no intent styles for platform-only resolution")
	}
	if result.CategorySuitability != nil {
		t.Error("Expected no category suitability for platform-only resolution")
	}
}

func TestResolver_SimilarityNormalization(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "instagram",
			Audiences: []graph.AudienceEdge{
				{Name: "gen-z", Weight: 0.85},
				{Name: "millennials", Weight: 0.80},
				{Name: "students", Weight: 0.70},
			},
			SharedAudiences: []graph.SharedAudience{
				{Platform: "tiktok", Audience: "gen-z", SelfWeight: 0.85, OtherWeight: 0.90, OtherDegree: 3},
				{Platform: "tiktok", Audience: "millennials", SelfWeight: 0.80, OtherWeight: 0.65, OtherDegree: 3},
				{Platform: "tiktok", Audience: "students", SelfWeight: 0.70, OtherWeight: 0.75, OtherDegree: 3},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("instagram", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(result.SimilarPlatforms) != 1 {
		t.Fatalf("Expected 1 similar platform, got %d", len(result.SimilarPlatforms))
	}
	got := result.SimilarPlatforms[0]
	if got.Name != "tiktok" {
		t.Errorf("Expected tiktok, got %s", got.Name)
	}
	// Three shared audiences, union = 3 + 3 - 3 = 3:
	// (0.875 + 0.725 + 0.725) / 3
	want := (0.875 + 0.725 + 0.725) / 3
	if !approxEqual(got.Score, want) {
		t.Errorf("Expected similarity %v, got %v", want, got.Score)
	}
	if got.Score < 0 || got.Score > 1 {
		t.Errorf("Similarity %v out of [0,1]", got.Score)
	}
}

func TestResolver_SimilarityIdenticalTargeting(t *testing.T) {
	// Two platforms with identical single-audience, full-weight
	// targeting must score exactly 1.
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform:  "instagram",
			Audiences: []graph.AudienceEdge{{Name: "gen-z", Weight: 1.0}},
			SharedAudiences: []graph.SharedAudience{
				{Platform: "tiktok", Audience: "gen-z", SelfWeight: 1.0, OtherWeight: 1.0, OtherDegree: 1},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("instagram", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !approxEqual(result.SimilarPlatforms[0].Score, 1.0) {
		t.Errorf("Expected similarity 1.0, got %v", result.SimilarPlatforms[0].Score)
	}
}

func TestResolver_ConstraintsFromGraph(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "linkedin",
			Constraints: []graph.ConstraintRecord{
				{Name: "max_length_chars", Type: "integer", Value: int64(1300)},
				{Name: "allow_emojis", Type: "boolean", Value: false},
				{Name: "cta_required", Type: "boolean", Value: true},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("linkedin", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.Constraints.MaxLengthChars != 1300 {
		t.Errorf("Expected max length 1300, got %d", result.Constraints.MaxLengthChars)
	}
	if result.Constraints.AllowEmojis {
		t.Error("Expected emojis disallowed")
	}
	if !result.Constraints.CTARequired {
		t.Error("Expected CTA required")
	}
}

func TestResolver_ConstraintsFromStoredValues(t *testing.T) {
	// Relationship values come back in whatever shape they were
	// written: numbers as int64, booleans sometimes as "true"/"false"
	// strings alongside the type tag.
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "linkedin",
			Constraints: []graph.ConstraintRecord{
				{Name: "max_length_chars", Type: "integer", Value: "1300"},
				{Name: "allow_emojis", Type: "boolean", Value: "false"},
				{Name: "cta_required", Type: "boolean", Value: "true"},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("linkedin", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.Constraints.MaxLengthChars != 1300 {
		t.Errorf("Expected max length 1300 from string value, got %d", result.Constraints.MaxLengthChars)
	}
	if result.Constraints.AllowEmojis {
		t.Error("Expected emojis disallowed from string value")
	}
	if !result.Constraints.CTARequired {
		t.Error("Expected CTA required from string value")
	}
}

func TestResolver_ConstraintsNilValuesKeepDefaults(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "linkedin",
			Constraints: []graph.ConstraintRecord{
				{Name: "max_length_chars", Type: "integer", Value: nil},
				{Name: "allow_emojis", Type: "boolean", Value: nil},
				{Name: "cta_required", Type: "boolean", Value: nil},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("linkedin", "", "", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.Constraints.MaxLengthChars != 2000 {
		t.Errorf("Expected default max length 2000, got %d", result.Constraints.MaxLengthChars)
	}
	if !result.Constraints.AllowEmojis {
		t.Error("Expected default emojis allowed")
	}
	if result.Constraints.CTARequired {
		t.Error("Expected default CTA not required")
	}
}

func TestResolver_DefaultConstraints(t *testing.T) {
	cases := []struct {
		platform string
		want     Constraints
	}{
		{"twitter", Constraints{MaxLengthChars: 280, AllowEmojis: true, CTARequired: false}},
		{"youtube", Constraints{MaxLengthChars: 5000, AllowEmojis: true, CTARequired: true}},
		{"pinterest", Constraints{MaxLengthChars: 500, AllowEmojis: true, CTARequired: false}},
		{"newplatform", Constraints{MaxLengthChars: 2000, AllowEmojis: true, CTARequired: false}},
	}

	for _, tc := range cases {
		reader := &mockReader{data: &graph.PlatformData{Platform: tc.platform}}
		resolver := NewResolver(reader, DefaultWeights)
		result, err := resolver.Resolve(context.Background(), NewKey(tc.platform, "", "", ""))
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", tc.platform, err)
		}
		if result.Constraints != tc.want {
			t.Errorf("%s: expected constraints %+v, got %+v", tc.platform, tc.want, result.Constraints)
		}
	}
}

func TestResolver_CreativeTypeCombination(t *testing.T) {
	reader := &mockReader{
		data: &graph.PlatformData{
			Platform: "instagram",
			CreativeTypes: []graph.ScoredEdge{
				{Name: "image", Score: 0.95},
				{Name: "reel", Score: 0.90},
			},
			IntentCreativeTypes: []graph.ScoredEdge{
				{Name: "reel", Score: 0.80},
			},
			CategoryCreativeTypes: []graph.ScoredEdge{
				{Name: "image", Score: 0.95},
			},
		},
	}

	resolver := NewResolver(reader, DefaultWeights)
	result, err := resolver.Resolve(context.Background(), NewKey("instagram", "", "awareness", "fashion"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// image: 0.4*0.95 + 0.3*0.95 = 0.665; reel: 0.4*0.90 + 0.3*0.80 = 0.60
	if result.CreativeTypes[0].Name != "image" {
		t.Errorf("Expected image first, got %s", result.CreativeTypes[0].Name)
	}
	if !approxEqual(result.CreativeTypes[0].Score, 0.665) {
		t.Errorf("Expected image score 0.665, got %v", result.CreativeTypes[0].Score)
	}
	if !approxEqual(result.CreativeTypes[1].Score, 0.60) {
		t.Errorf("Expected reel score 0.60, got %v", result.CreativeTypes[1].Score)
	}
}
