package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ad-rewriter/backend/internal/adapter"
	"ad-rewriter/backend/internal/strategy"
	apperrors "ad-rewriter/backend/pkg/errors"
)

// Mock implementations for testing

type mockStrategies struct {
	results    map[string]*strategy.StrategyResult
	errs       map[string]error
	delays     map[string]time.Duration
	resolveCnt atomic.Int32
}

func (m *mockStrategies) Resolve(ctx context.Context, key strategy.Key) (*strategy.StrategyResult, error) {
	m.resolveCnt.Add(1)
	if d, ok := m.delays[key.Platform]; ok {
		time.Sleep(d)
	}
	if err, ok := m.errs[key.Platform]; ok {
		return nil, err
	}
	if result, ok := m.results[key.Platform]; ok {
		return result, nil
	}
	return nil, apperrors.NewPlatformNotFound(key.Platform)
}

type mockRewriter struct {
	err         error
	errPlatform string
	rewriteFunc func(ctx context.Context, in adapter.RewriteInput) (*adapter.RewriteOutput, error)
}

func (m *mockRewriter) Rewrite(ctx context.Context, in adapter.RewriteInput) (*adapter.RewriteOutput, error) {
	if m.rewriteFunc != nil {
		return m.rewriteFunc(ctx, in)
	}
	if m.err != nil && (m.errPlatform == "" || m.errPlatform == in.Platform) {
		return nil, m.err
	}
	return &adapter.RewriteOutput{
		Platform:      in.Platform,
		RewrittenText: "rewritten for " + in.Platform,
		Explanation:   "adjusted tone",
	}, nil
}

func testStrategy(platform string) *strategy.StrategyResult {
	return &strategy.StrategyResult{
		Platform: platform,
		Styles: []strategy.StyleScore{
			{Name: "visual", Combined: 0.9},
			{Name: "fun", Combined: 0.8},
		},
		CreativeTypes: []strategy.RankedItem{
			{Name: "image", Score: 0.9},
			{Name: "reel", Score: 0.8},
		},
		TargetAudiences: []strategy.RankedItem{{Name: "gen-z", Score: 0.85}},
		Constraints:     strategy.Constraints{MaxLengthChars: 2000, AllowEmojis: true},
		SimilarPlatforms: []strategy.RankedItem{
			{Name: "tiktok", Score: 0.75},
			{Name: "pinterest", Score: 0.70},
		},
	}
}

func TestOrchestrator_RunBatch_EmptyPlatforms(t *testing.T) {
	orch := NewOrchestrator(&mockStrategies{}, &mockRewriter{})

	_, err := orch.RunBatch(context.Background(), &Request{Text: "Buy our shoes"})
	if !errors.Is(err, ErrNoPlatforms) {
		t.Errorf("Expected ErrNoPlatforms, got %v", err)
	}
}

func TestOrchestrator_RunBatch_OrderPreserved(t *testing.T) {
	platforms := []string{"instagram", "linkedin", "twitter", "facebook"}
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{},
		delays: map[string]time.Duration{
			// First platform finishes last.
			"instagram": 80 * time.Millisecond,
			"linkedin":  40 * time.Millisecond,
		},
	}
	for _, p := range platforms {
		strategies.results[p] = testStrategy(p)
	}

	orch := NewOrchestrator(strategies, &mockRewriter{})
	resp, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: platforms,
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if len(resp.Results) != len(platforms) {
		t.Fatalf("Expected %d results, got %d", len(platforms), len(resp.Results))
	}
	for i, platform := range platforms {
		if resp.Results[i].Platform != platform {
			t.Errorf("Position %d: expected %s, got %s", i, platform, resp.Results[i].Platform)
		}
	}
}

func TestOrchestrator_RunBatch_FailureIsolation(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{
			"instagram": testStrategy("instagram"),
			"twitter":   testStrategy("twitter"),
		},
		errs: map[string]error{
			"linkedin": apperrors.NewQueryFailed("platform data", errors.New("connection reset")),
		},
	}

	orch := NewOrchestrator(strategies, &mockRewriter{})
	resp, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: []string{"instagram", "linkedin", "twitter"},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if !resp.Results[0].Succeeded() {
		t.Errorf("Expected instagram to succeed: %s", resp.Results[0].Error)
	}
	if resp.Results[1].Succeeded() {
		t.Error("Expected linkedin to fail")
	}
	if resp.Results[1].ErrorType != string(apperrors.ErrorTypeQuery) {
		t.Errorf("Expected query error type, got %s", resp.Results[1].ErrorType)
	}
	if !resp.Results[2].Succeeded() {
		t.Errorf("Expected twitter to succeed: %s", resp.Results[2].Error)
	}

	if resp.ValidationSummary.OK != 2 || resp.ValidationSummary.Failed != 1 {
		t.Errorf("Expected summary ok=2 failed=1, got %+v", resp.ValidationSummary)
	}
}

func TestOrchestrator_RunBatch_UnknownPlatform(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{"instagram": testStrategy("instagram")},
	}

	orch := NewOrchestrator(strategies, &mockRewriter{})
	resp, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: []string{"instagram", "myspace"},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if resp.Results[1].Succeeded() {
		t.Error("Expected unknown platform to fail")
	}
	if resp.Results[1].ErrorType != string(apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not_found error type, got %s", resp.Results[1].ErrorType)
	}
}

func TestOrchestrator_RunBatch_RewriterFailureIsolated(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{
			"instagram": testStrategy("instagram"),
			"twitter":   testStrategy("twitter"),
		},
	}
	rewriter := &mockRewriter{
		err:         apperrors.NewRewriteFailed("twitter", 3, errors.New("model unavailable")),
		errPlatform: "twitter",
	}

	orch := NewOrchestrator(strategies, rewriter)
	resp, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: []string{"instagram", "twitter"},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if !resp.Results[0].Succeeded() {
		t.Errorf("Expected instagram to succeed: %s", resp.Results[0].Error)
	}
	if resp.Results[1].Succeeded() {
		t.Error("Expected twitter rewrite to fail")
	}
	if resp.Results[1].ErrorType != string(apperrors.ErrorTypeRewrite) {
		t.Errorf("Expected rewrite error type, got %s", resp.Results[1].ErrorType)
	}
}

func TestOrchestrator_RunBatch_InsightsWithoutRequery(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{"instagram": testStrategy("instagram")},
	}

	orch := NewOrchestrator(strategies, &mockRewriter{})
	resp, err := orch.RunBatch(context.Background(), &Request{
		Text:                        "Buy our shoes",
		TargetPlatforms:             []string{"instagram"},
		IncludeStrategyInsights:     true,
		SuggestAlternativePlatforms: true,
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if got := strategies.resolveCnt.Load(); got != 1 {
		t.Errorf("Expected 1 resolve call, got %d", got)
	}

	insight, ok := resp.StrategyInsights["instagram"]
	if !ok {
		t.Fatal("Expected instagram insight")
	}
	if len(insight.RecommendedStyles) != 2 || insight.RecommendedStyles[0] != "visual" {
		t.Errorf("Unexpected recommended styles: %v", insight.RecommendedStyles)
	}

	alternatives, ok := resp.AlternativePlatforms["instagram"]
	if !ok {
		t.Fatal("Expected instagram alternatives")
	}
	if len(alternatives) != 2 || alternatives[0].Name != "tiktok" {
		t.Errorf("Unexpected alternatives: %v", alternatives)
	}
}

func TestOrchestrator_RunBatch_InsightsDisabled(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{"instagram": testStrategy("instagram")},
	}

	orch := NewOrchestrator(strategies, &mockRewriter{})
	resp, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: []string{"instagram"},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if resp.StrategyInsights != nil {
		t.Error("Expected no insights when disabled")
	}
	if resp.AlternativePlatforms != nil {
		t.Error("Expected no alternatives when disabled")
	}
}

func TestOrchestrator_RunBatch_LengthPrefClampsConstraint(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{"instagram": testStrategy("instagram")},
	}

	var gotMax int
	rewriter := &mockRewriter{
		rewriteFunc: func(ctx context.Context, in adapter.RewriteInput) (*adapter.RewriteOutput, error) {
			gotMax = in.MaxLengthChars
			return &adapter.RewriteOutput{Platform: in.Platform, RewrittenText: "short"}, nil
		},
	}

	orch := NewOrchestrator(strategies, rewriter)
	_, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: []string{"instagram"},
		LengthPrefs:     map[string]int{"instagram": 100},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if gotMax != 100 {
		t.Errorf("Expected length preference 100 forwarded, got %d", gotMax)
	}
}

func TestOrchestrator_RunBatch_ToneFallsBackToTopStyle(t *testing.T) {
	strategies := &mockStrategies{
		results: map[string]*strategy.StrategyResult{
			"instagram": testStrategy("instagram"),
			"linkedin":  testStrategy("linkedin"),
		},
	}

	tones := make(map[string]string)
	rewriter := &mockRewriter{
		rewriteFunc: func(ctx context.Context, in adapter.RewriteInput) (*adapter.RewriteOutput, error) {
			tones[in.Platform] = in.Tone
			return &adapter.RewriteOutput{Platform: in.Platform, RewrittenText: "ok"}, nil
		},
	}

	orch := NewOrchestrator(strategies, rewriter)
	_, err := orch.RunBatch(context.Background(), &Request{
		Text:            "Buy our shoes",
		TargetPlatforms: []string{"instagram", "linkedin"},
		ToneMap:         map[string]string{"linkedin": "formal"},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if tones["linkedin"] != "formal" {
		t.Errorf("Expected explicit tone for linkedin, got %q", tones["linkedin"])
	}
	if tones["instagram"] != "visual" {
		t.Errorf("Expected top style fallback for instagram, got %q", tones["instagram"])
	}
}
