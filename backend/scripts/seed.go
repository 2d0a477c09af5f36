package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ad-rewriter/backend/pkg/config"
	"ad-rewriter/backend/pkg/logger"
)

func main() {
	wipe := flag.Bool("wipe", false, "Delete all existing nodes before seeding")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting knowledge graph seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if *wipe {
		log.Info("Wiping existing graph data...")
		if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
			log.Fatal("Failed to wipe existing data", zap.Error(err))
		}
	}

	log.Info("Creating constraints and indexes...")
	if err := createSchema(ctx, session); err != nil {
		log.Warn("Failed to create some schema elements (may already exist)", zap.Error(err))
	}

	log.Info("Creating nodes...")
	if err := seedNodes(ctx, session); err != nil {
		log.Fatal("Failed to seed nodes", zap.Error(err))
	}

	log.Info("Creating relationships...")
	if err := seedRelationships(ctx, session); err != nil {
		log.Fatal("Failed to seed relationships", zap.Error(err))
	}

	log.Info("Seed completed. The knowledge graph is ready to use!")
}

// createSchema creates uniqueness constraints and lookup indexes.
// Failures are tolerated since schema elements may already exist.
func createSchema(ctx context.Context, session neo4j.SessionWithContext) error {
	statements := []string{
		"CREATE CONSTRAINT platform_name IF NOT EXISTS FOR (p:Platform) REQUIRE p.name IS UNIQUE",
		"CREATE CONSTRAINT audience_name IF NOT EXISTS FOR (a:Audience) REQUIRE a.name IS UNIQUE",
		"CREATE CONSTRAINT intent_name IF NOT EXISTS FOR (ui:UserIntent) REQUIRE ui.name IS UNIQUE",
		"CREATE CONSTRAINT creativetype_name IF NOT EXISTS FOR (ct:CreativeType) REQUIRE ct.name IS UNIQUE",
		"CREATE CONSTRAINT contentstyle_name IF NOT EXISTS FOR (cs:ContentStyle) REQUIRE cs.name IS UNIQUE",
		"CREATE CONSTRAINT productcategory_name IF NOT EXISTS FOR (pc:ProductCategory) REQUIRE pc.name IS UNIQUE",
		"CREATE CONSTRAINT constraint_name IF NOT EXISTS FOR (c:Constraint) REQUIRE c.name IS UNIQUE",

		"CREATE INDEX platform_name_index IF NOT EXISTS FOR (p:Platform) ON (p.name)",
		"CREATE INDEX audience_name_index IF NOT EXISTS FOR (a:Audience) ON (a.name)",
		"CREATE INDEX intent_name_index IF NOT EXISTS FOR (ui:UserIntent) ON (ui.name)",
		"CREATE INDEX creativetype_name_index IF NOT EXISTS FOR (ct:CreativeType) ON (ct.name)",
		"CREATE INDEX contentstyle_name_index IF NOT EXISTS FOR (cs:ContentStyle) ON (cs.name)",
		"CREATE INDEX productcategory_name_index IF NOT EXISTS FOR (pc:ProductCategory) ON (pc.name)",
		"CREATE INDEX constraint_name_index IF NOT EXISTS FOR (c:Constraint) ON (c.name)",
	}

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			continue
		}
	}

	return nil
}

func seedNodes(ctx context.Context, session neo4j.SessionWithContext) error {
	platforms := []map[string]any{
		{"name": "instagram", "description": "Visual-first social platform", "type": "social"},
		{"name": "linkedin", "description": "Professional networking platform", "type": "professional"},
		{"name": "tiktok", "description": "Short-form video platform", "type": "social"},
		{"name": "facebook", "description": "Social networking platform", "type": "social"},
		{"name": "google", "description": "Search and display ads", "type": "advertising"},
		{"name": "twitter", "description": "Real-time social platform", "type": "social"},
		{"name": "youtube", "description": "Video sharing platform", "type": "video"},
		{"name": "pinterest", "description": "Visual discovery platform", "type": "social"},
	}
	for _, p := range platforms {
		_, err := session.Run(ctx,
			"MERGE (p:Platform {name: $name}) SET p.description = $description, p.type = $type", p)
		if err != nil {
			return err
		}
	}

	audiences := []map[string]any{
		{"name": "gen-z", "age_range": "18-27", "demographics": "Digital natives, value authenticity"},
		{"name": "millennials", "age_range": "28-43", "demographics": "Tech-savvy, value experiences"},
		{"name": "gen-x", "age_range": "44-59", "demographics": "Independent, value quality"},
		{"name": "b2b professionals", "age_range": "25-55", "demographics": "Decision makers, value efficiency"},
		{"name": "seniors", "age_range": "60+", "demographics": "Traditional, value trust"},
		{"name": "parents", "age_range": "25-50", "demographics": "Family-focused, value safety"},
		{"name": "students", "age_range": "18-25", "demographics": "Budget-conscious, value deals"},
	}
	for _, a := range audiences {
		_, err := session.Run(ctx,
			"MERGE (a:Audience {name: $name}) SET a.age_range = $age_range, a.demographics = $demographics", a)
		if err != nil {
			return err
		}
	}

	intents := []map[string]any{
		{"name": "awareness", "funnel_stage": "top", "description": "Building brand awareness"},
		{"name": "consideration", "funnel_stage": "middle", "description": "Evaluating options"},
		{"name": "purchase", "funnel_stage": "bottom", "description": "Ready to buy"},
		{"name": "retention", "funnel_stage": "post", "description": "Keeping customers engaged"},
		{"name": "engagement", "funnel_stage": "any", "description": "Driving interactions"},
	}
	for _, i := range intents {
		_, err := session.Run(ctx,
			"MERGE (ui:UserIntent {name: $name}) SET ui.funnel_stage = $funnel_stage, ui.description = $description", i)
		if err != nil {
			return err
		}
	}

	creativeTypes := []map[string]any{
		{"name": "video", "format": "moving", "description": "Video content"},
		{"name": "image", "format": "static", "description": "Static image"},
		{"name": "carousel", "format": "interactive", "description": "Multiple images in sequence"},
		{"name": "story", "format": "ephemeral", "description": "24-hour story format"},
		{"name": "reel", "format": "short-video", "description": "Short-form video"},
		{"name": "text-only", "format": "text", "description": "Text-based content"},
		{"name": "poll", "format": "interactive", "description": "Interactive poll"},
		{"name": "live", "format": "real-time", "description": "Live streaming"},
	}
	for _, ct := range creativeTypes {
		_, err := session.Run(ctx,
			"MERGE (ct:CreativeType {name: $name}) SET ct.format = $format, ct.description = $description", ct)
		if err != nil {
			return err
		}
	}

	styles := []map[string]any{
		{"name": "professional", "tone": "formal", "description": "Business-focused, authoritative"},
		{"name": "casual", "tone": "relaxed", "description": "Friendly, approachable"},
		{"name": "energetic", "tone": "high-energy", "description": "Exciting, dynamic"},
		{"name": "visual", "tone": "aesthetic", "description": "Image-focused, visually appealing"},
		{"name": "educational", "tone": "informative", "description": "Informative, helpful"},
		{"name": "conversational", "tone": "chatty", "description": "Friendly, dialogue-like"},
		{"name": "humorous", "tone": "funny", "description": "Witty, entertaining"},
		{"name": "inspirational", "tone": "uplifting", "description": "Motivational, aspirational"},
		{"name": "fun", "tone": "playful", "description": "Light-hearted, enjoyable"},
		{"name": "bold", "tone": "confident", "description": "Strong, assertive"},
		{"name": "neutral", "tone": "balanced", "description": "Objective, unbiased"},
		{"name": "concise", "tone": "brief", "description": "Short, to-the-point"},
	}
	for _, s := range styles {
		_, err := session.Run(ctx,
			"MERGE (cs:ContentStyle {name: $name}) SET cs.tone = $tone, cs.description = $description", s)
		if err != nil {
			return err
		}
	}

	categories := []map[string]any{
		{"name": "tech", "industry": "technology", "description": "Technology products and services"},
		{"name": "fashion", "industry": "retail", "description": "Fashion and apparel"},
		{"name": "food", "industry": "food & beverage", "description": "Food and dining"},
		{"name": "services", "industry": "services", "description": "Professional services"},
		{"name": "b2b", "industry": "business", "description": "Business-to-business"},
		{"name": "healthcare", "industry": "health", "description": "Healthcare and wellness"},
		{"name": "education", "industry": "education", "description": "Educational services"},
		{"name": "finance", "industry": "financial", "description": "Financial services"},
	}
	for _, c := range categories {
		_, err := session.Run(ctx,
			"MERGE (pc:ProductCategory {name: $name}) SET pc.industry = $industry, pc.description = $description", c)
		if err != nil {
			return err
		}
	}

	return seedConstraintNodes(ctx, session)
}

func seedConstraintNodes(ctx context.Context, session neo4j.SessionWithContext) error {
	type attachment struct {
		platform string
		name     string
		ctype    string
		value    any
	}

	attachments := []attachment{
		{"instagram", "max_length_chars", "integer", 2200},
		{"instagram", "allow_emojis", "boolean", true},
		{"instagram", "cta_required", "boolean", false},
		{"linkedin", "max_length_chars", "integer", 1300},
		{"linkedin", "allow_emojis", "boolean", false},
		{"linkedin", "cta_required", "boolean", true},
		{"facebook", "max_length_chars", "integer", 2000},
		{"facebook", "allow_emojis", "boolean", true},
		{"facebook", "cta_required", "boolean", true},
		{"google", "max_length_chars", "integer", 150},
		{"google", "allow_emojis", "boolean", false},
		{"google", "cta_required", "boolean", true},
		{"tiktok", "max_length_chars", "integer", 2200},
		{"tiktok", "allow_emojis", "boolean", true},
		{"tiktok", "cta_required", "boolean", false},
	}

	for _, att := range attachments {
		_, err := session.Run(ctx,
			"MERGE (c:Constraint {name: $name}) SET c.type = $type",
			map[string]any{"name": att.name, "type": att.ctype})
		if err != nil {
			return err
		}

		_, err = session.Run(ctx, `
			MATCH (p:Platform {name: $platform})
			MATCH (c:Constraint {name: $name})
			MERGE (p)-[r:HAS_CONSTRAINT]->(c)
			SET r.value = $value`,
			map[string]any{"platform": att.platform, "name": att.name, "value": att.value})
		if err != nil {
			return err
		}
	}

	return nil
}

type weightedEdge struct {
	from   string
	to     string
	weight float64
}

func seedRelationships(ctx context.Context, session neo4j.SessionWithContext) error {
	targets := []weightedEdge{
		{"instagram", "gen-z", 0.85},
		{"instagram", "millennials", 0.80},
		{"instagram", "gen-x", 0.40},
		{"instagram", "parents", 0.50},
		{"instagram", "students", 0.70},
		{"linkedin", "b2b professionals", 0.95},
		{"linkedin", "millennials", 0.60},
		{"linkedin", "gen-x", 0.70},
		{"tiktok", "gen-z", 0.90},
		{"tiktok", "millennials", 0.65},
		{"tiktok", "students", 0.75},
		{"facebook", "millennials", 0.75},
		{"facebook", "gen-x", 0.80},
		{"facebook", "seniors", 0.70},
		{"facebook", "parents", 0.85},
		{"google", "millennials", 0.70},
		{"google", "gen-x", 0.75},
		{"google", "b2b professionals", 0.80},
		{"google", "parents", 0.70},
		{"twitter", "b2b professionals", 0.70},
		{"twitter", "gen-z", 0.65},
		{"twitter", "millennials", 0.75},
		{"youtube", "gen-z", 0.80},
		{"youtube", "millennials", 0.85},
		{"youtube", "gen-x", 0.75},
		{"youtube", "parents", 0.70},
		{"pinterest", "millennials", 0.80},
		{"pinterest", "gen-x", 0.70},
		{"pinterest", "parents", 0.85},
	}
	if err := runEdges(ctx, session, targets, `
		MATCH (p:Platform {name: $from})
		MATCH (a:Audience {name: $to})
		MERGE (p)-[r:TARGETS]->(a)
		SET r.weight = $weight`); err != nil {
		return err
	}

	supports := []weightedEdge{
		{"instagram", "image", 0.95},
		{"instagram", "carousel", 0.90},
		{"instagram", "story", 0.85},
		{"instagram", "reel", 0.90},
		{"instagram", "video", 0.75},
		{"instagram", "poll", 0.60},
		{"linkedin", "image", 0.80},
		{"linkedin", "video", 0.85},
		{"linkedin", "text-only", 0.90},
		{"linkedin", "carousel", 0.70},
		{"tiktok", "video", 0.98},
		{"tiktok", "reel", 0.95},
		{"tiktok", "live", 0.70},
		{"facebook", "image", 0.90},
		{"facebook", "video", 0.85},
		{"facebook", "carousel", 0.80},
		{"facebook", "text-only", 0.75},
		{"facebook", "live", 0.70},
		{"google", "text-only", 0.95},
		{"google", "image", 0.80},
		{"google", "video", 0.70},
		{"twitter", "text-only", 0.90},
		{"twitter", "image", 0.85},
		{"twitter", "video", 0.70},
		{"twitter", "poll", 0.75},
		{"youtube", "video", 0.98},
		{"youtube", "live", 0.85},
		{"pinterest", "image", 0.95},
		{"pinterest", "carousel", 0.90},
		{"pinterest", "video", 0.60},
	}
	if err := runEdges(ctx, session, supports, `
		MATCH (p:Platform {name: $from})
		MATCH (ct:CreativeType {name: $to})
		MERGE (p)-[r:SUPPORTS]->(ct)
		SET r.score = $weight`); err != nil {
		return err
	}

	platformStyles := []weightedEdge{
		{"instagram", "visual", 0.95},
		{"instagram", "fun", 0.90},
		{"instagram", "energetic", 0.85},
		{"instagram", "casual", 0.80},
		{"instagram", "inspirational", 0.75},
		{"linkedin", "professional", 0.95},
		{"linkedin", "educational", 0.85},
		{"linkedin", "neutral", 0.80},
		{"linkedin", "conversational", 0.70},
		{"tiktok", "energetic", 0.95},
		{"tiktok", "fun", 0.90},
		{"tiktok", "humorous", 0.85},
		{"tiktok", "casual", 0.80},
		{"facebook", "conversational", 0.90},
		{"facebook", "casual", 0.80},
		{"facebook", "inspirational", 0.75},
		{"google", "concise", 0.95},
		{"google", "neutral", 0.90},
		{"google", "professional", 0.75},
		{"twitter", "conversational", 0.85},
		{"twitter", "bold", 0.80},
		{"twitter", "professional", 0.75},
		{"twitter", "humorous", 0.70},
		{"youtube", "educational", 0.90},
		{"youtube", "professional", 0.85},
		{"youtube", "conversational", 0.80},
		{"pinterest", "visual", 0.95},
		{"pinterest", "inspirational", 0.90},
		{"pinterest", "casual", 0.80},
	}
	if err := runEdges(ctx, session, platformStyles, `
		MATCH (p:Platform {name: $from})
		MATCH (cs:ContentStyle {name: $to})
		MERGE (p)-[r:PREFERS_STYLE]->(cs)
		SET r.score = $weight`); err != nil {
		return err
	}

	audienceStyles := []weightedEdge{
		{"gen-z", "energetic", 0.90},
		{"gen-z", "fun", 0.85},
		{"gen-z", "humorous", 0.80},
		{"gen-z", "visual", 0.85},
		{"gen-z", "casual", 0.75},
		{"millennials", "conversational", 0.85},
		{"millennials", "casual", 0.80},
		{"millennials", "visual", 0.75},
		{"millennials", "inspirational", 0.70},
		{"gen-x", "professional", 0.80},
		{"gen-x", "conversational", 0.75},
		{"gen-x", "educational", 0.70},
		{"gen-x", "neutral", 0.75},
		{"b2b professionals", "professional", 0.95},
		{"b2b professionals", "educational", 0.85},
		{"b2b professionals", "neutral", 0.80},
		{"b2b professionals", "conversational", 0.70},
		{"seniors", "professional", 0.85},
		{"seniors", "neutral", 0.80},
		{"seniors", "conversational", 0.75},
		{"parents", "conversational", 0.85},
		{"parents", "inspirational", 0.80},
		{"parents", "professional", 0.75},
		{"parents", "casual", 0.70},
		{"students", "fun", 0.85},
		{"students", "casual", 0.80},
		{"students", "energetic", 0.75},
		{"students", "humorous", 0.70},
	}
	if err := runEdges(ctx, session, audienceStyles, `
		MATCH (a:Audience {name: $from})
		MATCH (cs:ContentStyle {name: $to})
		MERGE (a)-[r:PREFERS_STYLE]->(cs)
		SET r.preference_score = $weight`); err != nil {
		return err
	}

	intentStyles := []weightedEdge{
		{"awareness", "visual", 0.90},
		{"awareness", "energetic", 0.85},
		{"awareness", "fun", 0.80},
		{"awareness", "inspirational", 0.75},
		{"consideration", "educational", 0.90},
		{"consideration", "professional", 0.85},
		{"consideration", "conversational", 0.80},
		{"purchase", "professional", 0.85},
		{"purchase", "concise", 0.90},
		{"purchase", "bold", 0.80},
		{"purchase", "neutral", 0.75},
		{"retention", "conversational", 0.85},
		{"retention", "inspirational", 0.80},
		{"retention", "fun", 0.75},
		{"engagement", "fun", 0.90},
		{"engagement", "humorous", 0.85},
		{"engagement", "energetic", 0.80},
		{"engagement", "conversational", 0.75},
	}
	if err := runEdges(ctx, session, intentStyles, `
		MATCH (ui:UserIntent {name: $from})
		MATCH (cs:ContentStyle {name: $to})
		MERGE (ui)-[r:REQUIRES_STYLE]->(cs)
		SET r.strength = $weight`); err != nil {
		return err
	}

	intentCreativeTypes := []weightedEdge{
		{"awareness", "video", 0.90},
		{"awareness", "image", 0.85},
		{"awareness", "reel", 0.80},
		{"consideration", "carousel", 0.85},
		{"consideration", "video", 0.80},
		{"consideration", "text-only", 0.75},
		{"purchase", "text-only", 0.90},
		{"purchase", "image", 0.80},
		{"purchase", "carousel", 0.75},
		{"retention", "video", 0.85},
		{"retention", "story", 0.80},
		{"retention", "live", 0.75},
		{"engagement", "poll", 0.90},
		{"engagement", "story", 0.85},
		{"engagement", "video", 0.80},
	}
	if err := runEdges(ctx, session, intentCreativeTypes, `
		MATCH (ui:UserIntent {name: $from})
		MATCH (ct:CreativeType {name: $to})
		MERGE (ui)-[r:WORKS_WITH]->(ct)
		SET r.compatibility = $weight`); err != nil {
		return err
	}

	categoryPlatforms := []weightedEdge{
		{"tech", "linkedin", 0.90},
		{"tech", "twitter", 0.85},
		{"tech", "youtube", 0.80},
		{"tech", "google", 0.95},
		{"fashion", "instagram", 0.95},
		{"fashion", "pinterest", 0.90},
		{"fashion", "tiktok", 0.85},
		{"fashion", "facebook", 0.75},
		{"food", "instagram", 0.90},
		{"food", "facebook", 0.85},
		{"food", "tiktok", 0.80},
		{"food", "pinterest", 0.75},
		{"services", "linkedin", 0.85},
		{"services", "google", 0.90},
		{"services", "facebook", 0.80},
		{"b2b", "linkedin", 0.95},
		{"b2b", "twitter", 0.85},
		{"b2b", "google", 0.90},
		{"healthcare", "facebook", 0.85},
		{"healthcare", "google", 0.90},
		{"healthcare", "linkedin", 0.75},
		{"education", "youtube", 0.95},
		{"education", "linkedin", 0.85},
		{"education", "facebook", 0.80},
		{"finance", "linkedin", 0.90},
		{"finance", "google", 0.95},
		{"finance", "facebook", 0.75},
	}
	if err := runEdges(ctx, session, categoryPlatforms, `
		MATCH (pc:ProductCategory {name: $from})
		MATCH (p:Platform {name: $to})
		MERGE (pc)-[r:SUITABLE_FOR]->(p)
		SET r.suitability_score = $weight`); err != nil {
		return err
	}

	categoryCreativeTypes := []weightedEdge{
		{"tech", "video", 0.90},
		{"tech", "carousel", 0.85},
		{"tech", "text-only", 0.80},
		{"fashion", "image", 0.95},
		{"fashion", "carousel", 0.90},
		{"fashion", "video", 0.85},
		{"fashion", "reel", 0.80},
		{"food", "image", 0.95},
		{"food", "video", 0.90},
		{"food", "reel", 0.85},
		{"food", "story", 0.80},
		{"services", "text-only", 0.85},
		{"services", "video", 0.80},
		{"services", "image", 0.75},
		{"b2b", "text-only", 0.90},
		{"b2b", "video", 0.85},
		{"b2b", "carousel", 0.75},
		{"healthcare", "image", 0.85},
		{"healthcare", "video", 0.80},
		{"healthcare", "text-only", 0.75},
		{"education", "video", 0.95},
		{"education", "image", 0.80},
		{"education", "carousel", 0.75},
		{"finance", "text-only", 0.90},
		{"finance", "image", 0.80},
		{"finance", "video", 0.75},
	}
	if err := runEdges(ctx, session, categoryCreativeTypes, `
		MATCH (pc:ProductCategory {name: $from})
		MATCH (ct:CreativeType {name: $to})
		MERGE (pc)-[r:WORKS_BEST_WITH]->(ct)
		SET r.effectiveness = $weight`); err != nil {
		return err
	}

	// Precomputed overlap edges for browsing the graph. Similarity
	// scores served by the API are derived from TARGETS co-targeting
	// at query time.
	sharing := []weightedEdge{
		{"instagram", "tiktok", 0.75},
		{"linkedin", "twitter", 0.65},
		{"facebook", "instagram", 0.60},
		{"facebook", "youtube", 0.55},
		{"youtube", "instagram", 0.65},
		{"youtube", "tiktok", 0.60},
		{"pinterest", "instagram", 0.70},
	}
	for _, edge := range sharing {
		params := map[string]any{"from": edge.from, "to": edge.to, "weight": edge.weight}
		_, err := session.Run(ctx, `
			MATCH (p1:Platform {name: $from})
			MATCH (p2:Platform {name: $to})
			MERGE (p1)-[r:SHARES_AUDIENCE_WITH]->(p2)
			SET r.overlap_pct = $weight
			MERGE (p2)-[r2:SHARES_AUDIENCE_WITH]->(p1)
			SET r2.overlap_pct = $weight`, params)
		if err != nil {
			return err
		}
	}

	return nil
}

func runEdges(ctx context.Context, session neo4j.SessionWithContext, edges []weightedEdge, cypher string) error {
	for _, edge := range edges {
		params := map[string]any{"from": edge.from, "to": edge.to, "weight": edge.weight}
		if _, err := session.Run(ctx, cypher, params); err != nil {
			return err
		}
	}
	return nil
}
