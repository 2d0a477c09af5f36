package graph

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "ad-rewriter/backend/pkg/errors"
)

// platformDataQuery fetches every edge set a strategy resolution needs in
// a single round trip. The naive version of this is 8-11 separate
// queries per platform; collapsing them into one statement is what keeps
// a multi-platform batch fast.
//
// Constraint nodes are shared by name across platforms, so the
// per-platform value lives on the HAS_CONSTRAINT relationship, not the
// node.
const platformDataQuery = `
MATCH (p:Platform {name: $platform})

OPTIONAL MATCH (p)-[hc:HAS_CONSTRAINT]->(c:Constraint)
WITH p, collect(DISTINCT {name: c.name, type: c.type, value: hc.value}) AS constraints

OPTIONAL MATCH (p)-[r1:PREFERS_STYLE]->(s1:ContentStyle)
WITH p, constraints, collect(DISTINCT {name: s1.name, score: r1.score}) AS platform_styles

OPTIONAL MATCH (p)-[r2:SUPPORTS]->(ct:CreativeType)
WITH p, constraints, platform_styles,
     collect(DISTINCT {name: ct.name, score: r2.score}) AS creative_types

OPTIONAL MATCH (p)-[r3:TARGETS]->(a:Audience)
WITH p, constraints, platform_styles, creative_types,
     collect(DISTINCT {name: a.name, weight: r3.weight}) AS audiences

OPTIONAL MATCH (aud:Audience {name: $audience})-[r4:PREFERS_STYLE]->(s2:ContentStyle)
WITH p, constraints, platform_styles, creative_types, audiences,
     CASE WHEN $audience IS NULL THEN []
          ELSE collect(DISTINCT {name: s2.name, score: r4.preference_score}) END AS audience_styles

OPTIONAL MATCH (ui:UserIntent {name: $intent})-[r5:REQUIRES_STYLE]->(s3:ContentStyle)
WITH p, constraints, platform_styles, creative_types, audiences, audience_styles,
     CASE WHEN $intent IS NULL THEN []
          ELSE collect(DISTINCT {name: s3.name, score: r5.strength}) END AS intent_styles

OPTIONAL MATCH (ui2:UserIntent {name: $intent})-[r6:WORKS_WITH]->(ict:CreativeType)
WITH p, constraints, platform_styles, creative_types, audiences, audience_styles, intent_styles,
     CASE WHEN $intent IS NULL THEN []
          ELSE collect(DISTINCT {name: ict.name, score: r6.compatibility}) END AS intent_creative_types

OPTIONAL MATCH (pc:ProductCategory {name: $category})-[r7:SUITABLE_FOR]->(p)
WITH p, constraints, platform_styles, creative_types, audiences, audience_styles, intent_styles,
     intent_creative_types,
     CASE WHEN $category IS NOT NULL AND r7 IS NOT NULL THEN r7.suitability_score ELSE null END AS category_score

OPTIONAL MATCH (pc2:ProductCategory {name: $category})-[r8:WORKS_BEST_WITH]->(cct:CreativeType)
WITH p, constraints, platform_styles, creative_types, audiences, audience_styles, intent_styles,
     intent_creative_types, category_score,
     CASE WHEN $category IS NULL THEN []
          ELSE collect(DISTINCT {name: cct.name, score: r8.effectiveness}) END AS category_creative_types

OPTIONAL MATCH (p)-[t1:TARGETS]->(sa:Audience)<-[t2:TARGETS]-(p2:Platform)
WITH constraints, platform_styles, creative_types, audiences, audience_styles, intent_styles,
     intent_creative_types, category_score, category_creative_types,
     collect(DISTINCT {
         platform: p2.name,
         audience: sa.name,
         weight_self: t1.weight,
         weight_other: t2.weight,
         degree_other: size([(p2)-[:TARGETS]->(:Audience) | 1])
     }) AS shared_audiences

RETURN constraints, platform_styles, creative_types, audiences, audience_styles,
       intent_styles, intent_creative_types, category_score, category_creative_types,
       shared_audiences
`

// FetchPlatformData retrieves the full platform context in one batched
// query. Optional context arguments are empty strings when absent.
// Unknown platform names fail with a not-found error; dangling or
// partially deleted references are skipped during decoding.
func (r *Repository) FetchPlatformData(ctx context.Context, platform, audience, intent, category string) (*PlatformData, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))

	params := map[string]any{
		"platform": platform,
		"audience": optionalName(audience),
		"intent":   optionalName(intent),
		"category": optionalName(category),
	}

	records, err := r.executeRead(ctx, platformDataQuery, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewPlatformNotFound(platform)
	}

	record := records[0]
	data := &PlatformData{
		Platform:              platform,
		Constraints:           decodeConstraintRecords(recordValue(record, "constraints")),
		Styles:                decodeScoredEdges(recordValue(record, "platform_styles")),
		CreativeTypes:         decodeScoredEdges(recordValue(record, "creative_types")),
		Audiences:             decodeAudienceEdges(recordValue(record, "audiences")),
		AudienceStyles:        decodeScoredEdges(recordValue(record, "audience_styles")),
		IntentStyles:          decodeScoredEdges(recordValue(record, "intent_styles")),
		IntentCreativeTypes:   decodeScoredEdges(recordValue(record, "intent_creative_types")),
		CategoryCreativeTypes: decodeScoredEdges(recordValue(record, "category_creative_types")),
		SharedAudiences:       decodeSharedAudiences(recordValue(record, "shared_audiences")),
	}

	if score, ok := record.Get("category_score"); ok && score != nil {
		if f, ok := score.(float64); ok {
			data.CategoryScore = &f
		}
	}

	r.logger.Debug("Fetched platform data",
		zap.String("platform", platform),
		zap.Int("styles", len(data.Styles)),
		zap.Int("creative_types", len(data.CreativeTypes)),
		zap.Int("audiences", len(data.Audiences)),
		zap.Int("shared_audience_rows", len(data.SharedAudiences)),
	)
	return data, nil
}

// optionalName lowercases a context name, mapping the empty string onto
// a null query parameter.
func optionalName(name string) any {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	return name
}
