package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Record Decoding Helpers
// ============================================================================
//
// Collections come back from the driver as []interface{} of
// map[string]interface{}. Rows produced by an OPTIONAL MATCH that found
// nothing have nil fields and are skipped rather than decoded.

func recordValue(record *neo4j.Record, key string) interface{} {
	val, ok := record.Get(key)
	if !ok {
		return nil
	}
	return val
}

func getStringFromMap(m map[string]interface{}, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getFloat64FromMap(m map[string]interface{}, key string, defaultValue float64) float64 {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if f, ok := val.(float64); ok {
		return f
	}
	if i, ok := val.(int64); ok {
		return float64(i)
	}
	return defaultValue
}

func getIntFromMap(m map[string]interface{}, key string, defaultValue int) int {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if f, ok := val.(float64); ok {
		return int(f)
	}
	return defaultValue
}

// decodeScoredEdges converts a collected list into typed edges, skipping
// entries without a name (empty OPTIONAL MATCH rows, dangling references).
func decodeScoredEdges(val interface{}) []ScoredEdge {
	edges := []ScoredEdge{}
	list, ok := val.([]interface{})
	if !ok {
		return edges
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := getStringFromMap(m, "name", "")
		if name == "" {
			continue
		}
		edges = append(edges, ScoredEdge{
			Name:  name,
			Score: getFloat64FromMap(m, "score", 0),
		})
	}
	return edges
}

func decodeAudienceEdges(val interface{}) []AudienceEdge {
	edges := []AudienceEdge{}
	list, ok := val.([]interface{})
	if !ok {
		return edges
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := getStringFromMap(m, "name", "")
		if name == "" {
			continue
		}
		edges = append(edges, AudienceEdge{
			Name:   name,
			Weight: getFloat64FromMap(m, "weight", 0),
		})
	}
	return edges
}

func decodeConstraintRecords(val interface{}) []ConstraintRecord {
	records := []ConstraintRecord{}
	list, ok := val.([]interface{})
	if !ok {
		return records
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := getStringFromMap(m, "name", "")
		if name == "" {
			continue
		}
		records = append(records, ConstraintRecord{
			Name:  name,
			Type:  getStringFromMap(m, "type", ""),
			Value: m["value"],
		})
	}
	return records
}

func decodeSharedAudiences(val interface{}) []SharedAudience {
	rows := []SharedAudience{}
	list, ok := val.([]interface{})
	if !ok {
		return rows
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		platform := getStringFromMap(m, "platform", "")
		audience := getStringFromMap(m, "audience", "")
		if platform == "" || audience == "" {
			continue
		}
		rows = append(rows, SharedAudience{
			Platform:    platform,
			Audience:    audience,
			SelfWeight:  getFloat64FromMap(m, "weight_self", 0),
			OtherWeight: getFloat64FromMap(m, "weight_other", 0),
			OtherDegree: getIntFromMap(m, "degree_other", 0),
		})
	}
	return rows
}
