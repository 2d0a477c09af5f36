package graph

import (
	"testing"
)

// The driver hands collected constraint maps back exactly as the Cypher
// builds them: value comes off the HAS_CONSTRAINT relationship and may
// be an int64, a bool, a type-tagged string, or nil when the OPTIONAL
// MATCH found nothing.

func TestDecodeConstraintRecords_RelationshipValues(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{"name": "max_length_chars", "type": "integer", "value": int64(1300)},
		map[string]interface{}{"name": "allow_emojis", "type": "boolean", "value": false},
		map[string]interface{}{"name": "cta_required", "type": "boolean", "value": "true"},
	}

	records := decodeConstraintRecords(raw)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	if records[0].Name != "max_length_chars" || records[0].Type != "integer" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if v, ok := records[0].Value.(int64); !ok || v != 1300 {
		t.Errorf("Expected int64 1300 passed through, got %T %v", records[0].Value, records[0].Value)
	}
	if v, ok := records[1].Value.(bool); !ok || v {
		t.Errorf("Expected bool false passed through, got %T %v", records[1].Value, records[1].Value)
	}
	if v, ok := records[2].Value.(string); !ok || v != "true" {
		t.Errorf("Expected string value passed through, got %T %v", records[2].Value, records[2].Value)
	}
}

func TestDecodeConstraintRecords_EmptyRows(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{"name": nil, "type": nil, "value": nil},
		map[string]interface{}{"name": "max_length_chars", "type": "integer", "value": nil},
	}

	records := decodeConstraintRecords(raw)
	if len(records) != 1 {
		t.Fatalf("Expected empty row skipped, got %d records", len(records))
	}
	if records[0].Name != "max_length_chars" {
		t.Errorf("Expected named record kept, got %+v", records[0])
	}
	if records[0].Value != nil {
		t.Errorf("Expected nil value preserved, got %v", records[0].Value)
	}
}

func TestDecodeConstraintRecords_NotAList(t *testing.T) {
	if records := decodeConstraintRecords(nil); len(records) != 0 {
		t.Errorf("Expected no records from nil, got %d", len(records))
	}
	if records := decodeConstraintRecords("bogus"); len(records) != 0 {
		t.Errorf("Expected no records from non-list, got %d", len(records))
	}
}
