package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func verdictSchema() *Schema {
	return &Schema{
		Name:        "relevance-verdict",
		Description: "Single-field verdict",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"verdict"},
			"properties": map[string]any{
				"verdict": map[string]any{
					"type": "string",
					"enum": []any{"RELEVANT", "OFF-TOPIC"},
				},
			},
		},
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Errorf("nil schema must skip validation, got %v", err)
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"verdict": "RELEVANT"}`)
	if err := validateResponse(verdictSchema(), raw); err != nil {
		t.Errorf("valid response rejected: %v", err)
	}
}

func TestValidateResponse_InvalidJSON(t *testing.T) {
	err := validateResponse(verdictSchema(), json.RawMessage(`{"verdict":`))
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponse_SchemaViolation(t *testing.T) {
	cases := []string{
		`{"verdict": "MAYBE"}`,
		`{"other": "RELEVANT"}`,
		`{"verdict": 1}`,
	}
	for _, raw := range cases {
		err := validateResponse(verdictSchema(), json.RawMessage(raw))
		var invResp *ErrInvalidResponse
		if !errors.As(err, &invResp) {
			t.Errorf("%s: err = %v, want ErrInvalidResponse", raw, err)
		}
	}
}

func TestValidateResponse_CachesCompiledSchema(t *testing.T) {
	schema := verdictSchema()
	raw := json.RawMessage(`{"verdict": "OFF-TOPIC"}`)
	for i := 0; i < 3; i++ {
		if err := validateResponse(schema, raw); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	if _, ok := schemaCache.Load(schema.Name); !ok {
		t.Error("compiled schema was not cached")
	}
}
