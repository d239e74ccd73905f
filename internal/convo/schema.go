package convo

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// recordSchemaDef is the expected shape of a persisted conversation file.
// Validation catches truncated or hand-edited files before they reach the
// analysis pipeline.
var recordSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"session_id", "student_name", "student_id", "messages"},
	"properties": map[string]any{
		"session_id":   map[string]any{"type": "string"},
		"student_name": map[string]any{"type": "string"},
		"student_id":   map[string]any{"type": "string"},
		"messages": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"role", "content", "timestamp"},
				"properties": map[string]any{
					"role":      map[string]any{"type": "string", "enum": []any{"user", "assistant"}},
					"content":   map[string]any{"type": "string"},
					"timestamp": map[string]any{"type": "string"},
				},
			},
		},
		"feedback": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"content", "timestamp"},
				"properties": map[string]any{
					"content":   map[string]any{"type": "string"},
					"timestamp": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		defBytes, err := json.Marshal(recordSchemaDef)
		if err != nil {
			recordSchemaErr = fmt.Errorf("marshal record schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			recordSchemaErr = fmt.Errorf("parse record schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://conversation-record.json"
		if err := c.AddResource(url, def); err != nil {
			recordSchemaErr = fmt.Errorf("add record schema resource: %w", err)
			return
		}
		recordSchema, recordSchemaErr = c.Compile(url)
	})
	return recordSchema, recordSchemaErr
}

// validateRecordJSON checks raw file contents against the record schema.
func validateRecordJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := compiledRecordSchema()
	if err != nil {
		return err
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
