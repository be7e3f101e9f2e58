package generator

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// generateResponseSchema requires a textual generated_text field.
const generateResponseSchema = `{
  "type": "object",
  "required": ["generated_text"],
  "properties": {
    "generated_text": {"type": "string"}
  }
}`

const healthResponseSchema = `{
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": {"type": "string"},
    "vocab_size": {"type": "integer", "minimum": 0},
    "model_stats": {
      "type": "object",
      "properties": {
        "unigrams": {"type": "integer", "minimum": 0},
        "bigrams": {"type": "integer", "minimum": 0},
        "trigrams": {"type": "integer", "minimum": 0},
        "total_tokens": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// responseSchemas holds the compiled schemas for endpoint bodies.
type responseSchemas struct {
	generate *jsonschema.Schema
	health   *jsonschema.Schema
}

func compileSchemas() (*responseSchemas, error) {
	compiler := jsonschema.NewCompiler()
	gen, err := compiler.Compile([]byte(generateResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile generate schema: %w", err)
	}
	health, err := compiler.Compile([]byte(healthResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile health schema: %w", err)
	}
	return &responseSchemas{generate: gen, health: health}, nil
}

// validateBody parses body as JSON and validates it against schema.
func validateBody(schema *jsonschema.Schema, body []byte) error {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	result := schema.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("schema validation failed: %s", result.Error())
	}
	return nil
}
