package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ValidateInput validates tool input against a JSON schema.
// Returns nil if valid, error with details if invalid.
func ValidateInput(input map[string]any, schema map[string]any) error {
	if schema == nil {
		return nil
	}

	// Check required fields. Schemas built in Go carry []string, schemas
	// decoded from JSON carry []any.
	switch required := schema["required"].(type) {
	case []string:
		for _, name := range required {
			if _, exists := input[name]; !exists {
				return fmt.Errorf("missing required parameter: %s", name)
			}
		}
	case []any:
		for _, r := range required {
			name, ok := r.(string)
			if !ok {
				continue
			}
			if _, exists := input[name]; !exists {
				return fmt.Errorf("missing required parameter: %s", name)
			}
		}
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	for name, value := range input {
		propSchema, ok := properties[name].(map[string]any)
		if !ok {
			// Unknown property - could be additional properties
			continue
		}

		if err := validateValue(name, value, propSchema); err != nil {
			return err
		}
	}

	return nil
}

// validateValue validates a single value against its schema.
func validateValue(name string, value any, schema map[string]any) error {
	if value == nil {
		return nil // null is generally acceptable
	}

	expectedType, ok := schema["type"].(string)
	if !ok {
		return nil // No type constraint
	}

	actualType := getJSONType(value)

	switch expectedType {
	case "string":
		if actualType != "string" {
			return fmt.Errorf("parameter %s: expected string, got %s", name, actualType)
		}
	case "number", "integer":
		if actualType != "number" {
			return fmt.Errorf("parameter %s: expected %s, got %s", name, expectedType, actualType)
		}
		if expectedType == "integer" {
			if n, ok := value.(float64); ok && n != float64(int(n)) {
				return fmt.Errorf("parameter %s: expected integer, got float", name)
			}
		}
	case "boolean":
		if actualType != "boolean" {
			return fmt.Errorf("parameter %s: expected boolean, got %s", name, actualType)
		}
	case "array":
		if actualType != "array" {
			return fmt.Errorf("parameter %s: expected array, got %s", name, actualType)
		}
	case "object":
		if actualType != "object" {
			return fmt.Errorf("parameter %s: expected object, got %s", name, actualType)
		}
	}

	// Check enum constraint
	if enum, ok := schema["enum"].([]any); ok {
		found := false
		for _, e := range enum {
			if reflect.DeepEqual(e, value) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("parameter %s: value not in allowed enum", name)
		}
	}

	return nil
}

// getJSONType returns the JSON type name for a Go value.
func getJSONType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64, float32, int, int64, int32:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}

// SchemaToJSON converts a schema map to JSON string.
func SchemaToJSON(schema map[string]any) string {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
