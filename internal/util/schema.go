package util

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError represents one field-level schema violation.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors aggregates every violation found in a single validation
// pass so callers can report per-field reasons instead of the first failure.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}
	return "parameter validation failed: " + strings.Join(msgs, "; ")
}

// CreateSchema creates a JSON schema from a Go struct using reflection.
// This is a convenience function for creating parameter schemas from Go types.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	properties := make(map[string]any)
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
		}

		fieldSchema := map[string]any{
			"type": getJSONType(field.Type),
		}

		if description := field.Tag.Get("description"); description != "" {
			fieldSchema["description"] = description
		}

		properties[fieldName] = fieldSchema

		if !hasOmitEmpty(field.Tag.Get("json")) && field.Type.Kind() != reflect.Ptr {
			required = append(required, fieldName)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// ValidateParameters validates params against a JSON-Schema-like map. All
// violations are collected; on failure the returned error is a
// ValidationErrors carrying one entry per offending field.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	var errs ValidationErrors

	for _, fieldName := range requiredFields(schema) {
		if _, exists := params[fieldName]; !exists {
			errs = append(errs, ValidationError{
				Field:   fieldName,
				Message: "required field is missing",
			})
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for fieldName, value := range params {
		propSchema, exists := properties[fieldName]
		if !exists {
			continue // Allow extra fields
		}

		propMap, ok := propSchema.(map[string]any)
		if !ok {
			continue
		}

		expectedType, _ := propMap["type"].(string)
		if !isValidType(value, expectedType) {
			errs = append(errs, ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expectedType, value),
			})
			continue
		}

		if msg, ok := violatesBounds(value, propMap); ok {
			errs = append(errs, ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: msg,
			})
		}

		if msg, ok := violatesEnum(value, propMap); ok {
			errs = append(errs, ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: msg,
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// requiredFields tolerates both []string (hand-written schemas) and []any
// (schemas decoded from JSON).
func requiredFields(schema map[string]any) []string {
	var res []string
	switch req := schema["required"].(type) {
	case []string:
		res = req
	case []any:
		for _, f := range req {
			if s, ok := f.(string); ok {
				res = append(res, s)
			}
		}
	}
	return res
}

// violatesBounds checks numeric minimum/maximum constraints.
func violatesBounds(value any, propMap map[string]any) (string, bool) {
	num, ok := asFloat(value)
	if !ok {
		return "", false
	}
	if min, ok := asFloat(propMap["minimum"]); ok && num < min {
		return fmt.Sprintf("value %v is below minimum %v", value, min), true
	}
	if max, ok := asFloat(propMap["maximum"]); ok && num > max {
		return fmt.Sprintf("value %v is above maximum %v", value, max), true
	}
	return "", false
}

// violatesEnum checks membership in a declared enum list.
func violatesEnum(value any, propMap map[string]any) (string, bool) {
	enum, ok := propMap["enum"].([]any)
	if !ok || len(enum) == 0 {
		return "", false
	}
	for _, allowed := range enum {
		if value == allowed {
			return "", false
		}
	}
	return fmt.Sprintf("value %v is not one of the allowed values", value), true
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// getJSONType returns the JSON schema type for a given Go type.
func getJSONType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return getJSONType(t.Elem())
	default:
		return "string"
	}
}

// hasOmitEmpty checks if a JSON tag has the "omitempty" option.
func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

// isValidType checks if a value is valid according to the expected JSON schema type.
func isValidType(value any, expectedType string) bool {
	if value == nil {
		return true // nil is valid for any type
	}

	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64: // JSON unmarshaling often produces float64 for numbers
			return v == float64(int64(v)) // Check if it's actually an integer
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true // Unknown types are assumed valid
	}
}
