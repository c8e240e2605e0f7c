package tools

import (
	"fmt"
	"math"
)

// Parameter types accepted in tool schemas. This is the subset of JSON Schema
// the Gemini function-calling API understands.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Schema declares the parameters a tool accepts. It is data, not code: the
// executor validates model-supplied arguments against it before the handler
// ever runs.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single parameter.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// ObjectSchema is a convenience constructor for the common case.
func ObjectSchema(props map[string]Property, required ...string) *Schema {
	return &Schema{
		Type:       TypeObject,
		Properties: props,
		Required:   required,
	}
}

// Check verifies the schema's own invariants: the required list must only
// name declared properties, and every property type must be known.
func (s *Schema) Check() error {
	for name, p := range s.Properties {
		switch p.Type {
		case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeObject, TypeArray:
		default:
			return fmt.Errorf("property %q has unknown type %q", name, p.Type)
		}
	}
	for _, req := range s.Required {
		if _, ok := s.Properties[req]; !ok {
			return fmt.Errorf("required parameter %q is not declared", req)
		}
	}
	return nil
}

// Validate checks model-supplied arguments against the schema and returns a
// coerced copy. Every required key must be present, unknown keys are
// rejected, and present values must be coercible to their declared type.
// Errors name the offending parameter so the model can self-correct.
func (s *Schema) Validate(args map[string]interface{}) (map[string]interface{}, error) {
	if s == nil {
		return args, nil
	}
	for _, req := range s.Required {
		if _, ok := args[req]; !ok {
			return nil, fmt.Errorf("missing required parameter %q", req)
		}
	}
	out := make(map[string]interface{}, len(args))
	for key, val := range args {
		prop, ok := s.Properties[key]
		if !ok {
			return nil, fmt.Errorf("unexpected parameter %q", key)
		}
		coerced, err := coerce(val, prop.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		out[key] = coerced
	}
	return out, nil
}

// coerce converts a loosely-typed JSON value to the declared parameter type.
// JSON numbers decode as float64, so integer parameters accept integral
// floats.
func coerce(val interface{}, typ string) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch typ {
	case TypeString:
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", val)
		}
		return s, nil
	case TypeInteger:
		switch v := val.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			return int(v), nil
		}
		return nil, fmt.Errorf("expected integer, got %T", val)
	case TypeNumber:
		switch v := val.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, fmt.Errorf("expected number, got %T", val)
	case TypeBoolean:
		b, ok := val.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", val)
		}
		return b, nil
	case TypeObject:
		m, ok := val.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", val)
		}
		return m, nil
	case TypeArray:
		a, ok := val.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", val)
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown parameter type %q", typ)
}
