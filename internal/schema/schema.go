// Package schema models the JSON-schema subset that task output contracts
// use. Catalog code declares schemas with the constructor helpers; the host
// validates decoded agent output against them before handing it back to a
// process.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Type enumerates the value shapes the catalog uses.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

var knownTypes = map[Type]struct{}{
	TypeObject:  {},
	TypeArray:   {},
	TypeString:  {},
	TypeNumber:  {},
	TypeInteger: {},
	TypeBoolean: {},
}

// Schema describes the expected shape of a JSON value.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
	Minimum     *float64
	Maximum     *float64
}

// Validate ensures the schema itself is well-formed.
func (s *Schema) Validate() error {
	return s.validate("")
}

func (s *Schema) validate(path string) error {
	if s == nil {
		return fmt.Errorf("schema: nil schema at %s", displayPath(path))
	}
	if _, ok := knownTypes[s.Type]; !ok {
		return fmt.Errorf("schema: unknown type %q at %s", s.Type, displayPath(path))
	}
	switch s.Type {
	case TypeObject:
		for name, prop := range s.Properties {
			if name == "" {
				return fmt.Errorf("schema: empty property name at %s", displayPath(path))
			}
			if err := prop.validate(joinPath(path, name)); err != nil {
				return err
			}
		}
		for _, req := range s.Required {
			if _, ok := s.Properties[req]; !ok {
				return fmt.Errorf("schema: required property %q not declared at %s", req, displayPath(path))
			}
		}
	case TypeArray:
		if s.Items == nil {
			return fmt.Errorf("schema: array missing items at %s", displayPath(path))
		}
		if err := s.Items.validate(path + "[]"); err != nil {
			return err
		}
	case TypeString:
		seen := map[string]struct{}{}
		for _, v := range s.Enum {
			if _, dup := seen[v]; dup {
				return fmt.Errorf("schema: duplicate enum value %q at %s", v, displayPath(path))
			}
			seen[v] = struct{}{}
		}
	case TypeNumber, TypeInteger:
		if s.Minimum != nil && s.Maximum != nil && *s.Minimum > *s.Maximum {
			return fmt.Errorf("schema: minimum exceeds maximum at %s", displayPath(path))
		}
	}
	if len(s.Enum) > 0 && s.Type != TypeString {
		return fmt.Errorf("schema: enum only supported for strings at %s", displayPath(path))
	}
	return nil
}

// Check validates a decoded JSON value against the schema.
func (s *Schema) Check(value any) error {
	return s.check(value, "")
}

func (s *Schema) check(value any, path string) error {
	if s == nil {
		return fmt.Errorf("schema: nil schema at %s", displayPath(path))
	}
	switch s.Type {
	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return typeMismatch(path, s.Type, value)
		}
		for _, req := range s.Required {
			if _, present := obj[req]; !present {
				return fmt.Errorf("schema: missing required property %q at %s", req, displayPath(path))
			}
		}
		for name, prop := range s.Properties {
			child, present := obj[name]
			if !present {
				continue
			}
			if err := prop.check(child, joinPath(path, name)); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := value.([]any)
		if !ok {
			return typeMismatch(path, s.Type, value)
		}
		for i, item := range arr {
			if err := s.Items.check(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return typeMismatch(path, s.Type, value)
		}
		if len(s.Enum) > 0 {
			for _, allowed := range s.Enum {
				if str == allowed {
					return nil
				}
			}
			return fmt.Errorf("schema: value %q not in enum at %s", str, displayPath(path))
		}
	case TypeNumber, TypeInteger:
		num, ok := asNumber(value)
		if !ok {
			return typeMismatch(path, s.Type, value)
		}
		if s.Type == TypeInteger && num != float64(int64(num)) {
			return fmt.Errorf("schema: expected integer, got %v at %s", value, displayPath(path))
		}
		if s.Minimum != nil && num < *s.Minimum {
			return fmt.Errorf("schema: %v below minimum %v at %s", num, *s.Minimum, displayPath(path))
		}
		if s.Maximum != nil && num > *s.Maximum {
			return fmt.Errorf("schema: %v above maximum %v at %s", num, *s.Maximum, displayPath(path))
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeMismatch(path, s.Type, value)
		}
	default:
		return fmt.Errorf("schema: unknown type %q at %s", s.Type, displayPath(path))
	}
	return nil
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func typeMismatch(path string, want Type, got any) error {
	return fmt.Errorf("schema: expected %s, got %T at %s", want, got, displayPath(path))
}

// MarshalJSON renders the schema as standard JSON Schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		req := append([]string{}, s.Required...)
		sort.Strings(req)
		out["required"] = req
	}
	if s.Items != nil {
		out["items"] = s.Items
	}
	if len(s.Enum) > 0 {
		out["enum"] = append([]string{}, s.Enum...)
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	return json.Marshal(out)
}

func joinPath(path, child string) string {
	if path == "" {
		return child
	}
	return path + "." + child
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
