package schema

import "fmt"

// FromValue decodes a declarative schema map, the shape plugin definition
// files carry, into a Schema. The input is what yaml.v3 or encoding/json
// produce for a nested document: maps keyed by string, []any lists, and
// int/float64 numbers. Unknown keys are rejected so typos in plugin files
// surface at load time.
func FromValue(value any) (*Schema, error) {
	s, err := decodeValue(value, "")
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeValue(value any, path string) (*Schema, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema: expected a mapping at %s, got %T", displayPath(path), value)
	}
	s := &Schema{}
	for key, entry := range raw {
		switch key {
		case "type":
			str, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("schema: type must be a string at %s", displayPath(path))
			}
			s.Type = Type(str)
		case "description":
			str, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("schema: description must be a string at %s", displayPath(path))
			}
			s.Description = str
		case "properties":
			props, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("schema: properties must be a mapping at %s", displayPath(path))
			}
			s.Properties = make(map[string]*Schema, len(props))
			for name, propValue := range props {
				child, err := decodeValue(propValue, joinPath(path, name))
				if err != nil {
					return nil, err
				}
				s.Properties[name] = child
			}
		case "required":
			names, err := decodeStrings(entry)
			if err != nil {
				return nil, fmt.Errorf("schema: required at %s: %w", displayPath(path), err)
			}
			s.Required = names
		case "items":
			child, err := decodeValue(entry, path+"[]")
			if err != nil {
				return nil, err
			}
			s.Items = child
		case "enum":
			values, err := decodeStrings(entry)
			if err != nil {
				return nil, fmt.Errorf("schema: enum at %s: %w", displayPath(path), err)
			}
			s.Enum = values
		case "minimum":
			n, err := decodeNumber(entry)
			if err != nil {
				return nil, fmt.Errorf("schema: minimum at %s: %w", displayPath(path), err)
			}
			s.Minimum = &n
		case "maximum":
			n, err := decodeNumber(entry)
			if err != nil {
				return nil, fmt.Errorf("schema: maximum at %s: %w", displayPath(path), err)
			}
			s.Maximum = &n
		default:
			return nil, fmt.Errorf("schema: unknown key %q at %s", key, displayPath(path))
		}
	}
	return s, nil
}

func decodeStrings(value any) ([]string, error) {
	switch typed := value.(type) {
	case []string:
		return typed, nil
	case []any:
		out := make([]string, len(typed))
		for i, entry := range typed {
			str, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d is %T, want string", i, entry)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", value)
	}
}

func decodeNumber(value any) (float64, error) {
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
}
