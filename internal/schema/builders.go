package schema

// Constructor helpers so catalog files can declare output contracts inline
// without struct-literal noise.

// Prop pairs a property name with its schema.
type Prop struct {
	Name     string
	Schema   *Schema
	Required bool
}

// Object builds an object schema from the given properties.
func Object(desc string, props ...Prop) *Schema {
	s := &Schema{
		Type:        TypeObject,
		Description: desc,
		Properties:  make(map[string]*Schema, len(props)),
	}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// Field declares a required object property.
func Field(name string, s *Schema) Prop {
	return Prop{Name: name, Schema: s, Required: true}
}

// Optional declares an optional object property.
func Optional(name string, s *Schema) Prop {
	return Prop{Name: name, Schema: s}
}

// ArrayOf builds an array schema.
func ArrayOf(item *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: item}
}

// String builds a string schema.
func String(desc string) *Schema {
	return &Schema{Type: TypeString, Description: desc}
}

// Enum builds a string schema restricted to the given values.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

// Number builds a number schema.
func Number(desc string) *Schema {
	return &Schema{Type: TypeNumber, Description: desc}
}

// NumberBetween builds a number schema with inclusive bounds.
func NumberBetween(desc string, min, max float64) *Schema {
	return &Schema{Type: TypeNumber, Description: desc, Minimum: &min, Maximum: &max}
}

// Integer builds an integer schema.
func Integer(desc string) *Schema {
	return &Schema{Type: TypeInteger, Description: desc}
}

// Boolean builds a boolean schema.
func Boolean(desc string) *Schema {
	return &Schema{Type: TypeBoolean, Description: desc}
}
