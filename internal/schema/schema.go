package schema

// FieldType enumerates the value types a record field can coerce to.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeDateTime FieldType = "datetime"
)

// FieldSpec describes one canonical field of a record kind.
type FieldSpec struct {
	Type       FieldType
	Required   bool
	DateFormat string // Go reference layout, datetime fields only
}

// Schema maps canonical field names to their specs for one record kind.
type Schema map[string]FieldSpec

// Required returns the canonical names of all required fields.
func (s Schema) Required() []string {
	names := make([]string, 0, len(s))
	for name, spec := range s {
		if spec.Required {
			names = append(names, name)
		}
	}
	return names
}

// Spec returns the spec for a canonical name, defaulting to an
// optional string field for names the schema does not declare.
func (s Schema) Spec(name string) FieldSpec {
	if spec, ok := s[name]; ok {
		return spec
	}
	return FieldSpec{Type: TypeString}
}
