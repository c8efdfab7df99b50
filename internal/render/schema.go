package render

import (
	"fmt"
	"slices"
)

// FieldKind is the value type of one schema field.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldNumber
	FieldBool
	FieldList
	FieldRecords
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldBool:
		return "boolean"
	case FieldList:
		return "list"
	case FieldRecords:
		return "records"
	}
	return "unknown"
}

// Field declares one editable attribute.
type Field struct {
	Name    string
	Kind    FieldKind
	Default interface{}
	Enum    []string
}

// Schema is the declared attribute shape of a block kind.
type Schema struct {
	Fields []Field
}

// newSchema appends the anchor and className fields every block accepts.
func newSchema(fields ...Field) Schema {
	all := append(slices.Clone(fields),
		Field{Name: "anchor", Kind: FieldString},
		Field{Name: "className", Kind: FieldString},
	)
	return Schema{Fields: all}
}

func str(name, def string, enum ...string) Field {
	return Field{Name: name, Kind: FieldString, Default: def, Enum: enum}
}

func num(name string, def float64) Field {
	return Field{Name: name, Kind: FieldNumber, Default: def}
}

func boolean(name string, def bool) Field {
	return Field{Name: name, Kind: FieldBool, Default: def}
}

func list(name string) Field {
	return Field{Name: name, Kind: FieldList}
}

func records(name string) Field {
	return Field{Name: name, Kind: FieldRecords}
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Resolve returns a copy of attrs with defaults filled in. Values whose type
// does not match the schema are replaced by the default; unknown keys are
// kept as-is.
func (s Schema) Resolve(attrs Attributes) Attributes {
	resolved := make(Attributes, len(attrs)+len(s.Fields))
	for k, v := range attrs {
		resolved[k] = v
	}
	for _, f := range s.Fields {
		v, ok := attrs[f.Name]
		if ok && f.matches(v) == nil {
			continue
		}
		if f.Default != nil {
			resolved[f.Name] = f.Default
		} else {
			delete(resolved, f.Name)
		}
	}
	return resolved
}

// Check reports the first attribute whose value does not fit its field.
func (s Schema) Check(attrs Attributes) error {
	for _, f := range s.Fields {
		v, ok := attrs[f.Name]
		if !ok || v == nil {
			continue
		}
		if err := f.matches(v); err != nil {
			return err
		}
	}
	return nil
}

func (f Field) matches(v interface{}) error {
	switch f.Kind {
	case FieldString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("attribute %q must be a %s", f.Name, f.Kind)
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
			return fmt.Errorf("attribute %q must be one of %v", f.Name, f.Enum)
		}
	case FieldNumber:
		switch v.(type) {
		case float64, int:
		default:
			return fmt.Errorf("attribute %q must be a %s", f.Name, f.Kind)
		}
	case FieldBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("attribute %q must be a %s", f.Name, f.Kind)
		}
	case FieldList:
		switch items := v.(type) {
		case []string:
		case []interface{}:
			for _, item := range items {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("attribute %q must be a list of strings", f.Name)
				}
			}
		default:
			return fmt.Errorf("attribute %q must be a %s", f.Name, f.Kind)
		}
	case FieldRecords:
		switch items := v.(type) {
		case []Attributes, []map[string]interface{}:
		case []interface{}:
			for _, item := range items {
				switch item.(type) {
				case map[string]interface{}, Attributes:
				default:
					return fmt.Errorf("attribute %q must be a list of records", f.Name)
				}
			}
		default:
			return fmt.Errorf("attribute %q must be a %s", f.Name, f.Kind)
		}
	}
	return nil
}
