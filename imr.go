package declorm

import (
	"io"
	"reflect"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source is the location a model declaration originates from. The migration
// tool uses it for diagnostics only; it never affects derivation.
type Source struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// Field is one resolved column of a model.
type Field struct {
	// SourcePath is the dotted path of the originating Go field, for example
	// "common.superCommon.superCommonField". The implicit identifier column
	// uses "id".
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Column is the final column name, snake-case by default and overridable
	// with `orm:"column=..."`. Unique within one model.
	Column string `json:"name" yaml:"name"`

	// Type is the resolved column type tag. Never DBInvalid on a derived
	// field.
	Type DBType `json:"type" yaml:"type"`

	// Annotations in resolution order. The sequence is observable schema
	// identity.
	Annotations []Annotation `json:"annotations" yaml:"annotations"`

	DefinedAt *Source `json:"source_defined_at,omitempty" yaml:"source_defined_at,omitempty"`

	// Reflection access into the model struct. index is nil for the implicit
	// identifier, which has no backing Go field.
	index         []int
	modifiedIndex []int
	goType        reflect.Type
	textualChoice bool
}

// Has reports whether the field carries an annotation of the given kind.
func (f *Field) Has(kind AnnotationKind) bool { return hasAnnotation(f.Annotations, kind) }

// ModelFormat is the derived schema of one model type. It is immutable once
// Build returns.
type ModelFormat struct {
	// Table is the table name, ToSnakeCase of the Go type name unless
	// overridden with WithTableName.
	Table string `json:"name" yaml:"name"`

	// Fields in column order: the implicit identifier (when present)
	// followed by the flattened declared fields in declaration order.
	Fields []Field `json:"fields" yaml:"fields"`

	// EmbeddedStructs lists the dotted paths of composite embedding roots in
	// pre-order encounter order.
	EmbeddedStructs []string `json:"embedded_structs,omitempty" yaml:"embedded_structs,omitempty"`

	DefinedAt *Source `json:"source_defined_at,omitempty" yaml:"source_defined_at,omitempty"`

	goType reflect.Type
	hooks  hookSet
}

// FieldByColumn returns the field with the given column name.
func (m *ModelFormat) FieldByColumn(name string) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Column == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// Columns returns the column names in field order.
func (m *ModelFormat) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i := range m.Fields {
		cols[i] = m.Fields[i].Column
	}
	return cols
}

// SerializedModels is the full derived schema set, one ModelFormat per
// registered model in registration order. It is the sole output of schema
// derivation and is safe for concurrent reads.
type SerializedModels struct {
	Models []ModelFormat `json:"models" yaml:"models"`

	byType  map[reflect.Type]*ModelFormat
	byTable map[string]*ModelFormat
}

// Len returns the number of derived models.
func (s *SerializedModels) Len() int { return len(s.Models) }

// Get returns the model derived for the given table name.
func (s *SerializedModels) Get(table string) (*ModelFormat, bool) {
	m, ok := s.byTable[table]
	return m, ok
}

// formatFor resolves the ModelFormat for an instance's concrete type.
// instance must be a pointer to a registered model struct.
func (s *SerializedModels) formatFor(instance any) (*ModelFormat, reflect.Value, Issues) {
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, reflect.Value{}, Issues{issueAt("", CodeUnknownModel, "instance must be a non-nil pointer to a registered model struct")}
	}
	m, ok := s.byType[rv.Elem().Type()]
	if !ok {
		return nil, reflect.Value{}, Issues{issueAt(rv.Elem().Type().Name(), CodeUnknownModel, "type is not a registered model")}
	}
	return m, rv.Elem(), nil
}

// WriteModels writes the schema set as indented JSON. This is the format the
// external migration tool consumes.
func (s *SerializedModels) WriteModels(w io.Writer) error {
	enc := j.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteModelsYAML writes the schema set as YAML, for tooling that diffs
// human-readable schema dumps.
func (s *SerializedModels) WriteModelsYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(s)
}
