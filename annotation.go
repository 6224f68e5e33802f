package declorm

import "reflect"

// AnnotationKind tags the variant of an Annotation.
type AnnotationKind string

const (
	AnnotationAutoCreateTime AnnotationKind = "auto_create_time"
	AnnotationAutoUpdateTime AnnotationKind = "auto_update_time"
	AnnotationAutoIncrement  AnnotationKind = "autoincrement"
	AnnotationChoices        AnnotationKind = "choices"
	AnnotationDefaultValue   AnnotationKind = "default_value"
	AnnotationIndex          AnnotationKind = "index"
	AnnotationMaxLength      AnnotationKind = "max_length"
	AnnotationNotNull        AnnotationKind = "not_null"
	AnnotationPrimaryKey     AnnotationKind = "primary_key"
	AnnotationUnique         AnnotationKind = "unique"
)

// Annotation is one database-domain marker attached to a derived field.
// Flag variants carry no value. The order of annotations on a field is part
// of the schema's identity: migration diffing compares the sequences as-is.
type Annotation struct {
	Kind AnnotationKind `json:"type" yaml:"type"`
	// Value payload per kind: int for max_length, a literal
	// (string/int64/float64/bool) for default_value, []string for choices
	// and IndexValue for index. Nil for flag variants.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
}

// IndexValue is the payload of an index annotation. Reusing one name across
// several fields of a model builds a composite index; Priority orders its
// columns.
type IndexValue struct {
	Name     string `json:"name" yaml:"name"`
	Priority *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// PrimaryKey marks the annotated column as the table's primary key.
func PrimaryKey() Annotation { return Annotation{Kind: AnnotationPrimaryKey} }

// AutoIncrement adds an AUTO_INCREMENT constraint.
func AutoIncrement() Annotation { return Annotation{Kind: AnnotationAutoIncrement} }

// Unique adds a UNIQUE constraint.
func Unique() Annotation { return Annotation{Kind: AnnotationUnique} }

// NotNull adds a NOT NULL constraint.
func NotNull() Annotation { return Annotation{Kind: AnnotationNotNull} }

// AutoCreateTime makes the database set the column when a row is created.
func AutoCreateTime() Annotation { return Annotation{Kind: AnnotationAutoCreateTime} }

// AutoUpdateTime makes the database set the column when a row is updated.
func AutoUpdateTime() Annotation { return Annotation{Kind: AnnotationAutoUpdateTime} }

// MaxLength bounds the length of a varchar column's content.
func MaxLength(n int) Annotation { return Annotation{Kind: AnnotationMaxLength, Value: n} }

// DefaultValue adds a DEFAULT constraint with the given literal
// (string, int64, float64 or bool).
func DefaultValue(v any) Annotation { return Annotation{Kind: AnnotationDefaultValue, Value: v} }

// ChoicesOf restricts the column to the listed values.
func ChoicesOf(values ...string) Annotation {
	return Annotation{Kind: AnnotationChoices, Value: values}
}

// Index adds the column to the index described by v.
func Index(v IndexValue) Annotation { return Annotation{Kind: AnnotationIndex, Value: v} }

// Equal compares two annotations including their payloads.
func (a Annotation) Equal(b Annotation) bool {
	return a.Kind == b.Kind && reflect.DeepEqual(a.Value, b.Value)
}

// AnnotationsEqual compares two annotation sequences element-wise. Order
// matters.
func AnnotationsEqual(a, b []Annotation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func hasAnnotation(anns []Annotation, kind AnnotationKind) bool {
	for _, a := range anns {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func choicesOf(anns []Annotation) ([]string, bool) {
	for _, a := range anns {
		if a.Kind == AnnotationChoices {
			vs, ok := a.Value.([]string)
			return vs, ok
		}
	}
	return nil, false
}
