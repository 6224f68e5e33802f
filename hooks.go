package declorm

import (
	"fmt"
	"reflect"
)

// hookSet holds a model's construction and validation hooks, bound to field
// positions at build time and ordered by field declaration.
type hookSet struct {
	constructs []boundHook
	validators []boundHook
}

type boundHook struct {
	field     int
	construct func() any
	validate  func(any) bool
}

// Construct populates an instance's default values by running every
// registered construction hook, in field order. Callers assign their own
// values afterwards, overriding any default. instance must be a pointer to a
// registered model.
func (s *SerializedModels) Construct(instance any) error {
	m, rv, iss := s.formatFor(instance)
	if iss != nil {
		return iss
	}
	for _, h := range m.hooks.constructs {
		f := &m.Fields[h.field]
		if it := assignValue(rv.FieldByIndex(f.index), h.construct(), m.Table+"."+f.SourcePath); it != nil {
			iss = AppendIssues(iss, *it)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// New allocates a model instance and applies its construction hooks.
func New[T any](s *SerializedModels) (*T, error) {
	v := new(T)
	if err := s.Construct(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RunValidators checks an instance against every registered validator plus
// the implicit membership check for textual choice fields (enum-typed
// choice fields only ever hold declared members and are not re-checked).
//
// The returned issues list the failing fields in declaration order; an empty
// list means the instance is fully valid. A field fails at most once. The
// error return is reserved for misuse, i.e. an instance of an unregistered
// type.
func (s *SerializedModels) RunValidators(instance any) (Issues, error) {
	m, rv, iss := s.formatFor(instance)
	if iss != nil {
		return nil, iss
	}

	var failures Issues
	next := 0 // cursor into the field-ordered validator list
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.index == nil {
			continue
		}
		failed := false
		value := rv.FieldByIndex(f.index).Interface()
		for ; next < len(m.hooks.validators) && m.hooks.validators[next].field == i; next++ {
			if failed {
				continue
			}
			if !m.hooks.validators[next].validate(value) {
				failures = AppendIssues(failures, Issue{
					Path:    m.Table + "." + f.SourcePath,
					Code:    CodeValidation,
					Message: fmt.Sprintf("value for %q rejected by validator", f.Column),
				})
				failed = true
			}
		}
		if !failed && f.textualChoice {
			if it := checkChoice(f, rv.FieldByIndex(f.index)); it != nil {
				it.Path = m.Table + "." + it.Path
				failures = AppendIssues(failures, *it)
			}
		}
	}
	return failures, nil
}

func checkChoice(f *Field, v reflect.Value) *Issue {
	choices, ok := choicesOf(f.Annotations)
	if !ok {
		return nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil // nullable choice columns accept NULL
		}
		v = v.Elem()
	}
	got := v.String()
	for _, c := range choices {
		if got == c {
			return nil
		}
	}
	return &Issue{
		Path:    f.SourcePath,
		Code:    CodeInvalidChoice,
		Message: fmt.Sprintf("%q is not one of the declared choices for %q", got, f.Column),
	}
}

// assignValue writes v into dst, allocating through pointers and converting
// between compatible kinds. Returns an issue when the value cannot represent
// the field.
func assignValue(dst reflect.Value, v any, path string) *Issue {
	if v == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			dst.SetZero()
			return nil
		}
		return &Issue{Path: path, Code: CodeInvalidValue, Message: "nil is not valid for a non-nullable field"}
	}
	rv := reflect.ValueOf(v)
	if dst.Kind() == reflect.Pointer && rv.Kind() != reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if it := assignValue(p.Elem(), v, path); it != nil {
			return it
		}
		dst.Set(p)
		return nil
	}
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case rv.Type().ConvertibleTo(dst.Type()) && !lossyConversion(rv.Type(), dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return &Issue{
			Path:    path,
			Code:    CodeInvalidValue,
			Message: fmt.Sprintf("cannot assign %T to field of type %s", v, dst.Type()),
		}
	}
	return nil
}

// lossyConversion rejects conversions Go permits but schemas should not,
// like int-to-string (which produces a rune, not a rendering).
func lossyConversion(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return true
	}
	if from.Kind() == reflect.String && to.Kind() != reflect.String && to.Kind() != reflect.Slice {
		return true
	}
	return false
}
