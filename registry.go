package declorm

import (
	"fmt"
	"reflect"
	"runtime"
)

// Registry collects model declarations. Populate it during process startup
// with Register, then call Build exactly once; the returned SerializedModels
// is immutable. Registry itself is not safe for concurrent use.
type Registry struct {
	decls []*decl
	iss   Issues

	built    *SerializedModels
	buildErr error
	done     bool
}

type decl struct {
	typ        reflect.Type
	tableName  string
	constructs []constructHook
	validators []validatorHook
	definedAt  *Source
}

type constructHook struct {
	path string
	fn   func() any
}

type validatorHook struct {
	path string
	fn   func(any) bool
}

// ModelOption configures one model declaration. Options are the model-level
// annotation surface; an option naming a field the model does not declare
// fails the build.
type ModelOption func(*decl)

// WithTableName overrides the table name computed from the type name.
func WithTableName(name string) ModelOption {
	return func(d *decl) { d.tableName = name }
}

// WithDefault registers a construction hook for the field at the given
// dotted source path. The hook runs once per instance inside Construct,
// before any caller-supplied assignment.
func WithDefault(path string, fn func() any) ModelOption {
	return func(d *decl) { d.constructs = append(d.constructs, constructHook{path: path, fn: fn}) }
}

// WithValidator registers a validation predicate for the field at the given
// dotted source path. Predicates run only on explicit request via
// RunValidators.
func WithValidator(path string, fn func(any) bool) ModelOption {
	return func(d *decl) { d.validators = append(d.validators, validatorHook{path: path, fn: fn}) }
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register queues a model declaration. prototype must be a struct or a
// pointer to one; its value is ignored. Registration order is the
// declaration order preserved in the derived schema set.
//
// Register panics when called after Build: the schema set is built exactly
// once and never amended.
func (r *Registry) Register(prototype any, opts ...ModelOption) *Registry {
	if r.done {
		panic("declorm: Register called after Build")
	}
	src := callerSource(2)
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		r.iss = AppendIssues(r.iss, issueAt(fmt.Sprintf("%T", prototype), CodeUnknownModel,
			"Register expects a struct or pointer-to-struct prototype"))
		return r
	}
	d := &decl{typ: t, definedAt: src}
	for _, opt := range opts {
		opt(d)
	}
	r.decls = append(r.decls, d)
	return r
}

// Build derives the schema of every registered model, in registration order.
// It runs at most once: subsequent calls return the first result. Any
// derivation error aborts the whole build; there is no partial schema set.
func (r *Registry) Build() (*SerializedModels, error) {
	if r.done {
		return r.built, r.buildErr
	}
	r.done = true
	if len(r.iss) > 0 {
		r.buildErr = r.iss
		return nil, r.buildErr
	}
	models, err := deriveAll(r.decls)
	r.built, r.buildErr = models, err
	return r.built, r.buildErr
}

// MustBuild is Build, panicking on error. Intended for init-time wiring
// where a failed derivation must abort startup.
func (r *Registry) MustBuild() *SerializedModels {
	s, err := r.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func callerSource(skip int) *Source {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return nil
	}
	return &Source{File: file, Line: line}
}
