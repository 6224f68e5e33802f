package declorm

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/declorm/declorm/internal/tagparse"
)

// builder carries the cross-model state of one Build run.
type builder struct {
	byType map[reflect.Type]*decl
	pkMemo map[reflect.Type]DBType
	pkBusy map[reflect.Type]bool
}

func deriveAll(decls []*decl) (*SerializedModels, error) {
	b := &builder{
		byType: make(map[reflect.Type]*decl, len(decls)),
		pkMemo: make(map[reflect.Type]DBType),
		pkBusy: make(map[reflect.Type]bool),
	}
	for _, d := range decls {
		b.byType[d.typ] = d
	}

	out := &SerializedModels{
		Models:  make([]ModelFormat, 0, len(decls)),
		byType:  make(map[reflect.Type]*ModelFormat, len(decls)),
		byTable: make(map[string]*ModelFormat, len(decls)),
	}
	var iss Issues
	for _, d := range decls {
		m, mIss := b.deriveModel(d)
		if len(mIss) > 0 {
			iss = append(iss, mIss...)
			continue
		}
		if _, dup := out.byTable[m.Table]; dup {
			iss = append(iss, issueAt(d.typ.Name(), CodeDuplicateTable,
				fmt.Sprintf("table %q is already derived from another model", m.Table)))
			continue
		}
		out.Models = append(out.Models, m)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	for i := range out.Models {
		m := &out.Models[i]
		out.byType[m.goType] = m
		out.byTable[m.Table] = m
	}
	return out, nil
}

// deriveModel builds one ModelFormat: table name, flattened fields, implicit
// identifier, and bound hooks.
func (b *builder) deriveModel(d *decl) (ModelFormat, Issues) {
	name := d.tableName
	if name == "" {
		name = ToSnakeCase(d.typ.Name())
	}
	m := ModelFormat{
		Table:     name,
		DefinedAt: d.definedAt,
		goType:    d.typ,
	}

	flat, embedded, companions, iss := b.flattenModel(d.typ)
	if len(iss) > 0 {
		return m, iss
	}
	m.EmbeddedStructs = embedded

	hasPrimary := false
	for _, ff := range flat {
		f, fIss := b.resolveField(d.typ.Name(), ff)
		if len(fIss) > 0 {
			iss = append(iss, fIss...)
			continue
		}
		f.DefinedAt = d.definedAt
		if idx, ok := companions[f.SourcePath+"Modified"]; ok {
			f.modifiedIndex = idx
		}
		if f.Has(AnnotationPrimaryKey) {
			hasPrimary = true
		}
		m.Fields = append(m.Fields, *f)
	}
	if len(iss) > 0 {
		return m, iss
	}

	if !hasPrimary {
		implicit := Field{
			SourcePath:  "id",
			Column:      "id",
			Type:        DBInt64,
			Annotations: []Annotation{AutoIncrement(), PrimaryKey(), NotNull()},
			DefinedAt:   d.definedAt,
			goType:      reflect.TypeOf(int64(0)),
		}
		m.Fields = append([]Field{implicit}, m.Fields...)
	}

	seen := make(map[string]bool, len(m.Fields))
	for i := range m.Fields {
		col := m.Fields[i].Column
		if seen[col] {
			iss = append(iss, issueAt(d.typ.Name()+"."+m.Fields[i].SourcePath, CodeDuplicateColumn,
				fmt.Sprintf("column %q is produced by more than one field", col)))
		}
		seen[col] = true
	}
	if len(iss) > 0 {
		return m, iss
	}

	hooks, hIss := bindHooks(d, &m)
	if len(hIss) > 0 {
		return m, hIss
	}
	m.hooks = hooks
	return m, nil
}

// flatField is one leaf produced by flattening: the originating struct
// field, its dotted path and its reflect index path into the model.
type flatField struct {
	path   string
	sf     reflect.StructField
	index  []int
	tokens []tagparse.Token
}

// flattenModel walks a model's anonymous fields (inheritance, no path
// prefix) and its `embedded`-tagged composite fields (recursive, dotted
// prefix), producing the ordered leaf list, the embedding roots in pre-order
// and the modified-flag companions keyed by path.
func (b *builder) flattenModel(t reflect.Type) ([]flatField, []string, map[string][]int, Issues) {
	w := &flattenWalk{
		builder:    b,
		model:      t,
		companions: make(map[string][]int),
		visiting:   map[reflect.Type]bool{t: true},
	}
	w.walk(t, "", nil)
	return w.fields, w.embedded, w.companions, w.iss
}

type flattenWalk struct {
	builder    *builder
	model      reflect.Type
	fields     []flatField
	embedded   []string
	companions map[string][]int
	visiting   map[reflect.Type]bool
	iss        Issues
}

func (w *flattenWalk) walk(t reflect.Type, prefix string, base []int) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tokens := tagparse.Parse(sf.Tag.Get("orm"))
		path := prefix + lowerFirst(sf.Name)
		index := appendIndex(base, i)

		switch {
		case sf.Anonymous && sf.Type.Kind() == reflect.Struct &&
			!tagparse.Has(tokens, "embedded") && !isScalarStruct(sf.Type):
			// Inheritance site: flatten in place, base-declared fields keep
			// their position before derived-declared ones.
			if tagparse.Has(tokens, "ignored") {
				if len(tokens) > 1 {
					w.fail(path, CodeUnsupportedAnnotation,
						"ignored cannot be combined with other annotations on an inherited struct")
				}
				continue
			}
			if len(tokens) > 0 {
				w.fail(path, CodeUnsupportedAnnotation,
					"database annotations are not valid on an inherited struct; annotate its fields instead")
				continue
			}
			w.walk(sf.Type, prefix, index)

		case tagparse.Has(tokens, "ignored"):
			// Excluded from the schema. Bool companions named
			// <field>Modified become modified flags for their field.
			if sf.Type.Kind() == reflect.Bool {
				w.companions[path] = index
			}

		case tagparse.Has(tokens, "embedded"):
			w.embed(path, sf, index, tokens)

		default:
			w.fields = append(w.fields, flatField{path: path, sf: sf, index: index, tokens: tokens})
		}
	}
}

func (w *flattenWalk) embed(path string, sf reflect.StructField, index []int, tokens []tagparse.Token) {
	ft := sf.Type
	switch {
	case ft.Kind() != reflect.Struct:
		w.fail(path, CodeInvalidEmbed, fmt.Sprintf("embedded requires a struct type, got %s", ft))
		return
	case isScalarStruct(ft):
		w.fail(path, CodeInvalidEmbed, fmt.Sprintf("embedded is not valid on scalar type %s", ft))
		return
	case w.builder.byType[ft] != nil:
		w.fail(path, CodeInvalidEmbed, fmt.Sprintf("%s is a model; declare a reference field instead", ft))
		return
	case len(tokens) != 1:
		w.fail(path, CodeUnsupportedAnnotation,
			"embedded cannot be combined with other annotations; annotate the composite's fields instead")
		return
	case w.visiting[ft]:
		w.fail(path, CodeCyclicEmbed, fmt.Sprintf("%s embeds itself, directly or transitively", ft))
		return
	}
	w.embedded = append(w.embedded, path)
	w.visiting[ft] = true
	w.walk(ft, path+".", index)
	delete(w.visiting, ft)
}

func (w *flattenWalk) fail(path, code, msg string) {
	w.iss = AppendIssues(w.iss, issueAt(w.model.Name()+"."+path, code, msg))
}

func appendIndex(base []int, i int) []int {
	idx := make([]int, len(base), len(base)+1)
	copy(idx, base)
	return append(idx, i)
}

// bindHooks resolves a declaration's construction and validator hooks
// against the derived fields. Hooks are bound to this one model type; paths
// that match no field fail the build, listing every valid path.
func bindHooks(d *decl, m *ModelFormat) (hookSet, Issues) {
	var hs hookSet
	var iss Issues

	fieldAt := func(path string) int {
		for i := range m.Fields {
			if m.Fields[i].SourcePath == path && m.Fields[i].index != nil {
				return i
			}
		}
		return -1
	}
	available := func() string {
		var paths []string
		for i := range m.Fields {
			if m.Fields[i].index != nil {
				paths = append(paths, m.Fields[i].SourcePath)
			}
		}
		return strings.Join(paths, ", ")
	}

	for _, h := range d.constructs {
		i := fieldAt(h.path)
		if i < 0 {
			iss = AppendIssues(iss, Issue{
				Path:    d.typ.Name() + "." + h.path,
				Code:    CodeUnknownField,
				Message: "default hook names a field the model does not declare",
				Hint:    "declared fields: " + available(),
			})
			continue
		}
		hs.constructs = append(hs.constructs, boundHook{field: i, construct: h.fn})
	}
	for _, h := range d.validators {
		i := fieldAt(h.path)
		if i < 0 {
			iss = AppendIssues(iss, Issue{
				Path:    d.typ.Name() + "." + h.path,
				Code:    CodeUnknownField,
				Message: "validator names a field the model does not declare",
				Hint:    "declared fields: " + available(),
			})
			continue
		}
		hs.validators = append(hs.validators, boundHook{field: i, validate: h.fn})
	}
	// Hooks fire in field declaration order; registration order breaks ties
	// within one field.
	sort.SliceStable(hs.constructs, func(a, b int) bool { return hs.constructs[a].field < hs.constructs[b].field })
	sort.SliceStable(hs.validators, func(a, b int) bool { return hs.validators[a].field < hs.validators[b].field })
	return hs, iss
}
