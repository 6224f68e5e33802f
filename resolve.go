package declorm

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/declorm/declorm/internal/tagparse"
)

var (
	idType        = reflect.TypeOf(ID(0))
	dateType      = reflect.TypeOf(Date{})
	timeOfDayType = reflect.TypeOf(Time{})
	stdTimeType   = reflect.TypeOf(time.Time{})
	uuidType      = reflect.TypeOf(uuid.UUID{})

	enumIface    = reflect.TypeOf((*Enum)(nil)).Elem()
	flagSetIface = reflect.TypeOf((*FlagSet)(nil)).Elem()
	jsonIface    = reflect.TypeOf((*jsonField)(nil)).Elem()
)

// isScalarStruct reports whether a struct type maps to a single column and
// therefore can be neither inherited from nor embedded.
func isScalarStruct(t reflect.Type) bool {
	return t == dateType || t == timeOfDayType || t == stdTimeType || t == uuidType ||
		implementsIface(t, jsonIface)
}

func implementsIface(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

func enumMembers(t reflect.Type) ([]string, bool) {
	if t.Implements(enumIface) {
		return reflect.Zero(t).Interface().(Enum).Choices(), true
	}
	if reflect.PointerTo(t).Implements(enumIface) {
		return reflect.New(t).Interface().(Enum).Choices(), true
	}
	return nil, false
}

func isFlagSet(t reflect.Type) bool { return implementsIface(t, flagSetIface) }

// inference is the column type implied by a field's Go type, before the
// field's own annotations are applied.
type inference struct {
	dbType    DBType
	nullable  bool
	enum      []string // members, when the type implements Enum
	pkImplied bool     // declorm.ID implies primary_key + autoincrement
}

// inferType maps a Go type to its column type. Rules apply in order:
// nullable unwrap, enum, flag-set, the known scalar types, model references
// (foreign keys, nullable by default), then the primitive kind table.
// ok is false when no rule matches.
func (b *builder) inferType(t reflect.Type) (inference, bool) {
	if t.Kind() == reflect.Pointer {
		inf, ok := b.inferType(t.Elem())
		inf.nullable = true
		return inf, ok
	}
	if members, ok := enumMembers(t); ok {
		return inference{dbType: DBChoices, enum: members}, true
	}
	if isFlagSet(t) {
		return inference{dbType: DBSet}, true
	}
	switch t {
	case idType:
		return inference{dbType: DBInt64, pkImplied: true}, true
	case dateType:
		return inference{dbType: DBDate}, true
	case timeOfDayType:
		return inference{dbType: DBTime}, true
	case stdTimeType:
		return inference{dbType: DBDateTime}, true
	case uuidType:
		return inference{dbType: DBVarBinary}, true
	}
	if implementsIface(t, jsonIface) {
		return inference{dbType: DBVarBinary}, true
	}
	if t.Kind() == reflect.Struct && b.byType[t] != nil {
		// Reference to another model: column of the target's primary key,
		// nullable unless annotated not_null.
		return inference{dbType: b.pkDBType(t), nullable: true}, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return inference{dbType: DBBoolean}, true
	case reflect.Int8:
		return inference{dbType: DBInt8}, true
	case reflect.Int16:
		return inference{dbType: DBInt16}, true
	case reflect.Int32:
		return inference{dbType: DBInt32}, true
	case reflect.Int64, reflect.Int:
		return inference{dbType: DBInt64}, true
	case reflect.Uint8:
		return inference{dbType: DBUInt8}, true
	case reflect.Uint16:
		return inference{dbType: DBUInt16}, true
	case reflect.Uint32:
		return inference{dbType: DBUInt32}, true
	case reflect.Uint64, reflect.Uint:
		return inference{dbType: DBUInt64}, true
	case reflect.Float32:
		return inference{dbType: DBFloat}, true
	case reflect.Float64:
		return inference{dbType: DBDouble}, true
	case reflect.String:
		return inference{dbType: DBVarChar}, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return inference{dbType: DBVarBinary}, true
		}
	}
	return inference{}, false
}

// pkDBType resolves the column type of a model's primary key, for foreign
// key fields referencing it. Models without an explicit primary key use the
// implicit int64 identifier.
func (b *builder) pkDBType(t reflect.Type) DBType {
	if v, ok := b.pkMemo[t]; ok {
		return v
	}
	if b.pkBusy[t] {
		// Primary keys referencing each other in a cycle; the involved
		// models fail derivation on their own.
		return DBInt64
	}
	b.pkBusy[t] = true
	defer delete(b.pkBusy, t)

	res := DBInt64
	flat, _, _, iss := b.flattenModel(t)
	if len(iss) == 0 {
		for _, ff := range flat {
			if tagparse.Has(ff.tokens, "primary_key") || ff.sf.Type == idType {
				if inf, ok := b.inferType(ff.sf.Type); ok {
					res = inf.dbType
				}
				break
			}
		}
	}
	b.pkMemo[t] = res
	return res
}

// resolveField turns one flattened leaf into a Field: type inference first,
// then the field's annotations in written order, then the implied
// annotations (enum choices, ID's key flags) and the trailing not_null.
func (b *builder) resolveField(modelName string, ff flatField) (*Field, Issues) {
	errPath := modelName + "." + ff.path

	inf, resolved := b.inferType(ff.sf.Type)
	dbType := inf.dbType
	nullable := inf.nullable
	column := ToSnakeCase(ff.sf.Name)
	var anns []Annotation
	var iss Issues

	baseKind := ff.sf.Type.Kind()
	if baseKind == reflect.Pointer {
		baseKind = ff.sf.Type.Elem().Kind()
	}

	for _, tok := range ff.tokens {
		switch tok.Key {
		case "auto_create_time":
			dbType, resolved = DBTimestamp, true
			anns = append(anns, AutoCreateTime())
		case "auto_update_time":
			dbType, resolved = DBTimestamp, true
			anns = append(anns, AutoUpdateTime())
		case "timestamp":
			dbType, resolved = DBTimestamp, true
		case "primary_key":
			anns = append(anns, PrimaryKey())
		case "autoincrement":
			anns = append(anns, AutoIncrement())
		case "unique":
			anns = append(anns, Unique())
		case "not_null":
			nullable = false
		case "max_length":
			n, err := strconv.Atoi(tok.Value)
			if !tok.HasValue || err != nil {
				iss = AppendIssues(iss, issueAt(errPath, CodeUnsupportedAnnotation,
					fmt.Sprintf("max_length requires an integer value, got %q", tok.Value)))
				continue
			}
			anns = append(anns, MaxLength(n))
		case "default":
			if !tok.HasValue {
				iss = AppendIssues(iss, issueAt(errPath, CodeUnsupportedAnnotation,
					"default requires a literal value"))
				continue
			}
			anns = append(anns, DefaultValue(parseLiteral(tok.Value)))
		case "index":
			iv, err := parseIndexValue(tok)
			if err != nil {
				iss = AppendIssues(iss, issueAt(errPath, CodeUnsupportedAnnotation, err.Error()))
				continue
			}
			anns = append(anns, Annotation{Kind: AnnotationIndex, Value: iv})
		case "choices":
			if baseKind != reflect.String && inf.enum == nil {
				iss = AppendIssues(iss, issueAt(errPath, CodeInvalidChoicesTarget,
					fmt.Sprintf("choices requires a textual or enum type, got %s", ff.sf.Type)))
				continue
			}
			dbType, resolved = DBChoices, true
			anns = append(anns, ChoicesOf(strings.Split(tok.Value, "|")...))
		case "column":
			if !tok.HasValue || tok.Value == "" {
				iss = AppendIssues(iss, issueAt(errPath, CodeUnsupportedAnnotation,
					"column requires a name"))
				continue
			}
			column = tok.Value
		default:
			iss = AppendIssues(iss, issueAt(errPath, CodeUnsupportedAnnotation,
				fmt.Sprintf("unknown annotation %q on a field declaration", tok.Key)))
		}
	}

	if inf.enum != nil && dbType == DBChoices && !hasAnnotation(anns, AnnotationChoices) {
		anns = append(anns, ChoicesOf(inf.enum...))
	}
	if inf.pkImplied {
		anns = append(anns, PrimaryKey(), AutoIncrement())
	}
	if !resolved {
		iss = AppendIssues(iss, issueAt(errPath, CodeUnresolvableType,
			fmt.Sprintf("no column type for Go type %s; use a supported type or a type-forcing annotation", ff.sf.Type)))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if !nullable {
		anns = append(anns, NotNull())
	}

	return &Field{
		SourcePath:    ff.path,
		Column:        column,
		Type:          dbType,
		Annotations:   anns,
		index:         ff.index,
		goType:        ff.sf.Type,
		textualChoice: dbType == DBChoices && inf.enum == nil && baseKind == reflect.String,
	}, nil
}

// parseLiteral reads a default value literal: bool, int64, float64 or the
// raw string.
func parseLiteral(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// parseIndexValue reads `index`, `index=name` or `index=name:priority`.
func parseIndexValue(tok tagparse.Token) (any, error) {
	if !tok.HasValue {
		return nil, nil
	}
	name, prio, found := strings.Cut(tok.Value, ":")
	if name == "" {
		return nil, fmt.Errorf("index requires a name, got %q", tok.Value)
	}
	iv := IndexValue{Name: name}
	if found {
		p, err := strconv.Atoi(prio)
		if err != nil {
			return nil, fmt.Errorf("index priority must be an integer, got %q", prio)
		}
		iv.Priority = &p
	}
	return iv, nil
}
