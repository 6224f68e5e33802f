package declorm

import (
	"fmt"
	"sort"
	"strings"
)

// Patch is a partial, named value set for one model type. The type parameter
// ties a patch to exactly one target model; a Patch[User] cannot be applied
// to anything else. Keys are column names.
type Patch[M any] map[string]any

// ApplyPatch assigns every value in the patch to the matching field of
// target and sets the field's modified flag when the model declares one
// (a bool field named <GoField>Modified tagged `orm:"ignored"`).
//
// Every patch key must name a column of M's schema. Unknown keys fail fast
// before anything is assigned, with the full list of valid column names;
// the caller must fix the patch, there is nothing to retry.
func ApplyPatch[M any](s *SerializedModels, target *M, patch Patch[M]) error {
	m, rv, iss := s.formatFor(target)
	if iss != nil {
		return iss
	}

	var unknown []string
	for name := range patch {
		if _, ok := m.FieldByColumn(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		for _, name := range unknown {
			iss = AppendIssues(iss, Issue{
				Path:    m.Table + "." + name,
				Code:    CodePatchFieldMismatch,
				Message: fmt.Sprintf("patch names unknown field %q", name),
				Hint:    "available fields: " + strings.Join(m.Columns(), ", "),
			})
		}
		return iss
	}

	// Assign in field declaration order so patch application is
	// deterministic regardless of map iteration.
	for i := range m.Fields {
		f := &m.Fields[i]
		v, ok := patch[f.Column]
		if !ok {
			continue
		}
		if f.index == nil {
			iss = AppendIssues(iss, Issue{
				Path:    m.Table + "." + f.Column,
				Code:    CodeInvalidValue,
				Message: "the implicit identifier has no backing field; declare an ID field to patch it",
			})
			continue
		}
		if it := assignValue(rv.FieldByIndex(f.index), v, m.Table+"."+f.SourcePath); it != nil {
			iss = AppendIssues(iss, *it)
			continue
		}
		if f.modifiedIndex != nil {
			rv.FieldByIndex(f.modifiedIndex).SetBool(true)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}
