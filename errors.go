package declorm

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema-derivation errors. All of these abort Build.
	CodeUnsupportedAnnotation = "unsupported_annotation"
	CodeUnresolvableType      = "unresolvable_type"
	CodeInvalidEmbed          = "invalid_embed"
	CodeInvalidChoicesTarget  = "invalid_choices_target"
	CodeCyclicEmbed           = "cyclic_embed"
	CodeDuplicateColumn       = "duplicate_column"
	CodeDuplicateTable        = "duplicate_table"
	CodeUnknownField          = "unknown_field"
	// Runtime misuse and validation errors.
	CodeUnknownModel       = "unknown_model"
	CodePatchFieldMismatch = "patch_field_mismatch"
	CodeInvalidValue       = "invalid_value"
	CodeInvalidChoice      = "invalid_choice"
	CodeValidation         = "validation"
)

// Issue represents a single schema or validation error entry.
type Issue struct {
	Path    string // Dotted field path (for example: user.address.city).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, valid names, etc.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unsupported_annotation at user.name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// issueAt creates an Issue at the given dotted path.
func issueAt(path, code, msg string) Issue {
	return Issue{Path: path, Code: code, Message: msg}
}
