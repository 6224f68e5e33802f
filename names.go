package declorm

import (
	"strings"
	"unicode"
)

// ToSnakeCase translates a Go identifier into its column or table name.
//
// Segment boundaries are inserted before an uppercase letter following a
// lowercase letter, before the last letter of an uppercase run followed by a
// lowercase letter (acronym-then-word, "HTTPHandler" -> "http_handler"), and
// on letter/digit transitions ("Test123" -> "test_123", "HTTP2Foo" ->
// "http_2_foo"). Existing underscores are kept as written; leading and
// trailing underscores are stripped from the result.
//
// Column names derived by this function are part of the migration contract.
// Changing its behavior renames columns in every deployed schema.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for i, r := range runes {
		switch {
		case r == '_':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				acronymEnd := unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || acronymEnd {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			if i > 0 && runes[i-1] != '_' && !unicode.IsDigit(runes[i-1]) {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			if i > 0 && unicode.IsDigit(runes[i-1]) && unicode.IsLower(r) {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}

// lowerFirst lower-camels a Go field name for dotted source paths
// ("SuperCommon" -> "superCommon", "ID" -> "id", "HTTPServer" ->
// "httpServer"). A leading acronym is lowered as a unit, keeping its last
// letter capital when it starts the next word.
func lowerFirst(s string) string {
	r := []rune(s)
	for i := 0; i < len(r) && unicode.IsUpper(r[i]); i++ {
		if i > 0 && i+1 < len(r) && unicode.IsLower(r[i+1]) {
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}
