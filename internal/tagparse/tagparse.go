// Package tagparse lexes `orm` struct tags into ordered annotation tokens.
// This package is internal and not part of the public API.
package tagparse

import "strings"

// Token is one annotation token of an `orm` tag, e.g. `max_length=255`
// parses to {Key: "max_length", Value: "255", HasValue: true}.
type Token struct {
	Key      string
	Value    string
	HasValue bool
}

// Parse splits a tag into its tokens, preserving order. Tokens are comma
// separated; list-valued payloads use '|' inside the value and therefore
// never conflict with the separator. Empty tokens are dropped. The alias "-"
// is normalized to "ignored".
func Parse(tag string) []Token {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	toks := make([]Token, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "-" {
			toks = append(toks, Token{Key: "ignored"})
			continue
		}
		if i := strings.IndexByte(p, '='); i >= 0 {
			toks = append(toks, Token{
				Key:      strings.TrimSpace(p[:i]),
				Value:    strings.TrimSpace(p[i+1:]),
				HasValue: true,
			})
			continue
		}
		toks = append(toks, Token{Key: p})
	}
	return toks
}

// Has reports whether any token has the given key.
func Has(toks []Token, key string) bool {
	for _, t := range toks {
		if t.Key == key {
			return true
		}
	}
	return false
}
