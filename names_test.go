package declorm_test

import (
	"testing"

	declorm "github.com/declorm/declorm"
)

func TestToSnakeCase_Oracle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a"},
		{"AB", "ab"},
		{"JsonValue", "json_value"},
		{"HTTPHandler", "http_handler"},
		{"Test123", "test_123"},
		{"foo_Bar", "foo_bar"},
		{"FOO__bar", "foo__bar"},
		{"_fooBar", "foo_bar"},
		{"HTTP2Foo", "http_2_foo"},
		{"HTTP2", "http_2"},
		{"User", "user"},
		{"CreatedAt", "created_at"},
		{"foo123bar", "foo_123_bar"},
	}
	for _, c := range cases {
		if got := declorm.ToSnakeCase(c.in); got != c.want {
			t.Fatalf("ToSnakeCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToSnakeCase_Idempotent(t *testing.T) {
	inputs := []string{
		"JsonValue", "HTTPHandler", "Test123", "HTTP2Foo", "_fooBar",
		"FOO__bar", "already_snake", "x9y",
	}
	for _, in := range inputs {
		once := declorm.ToSnakeCase(in)
		if twice := declorm.ToSnakeCase(once); twice != once {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
