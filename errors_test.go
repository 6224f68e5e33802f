package declorm_test

import (
	"strings"
	"testing"

	declorm "github.com/declorm/declorm"
)

func buildErr(t *testing.T, protos ...any) declorm.Issues {
	t.Helper()
	reg := declorm.NewRegistry()
	for _, p := range protos {
		reg.Register(p)
	}
	_, err := reg.Build()
	if err == nil {
		t.Fatalf("expected Build to fail")
	}
	iss, ok := declorm.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues error, got %v", err)
	}
	return iss
}

func TestBuild_UnsupportedAnnotation(t *testing.T) {
	type bad struct {
		Name string `orm:"wat"`
	}
	iss := buildErr(t, &bad{})
	if !iss.HasCode(declorm.CodeUnsupportedAnnotation) {
		t.Fatalf("want unsupported_annotation, got %v", iss)
	}
	if iss[0].Path != "bad.name" {
		t.Fatalf("issue path = %q, want bad.name", iss[0].Path)
	}
}

func TestBuild_AnnotationOnInheritanceSite(t *testing.T) {
	type noisy struct {
		base `orm:"unique"`
	}
	iss := buildErr(t, &noisy{})
	if !iss.HasCode(declorm.CodeUnsupportedAnnotation) {
		t.Fatalf("want unsupported_annotation on inherited struct, got %v", iss)
	}
}

func TestBuild_UnresolvableType(t *testing.T) {
	type bad struct {
		Data map[string]int
	}
	iss := buildErr(t, &bad{})
	if !iss.HasCode(declorm.CodeUnresolvableType) {
		t.Fatalf("want unresolvable_type, got %v", iss)
	}
}

func TestBuild_InvalidEmbed(t *testing.T) {
	type scalarEmbed struct {
		Name string `orm:"embedded"`
	}
	if iss := buildErr(t, &scalarEmbed{}); !iss.HasCode(declorm.CodeInvalidEmbed) {
		t.Fatalf("want invalid_embed for a scalar, got %v", iss)
	}

	type modelEmbed struct {
		Who author `orm:"embedded"`
	}
	if iss := buildErr(t, &author{}, &modelEmbed{}); !iss.HasCode(declorm.CodeInvalidEmbed) {
		t.Fatalf("want invalid_embed for a model, got %v", iss)
	}

	type ptrEmbed struct {
		C *common `orm:"embedded"`
	}
	if iss := buildErr(t, &ptrEmbed{}); !iss.HasCode(declorm.CodeInvalidEmbed) {
		t.Fatalf("want invalid_embed for a pointer, got %v", iss)
	}
}

func TestBuild_InvalidChoicesTarget(t *testing.T) {
	type bad struct {
		N int `orm:"choices=a|b"`
	}
	if iss := buildErr(t, &bad{}); !iss.HasCode(declorm.CodeInvalidChoicesTarget) {
		t.Fatalf("want invalid_choices_target, got %v", iss)
	}
}

func TestBuild_DuplicateColumn(t *testing.T) {
	type bad struct {
		A string
		B string `orm:"column=a"`
	}
	if iss := buildErr(t, &bad{}); !iss.HasCode(declorm.CodeDuplicateColumn) {
		t.Fatalf("want duplicate_column, got %v", iss)
	}
}

func TestBuild_DuplicateTable(t *testing.T) {
	reg := declorm.NewRegistry()
	reg.Register(&person{}, declorm.WithTableName("people"))
	reg.Register(&author{}, declorm.WithTableName("people"))
	_, err := reg.Build()
	iss, _ := declorm.AsIssues(err)
	if !iss.HasCode(declorm.CodeDuplicateTable) {
		t.Fatalf("want duplicate_table, got %v", err)
	}
}

func TestBuild_HookOnUnknownField(t *testing.T) {
	reg := declorm.NewRegistry()
	reg.Register(&person{}, declorm.WithDefault("nickname", func() any { return "x" }))
	_, err := reg.Build()
	iss, ok := declorm.AsIssues(err)
	if !ok || !iss.HasCode(declorm.CodeUnknownField) {
		t.Fatalf("want unknown_field, got %v", err)
	}
	if !strings.Contains(iss[0].Hint, "name") || !strings.Contains(iss[0].Hint, "age") {
		t.Fatalf("hint should list declared fields, got %q", iss[0].Hint)
	}
}

func TestBuild_NonStructPrototype(t *testing.T) {
	reg := declorm.NewRegistry()
	reg.Register(42)
	_, err := reg.Build()
	iss, ok := declorm.AsIssues(err)
	if !ok || !iss.HasCode(declorm.CodeUnknownModel) {
		t.Fatalf("want unknown_model, got %v", err)
	}
}

func TestBuild_RunsOnce(t *testing.T) {
	reg := declorm.NewRegistry()
	reg.Register(&person{})
	first, err := reg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := reg.Build()
	if err != nil || second != first {
		t.Fatalf("second Build must return the first result")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("Register after Build must panic")
		}
	}()
	reg.Register(&author{})
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := declorm.Issues{
		{Path: "a.b", Code: declorm.CodeUnresolvableType},
		{Path: "a.c", Code: declorm.CodeDuplicateColumn},
		{Path: "a.d", Code: declorm.CodeInvalidEmbed},
		{Path: "a.e", Code: declorm.CodeInvalidEmbed},
	}
	msg := iss.Error()
	if !strings.Contains(msg, "unresolvable_type at a.b") || !strings.Contains(msg, "(total 4)") {
		t.Fatalf("unexpected summary: %q", msg)
	}
}
