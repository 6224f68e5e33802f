package declorm_test

import (
	"strings"
	"testing"

	declorm "github.com/declorm/declorm"
)

type note struct {
	ID           declorm.ID
	Title        string
	Body         string
	BodyModified bool `orm:"ignored"`
	Pinned       bool
}

func TestApplyPatch_AssignsNamedFieldsOnly(t *testing.T) {
	models := build(t, &note{})

	n := &note{Title: "before", Body: "original"}
	err := declorm.ApplyPatch(models, n, declorm.Patch[note]{
		"title":  "after",
		"pinned": true,
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if n.Title != "after" || !n.Pinned {
		t.Fatalf("patch not applied: %+v", n)
	}
	if n.Body != "original" {
		t.Fatalf("unnamed field touched: %+v", n)
	}
}

func TestApplyPatch_UnknownFieldFailsFast(t *testing.T) {
	models := build(t, &note{})

	n := &note{Title: "before"}
	err := declorm.ApplyPatch(models, n, declorm.Patch[note]{
		"title":    "after",
		"headline": "nope",
	})
	iss, ok := declorm.AsIssues(err)
	if !ok || !iss.HasCode(declorm.CodePatchFieldMismatch) {
		t.Fatalf("want patch_field_mismatch, got %v", err)
	}
	// Fails fast: nothing is assigned, and the hint lists every column.
	if n.Title != "before" {
		t.Fatalf("patch partially applied: %+v", n)
	}
	for _, col := range []string{"id", "title", "body", "pinned"} {
		if !strings.Contains(iss[0].Hint, col) {
			t.Fatalf("hint %q should list %q", iss[0].Hint, col)
		}
	}
}

func TestApplyPatch_SetsModifiedFlag(t *testing.T) {
	models := build(t, &note{})

	n := &note{}
	if err := declorm.ApplyPatch(models, n, declorm.Patch[note]{"body": "edited"}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if n.Body != "edited" || !n.BodyModified {
		t.Fatalf("modified flag not set: %+v", n)
	}

	n2 := &note{}
	if err := declorm.ApplyPatch(models, n2, declorm.Patch[note]{"title": "t"}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if n2.BodyModified {
		t.Fatalf("flag set for an untouched field: %+v", n2)
	}
}

func TestApplyPatch_TypeMismatch(t *testing.T) {
	models := build(t, &note{})

	err := declorm.ApplyPatch(models, &note{}, declorm.Patch[note]{"pinned": "yes"})
	iss, ok := declorm.AsIssues(err)
	if !ok || !iss.HasCode(declorm.CodeInvalidValue) {
		t.Fatalf("want invalid_value, got %v", err)
	}
}

func TestApplyPatch_NullablePointerField(t *testing.T) {
	type draft struct {
		Title  *string
		Weight *int64
	}
	models := build(t, &draft{})

	d := &draft{}
	err := declorm.ApplyPatch(models, d, declorm.Patch[draft]{
		"title":  "headline",
		"weight": nil,
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if d.Title == nil || *d.Title != "headline" {
		t.Fatalf("pointer assignment failed: %+v", d)
	}
	if d.Weight != nil {
		t.Fatalf("nil should clear a nullable field: %+v", d)
	}
}
