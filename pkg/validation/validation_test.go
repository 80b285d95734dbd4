package validation_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-partsbin/pkg/validation"
)

func TestCheckConfig(t *testing.T) {
	valid := map[string]any{
		"project":           map[string]any{"title": "Library", "tags": []any{"a", 1}},
		"parse.concurrency": 4,
	}
	if err := validation.CheckConfig(valid); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	invalid := []map[string]any{
		nil,
		{"": 1},
		{"a..b": 1},
		{"handler": func() {}},
		{"nested": map[string]any{"ch": make(chan int)}},
	}
	for idx, options := range invalid {
		err := validation.CheckConfig(options)
		if !validation.IsKind(err, validation.InvalidConfig) {
			t.Fatalf("case %d: expected InvalidConfig, got %v", idx, err)
		}
	}
}

func TestCheckSrc(t *testing.T) {
	for _, path := range []string{"./components", "/abs/path", "s3://bucket/prefix"} {
		if err := validation.CheckSrc(path); err != nil {
			t.Fatalf("expected %q to be valid: %v", path, err)
		}
	}
	for _, path := range []string{"", "   ", "s3://", "s3:///prefix", "bad\x00path"} {
		if err := validation.CheckSrc(path); !validation.IsKind(err, validation.InvalidSrc) {
			t.Fatalf("expected %q to fail with InvalidSrc, got %v", path, err)
		}
	}
}

func TestCheckMethodAndTarget(t *testing.T) {
	if err := validation.CheckMethod("render.html", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var nilFn func()
	cases := []struct {
		name    string
		handler any
	}{
		{"", func() {}},
		{"render.", func() {}},
		{"count", nil},
		{"count", nilFn},
		{"count", "not a function"},
	}
	for _, tc := range cases {
		if err := validation.CheckMethod(tc.name, tc.handler); !validation.IsKind(err, validation.InvalidMethod) {
			t.Fatalf("expected InvalidMethod for %q/%T, got %v", tc.name, tc.handler, err)
		}
	}

	if err := validation.CheckTarget("files", "files", "components"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := validation.CheckTarget("pages", "files", "components")
	if !validation.IsKind(err, validation.InvalidEntityType) {
		t.Fatalf("expected InvalidEntityType, got %v", err)
	}
}

func TestCheckFunctions(t *testing.T) {
	if !validation.IsKind(validation.CheckExtension(nil), validation.InvalidExtension) {
		t.Fatalf("expected InvalidExtension")
	}
	var nilPlugin func()
	if !validation.IsKind(validation.CheckPlugin(nilPlugin), validation.InvalidPlugin) {
		t.Fatalf("expected InvalidPlugin")
	}
	if !validation.IsKind(validation.CheckTransformer(nil), validation.InvalidTransformer) {
		t.Fatalf("expected InvalidTransformer")
	}
	if !validation.IsKind(validation.CheckCallback(42), validation.InvalidCallback) {
		t.Fatalf("expected InvalidCallback")
	}
	if !validation.IsKind(validation.CheckAdapter("render.html", struct{}{}), validation.InvalidAdapter) {
		t.Fatalf("expected InvalidAdapter for dotted name")
	}
	if !validation.IsKind(validation.CheckCommand("two words", func() {}), validation.InvalidCommand) {
		t.Fatalf("expected InvalidCommand")
	}
}

func TestError_IsConfiguration(t *testing.T) {
	err := validation.CheckSrc("")
	if !errors.Is(err, validation.ErrConfiguration) {
		t.Fatalf("expected errors.Is to match ErrConfiguration")
	}
	if !errors.Is(err, &validation.Error{Kind: validation.InvalidSrc}) {
		t.Fatalf("expected errors.Is to match same kind")
	}
	if errors.Is(err, &validation.Error{Kind: validation.InvalidMethod}) {
		t.Fatalf("expected kinds to differ")
	}
}

func TestRules(t *testing.T) {
	rules := validation.Rules{Targets: []string{"files", "components"}}
	if err := rules.Target("components"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rules.Target(""); err == nil {
		t.Fatalf("expected empty target to fail")
	}
}
