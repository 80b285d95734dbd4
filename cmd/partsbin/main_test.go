package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-partsbin/pkg/commands"
	"github.com/goliatone/go-partsbin/pkg/config"
	"github.com/goliatone/go-partsbin/pkg/testsupport"
)

func libraryTree(t *testing.T) string {
	t.Helper()
	return testsupport.WriteTree(t, map[string]string{
		"button/button.pongo":      "<button>{{ label }}</button>",
		"button/button.config.yml": "label: Primary\ncontext:\n  label: Save\n",
		"card/card.html":           `<div class="card">{{ title }}</div>`,
		"_draft/_draft.html":       "<p>draft</p>",
	})
}

type fakePrompter struct {
	choice  int
	err     error
	options []string
}

func (p *fakePrompter) Select(_ context.Context, _ string, options []string) (int, error) {
	p.options = options
	return p.choice, p.err
}

func runApp(t *testing.T, prompt prompter, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out, errOut: io.Discard, prompter: prompt}
	err := a.run(testsupport.Context(t), args)
	return out.String(), err
}

func TestParseFlags(t *testing.T) {
	opts, exit, err := parseFlags([]string{"-src", "a,b", "-src", "c", "-log-level", "DEBUG", "render", "button", "size=l"}, io.Discard)
	if err != nil || exit {
		t.Fatalf("parse flags: exit=%v err=%v", exit, err)
	}
	if got := strings.Join(opts.sources, " "); got != "a b c" {
		t.Fatalf("unexpected sources: %q", got)
	}
	if opts.logLevel != "debug" || opts.logFormat != "text" {
		t.Fatalf("unexpected log settings: %s %s", opts.logLevel, opts.logFormat)
	}
	if opts.command != "render" || strings.Join(opts.args, " ") != "button size=l" {
		t.Fatalf("unexpected command: %s %v", opts.command, opts.args)
	}

	defaults, _, err := parseFlags(nil, io.Discard)
	if err != nil || defaults.command != "list" {
		t.Fatalf("expected list as default command, got %+v (%v)", defaults, err)
	}

	if _, exit, err := parseFlags([]string{"-h"}, io.Discard); !exit || err != nil {
		t.Fatalf("expected help to exit cleanly: exit=%v err=%v", exit, err)
	}

	for _, args := range [][]string{
		{"-log-format", "xml"},
		{"-log-level", "loud"},
		{"-watch", "-interactive"},
		{"-unknown"},
	} {
		_, _, err := parseFlags(args, io.Discard)
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != 2 {
			t.Fatalf("%v: expected exit code 2, got %v", args, err)
		}
	}
}

func TestRun_List(t *testing.T) {
	root := libraryTree(t)

	out, err := runApp(t, nil, "-src", root, "list")
	if err != nil {
		t.Fatalf("run list: %v", err)
	}
	for _, want := range []string{"HANDLE", "button", "Primary", "pongo2", "card", "html"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "draft") {
		t.Fatalf("hidden component listed:\n%s", out)
	}

	out, err = runApp(t, nil, "-src", root, "list", "all")
	if err != nil {
		t.Fatalf("run list all: %v", err)
	}
	if !strings.Contains(out, "draft") {
		t.Fatalf("expected hidden component with all:\n%s", out)
	}
}

func TestRun_RenderAndFiles(t *testing.T) {
	root := libraryTree(t)

	out, err := runApp(t, nil, "-src", root, "render", "button")
	if err != nil {
		t.Fatalf("run render: %v", err)
	}
	if strings.TrimSpace(out) != "<button>Save</button>" {
		t.Fatalf("unexpected render output: %q", out)
	}

	out, err = runApp(t, nil, "-src", root, "render", "button", "label=Go")
	if err != nil {
		t.Fatalf("run render with context: %v", err)
	}
	if strings.TrimSpace(out) != "<button>Go</button>" {
		t.Fatalf("unexpected render output: %q", out)
	}

	if _, err := runApp(t, nil, "-src", root, "render", "button", "oops"); err == nil {
		t.Fatalf("expected malformed assignment to fail")
	}
	if _, err := runApp(t, nil, "-src", root, "render", "missing"); err == nil {
		t.Fatalf("expected missing component to fail")
	}

	out, err = runApp(t, nil, "-src", root, "files")
	if err != nil {
		t.Fatalf("run files: %v", err)
	}
	if !strings.Contains(out, "button/button.config.yml") || !strings.Contains(out, "card/card.html") {
		t.Fatalf("unexpected files output:\n%s", out)
	}
}

func TestRun_Interactive(t *testing.T) {
	root := libraryTree(t)
	prompt := &fakePrompter{choice: 1}

	out, err := runApp(t, prompt, "-src", root, "-interactive")
	if err != nil {
		t.Fatalf("run interactive: %v", err)
	}
	if got := strings.Join(prompt.options, "|"); got != "Primary (button)|Card (card)" {
		t.Fatalf("unexpected prompt options: %s", got)
	}
	if !strings.Contains(out, `class="card"`) {
		t.Fatalf("expected card markup, got %q", out)
	}

	_, err = runApp(t, &fakePrompter{err: ErrAborted}, "-src", root, "-interactive")
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("want ErrAborted, got %v", err)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	root := libraryTree(t)
	configPath := filepath.Join(t.TempDir(), "partsbin.yaml")
	contents := "sources:\n  - " + root + "\nlog:\n  level: warn\nparse:\n  concurrency: 2\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runApp(t, nil, "-config", configPath)
	if err != nil {
		t.Fatalf("run with config: %v", err)
	}
	if !strings.Contains(out, "button") {
		t.Fatalf("expected components from configured sources:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("log:\n  level: loud\nsources: ["+root+"]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err = runApp(t, nil, "-config", bad)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("expected exit code 2 for invalid log level, got %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	_, err := runApp(t, nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("expected missing sources to exit 2, got %v", err)
	}

	_, err = runApp(t, nil, "-src", libraryTree(t), "publish")
	if !errors.Is(err, commands.ErrUnknownCommand) {
		t.Fatalf("want ErrUnknownCommand, got %v", err)
	}

	_, err = runApp(t, nil, "-src", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatalf("expected read failure")
	}
}

func TestStringList(t *testing.T) {
	store := config.NewStore(map[string]any{
		"csv":   "a, b,,c",
		"items": []any{"a", " ", "b", 3},
	})
	if got := strings.Join(stringList(store, "csv"), " "); got != "a b c" {
		t.Fatalf("csv: got %q", got)
	}
	if got := strings.Join(stringList(store, "items"), " "); got != "a b" {
		t.Fatalf("items: got %q", got)
	}
	if got := stringList(store, "missing"); got != nil {
		t.Fatalf("missing: got %v", got)
	}
}
