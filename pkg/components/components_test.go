package components_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-partsbin/pkg/components"
	"github.com/goliatone/go-partsbin/pkg/source"
	"github.com/goliatone/go-partsbin/pkg/testsupport"
)

func TestFromFiles_GroupsViewsAndConfig(t *testing.T) {
	files := testsupport.Files("/lib",
		"button/button.config.yml", "label: Primary Button\nstatus: wip\ncontext:\n  text: Click\n",
		"button/button.html", "<button>{{ text }}</button>",
		"card/card.html", "<div class=card></div>",
		"card/card.config.json", `{"hidden": true, "context": {"title": "Card"}}`,
		"button-group/ButtonGroup.html", "<div/>",
		"notes/readme.md", "no view",
	)
	transform := components.FromFiles(components.WithViewExtensions(".html"))

	records, err := transform(context.Background(), append(files, "not a file"))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	got := make([]components.Component, 0, len(records))
	for _, record := range records {
		c := record.(*components.Component)
		got = append(got, components.Component{
			Handle: c.Handle, Label: c.Label, Status: c.Status, Hidden: c.Hidden, Context: c.Context,
		})
	}
	want := []components.Component{
		{Handle: "button", Label: "Primary Button", Status: "wip", Context: map[string]any{"text": "Click"}},
		{Handle: "card", Label: "Card", Status: "ready", Hidden: true, Context: map[string]any{"title": "Card"}},
		{Handle: "button-group", Label: "Button Group", Status: "ready", Context: map[string]any{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	button := records[0].(*components.Component)
	if button.View != "<button>{{ text }}</button>" || !strings.HasSuffix(button.ViewPath, "button.html") {
		t.Fatalf("unexpected view: %q at %s", button.View, button.ViewPath)
	}
}

func TestFromFiles_UsesAdapterTags(t *testing.T) {
	files := testsupport.Files("/lib",
		"badge/badge.pongo", "<span>{{ label }}</span>",
		"badge/badge.css", ".badge{}",
		"_hidden/_draft.pongo", "draft",
	)
	for _, record := range files {
		file := record.(*source.File)
		if file.Ext == ".pongo" {
			file.SetMeta(components.MetaAdapter, "pongo2")
		}
	}

	records, err := components.FromFiles()(context.Background(), files)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 components, got %d", len(records))
	}
	badge := records[0].(*components.Component)
	if badge.Adapter != "pongo2" || badge.Handle != "badge" {
		t.Fatalf("unexpected badge: %+v", badge)
	}
	draft := records[1].(*components.Component)
	if !draft.Hidden || draft.Handle != "draft" {
		t.Fatalf("underscore prefix should hide component: %+v", draft)
	}
}

func TestFromFiles_DuplicateHandles(t *testing.T) {
	files := testsupport.Files("/lib",
		"a/button.html", "a",
		"b/button.html", "b",
	)
	_, err := components.FromFiles(components.WithViewExtensions("html"))(context.Background(), files)
	if err == nil || !strings.Contains(err.Error(), `duplicate handle "button"`) {
		t.Fatalf("want duplicate handle error, got %v", err)
	}
}

func TestFromFiles_TwoViewsForOneComponent(t *testing.T) {
	files := testsupport.Files("/lib",
		"button/button.html", "<button/>",
		"button/button.pongo", "<button>{{ label }}</button>",
	)
	files[1].(*source.File).SetMeta(components.MetaAdapter, "pongo2")

	_, err := components.FromFiles(components.WithViewExtensions(".html"))(context.Background(), files)
	if err == nil || !strings.Contains(err.Error(), "more than one view") {
		t.Fatalf("want more than one view error, got %v", err)
	}
	if !strings.Contains(err.Error(), "button.html") || !strings.Contains(err.Error(), "button.pongo") {
		t.Fatalf("error should name both views: %v", err)
	}
}

func TestFromFiles_InvalidConfig(t *testing.T) {
	files := testsupport.Files("/lib",
		"card/card.html", "<div/>",
		"card/card.config.yml", "context: [unterminated",
	)
	if _, err := components.FromFiles(components.WithViewExtensions(".html"))(context.Background(), files); err == nil {
		t.Fatalf("expected config decode error")
	}
}

func TestFindAndRenderContext(t *testing.T) {
	records := []any{
		&components.Component{Handle: "card", Context: map[string]any{"title": "Card", "size": "m"}},
		"ignored",
	}
	card, ok := components.Find(records, " card ")
	if !ok {
		t.Fatalf("expected card to be found")
	}
	if _, ok := components.Find(records, "missing"); ok {
		t.Fatalf("expected missing handle")
	}

	got := card.RenderContext(map[string]any{"size": "l"})
	want := map[string]any{"title": "Card", "size": "l"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleizeAndLabelize(t *testing.T) {
	cases := map[string]string{
		"ButtonGroup":    "button-group",
		"button_group":   "button-group",
		"Primary Button": "primary-button",
		"card":           "card",
	}
	for in, want := range cases {
		if got := components.Handleize(in); got != want {
			t.Fatalf("Handleize(%q): want %q, got %q", in, want, got)
		}
	}
	if got := components.Labelize("button-group"); got != "Button Group" {
		t.Fatalf("Labelize: got %q", got)
	}
}
