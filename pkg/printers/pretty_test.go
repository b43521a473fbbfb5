package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/note"
)

func init() {
	color.NoColor = true
}

func TestPageFooter(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, ShowID: true}
	pp.Page(collection.View{
		Page:          1,
		TotalPages:    2,
		TotalElements: 11,
		Notes: []note.Note{
			{ID: "10", Title: "first", Tags: []note.Tag{{Name: "go"}}},
			{ID: "11", Title: "second"},
		},
	}, 9)

	out := buf.String()
	for _, want := range []string{"first", "#go", "10", "Showing 10 - 11 of 11", "(page 2 of 2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPageEmptyStates(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Page(collection.View{}, 9)
	if !strings.Contains(buf.String(), "No notes yet") {
		t.Errorf("unexpected %q", buf.String())
	}
	buf.Reset()
	pp.Page(collection.View{Search: "zzz"}, 9)
	if !strings.Contains(buf.String(), "No matching notes") {
		t.Errorf("unexpected %q", buf.String())
	}
}

func TestStructuredOutput(t *testing.T) {
	n := note.Note{ID: "3", Title: "t", Tags: []note.Tag{{Name: "ml"}}}

	var js bytes.Buffer
	if err := JSON(&js, n); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(js.String(), `"id": "3"`) {
		t.Errorf("json = %s", js.String())
	}

	var ys bytes.Buffer
	if err := YAML(&ys, n); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(ys.String(), "title: t") || !strings.Contains(ys.String(), "name: ml") {
		t.Errorf("yaml = %s", ys.String())
	}
}
