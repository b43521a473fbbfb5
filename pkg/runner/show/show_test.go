package show

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/internal/runnertest"
)

func init() {
	color.NoColor = true
}

func TestShowMergesTags(t *testing.T) {
	srv, svc := runnertest.Open(t, true)
	n := srv.Insert(note.Draft{Title: "Plan", Content: "ship it", TagNames: []string{"work", "q3"}})

	var buf bytes.Buffer
	s := Show{ID: n.ID, ShowID: true, Service: svc, Output: &options.OutputOptions{Out: &buf}}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("show: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Plan", "ship it", "#work", "id " + n.ID.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Join(svc.Tags.Snapshot(), ","); got != "q3,work" {
		t.Fatalf("tags = %q", got)
	}
}

func TestShowNotFound(t *testing.T) {
	_, svc := runnertest.Open(t, true)
	s := Show{ID: "404", Service: svc}
	err := s.Do(context.Background())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("err = %v", err)
	}
}
