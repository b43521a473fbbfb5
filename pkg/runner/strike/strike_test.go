package strike

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/runner/internal/runnertest"
	"tableflip.dev/notes/pkg/session"
)

func TestStrikeLastNoteOnPageReloadsPreviousPage(t *testing.T) {
	srv, svc := runnertest.Open(t, true)
	srv.Seed(10, "go")
	// Oldest note sits alone on page 1.
	target := srv.Notes()[9]

	var buf bytes.Buffer
	var asked string
	s := Strike{
		ID:      target.ID,
		Listing: collection.Query{Page: 1},
		Service: svc,
		Output:  &options.OutputOptions{Out: &buf},
		Confirm: func(label string) (bool, error) {
			asked = label
			return true, nil
		},
	}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if asked != `Delete "note 0"` {
		t.Errorf("confirm label = %q", asked)
	}
	reqs := srv.Requests()
	if last := reqs[len(reqs)-1]; !strings.Contains(last, "GET /notes?page=0") {
		t.Fatalf("last request = %q", last)
	}
	if v := svc.Collection.View(); v.Page != 0 || v.TotalElements != 9 {
		t.Fatalf("view = %+v", v)
	}
	if !strings.Contains(buf.String(), "Deleted note") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestStrikeReloadsFilteredListing(t *testing.T) {
	srv, svc := runnertest.Open(t, true)
	srv.Seed(19, "go", "rust")
	// Ten go notes: the oldest, "note 0", is alone on page 1 of the go
	// listing but shares page 1 of the unfiltered listing.
	target := srv.Notes()[18]

	s := Strike{
		ID:      target.ID,
		Listing: collection.Query{Tag: "go", Page: 1},
		Yes:     true,
		Service: svc,
		Output:  &options.OutputOptions{Out: &bytes.Buffer{}},
	}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	if !strings.Contains(last, "page=0") || !strings.Contains(last, "tag=go") {
		t.Fatalf("last request = %q", last)
	}
	if v := svc.Collection.View(); v.Page != 0 || v.Tag != "go" || v.TotalElements != 9 {
		t.Fatalf("view = %+v", v)
	}
}

func TestStrikeDeclined(t *testing.T) {
	srv, svc := runnertest.Open(t, true)
	srv.Seed(2)
	s := Strike{
		ID:      srv.Notes()[0].ID,
		Service: svc,
		Output:  &options.OutputOptions{Out: &bytes.Buffer{}},
		Confirm: func(string) (bool, error) { return false, nil },
	}
	if err := s.Do(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v", err)
	}
	if len(srv.Notes()) != 2 {
		t.Fatalf("declined delete removed a note")
	}
}

func TestStrikeRequiresSession(t *testing.T) {
	_, svc := runnertest.Open(t, false)
	s := Strike{ID: "1", Yes: true, Service: svc}
	if err := s.Do(context.Background()); !errors.Is(err, session.ErrUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
}
