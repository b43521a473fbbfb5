package add

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/get"
	"tableflip.dev/notes/pkg/runner/show"
)

// Add creates a note and shows the refreshed first page.
type Add struct {
	Draft   note.Draft
	ShowID  bool
	Service *app.Service
	Output  *options.OutputOptions
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	if _, err := n.Service.RequireSession(); err != nil {
		return err
	}
	if strings.TrimSpace(n.Draft.Title) == "" {
		return errors.New("a title is required, use --title")
	}
	created, err := n.Service.Notes.Create(ctx, n.Draft)
	if err != nil {
		return err
	}
	return report(created, n.Service, n.ShowID, n.Output)
}

// Edit replaces the given fields of an existing note. Fields not given on
// the command line keep their current values.
type Edit struct {
	ID      note.ID
	Fields  *options.NoteOptions
	Listing collection.Query
	ShowID  bool
	Service *app.Service
	Output  *options.OutputOptions
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not edit, no service")
	}
	if _, err := n.Service.RequireSession(); err != nil {
		return err
	}
	if n.Fields == nil || !n.Fields.Changed() {
		return errors.New("nothing to change, use --title, --content or --tag")
	}
	current, err := n.Service.API.GetNote(ctx, n.ID)
	if err != nil {
		return err
	}
	// Establish the listing the edit is made from; it is the page reloaded.
	ctl := n.Service.Collection
	if err := ctl.Apply(ctx, n.Listing); err != nil {
		return err
	}
	updated, err := n.Service.Notes.Update(ctx, n.ID, n.Fields.Overlay(current.Draft()))
	if err != nil {
		return err
	}
	return report(updated, n.Service, n.ShowID, n.Output)
}

func report(n *note.Note, svc *app.Service, showID bool, out *options.OutputOptions) error {
	if out == nil {
		out = &options.OutputOptions{}
	}
	if out.Structured() {
		if n != nil {
			return show.Render(n, showID, out)
		}
		return out.Print(get.NewResult(svc.Collection.View()), func() {})
	}
	if n != nil {
		_, _ = fmt.Fprintf(out.Writer(), "\nSaved %q.\n", n.Title)
	}
	return get.Render(svc.Collection.View(), svc.Collection.PageSize(), showID, out)
}
