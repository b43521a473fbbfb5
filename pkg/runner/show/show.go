package show

import (
	"context"
	"errors"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/printers"
)

// Show prints a single note.
type Show struct {
	ID      note.ID
	ShowID  bool
	Service *app.Service
	Output  *options.OutputOptions
}

func (n *Show) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show, no service")
	}
	if _, err := n.Service.RequireSession(); err != nil {
		return err
	}
	got, err := n.Service.API.GetNote(ctx, n.ID)
	if err != nil {
		return err
	}
	n.Service.Tags.Merge(got.TagNames()...)
	return Render(got, n.ShowID, n.Output)
}

// Render prints a note in the selected output format.
func Render(got *note.Note, showID bool, out *options.OutputOptions) error {
	if out == nil {
		out = &options.OutputOptions{}
	}
	return out.Print(got, func() {
		pp := printers.PrettyPrint{Out: out.Writer(), ShowID: showID}
		pp.NewLine()
		pp.Note(got)
	})
}
