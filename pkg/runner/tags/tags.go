package tags

import (
	"context"
	"errors"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/printers"
)

// Tags mounts the collection, which loads the first page and runs the
// bounded tag discovery scan, then prints every tag name seen.
type Tags struct {
	Service *app.Service
	Output  *options.OutputOptions
}

func (n *Tags) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not list tags, no service")
	}
	if _, err := n.Service.RequireSession(); err != nil {
		return err
	}
	if err := n.Service.Collection.Mount(ctx); err != nil {
		return err
	}
	names := n.Service.Tags.Snapshot()
	out := n.Output
	if out == nil {
		out = &options.OutputOptions{}
	}
	return out.Print(names, func() {
		pp := printers.PrettyPrint{Out: out.Writer()}
		pp.NewLine()
		pp.TitleWithCount("Tags", int64(len(names)))
		pp.Tags(names)
	})
}
