package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/runner/get"
	"tableflip.dev/notes/pkg/runner/show"
	"tableflip.dev/notes/pkg/runner/tags"
)

func addList(topLevel *cobra.Command) {
	qo := &options.QueryOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"get", "ls"},
		Short:   "list one page of notes, optionally filtered",
		Long: `List one page of notes, newest first.

--search matches title and content, --tag keeps notes carrying that tag.
Both filters apply together. Pages are numbered from 0.`,
		Example: `
notes list
notes list --tag go --page 1
notes list --search "release notes" -o json
`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := qo.Validate(); err != nil {
				return err
			}
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				g := get.Get{
					ShowID:  io.ShowID,
					Query:   qo.Query(),
					Service: svc,
					Output:  oo,
				}
				return g.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddQueryArgs(cmd, qo)
	_ = cmd.RegisterFlagCompletionFunc("tag", tagCompletion)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "show <note id>",
		Short: "show a single note",
		Example: `
notes show 42
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return io.IDFromArgs(args)
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				s := show.Show{
					ID:      io.NoteID(),
					ShowID:  io.ShowID,
					Service: svc,
					Output:  oo,
				}
				return s.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addTags(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "list tag names seen on the first pages of notes",
		Long: `List tag names.

The server has no tag listing, so names are collected from the first
--seed-pages pages of notes.`,
		Example: `
notes tags
notes tags --seed-pages 10 -o yaml
`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				t := tags.Tags{Service: svc, Output: oo}
				return t.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
