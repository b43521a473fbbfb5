package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	no := &options.NoteOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "add a note",
		Example: `
notes add this is a note
notes add --title "Reading list" --content "SICP" --tag books,todo
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && !cmd.Flags().Changed("title") {
				no.Title = strings.Join(args, " ")
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				a := add.Add{
					Draft:   no.Draft(),
					ShowID:  io.ShowID,
					Service: svc,
					Output:  oo,
				}
				return a.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddNoteArgs(cmd, no)
	_ = cmd.RegisterFlagCompletionFunc("tag", tagCompletion)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command) {
	no := &options.NoteOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}
	qo := &options.QueryOptions{}

	cmd := &cobra.Command{
		Use:   "edit <note id>",
		Short: "change the title, content or tags of a note",
		Long: `Change a note. Only the fields given are replaced; --tag replaces the
whole tag list. --page, --search and --in-tag name the listing the note was
found on, which is the page reloaded afterwards.`,
		Example: `
notes edit 42 --title "Reading list (2024)"
notes edit 42 --tag books --page 1
notes edit 42 --content "done" --in-tag todo --page 1
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return io.IDFromArgs(args)
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			no.Capture(cmd)
			if err := qo.Validate(); err != nil {
				return err
			}
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				e := add.Edit{
					ID:      io.NoteID(),
					Fields:  no,
					Listing: qo.Query(),
					ShowID:  io.ShowID,
					Service: svc,
					Output:  oo,
				}
				return e.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddNoteArgs(cmd, no)
	_ = cmd.RegisterFlagCompletionFunc("tag", tagCompletion)
	options.AddListingArgs(cmd, qo, "in-tag")
	_ = cmd.RegisterFlagCompletionFunc("in-tag", tagCompletion)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
