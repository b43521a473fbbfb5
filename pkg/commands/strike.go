package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/runner/strike"
)

func addDelete(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	co := &options.ConfirmOptions{}
	oo := &options.OutputOptions{}
	qo := &options.QueryOptions{}

	cmd := &cobra.Command{
		Use:     "delete <note id>",
		Aliases: []string{"rm", "strike"},
		Short:   "delete a note",
		Long: `Delete a note after confirmation. --page, --search and --tag name the
listing the note was found on, the same flags list takes. Deleting the only
note of a later page shows the page before it.`,
		Example: `
notes delete 42
notes delete 42 --page 2 --yes
notes delete 42 --tag books --page 1
`,
		Args: func(cmd *cobra.Command, args []string) error {
			return io.IDFromArgs(args)
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := qo.Validate(); err != nil {
				return err
			}
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				s := strike.Strike{
					ID:      io.NoteID(),
					Listing: qo.Query(),
					Yes:     co.Yes || oo.Structured(),
					ShowID:  io.ShowID,
					Service: svc,
					Output:  oo,
				}
				return s.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddListingArgs(cmd, qo, "tag")
	_ = cmd.RegisterFlagCompletionFunc("tag", tagCompletion)
	options.AddConfirmArgs(cmd, co)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
