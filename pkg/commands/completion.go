package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(notes completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(notes completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// tagCompletion offers tag names discovered by the startup scan.
func tagCompletion(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	_ = withService(cmd, func(ctx context.Context, svc *app.Service) error {
		if !svc.Session.Authenticated() {
			return nil
		}
		if err := svc.Collection.Mount(ctx); err != nil {
			return err
		}
		names = svc.Tags.Complete(toComplete)
		return nil
	})
	return names, cobra.ShellCompDirectiveNoFileComp
}
