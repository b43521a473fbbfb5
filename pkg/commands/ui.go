package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	teaui "tableflip.dev/notes/pkg/runner/tea"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the terminal notes browser",
		Example: `
notes ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd)
		},
	}

	topLevel.AddCommand(cmd)
}

func runUI(cmd *cobra.Command) error {
	return withService(cmd, func(_ context.Context, svc *app.Service) error {
		return teaui.Run(svc)
	})
}
