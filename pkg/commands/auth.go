package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/runner/auth"
)

func addLogin(topLevel *cobra.Command) {
	addSignIn(topLevel, false)
}

func addRegister(topLevel *cobra.Command) {
	addSignIn(topLevel, true)
}

func addSignIn(topLevel *cobra.Command, register bool) {
	co := &options.CredentialOptions{}
	oo := &options.OutputOptions{}

	use, short, example := "login", "log in and remember the session", `
notes login --email me@example.com
`
	if register {
		use, short, example = "register", "create an account and log in", `
notes register --email me@example.com
`
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				l := auth.Login{
					Register: register,
					Email:    co.Email,
					Password: co.Password,
					Service:  svc,
					Output:   oo,
				}
				return l.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddCredentialArgs(cmd, co)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "forget the stored session",
		Example: `
notes logout
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				l := auth.Logout{Service: svc, Output: oo}
				return l.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "show the logged in account",
		Example: `
notes whoami -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withService(cmd, func(ctx context.Context, svc *app.Service) error {
				w := auth.WhoAmI{Service: svc, Output: oo}
				return w.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
