package options

import (
	"github.com/spf13/cobra"
)

// CredentialOptions
type CredentialOptions struct {
	Email    string
	Password string
}

func AddCredentialArgs(cmd *cobra.Command, o *CredentialOptions) {
	cmd.Flags().StringVarP(&o.Email, "email", "e", "",
		"Account email. Prompted for when empty.")
	cmd.Flags().StringVar(&o.Password, "password", "",
		"Account password. Prompted for, masked, when empty.")
}

// ConfirmOptions
type ConfirmOptions struct {
	Yes bool
}

func AddConfirmArgs(cmd *cobra.Command, o *ConfirmOptions) {
	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false,
		"Skip the confirmation prompt.")
}
