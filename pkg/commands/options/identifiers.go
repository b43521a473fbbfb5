package options

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/note"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     string
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each note.")
}

// IDFromArgs takes the note id from the first positional argument.
func (o *IDOptions) IDFromArgs(args []string) error {
	if len(args) < 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("a note id is required")
	}
	if len(args) > 1 {
		return errors.New("too many arguments, expected one note id")
	}
	o.ID = strings.TrimSpace(args[0])
	return nil
}

// NoteID returns the parsed id.
func (o *IDOptions) NoteID() note.ID {
	return note.ID(o.ID)
}
