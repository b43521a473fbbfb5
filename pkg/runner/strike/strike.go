package strike

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/runner/get"
)

// ErrAborted is returned when the user declines the confirmation.
var ErrAborted = errors.New("delete aborted")

// Strike deletes a note after confirmation and shows the page that is
// reloaded afterwards. Listing is the filtered page the note was found on.
type Strike struct {
	ID      note.ID
	Listing collection.Query
	Yes     bool
	ShowID  bool
	Service *app.Service
	Output  *options.OutputOptions

	// Confirm defaults to a promptui yes/no prompt.
	Confirm func(label string) (bool, error)
}

func (n *Strike) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no service")
	}
	if _, err := n.Service.RequireSession(); err != nil {
		return err
	}

	ctl := n.Service.Collection
	if err := ctl.Apply(ctx, n.Listing); err != nil {
		return err
	}

	if !n.Yes {
		label := fmt.Sprintf("Delete note %s", n.ID)
		for _, v := range ctl.View().Notes {
			if v.ID == n.ID {
				label = fmt.Sprintf("Delete %q", v.Title)
				break
			}
		}
		confirm := n.Confirm
		if confirm == nil {
			confirm = PromptConfirm
		}
		ok, err := confirm(label)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := n.Service.Notes.Delete(ctx, n.ID); err != nil {
		return err
	}
	out := n.Output
	if out == nil {
		out = &options.OutputOptions{}
	}
	if !out.Structured() {
		_, _ = fmt.Fprintf(out.Writer(), "\nDeleted note %s.\n", n.ID)
	}
	return get.Render(ctl.View(), ctl.PageSize(), n.ShowID, out)
}

// PromptConfirm asks a yes/no question on the terminal.
func PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
