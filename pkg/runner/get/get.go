package get

import (
	"context"
	"errors"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/commands/options"
	"tableflip.dev/notes/pkg/printers"
)

// Get lists one page of notes.
type Get struct {
	ShowID  bool
	Query   collection.Query
	Service *app.Service
	Output  *options.OutputOptions
}

// Result is the structured form of a listed page.
type Result struct {
	Notes         interface{} `json:"notes" yaml:"notes"`
	Page          int         `json:"page" yaml:"page"`
	TotalPages    int         `json:"totalPages" yaml:"totalPages"`
	TotalElements int64       `json:"totalElements" yaml:"totalElements"`
	Search        string      `json:"search,omitempty" yaml:"search,omitempty"`
	Tag           string      `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// NewResult converts a view for structured output.
func NewResult(v collection.View) Result {
	return Result{
		Notes:         v.Notes,
		Page:          v.Page,
		TotalPages:    v.TotalPages,
		TotalElements: v.TotalElements,
		Search:        v.Search,
		Tag:           v.Tag,
	}
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	if _, err := n.Service.RequireSession(); err != nil {
		return err
	}
	ctl := n.Service.Collection
	if err := ctl.Apply(ctx, n.Query); err != nil {
		return err
	}
	return Render(ctl.View(), ctl.PageSize(), n.ShowID, n.Output)
}

// Render prints a view in the selected output format.
func Render(v collection.View, pageSize int, showID bool, out *options.OutputOptions) error {
	if out == nil {
		out = &options.OutputOptions{}
	}
	return out.Print(NewResult(v), func() {
		pp := printers.PrettyPrint{Out: out.Writer(), ShowID: showID}
		pp.NewLine()
		title := "Notes"
		if v.Tag != "" {
			title += " #" + v.Tag
		}
		if v.Search != "" {
			title += " matching \"" + v.Search + "\""
		}
		pp.TitleWithCount(title, v.TotalElements)
		pp.Page(v, pageSize)
	})
}
