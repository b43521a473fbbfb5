// Package options defines shared flag helpers for CLI commands.
package options

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/printers"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// OutputOptions selects how read verbs render their result.
type OutputOptions struct {
	Output string
	// Out defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", OutputText,
		"Output format. One of 'text', 'json' or 'yaml'.")
}

// Validate rejects unknown formats.
func (o *OutputOptions) Validate() error {
	switch o.format() {
	case OutputText, OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q", o.Output)
}

// Structured reports whether output is machine readable.
func (o *OutputOptions) Structured() bool {
	f := o.format()
	return f == OutputJSON || f == OutputYAML
}

// Writer returns the destination for output.
func (o *OutputOptions) Writer() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return color.Output
}

// Print writes v in the structured format, or calls text otherwise.
func (o *OutputOptions) Print(v interface{}, text func()) error {
	switch o.format() {
	case OutputJSON:
		return printers.JSON(o.Writer(), v)
	case OutputYAML:
		return printers.YAML(o.Writer(), v)
	}
	text()
	return nil
}

// HandleError prints err in the structured format and swallows it, so
// scripted callers always get a parseable document. Field validation
// failures are listed under "fields". In text mode err is returned as is,
// after printing any field messages.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *api.Error
	isAPI := errors.As(err, &apiErr)

	if !o.Structured() {
		if isAPI && apiErr.IsValidation() {
			pp := printers.PrettyPrint{Out: o.Writer()}
			pp.FieldErrors(apiErr.FieldErrors)
		}
		return err
	}

	out := map[string]interface{}{
		"error": err.Error(),
	}
	if isAPI {
		out["error"] = apiErr.Message
		if apiErr.Status != 0 {
			out["status"] = apiErr.Status
		}
		if apiErr.IsValidation() {
			out["fields"] = apiErr.FieldErrors
		}
	}
	if perr := o.Print(out, func() {}); perr != nil {
		return perr
	}
	return nil
}

func (o *OutputOptions) format() string {
	f := strings.ToLower(strings.TrimSpace(o.Output))
	if f == "" {
		return OutputText
	}
	return f
}
