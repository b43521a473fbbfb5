package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/note"
)

// NoteOptions carry the editable fields of a note.
type NoteOptions struct {
	Title   string
	Content string
	Tags    []string

	titleSet   bool
	contentSet bool
	tagsSet    bool
}

func AddNoteArgs(cmd *cobra.Command, o *NoteOptions) {
	cmd.Flags().StringVar(&o.Title, "title", "",
		"Title of the note.")
	cmd.Flags().StringVar(&o.Content, "content", "",
		"Body of the note.")
	cmd.Flags().StringSliceVar(&o.Tags, "tag", nil,
		`Tag names, repeat or comma separate, example: --tag=go,ml.`)
}

// Capture records which fields were given on the command line.
func (o *NoteOptions) Capture(cmd *cobra.Command) {
	o.titleSet = cmd.Flags().Changed("title")
	o.contentSet = cmd.Flags().Changed("content")
	o.tagsSet = cmd.Flags().Changed("tag")
}

// Draft builds a draft from the flags alone.
func (o *NoteOptions) Draft() note.Draft {
	return note.Draft{Title: o.Title, Content: o.Content, TagNames: o.Tags}
}

// Overlay replaces the fields of base that were given on the command line.
func (o *NoteOptions) Overlay(base note.Draft) note.Draft {
	if o.titleSet {
		base.Title = o.Title
	}
	if o.contentSet {
		base.Content = o.Content
	}
	if o.tagsSet {
		base.TagNames = o.Tags
	}
	return base
}

// Changed reports whether any field was given.
func (o *NoteOptions) Changed() bool {
	return o.titleSet || o.contentSet || o.tagsSet
}
