package options

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/notes/pkg/collection"
)

// QueryOptions select which page of notes to show.
type QueryOptions struct {
	Search string
	Tag    string
	Page   int
}

func AddQueryArgs(cmd *cobra.Command, o *QueryOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Only notes whose title or content match.")
	cmd.Flags().StringVarP(&o.Tag, "tag", "t", "",
		"Only notes carrying this tag.")
	AddPageArg(cmd, &o.Page)
}

// AddListingArgs registers the flags naming the listing a note was found
// on: --search, the tag filter under tagFlag, and --page.
func AddListingArgs(cmd *cobra.Command, o *QueryOptions, tagFlag string) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Search term of the listing the note is on.")
	cmd.Flags().StringVar(&o.Tag, tagFlag, "",
		"Tag filter of the listing the note is on.")
	AddPageArg(cmd, &o.Page)
}

// AddPageArg registers the zero-based --page flag.
func AddPageArg(cmd *cobra.Command, page *int) {
	cmd.Flags().IntVarP(page, "page", "p", 0,
		"Zero-based page of the listing to work against.")
}

func (o *QueryOptions) Validate() error {
	if o.Page < 0 {
		return errors.New("--page must not be negative")
	}
	return nil
}

// Query converts the flags into a controller query.
func (o *QueryOptions) Query() collection.Query {
	return collection.Query{Search: o.Search, Tag: o.Tag, Page: o.Page}
}
