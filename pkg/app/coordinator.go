package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/note"
)

// Mutator submits note mutations to the server.
type Mutator interface {
	CreateNote(ctx context.Context, d note.Draft) (*note.Note, error)
	UpdateNote(ctx context.Context, id note.ID, d note.Draft) (*note.Note, error)
	DeleteNote(ctx context.Context, id note.ID) error
}

// Coordinator applies mutations and decides which page to reload after each
// one. Nothing is changed locally before the server accepts a mutation.
type Coordinator struct {
	api Mutator
	ctl *collection.Controller
	log zerolog.Logger
}

// NewCoordinator wires a Coordinator to the controller it reloads.
func NewCoordinator(m Mutator, ctl *collection.Controller, log *zerolog.Logger) *Coordinator {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "mutations").Logger()
	}
	return &Coordinator{api: m, ctl: ctl, log: l}
}

// Create submits d, merges its tag names and reloads page 0.
func (c *Coordinator) Create(ctx context.Context, d note.Draft) (*note.Note, error) {
	d = d.Normalize()
	n, err := c.api.CreateNote(ctx, d)
	if err != nil {
		c.fail("create", err)
		return nil, err
	}
	c.ctl.Tags().Merge(d.TagNames...)
	c.ctl.Notify(collection.LevelInfo, "Note created")
	c.reload(ctx, 0)
	return n, nil
}

// Update submits d for id, merges its tag names and reloads the visible page.
func (c *Coordinator) Update(ctx context.Context, id note.ID, d note.Draft) (*note.Note, error) {
	d = d.Normalize()
	page := c.ctl.View().Page
	n, err := c.api.UpdateNote(ctx, id, d)
	if err != nil {
		c.fail("update", err)
		return nil, err
	}
	c.ctl.Tags().Merge(d.TagNames...)
	c.ctl.Notify(collection.LevelInfo, "Note updated")
	c.reload(ctx, page)
	return n, nil
}

// Delete removes id. When the note was the only one on a page past the
// first, the previous page is reloaded instead of the emptied one. The tag
// index is left alone.
func (c *Coordinator) Delete(ctx context.Context, id note.ID) error {
	view := c.ctl.View()
	if err := c.api.DeleteNote(ctx, id); err != nil {
		c.fail("delete", err)
		return err
	}
	c.ctl.Notify(collection.LevelInfo, "Note deleted")
	c.reload(ctx, PageAfterDelete(view, id))
	return nil
}

// PageAfterDelete returns the page to reload once id is gone from view.
func PageAfterDelete(view collection.View, id note.ID) int {
	if len(view.Notes) == 1 && view.Notes[0].ID == id && view.Page > 0 {
		return view.Page - 1
	}
	return view.Page
}

func (c *Coordinator) reload(ctx context.Context, page int) {
	// The controller already reported the failure as a notice.
	if err := c.ctl.Reload(ctx, page); err != nil {
		c.log.Debug().Err(err).Int("page", page).Msg("reload after mutation failed")
	}
}

func (c *Coordinator) fail(op string, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.IsValidation() {
		// Field messages belong next to the inputs, not in a global notice.
		c.log.Debug().Err(err).Str("op", op).Msg("mutation rejected by validation")
		return
	}
	c.log.Debug().Err(err).Str("op", op).Msg("mutation failed")
	c.ctl.Notify(collection.LevelError, "Failed to "+op+" note: "+collection.Message(err))
}
