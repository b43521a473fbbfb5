package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tableflip.dev/notes/pkg/note"
)

// ListQuery selects one page of notes. Empty Search and Tag are omitted
// from the request rather than sent as empty values.
type ListQuery struct {
	Page   int
	Size   int
	Search string
	Tag    string
}

// Values encodes the query string for GET /notes.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if t := strings.TrimSpace(q.Tag); t != "" {
		v.Set("tag", t)
	}
	return v
}

// ListNotes fetches one page. A nil page with a nil error means the server
// answered successfully without a payload.
func (c *Client) ListNotes(ctx context.Context, q ListQuery) (*note.Page, error) {
	res, err := c.Execute(ctx, Request{Method: http.MethodGet, Path: "/notes", Query: q.Values()})
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, nil
	}
	var page note.Page
	if err := res.Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetNote fetches a single note.
func (c *Client) GetNote(ctx context.Context, id note.ID) (*note.Note, error) {
	if id == "" {
		return nil, errors.New("api: note id required")
	}
	res, err := c.Execute(ctx, Request{Method: http.MethodGet, Path: notePath(id)})
	if err != nil {
		return nil, err
	}
	var n note.Note
	if err := res.Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote posts a draft. The returned note is nil when the server
// answered without a payload.
func (c *Client) CreateNote(ctx context.Context, d note.Draft) (*note.Note, error) {
	res, err := c.Execute(ctx, Request{Method: http.MethodPost, Path: "/notes", Body: d})
	if err != nil {
		return nil, err
	}
	return decodeOptionalNote(res)
}

// UpdateNote replaces the note's title, content and tags.
func (c *Client) UpdateNote(ctx context.Context, id note.ID, d note.Draft) (*note.Note, error) {
	if id == "" {
		return nil, errors.New("api: note id required")
	}
	res, err := c.Execute(ctx, Request{Method: http.MethodPut, Path: notePath(id), Body: d})
	if err != nil {
		return nil, err
	}
	return decodeOptionalNote(res)
}

// DeleteNote removes a note. The server answers with no body.
func (c *Client) DeleteNote(ctx context.Context, id note.ID) error {
	if id == "" {
		return errors.New("api: note id required")
	}
	_, err := c.Execute(ctx, Request{Method: http.MethodDelete, Path: notePath(id)})
	return err
}

func notePath(id note.ID) string {
	return "/notes/" + url.PathEscape(id.String())
}

func decodeOptionalNote(res *Result) (*note.Note, error) {
	if res.Empty() {
		return nil, nil
	}
	var n note.Note
	if err := res.Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}
