package api

import (
	"context"
	"errors"
	"net/http"

	"tableflip.dev/notes/pkg/note"
)

// Login exchanges credentials for a token and principal.
func (c *Client) Login(ctx context.Context, creds note.Credentials) (*note.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

// Register creates an account and returns its token and principal.
func (c *Client) Register(ctx context.Context, creds note.Credentials) (*note.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds note.Credentials) (*note.AuthResult, error) {
	res, err := c.Execute(ctx, Request{Method: http.MethodPost, Path: path, Body: creds})
	if err != nil {
		return nil, err
	}
	var out note.AuthResult
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("api: server returned no token")
	}
	return &out, nil
}

// Me returns the principal for the current credential. Any failure,
// including an empty response, means the credential is not usable.
func (c *Client) Me(ctx context.Context) (*note.Principal, error) {
	res, err := c.Execute(ctx, Request{Method: http.MethodGet, Path: "/auth/me"})
	if err != nil {
		return nil, err
	}
	var p note.Principal
	if err := res.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
