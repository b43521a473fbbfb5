// Package note holds the server-owned records the client observes: notes,
// their tags, the paged listing envelope, and the authenticated principal.
package note

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque server-assigned identifier. The API emits numbers; the
// client never interprets them beyond equality and URL embedding.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("note: id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// Tag is a tag reference as it appears inside a note.
type Tag struct {
	ID   ID     `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// Note is a cached copy of a server note.
type Note struct {
	ID        ID        `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Tags      []Tag     `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt Timestamp `json:"createdAt" yaml:"createdAt"`
}

// TagNames returns the note's tag names in server order.
func (n *Note) TagNames() []string {
	if n == nil || len(n.Tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Draft builds an editable draft from the note's current values.
func (n *Note) Draft() Draft {
	return Draft{
		Title:    n.Title,
		Content:  n.Content,
		TagNames: n.TagNames(),
	}
}

func (n *Note) String() string {
	if len(n.Tags) == 0 {
		return n.Title
	}
	return fmt.Sprintf("%s [%s]", n.Title, strings.Join(n.TagNames(), ", "))
}

// Draft is the request body for creating or updating a note.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	TagNames []string `json:"tagNames"`
}

// Normalize trims the title and tag names and drops empty or repeated tags.
// Order of first appearance is kept.
func (d Draft) Normalize() Draft {
	out := Draft{
		Title:    strings.TrimSpace(d.Title),
		Content:  d.Content,
		TagNames: make([]string, 0, len(d.TagNames)),
	}
	seen := make(map[string]struct{}, len(d.TagNames))
	for _, name := range d.TagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out.TagNames = append(out.TagNames, name)
	}
	return out
}

// Page is one server page of notes. Every field is authoritative.
type Page struct {
	Content       []Note `json:"content" yaml:"content"`
	Number        int    `json:"number" yaml:"number"`
	TotalPages    int    `json:"totalPages" yaml:"totalPages"`
	TotalElements int64  `json:"totalElements" yaml:"totalElements"`
}

// TagNames collects every tag name on the page, duplicates included.
func (p *Page) TagNames() []string {
	if p == nil {
		return nil
	}
	var names []string
	for i := range p.Content {
		names = append(names, p.Content[i].TagNames()...)
	}
	return names
}

// Principal is the authenticated user.
type Principal struct {
	ID    ID     `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// Credentials are posted to the login and register endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string `json:"token"`
	Principal
}
