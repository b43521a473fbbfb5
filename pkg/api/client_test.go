package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tableflip.dev/notes/pkg/note"
)

type staticCredential string

func (s staticCredential) Credential() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, creds CredentialSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Credentials: creds})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestExecuteAttachesBearerCredential(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusNoContent)
	}, staticCredential("tok-1"))

	if _, err := c.Execute(context.Background(), Request{Path: "/notes"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Errorf("missing request id")
	}
}

func TestExecuteOmitsAuthorizationWithoutCredential(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, staticCredential(""))

	if _, err := c.Execute(context.Background(), Request{Path: "/auth/login"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if present {
		t.Errorf("authorization header sent without a credential")
	}
}

func TestExecuteEmptySuccessShapes(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"no content": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
		"zero length json": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		},
		"plain text": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, "note updated")
		},
		"invalid json": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, "{not json")
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, h, nil)
			res, err := c.Execute(context.Background(), Request{Path: "/notes"})
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !res.Empty() {
				t.Fatalf("expected empty result, got %q", res.Body)
			}
			var v map[string]interface{}
			if err := res.Decode(&v); !errors.Is(err, ErrEmpty) {
				t.Fatalf("decode: got %v, want ErrEmpty", err)
			}
		})
	}
}

func TestExecuteFieldValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  400,
			"message": "validation failed",
			"errors":  map[string]string{"title": "title must not be blank"},
		})
	}, nil)

	_, err := c.CreateNote(context.Background(), note.Draft{})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if !apiErr.IsValidation() {
		t.Fatalf("expected validation error")
	}
	if apiErr.FieldErrors["title"] != "title must not be blank" {
		t.Errorf("field errors = %v", apiErr.FieldErrors)
	}
	if apiErr.Message != "validation failed" || apiErr.Status != http.StatusBadRequest {
		t.Errorf("unexpected %+v", apiErr)
	}
}

func TestExecuteGeneralErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notes/404":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"status":404,"message":"note 404 not found","errors":null}`)
		case "/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "<html>boom</html>")
		}
	}, nil)

	_, err := c.GetNote(context.Background(), "404")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "note 404 not found" || apiErr.IsValidation() {
		t.Fatalf("unexpected error %#v", err)
	}

	_, err = c.Me(context.Background())
	if !errors.As(err, &apiErr) || !apiErr.Unauthorized() {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = c.ListNotes(context.Background(), ListQuery{Size: 9})
	if !errors.As(err, &apiErr) || apiErr.Message != "Request failed with status 500" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestExecuteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.Execute(context.Background(), Request{Path: "/notes"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != 0 || apiErr.Err == nil {
		t.Errorf("unexpected %+v", apiErr)
	}
}

func TestListNotesQueryOmitsEmptyFilters(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":[],"number":0,"totalPages":0,"totalElements":0}`)
	}, nil)

	if _, err := c.ListNotes(context.Background(), ListQuery{Page: 2, Size: 9}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if raw != "page=2&size=9" {
		t.Errorf("query = %q", raw)
	}

	if _, err := c.ListNotes(context.Background(), ListQuery{Size: 9, Search: "go lang", Tag: "ml"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if raw != "page=0&search=go+lang&size=9&tag=ml" {
		t.Errorf("query = %q", raw)
	}
}

func TestListNotesNoContentIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)
	page, err := c.ListNotes(context.Background(), ListQuery{Size: 9})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page != nil {
		t.Fatalf("expected nil page, got %+v", page)
	}
}

func TestListNotesOversizedPageIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		content := strings.Repeat("x", maxBodyBytes+1024)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":       []note.Note{{ID: "1", Title: "big", Content: content}},
			"number":        0,
			"totalPages":    1,
			"totalElements": 1,
		})
	}, nil)
	page, err := c.ListNotes(context.Background(), ListQuery{Size: 9})
	if page != nil {
		t.Fatalf("expected no page, got %d notes", len(page.Content))
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "too large") {
		t.Fatalf("err = %v", err)
	}
}

func TestListNotesJustUnderLimitDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		content := strings.Repeat("x", maxBodyBytes-1024)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":       []note.Note{{ID: "1", Title: "big", Content: content}},
			"number":        0,
			"totalPages":    1,
			"totalElements": 1,
		})
	}, nil)
	page, err := c.ListNotes(context.Background(), ListQuery{Size: 9})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page == nil || len(page.Content) != 1 || len(page.Content[0].Content) != maxBodyBytes-1024 {
		t.Fatalf("page not decoded")
	}
}

func TestDeleteNoteAcceptsNoBody(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}, nil)
	if err := c.DeleteNote(context.Background(), "42"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if method != http.MethodDelete || path != "/notes/42" {
		t.Errorf("got %s %s", method, path)
	}
}

func TestCreateNoteSendsDraft(t *testing.T) {
	var got note.Draft
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":5,"title":"t","content":"c","tags":[{"id":1,"name":"ml"}]}`)
	}, nil)

	n, err := c.CreateNote(context.Background(), note.Draft{Title: "t", Content: "c", TagNames: []string{"ml"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.ID != "5" || len(got.TagNames) != 1 || got.TagNames[0] != "ml" {
		t.Fatalf("unexpected note %+v / draft %+v", n, got)
	}
}

func TestLoginRequiresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"email":"a@b.c"}`)
	}, nil)
	if _, err := c.Login(context.Background(), note.Credentials{Email: "a@b.c", Password: "x"}); err == nil {
		t.Fatalf("expected error for missing token")
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "not a url"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolveKeepsBasePath(t *testing.T) {
	c, err := New(Options{BaseURL: "https://example.com/api/"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.resolve("/notes/1", nil); got != "https://example.com/api/notes/1" {
		t.Errorf("resolve = %q", got)
	}
}
