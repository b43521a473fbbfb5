// Package apitest runs an in-memory notes API over httptest for tests of
// packages that talk to the server.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/notes/pkg/note"
)

// Server is an in-memory notes API. Notes are listed newest first.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int
	notes     []note.Note
	users     map[string]string
	tokens    map[string]string
	requests  []string
	noContent bool
}

// NewServer starts a server that is closed when tb finishes.
func NewServer(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{
		users:  map[string]string{},
		tokens: map[string]string{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /auth/me", s.authed(s.me))
	mux.HandleFunc("GET /notes", s.authed(s.list))
	mux.HandleFunc("POST /notes", s.authed(s.create))
	mux.HandleFunc("GET /notes/{id}", s.authed(s.get))
	mux.HandleFunc("PUT /notes/{id}", s.authed(s.update))
	mux.HandleFunc("DELETE /notes/{id}", s.authed(s.delete))
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	tb.Cleanup(s.Close)
	return s
}

// AddUser registers an account and returns a valid token for it.
func (s *Server) AddUser(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
	return s.issueLocked(email)
}

// Seed inserts count notes titled "note N"; tags cycle through tagNames.
func (s *Server) Seed(count int, tagNames ...string) {
	for i := 0; i < count; i++ {
		d := note.Draft{Title: fmt.Sprintf("note %d", i), Content: "content"}
		if len(tagNames) > 0 {
			d.TagNames = []string{tagNames[i%len(tagNames)]}
		}
		s.Insert(d)
	}
}

// Insert adds a note as if it had been created through the API.
func (s *Server) Insert(d note.Draft) note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(d)
}

// SetNoContent makes GET /notes answer 204 with no body.
func (s *Server) SetNoContent(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noContent = v
}

// Notes returns the stored notes, newest first.
func (s *Server) Notes() []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]note.Note(nil), s.notes...)
}

// Requests returns "METHOD /path?query" for every request served.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) issueLocked(email string) string {
	token := fmt.Sprintf("token-%d-%s", len(s.tokens)+1, email)
	s.tokens[token] = email
	return token
}

func (s *Server) insertLocked(d note.Draft) note.Note {
	s.nextID++
	n := note.Note{
		ID:        note.ID(strconv.Itoa(s.nextID)),
		Title:     strings.TrimSpace(d.Title),
		Content:   d.Content,
		CreatedAt: note.Timestamp{Time: time.Date(2024, 1, 1, 9, 0, s.nextID, 0, time.Local)},
	}
	for i, name := range d.TagNames {
		n.Tags = append(n.Tags, note.Tag{ID: note.ID(strconv.Itoa(i + 1)), Name: name})
	}
	s.notes = append([]note.Note{n}, s.notes...)
	return n
}

type ctxHandler func(w http.ResponseWriter, r *http.Request, email string)

func (s *Server) authed(h ctxHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": 401, "message": "Unauthorized"})
			return
		}
		h(w, r, email)
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var creds note.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)
	fields := map[string]string{}
	if !strings.Contains(creds.Email, "@") {
		fields["email"] = "must be a well-formed email address"
	}
	if len(creds.Password) < 6 {
		fields["password"] = "size must be between 6 and 100"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}
	s.mu.Lock()
	if _, exists := s.users[creds.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]interface{}{"status": 409, "message": "Email already registered"})
		return
	}
	s.users[creds.Email] = creds.Password
	token := s.issueLocked(creds.Email)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, authBody(token, creds.Email))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds note.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)
	s.mu.Lock()
	pw, ok := s.users[creds.Email]
	if !ok || pw != creds.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": 401, "message": "Invalid email or password"})
		return
	}
	token := s.issueLocked(creds.Email)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, authBody(token, creds.Email))
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, email string) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "email": email, "role": "USER"})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, _ string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size < 1 {
		size = 10
	}
	search := strings.ToLower(q.Get("search"))
	tag := q.Get("tag")

	s.mu.Lock()
	noContent := s.noContent
	var matched []note.Note
	for _, n := range s.notes {
		if search != "" && !strings.Contains(strings.ToLower(n.Title+" "+n.Content), search) {
			continue
		}
		if tag != "" && !hasTag(n, tag) {
			continue
		}
		matched = append(matched, n)
	}
	s.mu.Unlock()

	if noContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	total := len(matched)
	body := map[string]interface{}{
		"content":       []note.Note{},
		"number":        page,
		"size":          size,
		"totalPages":    (total + size - 1) / size,
		"totalElements": total,
	}
	from, to := page*size, (page+1)*size
	if from < total {
		if to > total {
			to = total
		}
		body["content"] = matched[from:to]
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, _ string) {
	var d note.Draft
	_ = json.NewDecoder(r.Body).Decode(&d)
	if strings.TrimSpace(d.Title) == "" {
		writeValidation(w, map[string]string{"title": "Title is required"})
		return
	}
	writeJSON(w, http.StatusCreated, s.Insert(d))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(r.PathValue("id")); i >= 0 {
		writeJSON(w, http.StatusOK, s.notes[i])
		return
	}
	writeNotFound(w, r.PathValue("id"))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, _ string) {
	var d note.Draft
	_ = json.NewDecoder(r.Body).Decode(&d)
	if strings.TrimSpace(d.Title) == "" {
		writeValidation(w, map[string]string{"title": "Title is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(r.PathValue("id"))
	if i < 0 {
		writeNotFound(w, r.PathValue("id"))
		return
	}
	n := &s.notes[i]
	n.Title = strings.TrimSpace(d.Title)
	n.Content = d.Content
	n.Tags = nil
	for j, name := range d.TagNames {
		n.Tags = append(n.Tags, note.Tag{ID: note.ID(strconv.Itoa(j + 1)), Name: name})
	}
	writeJSON(w, http.StatusOK, *n)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(r.PathValue("id"))
	if i < 0 {
		writeNotFound(w, r.PathValue("id"))
		return
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) indexLocked(id string) int {
	for i := range s.notes {
		if s.notes[i].ID.String() == id {
			return i
		}
	}
	return -1
}

func hasTag(n note.Note, tag string) bool {
	for _, t := range n.Tags {
		if t.Name == tag {
			return true
		}
	}
	return false
}

func authBody(token, email string) map[string]interface{} {
	return map[string]interface{}{"token": token, "email": email, "id": 1, "role": "USER"}
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"status":  400,
		"message": "Validation failed",
		"errors":  fields,
	})
}

func writeNotFound(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"status":  404,
		"message": "Note not found: " + id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
