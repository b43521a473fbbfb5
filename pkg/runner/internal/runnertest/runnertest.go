// Package runnertest opens an app.Service against an in-memory API for
// runner tests.
package runnertest

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/notes/pkg/api/apitest"
	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/note"
)

// Config is a fixed store.Config.
type Config struct {
	Path string
	URL  string
}

func (c Config) BasePath() string        { return c.Path }
func (c Config) BaseURL() string         { return c.URL }
func (c Config) PageSize() int           { return 9 }
func (c Config) Debounce() time.Duration { return 0 }
func (c Config) SeedPages() int          { return 3 }
func (c Config) Timeout() time.Duration  { return 5 * time.Second }
func (c Config) LogLevel() string        { return "debug" }

// Open starts a server and a Service. When login is set the Service holds a
// session for user@example.com.
func Open(t *testing.T, login bool) (*apitest.Server, *app.Service) {
	t.Helper()
	srv := apitest.NewServer(t)
	svc, err := app.Open(context.Background(), Config{Path: t.TempDir(), URL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	t.Cleanup(svc.Close)
	if login {
		token := srv.AddUser("user@example.com", "secret1")
		if err := svc.Session.Set(token, &note.Principal{ID: "1", Email: "user@example.com", Role: "USER"}); err != nil {
			t.Fatalf("set session: %v", err)
		}
	}
	return srv, svc
}
