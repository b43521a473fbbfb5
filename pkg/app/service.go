// Package app composes the notes client: persisted session, API client,
// tag index, collection controller and mutation coordinator. CLIs and the
// terminal browser share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/session"
	"tableflip.dev/notes/pkg/store"
	"tableflip.dev/notes/pkg/tags"
)

// Service provides high-level operations for notes and the session.
type Service struct {
	Config     store.Config
	Session    *session.Store
	API        *api.Client
	Tags       *tags.Index
	Collection *collection.Controller
	Notes      *Coordinator

	log zerolog.Logger
}

// Open builds a Service from cfg and restores any persisted session. A
// rejected credential leaves the Service unauthenticated without an error.
func Open(ctx context.Context, cfg store.Config, log *zerolog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: no config")
	}
	if log == nil {
		l := zerolog.Nop()
		log = &l
	}
	kv, err := store.Load(cfg)
	if err != nil {
		return nil, err
	}
	sess := session.New(kv, log)
	client, err := api.New(api.Options{
		BaseURL:     cfg.BaseURL(),
		Timeout:     cfg.Timeout(),
		Credentials: sess,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	idx := tags.New(cfg.SeedPages(), log)
	ctl := collection.New(client, collection.Options{
		PageSize: cfg.PageSize(),
		Debounce: cfg.Debounce(),
		Tags:     idx,
		Logger:   log,
	})
	s := &Service{
		Config:     cfg,
		Session:    sess,
		API:        client,
		Tags:       idx,
		Collection: ctl,
		Notes:      NewCoordinator(client, ctl, log),
		log:        *log,
	}
	if _, err := sess.Load(ctx, client); err != nil {
		ctl.Close()
		return nil, err
	}
	return s, nil
}

// Login exchanges credentials for a session.
func (s *Service) Login(ctx context.Context, creds note.Credentials) (*note.Principal, error) {
	return s.establish(ctx, creds, s.API.Login)
}

// Register creates an account and logs into it.
func (s *Service) Register(ctx context.Context, creds note.Credentials) (*note.Principal, error) {
	return s.establish(ctx, creds, s.API.Register)
}

func (s *Service) establish(ctx context.Context, creds note.Credentials, call func(context.Context, note.Credentials) (*note.AuthResult, error)) (*note.Principal, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	res, err := call(ctx, creds)
	if err != nil {
		return nil, err
	}
	p := res.Principal
	if s.Session.Principal() != nil {
		s.Collection.Reset()
	}
	if err := s.Session.Set(res.Token, &p); err != nil {
		return nil, err
	}
	s.log.Debug().Str("email", p.Email).Msg("session established")
	return &p, nil
}

// Logout clears the session and drops everything loaded for it: the visible
// page, the filters and the known tag names.
func (s *Service) Logout() error {
	if err := s.Session.Clear(); err != nil {
		return err
	}
	s.Collection.Reset()
	return nil
}

// RequireSession returns the principal or session.ErrUnauthenticated.
func (s *Service) RequireSession() (*note.Principal, error) {
	p := s.Session.Principal()
	if p == nil {
		return nil, session.ErrUnauthenticated
	}
	return p, nil
}

// Close stops background work.
func (s *Service) Close() {
	if s.Collection != nil {
		s.Collection.Close()
	}
}

// NewLogger builds the process logger at level, written to stderr.
func NewLogger(level string) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("app: log level: %w", err)
		}
		lvl = parsed
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
