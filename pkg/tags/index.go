// Package tags keeps the set of tag names the client has observed. The
// server has no endpoint listing every tag, so the index is assembled from
// whatever pages and mutations pass through the client. Names are only
// removed all at once, by Reset.
package tags

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/note"
)

// DefaultSeedPages bounds the discovery scan when no limit is configured.
const DefaultSeedPages = 3

// Lister fetches one page of notes.
type Lister interface {
	ListNotes(ctx context.Context, q api.ListQuery) (*note.Page, error)
}

// Index is an append-only set of tag names, safe for concurrent use.
type Index struct {
	seedPages int
	log       zerolog.Logger

	mu    sync.RWMutex
	names map[string]struct{}
	epoch uint64
}

// New creates an empty index. A negative seedPages falls back to
// DefaultSeedPages; zero disables seeding.
func New(seedPages int, log *zerolog.Logger) *Index {
	if seedPages < 0 {
		seedPages = DefaultSeedPages
	}
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "tags").Logger()
	}
	return &Index{
		seedPages: seedPages,
		log:       l,
		names:     make(map[string]struct{}),
	}
}

// Merge unions names into the index and returns how many were new. Blank
// names are ignored.
func (x *Index) Merge(names ...string) int {
	if len(names) == 0 {
		return 0
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.mergeLocked(names)
}

// mergeAt merges names only if no Reset happened since epoch.
func (x *Index) mergeAt(epoch uint64, names []string) (int, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.epoch != epoch {
		return 0, false
	}
	return x.mergeLocked(names), true
}

func (x *Index) mergeLocked(names []string) int {
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := x.names[name]; ok {
			continue
		}
		x.names[name] = struct{}{}
		added++
	}
	return added
}

// Reset empties the index. A Seed scan running across a Reset stops without
// merging anything further.
func (x *Index) Reset() {
	x.mu.Lock()
	x.names = make(map[string]struct{})
	x.epoch++
	x.mu.Unlock()
}

// Snapshot returns the known names in lexicographic order.
func (x *Index) Snapshot() []string {
	x.mu.RLock()
	out := make([]string, 0, len(x.names))
	for name := range x.names {
		out = append(out, name)
	}
	x.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of known names.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.names)
}

// Complete returns the known names starting with prefix, in order.
func (x *Index) Complete(prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	var out []string
	for _, name := range x.Snapshot() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// Seed scans unfiltered pages 0..K-1 one after another, merging the tag
// names of each page before requesting the next. The scan stops early once
// the server reports no further pages, or on the first failure.
func (x *Index) Seed(ctx context.Context, l Lister, pageSize int) error {
	x.mu.RLock()
	epoch := x.epoch
	x.mu.RUnlock()
	for p := 0; p < x.seedPages; p++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := l.ListNotes(ctx, api.ListQuery{Page: p, Size: pageSize})
		if err != nil {
			x.log.Warn().Err(err).Int("page", p).Msg("tag seed scan stopped")
			return fmt.Errorf("tags: seed page %d: %w", p, err)
		}
		if page == nil {
			x.log.Debug().Int("page", p).Msg("tag seed page empty")
			return nil
		}
		added, ok := x.mergeAt(epoch, page.TagNames())
		if !ok {
			x.log.Debug().Int("page", p).Msg("tag seed scan outlived a reset")
			return nil
		}
		x.log.Debug().Int("page", p).Int("added", added).Int("total_pages", page.TotalPages).Msg("tag seed page scanned")
		if page.TotalPages <= p+1 {
			return nil
		}
	}
	return nil
}
