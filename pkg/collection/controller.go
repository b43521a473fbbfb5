// Package collection keeps a paged, filtered view of the remote note
// collection in step with the server. Query edits are debounced, page
// navigation is immediate, and every fetch carries a sequence number so a
// slow response for a superseded query can never overwrite a newer one.
package collection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/tags"
)

const (
	// DefaultPageSize matches the dashboard grid of three by three cards.
	DefaultPageSize = 9
	// DefaultDebounce delays query fetches while the user is typing.
	DefaultDebounce = 300 * time.Millisecond
)

// Lister fetches one page of notes.
type Lister interface {
	ListNotes(ctx context.Context, q api.ListQuery) (*note.Page, error)
}

// Options configure a Controller.
type Options struct {
	PageSize int
	Debounce time.Duration
	Tags     *tags.Index
	Logger   *zerolog.Logger
}

// Query is the filter and page a fetch targets. Empty strings mean no
// filter.
type Query struct {
	Search string
	Tag    string
	Page   int
}

// View is the visible state. Page, TotalPages and TotalElements always come
// from the server response that produced Notes.
type View struct {
	Notes         []note.Note
	Page          int
	TotalPages    int
	TotalElements int64
	Loading       bool
	// Seq is the sequence number of the fetch that produced this view.
	Seq uint64
	// Search and Tag are the filters the visible page was fetched with.
	Search string
	Tag    string
}

// Range returns the one-based positions of the first and last visible note
// within the whole result set, or zeros when nothing is visible.
func (v View) Range(pageSize int) (from, to int64) {
	if len(v.Notes) == 0 {
		return 0, 0
	}
	from = int64(v.Page*pageSize) + 1
	return from, from + int64(len(v.Notes)) - 1
}

func (v View) clone() View {
	out := v
	out.Notes = append([]note.Note(nil), v.Notes...)
	return out
}

// Controller is safe for concurrent use.
type Controller struct {
	lister   Lister
	tags     *tags.Index
	pageSize int
	debounce time.Duration
	log      zerolog.Logger

	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	query    Query
	view     View
	issued   uint64
	applied  uint64
	floor    uint64
	inflight int
	mounting bool
	gen      uint64
	timer    *time.Timer
	closed   bool

	eventCh chan tea.Msg
}

// New creates a controller. pageSize is fixed for the controller's lifetime.
func New(lister Lister, opts Options) *Controller {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce < 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Tags == nil {
		opts.Tags = tags.New(tags.DefaultSeedPages, opts.Logger)
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "collection").Logger()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Controller{
		lister:   lister,
		tags:     opts.Tags,
		pageSize: opts.PageSize,
		debounce: opts.Debounce,
		log:      log,
		base:     base,
		cancel:   cancel,
		eventCh:  make(chan tea.Msg, 64),
	}
}

// Events exposes the controller event channel for Bubble Tea subscriptions.
func (c *Controller) Events() <-chan tea.Msg {
	return c.eventCh
}

// Tags returns the tag index the controller feeds.
func (c *Controller) Tags() *tags.Index {
	return c.tags
}

// PageSize returns the fixed page length.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Mount loads page 0 with empty filters and seeds the tag index. Both run
// concurrently; loading stays set until both have finished. Only the page
// fetch error is returned, seeding failures are logged.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.query = Query{}
	c.stopTimerLocked()
	c.mounting = true
	c.refreshLoadingLocked()
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		return c.fetch(ctx, Query{})
	})
	g.Go(func() error {
		_ = c.tags.Seed(ctx, c.lister, c.pageSize)
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	c.mounting = false
	c.refreshLoadingLocked()
	c.mu.Unlock()
	return err
}

// SetSearch edits the search term and schedules a debounced fetch of page 0.
func (c *Controller) SetSearch(search string) {
	c.schedule(func(q *Query) bool {
		if q.Search == search {
			return false
		}
		q.Search = search
		return true
	})
}

// SetTag edits the tag filter and schedules a debounced fetch of page 0.
func (c *Controller) SetTag(tag string) {
	c.schedule(func(q *Query) bool {
		if q.Tag == tag {
			return false
		}
		q.Tag = tag
		return true
	})
}

func (c *Controller) schedule(edit func(q *Query) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !edit(&c.query) {
		return
	}
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(gen)
	})
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	// A newer edit or an immediate Apply superseded this timer.
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	q := Query{Search: c.query.Search, Tag: c.query.Tag}
	seq := c.issueLocked()
	c.mu.Unlock()
	_ = c.run(c.base, q, seq)
}

// GoTo fetches page with the current filters, immediately. Pages outside
// [0, TotalPages) are ignored and reported as false.
func (c *Controller) GoTo(ctx context.Context, page int) (bool, error) {
	c.mu.Lock()
	if page < 0 || page >= c.view.TotalPages {
		c.mu.Unlock()
		c.log.Debug().Int("page", page).Int("total_pages", c.view.TotalPages).Msg("page out of range")
		return false, nil
	}
	q := Query{Search: c.query.Search, Tag: c.query.Tag, Page: page}
	c.mu.Unlock()
	return true, c.fetch(ctx, q)
}

// Next moves one page forward when there is one.
func (c *Controller) Next(ctx context.Context) (bool, error) {
	return c.GoTo(ctx, c.View().Page+1)
}

// Prev moves one page back when there is one.
func (c *Controller) Prev(ctx context.Context) (bool, error) {
	return c.GoTo(ctx, c.View().Page-1)
}

// Reload fetches page with the current filters without a range check.
func (c *Controller) Reload(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	q := Query{Search: c.query.Search, Tag: c.query.Tag, Page: page}
	c.mu.Unlock()
	return c.fetch(ctx, q)
}

// Refresh reloads the visible page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Reload(ctx, c.View().Page)
}

// Apply replaces the filters and fetches q immediately, cancelling any
// pending debounced fetch.
func (c *Controller) Apply(ctx context.Context, q Query) error {
	if q.Page < 0 {
		q.Page = 0
	}
	c.mu.Lock()
	c.query.Search = q.Search
	c.query.Tag = q.Tag
	c.stopTimerLocked()
	c.mu.Unlock()
	return c.fetch(ctx, q)
}

// Reset forgets the visible page, the filters and the tag index, and stops
// any pending debounced fetch. Fetches issued before Reset are discarded
// when they complete.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.query = Query{}
	c.floor = c.issued
	c.applied = c.issued
	c.view = View{Loading: c.view.Loading, Seq: c.issued}
	c.tags.Reset()
	c.emit(PageMsg{View: c.view.clone()})
}

// stopTimerLocked invalidates the pending debounced fetch, if any.
func (c *Controller) stopTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Query returns the current filters. Page is the visible page.
func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Query{Search: c.query.Search, Tag: c.query.Tag, Page: c.view.Page}
}

// View returns a copy of the visible state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// Notify emits a notice on the controller's event channel.
func (c *Controller) Notify(level Level, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.emit(NoticeMsg{Level: level, Text: text})
}

// Close stops any pending debounced fetch. In-flight fetches finish but the
// debounced context is cancelled.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) fetch(ctx context.Context, q Query) error {
	c.mu.Lock()
	seq := c.issueLocked()
	c.mu.Unlock()
	return c.run(ctx, q, seq)
}

// issueLocked assigns the next sequence number and marks a fetch in flight.
func (c *Controller) issueLocked() uint64 {
	c.issued++
	c.inflight++
	c.refreshLoadingLocked()
	return c.issued
}

func (c *Controller) run(ctx context.Context, q Query, seq uint64) error {
	page, err := c.lister.ListNotes(ctx, api.ListQuery{
		Page:   q.Page,
		Size:   c.pageSize,
		Search: q.Search,
		Tag:    q.Tag,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		c.inflight--
		c.refreshLoadingLocked()
	}()

	if seq <= c.floor {
		c.log.Debug().Uint64("seq", seq).Msg("dropping fetch issued before reset")
		return err
	}
	if err != nil {
		if seq <= c.applied {
			c.log.Debug().Err(err).Uint64("seq", seq).Uint64("applied", c.applied).Msg("superseded fetch failed")
			return err
		}
		c.log.Debug().Err(err).Uint64("seq", seq).Int("page", q.Page).Msg("fetch failed")
		c.emit(NoticeMsg{Level: LevelError, Text: "Failed to load notes: " + Message(err)})
		return err
	}
	if page == nil {
		c.log.Debug().Uint64("seq", seq).Int("page", q.Page).Msg("fetch returned no payload")
		return nil
	}
	c.tags.Merge(page.TagNames()...)
	if seq <= c.applied {
		c.log.Debug().Uint64("seq", seq).Uint64("applied", c.applied).Msg("dropping stale page")
		return nil
	}
	c.applied = seq
	c.view = View{
		Notes:         append([]note.Note(nil), page.Content...),
		Page:          page.Number,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
		Loading:       c.view.Loading,
		Seq:           seq,
		Search:        q.Search,
		Tag:           q.Tag,
	}
	c.emit(PageMsg{View: c.view.clone()})
	return nil
}

func (c *Controller) refreshLoadingLocked() {
	loading := c.mounting || c.inflight > 0
	if loading == c.view.Loading {
		return
	}
	c.view.Loading = loading
	c.emit(LoadingMsg{Loading: loading})
}

func (c *Controller) emit(msg tea.Msg) {
	select {
	case c.eventCh <- msg:
	default:
	}
}

// Message extracts the human-readable part of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
