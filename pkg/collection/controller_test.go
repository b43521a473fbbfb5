package collection

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"pgregory.net/rapid"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/tags"
)

// serverLister pages over total synthetic notes the way the API does.
type serverLister struct {
	mu    sync.Mutex
	total int
	calls []api.ListQuery
	err   error
	empty bool
}

func (s *serverLister) ListNotes(_ context.Context, q api.ListQuery) (*note.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, q)
	if s.err != nil {
		return nil, s.err
	}
	if s.empty {
		return nil, nil
	}
	pages := (s.total + q.Size - 1) / q.Size
	p := &note.Page{Number: q.Page, TotalPages: pages, TotalElements: int64(s.total)}
	for i := q.Page * q.Size; i < s.total && i < (q.Page+1)*q.Size; i++ {
		p.Content = append(p.Content, note.Note{
			ID:    note.ID(fmt.Sprint(i)),
			Title: fmt.Sprintf("note %d", i),
			Tags:  []note.Tag{{Name: fmt.Sprintf("t%d", i%4)}},
		})
	}
	return p, nil
}

func (s *serverLister) Calls() []api.ListQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ListQuery(nil), s.calls...)
}

func newController(l Lister, debounce time.Duration) *Controller {
	return New(l, Options{PageSize: 9, Debounce: debounce, Tags: tags.New(3, nil)})
}

func drain(c *Controller) []tea.Msg {
	var out []tea.Msg
	for {
		select {
		case msg := <-c.Events():
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestMountLoadsFirstPageAndSeedsTags(t *testing.T) {
	l := &serverLister{total: 30}
	c := newController(l, 0)
	defer c.Close()

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	v := c.View()
	if v.Page != 0 || v.TotalPages != 4 || v.TotalElements != 30 || len(v.Notes) != 9 {
		t.Fatalf("view = %+v", v)
	}
	if v.Loading {
		t.Fatalf("loading still set after mount")
	}
	// Seed scans three pages plus the first fetch.
	if got := len(l.Calls()); got != 4 {
		t.Fatalf("calls = %d, want 4", got)
	}
	if got := c.Tags().Snapshot(); !reflect.DeepEqual(got, []string{"t0", "t1", "t2", "t3"}) {
		t.Fatalf("tags = %v", got)
	}

	var sawLoading, sawDone, sawPage bool
	for _, msg := range drain(c) {
		switch m := msg.(type) {
		case LoadingMsg:
			if m.Loading {
				sawLoading = true
			} else {
				sawDone = true
			}
		case PageMsg:
			sawPage = true
		}
	}
	if !sawLoading || !sawDone || !sawPage {
		t.Fatalf("events loading=%v done=%v page=%v", sawLoading, sawDone, sawPage)
	}
}

func TestGoToOutOfRangeIsNoop(t *testing.T) {
	l := &serverLister{total: 20}
	c := newController(l, 0)
	defer c.Close()
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	before := c.View()
	calls := len(l.Calls())

	for _, p := range []int{-1, 3, 100} {
		ok, err := c.GoTo(context.Background(), p)
		if ok || err != nil {
			t.Fatalf("GoTo(%d) = %v, %v", p, ok, err)
		}
	}
	if len(l.Calls()) != calls {
		t.Fatalf("out of range navigation issued a fetch")
	}
	if !reflect.DeepEqual(before, c.View()) {
		t.Fatalf("view changed")
	}
}

func TestGoToUsesServerPagination(t *testing.T) {
	l := &serverLister{total: 20}
	c := newController(l, 0)
	defer c.Close()
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	ok, err := c.Next(context.Background())
	if !ok || err != nil {
		t.Fatalf("next = %v, %v", ok, err)
	}
	ok, err = c.Next(context.Background())
	if !ok || err != nil {
		t.Fatalf("next = %v, %v", ok, err)
	}
	v := c.View()
	if v.Page != 2 || len(v.Notes) != 2 {
		t.Fatalf("view = %+v", v)
	}
	if from, to := v.Range(9); from != 19 || to != 20 {
		t.Fatalf("range = %d - %d", from, to)
	}
	if ok, _ := c.Next(context.Background()); ok {
		t.Fatalf("next past last page")
	}
}

// gatedLister blocks each page request until the test releases it.
type gatedLister struct {
	started chan api.ListQuery
	release map[int]chan struct{}
	fail    map[int]error
}

func (g *gatedLister) ListNotes(_ context.Context, q api.ListQuery) (*note.Page, error) {
	g.started <- q
	<-g.release[q.Page]
	if err := g.fail[q.Page]; err != nil {
		return nil, err
	}
	return &note.Page{
		Number:        q.Page,
		TotalPages:    5,
		TotalElements: 45,
		Content: []note.Note{{
			ID:    note.ID(fmt.Sprint(q.Page)),
			Title: "p",
			Tags:  []note.Tag{{Name: fmt.Sprintf("p%d", q.Page)}},
		}},
	}, nil
}

func TestLaterIssuedFetchWinsWhenEarlierCompletesLast(t *testing.T) {
	g := &gatedLister{
		started: make(chan api.ListQuery, 4),
		release: map[int]chan struct{}{0: make(chan struct{}), 1: make(chan struct{}), 2: make(chan struct{})},
	}
	c := newController(g, 0)
	defer c.Close()

	close(g.release[0])
	if err := c.Reload(context.Background(), 0); err != nil {
		t.Fatalf("reload: %v", err)
	}
	<-g.started

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = c.GoTo(context.Background(), 1)
	}()
	<-g.started // page 1 issued first
	go func() {
		defer wg.Done()
		_, _ = c.GoTo(context.Background(), 2)
	}()
	<-g.started

	close(g.release[2])
	waitFor(t, func() bool { return c.View().Page == 2 })
	close(g.release[1])
	wg.Wait()

	v := c.View()
	if v.Page != 2 {
		t.Fatalf("stale response overwrote newer view: page %d", v.Page)
	}
	if v.Loading {
		t.Fatalf("loading still set")
	}
}

func TestSupersededFailureIsNotReported(t *testing.T) {
	g := &gatedLister{
		started: make(chan api.ListQuery, 4),
		release: map[int]chan struct{}{0: make(chan struct{}), 1: make(chan struct{}), 2: make(chan struct{})},
		fail:    map[int]error{1: &api.Error{Status: 500, Message: "boom"}},
	}
	c := newController(g, 0)
	defer c.Close()

	close(g.release[0])
	if err := c.Reload(context.Background(), 0); err != nil {
		t.Fatalf("reload: %v", err)
	}
	<-g.started

	errc := make(chan error, 1)
	go func() {
		_, err := c.GoTo(context.Background(), 1)
		errc <- err
	}()
	<-g.started

	close(g.release[2])
	go func() { _, _ = c.GoTo(context.Background(), 2) }()
	<-g.started
	waitFor(t, func() bool { return c.View().Page == 2 })
	drain(c)

	close(g.release[1])
	if err := <-errc; err == nil {
		t.Fatalf("superseded fetch error was swallowed")
	}
	for _, msg := range drain(c) {
		if n, ok := msg.(NoticeMsg); ok {
			t.Fatalf("superseded failure notified: %+v", n)
		}
	}
	if c.View().Page != 2 {
		t.Fatalf("page = %d", c.View().Page)
	}
}

func TestMountCancelsPendingDebounce(t *testing.T) {
	l := &serverLister{total: 5}
	c := newController(l, 30*time.Millisecond)
	defer c.Close()

	c.SetSearch("old")
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	for _, call := range l.Calls() {
		if call.Search != "" {
			t.Fatalf("debounced fetch outlived mount: %+v", call)
		}
	}
	if q := c.Query(); q.Search != "" {
		t.Fatalf("search = %q", q.Search)
	}
}

func TestResetDiscardsEarlierFetches(t *testing.T) {
	g := &gatedLister{
		started: make(chan api.ListQuery, 4),
		release: map[int]chan struct{}{1: make(chan struct{})},
	}
	c := newController(g, 20*time.Millisecond)
	defer c.Close()

	c.Tags().Merge("old")
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Reload(context.Background(), 1)
	}()
	<-g.started
	c.SetTag("old")

	c.Reset()
	close(g.release[1])
	<-done
	time.Sleep(50 * time.Millisecond)

	v := c.View()
	if len(v.Notes) != 0 || v.TotalPages != 0 || v.Loading {
		t.Fatalf("view after reset = %+v", v)
	}
	if n := c.Tags().Len(); n != 0 {
		t.Fatalf("tags after reset = %v", c.Tags().Snapshot())
	}
	if q := c.Query(); q.Tag != "" {
		t.Fatalf("tag filter after reset = %q", q.Tag)
	}
	select {
	case q := <-g.started:
		t.Fatalf("debounced fetch fired after reset: %+v", q)
	default:
	}
	if ok, _ := c.GoTo(context.Background(), 1); ok {
		t.Fatalf("GoTo used the discarded page count")
	}
}

func TestDebouncedEditsIssueOneFetch(t *testing.T) {
	l := &serverLister{total: 5}
	c := newController(l, 20*time.Millisecond)
	defer c.Close()

	c.SetSearch("g")
	c.SetSearch("go")
	c.SetTag("x")
	c.SetTag("ml")
	c.SetSearch("go") // unchanged, ignored

	waitFor(t, func() bool { return len(l.Calls()) == 1 })
	time.Sleep(60 * time.Millisecond)

	calls := l.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	want := api.ListQuery{Page: 0, Size: 9, Search: "go", Tag: "ml"}
	if calls[0] != want {
		t.Fatalf("call = %+v, want %+v", calls[0], want)
	}
	waitFor(t, func() bool { v := c.View(); return v.Search == "go" && v.Tag == "ml" })
}

func TestApplyCancelsPendingDebounce(t *testing.T) {
	l := &serverLister{total: 5}
	c := newController(l, 30*time.Millisecond)
	defer c.Close()

	c.SetSearch("draft")
	if err := c.Apply(context.Background(), Query{Search: "final"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	calls := l.Calls()
	if len(calls) != 1 || calls[0].Search != "final" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestEmptyResponseClearsLoading(t *testing.T) {
	l := &serverLister{empty: true}
	c := newController(l, 0)
	defer c.Close()

	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	v := c.View()
	if v.Loading {
		t.Fatalf("loading still set after empty response")
	}
	if v.Seq != 0 || len(v.Notes) != 0 {
		t.Fatalf("empty response changed the view: %+v", v)
	}
	for _, msg := range drain(c) {
		if _, ok := msg.(NoticeMsg); ok {
			t.Fatalf("empty response produced a notice")
		}
	}
}

func TestFetchFailureKeepsViewAndNotifies(t *testing.T) {
	l := &serverLister{total: 12}
	c := newController(l, 0)
	defer c.Close()
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	before := c.View()
	drain(c)

	l.mu.Lock()
	l.err = &api.Error{Status: 500, Message: "Request failed with status 500"}
	l.mu.Unlock()

	_, err := c.GoTo(context.Background(), 1)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %v", err)
	}
	after := c.View()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("failed fetch changed the view")
	}

	var notice *NoticeMsg
	for _, msg := range drain(c) {
		if m, ok := msg.(NoticeMsg); ok {
			notice = &m
		}
	}
	if notice == nil || notice.Level != LevelError || notice.Text != "Failed to load notes: Request failed with status 500" {
		t.Fatalf("notice = %+v", notice)
	}
}

func TestNavigationProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 60).Draw(t, "total")
		l := &serverLister{total: total}
		c := newController(l, 0)
		defer c.Close()
		if err := c.Mount(context.Background()); err != nil {
			t.Fatalf("mount: %v", err)
		}

		lastSeq := c.View().Seq
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			page := rapid.IntRange(-2, 9).Draw(t, "page")
			before := c.View()
			ok, err := c.GoTo(context.Background(), page)
			if err != nil {
				t.Fatalf("goto: %v", err)
			}
			after := c.View()
			valid := page >= 0 && page < before.TotalPages
			if ok != valid {
				t.Fatalf("GoTo(%d) ok=%v with %d pages", page, ok, before.TotalPages)
			}
			if valid && after.Page != page {
				t.Fatalf("requested %d, visible %d", page, after.Page)
			}
			if !valid && !reflect.DeepEqual(before, after) {
				t.Fatalf("out of range GoTo(%d) changed the view", page)
			}
			if after.Seq < lastSeq {
				t.Fatalf("seq went backwards: %d -> %d", lastSeq, after.Seq)
			}
			lastSeq = after.Seq
		}
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
