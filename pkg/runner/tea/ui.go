// Package teaui is the terminal notes browser. It renders the collection
// controller's view and forwards key presses to the controller, the
// mutation coordinator and the session.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/notes/pkg/api"
	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/timeutil"
)

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 3 * time.Second

type mode int

const (
	modeLogin mode = iota
	modeBrowse
	modeSearch
	modeTag
	modeForm
	modeConfirm
	modeHelp
)

type controllerMsg struct{ msg tea.Msg }

type eventsClosedMsg struct{}

type mountedMsg struct{ err error }

type navigatedMsg struct {
	moved bool
	err   error
}

type authDoneMsg struct {
	principal *note.Principal
	err       error
}

type savedMsg struct {
	note *note.Note
	err  error
}

type deletedMsg struct{ err error }

type clearNoticeMsg struct{ id int }

// Model is the Bubble Tea model of the browser.
type Model struct {
	svc   *app.Service
	ctx   context.Context
	theme theme

	termWidth  int
	termHeight int

	mode      mode
	prevMode  mode
	view      collection.View
	cursor    int
	principal *note.Principal

	notice   collection.NoticeMsg
	noticeID int

	filter      textinput.Model
	filterPrev  string
	completions []string
	completeAt  int

	login    form
	register bool

	noteForm form
	editing  *note.Note
	busy     bool

	confirm *note.Note
}

// New builds the model. When the service holds no session the login form is
// shown first.
func New(svc *app.Service) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 120

	m := Model{
		svc:        svc,
		ctx:        context.Background(),
		theme:      newTheme(true),
		termWidth:  80,
		termHeight: 24,
		mode:       modeLogin,
		filter:     ti,
		login:      newLoginForm(),
	}
	if svc != nil && svc.Session.Authenticated() {
		m.mode = modeBrowse
		m.principal = svc.Session.Principal()
		m.view = svc.Collection.View()
	} else {
		m.login.focusField(0)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	cmds := []tea.Cmd{m.waitForEvents()}
	if m.mode == modeBrowse {
		cmds = append(cmds, m.mount())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// waitForEvents blocks on the controller's event channel and hands the next
// event to Update, which re-arms it.
func (m Model) waitForEvents() tea.Cmd {
	ch := m.svc.Collection.Events()
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return controllerMsg{msg: ev}
		}
		return eventsClosedMsg{}
	}
}

func (m Model) mount() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return mountedMsg{err: svc.Collection.Mount(ctx)}
	}
}

func (m Model) goTo(page int) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		moved, err := svc.Collection.GoTo(ctx, page)
		return navigatedMsg{moved: moved, err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return navigatedMsg{moved: true, err: svc.Collection.Refresh(ctx)}
	}
}

func (m Model) authenticate(creds note.Credentials, register bool) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		var (
			p   *note.Principal
			err error
		)
		if register {
			p, err = svc.Register(ctx, creds)
		} else {
			p, err = svc.Login(ctx, creds)
		}
		return authDoneMsg{principal: p, err: err}
	}
}

func (m Model) save(editing *note.Note, d note.Draft) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if editing == nil {
			n, err := svc.Notes.Create(ctx, d)
			return savedMsg{note: n, err: err}
		}
		n, err := svc.Notes.Update(ctx, editing.ID, d)
		return savedMsg{note: n, err: err}
	}
}

func (m Model) remove(id note.ID) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return deletedMsg{err: svc.Notes.Delete(ctx, id)}
	}
}

func (m *Model) setNotice(level collection.Level, text string) tea.Cmd {
	m.noticeID++
	m.notice = collection.NoticeMsg{Level: level, Text: text}
	id := m.noticeID
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height

	case controllerMsg:
		cmds = append(cmds, m.handleEvent(msg.msg), m.waitForEvents())

	case eventsClosedMsg:
		// Controller closed; nothing more will arrive.

	case mountedMsg:
		if msg.err != nil && isUnauthorized(msg.err) {
			cmds = append(cmds, m.signOut("Session expired, log in again"))
		}

	case navigatedMsg:
		if msg.err != nil && isUnauthorized(msg.err) {
			cmds = append(cmds, m.signOut("Session expired, log in again"))
		}

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			var apiErr *api.Error
			if errors.As(msg.err, &apiErr) && apiErr.IsValidation() {
				if rest := m.login.setErrors(apiErr.FieldErrors); len(rest) > 0 {
					cmds = append(cmds, m.setNotice(collection.LevelError, strings.Join(rest, "; ")))
				}
				break
			}
			cmds = append(cmds, m.setNotice(collection.LevelError, collection.Message(msg.err)))
			break
		}
		m.principal = msg.principal
		m.login = newLoginForm()
		m.mode = modeBrowse
		m.cursor = 0
		cmds = append(cmds, m.mount())

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			var apiErr *api.Error
			if errors.As(msg.err, &apiErr) && apiErr.IsValidation() {
				if rest := m.noteForm.setErrors(apiErr.FieldErrors); len(rest) > 0 {
					cmds = append(cmds, m.setNotice(collection.LevelError, strings.Join(rest, "; ")))
				}
			}
			// Other failures were already reported by the coordinator.
			break
		}
		m.mode = modeBrowse
		m.editing = nil
		m.noteForm = form{}

	case deletedMsg:
		m.busy = false
		m.confirm = nil
		m.mode = modeBrowse

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = collection.NoticeMsg{}
		}

	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		switch m.mode {
		case modeLogin:
			cmds = append(cmds, m.login.update(msg))
		case modeForm:
			cmds = append(cmds, m.noteForm.update(msg))
		case modeSearch, modeTag:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(ev tea.Msg) tea.Cmd {
	switch ev := ev.(type) {
	case collection.PageMsg:
		if ev.View.Page != m.view.Page {
			m.cursor = 0
		}
		m.view = ev.View
		m.clampCursor()
	case collection.LoadingMsg:
		m.view.Loading = ev.Loading
	case collection.NoticeMsg:
		return m.setNotice(ev.Level, ev.Text)
	}
	return nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.view.Notes) {
		m.cursor = len(m.view.Notes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() *note.Note {
	if m.cursor < 0 || m.cursor >= len(m.view.Notes) {
		return nil
	}
	n := m.view.Notes[m.cursor]
	return &n
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	switch m.mode {
	case modeLogin:
		return m.handleLoginKey(msg, key)
	case modeSearch, modeTag:
		return m.handleFilterKey(msg, key)
	case modeForm:
		return m.handleFormKey(msg, key)
	case modeConfirm:
		return m.handleConfirmKey(key)
	case modeHelp:
		if key == "?" || key == "esc" || key == "q" {
			m.mode = m.prevMode
		}
		return nil
	}
	return m.handleBrowseKey(key)
}

func (m *Model) handleBrowseKey(key string) tea.Cmd {
	switch key {
	case "q":
		return tea.Quit
	case "?":
		m.prevMode = m.mode
		m.mode = modeHelp
	case "j", "down":
		if m.cursor < len(m.view.Notes)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "l", "right":
		return m.goTo(m.view.Page + 1)
	case "h", "left":
		return m.goTo(m.view.Page - 1)
	case "r":
		return m.refresh()
	case "/":
		return m.enterFilter(modeSearch, m.svc.Collection.Query().Search, "search title or content")
	case "t":
		return m.enterFilter(modeTag, m.svc.Collection.Query().Tag, "tag name, tab completes")
	case "a":
		m.editing = nil
		m.noteForm = newNoteForm(nil)
		m.mode = modeForm
		return m.noteForm.focusField(0)
	case "e":
		n := m.selected()
		if n == nil {
			return nil
		}
		m.editing = n
		m.noteForm = newNoteForm(n)
		m.mode = modeForm
		return m.noteForm.focusField(0)
	case "d":
		n := m.selected()
		if n == nil {
			return nil
		}
		m.confirm = n
		m.mode = modeConfirm
	case "L":
		return m.signOut("Logged out")
	}
	return nil
}

func (m *Model) enterFilter(md mode, current, placeholder string) tea.Cmd {
	m.mode = md
	m.filterPrev = current
	m.completions = nil
	m.filter.Placeholder = placeholder
	m.filter.SetValue(current)
	m.filter.CursorEnd()
	return m.filter.Focus()
}

func (m *Model) applyFilter(value string) {
	if m.mode == modeTag {
		m.svc.Collection.SetTag(strings.TrimSpace(value))
		return
	}
	m.svc.Collection.SetSearch(value)
}

func (m *Model) handleFilterKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	switch key {
	case "enter":
		m.filter.Blur()
		m.mode = modeBrowse
		m.cursor = 0
		return nil
	case "esc":
		m.applyFilter(m.filterPrev)
		m.filter.Blur()
		m.mode = modeBrowse
		return nil
	case "tab":
		if m.mode != modeTag {
			return nil
		}
		m.completeTag()
		m.applyFilter(m.filter.Value())
		return nil
	}
	m.completions = nil
	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if v := m.filter.Value(); v != before {
		m.applyFilter(v)
	}
	return cmd
}

// completeTag replaces the input with the next tag that starts with what
// the user typed. Repeated tabs cycle through the candidates.
func (m *Model) completeTag() {
	if m.completions == nil {
		m.completions = m.svc.Collection.Tags().Complete(m.filter.Value())
		m.completeAt = 0
	} else if len(m.completions) > 0 {
		m.completeAt = (m.completeAt + 1) % len(m.completions)
	}
	if len(m.completions) == 0 {
		return
	}
	m.filter.SetValue(m.completions[m.completeAt])
	m.filter.CursorEnd()
}

func (m *Model) handleFormKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	switch key {
	case "esc":
		m.mode = modeBrowse
		m.editing = nil
		m.noteForm = form{}
		return nil
	case "tab", "down":
		return m.noteForm.next()
	case "shift+tab", "up":
		return m.noteForm.prev()
	case "enter":
		if m.busy {
			return nil
		}
		d := draftFromForm(&m.noteForm)
		if d.Title == "" {
			m.noteForm.setErrors(map[string]string{"title": "Title is required"})
			return nil
		}
		m.noteForm.setErrors(nil)
		m.busy = true
		return m.save(m.editing, d)
	}
	return m.noteForm.update(msg)
}

func (m *Model) handleConfirmKey(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		if m.confirm == nil || m.busy {
			return nil
		}
		m.busy = true
		return m.remove(m.confirm.ID)
	case "n", "N", "esc", "q":
		m.confirm = nil
		m.mode = modeBrowse
	}
	return nil
}

func (m *Model) handleLoginKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	switch key {
	case "esc":
		return tea.Quit
	case "tab", "down":
		return m.login.next()
	case "shift+tab", "up":
		return m.login.prev()
	case "ctrl+r":
		m.register = !m.register
		return nil
	case "enter":
		if m.busy {
			return nil
		}
		creds := note.Credentials{
			Email:    strings.TrimSpace(m.login.value("email")),
			Password: m.login.value("password"),
		}
		missing := map[string]string{}
		if creds.Email == "" {
			missing["email"] = "required"
		}
		if creds.Password == "" {
			missing["password"] = "required"
		}
		m.login.setErrors(missing)
		if len(missing) > 0 {
			return nil
		}
		m.busy = true
		return m.authenticate(creds, m.register)
	}
	return m.login.update(msg)
}

func (m *Model) signOut(text string) tea.Cmd {
	if err := m.svc.Logout(); err != nil {
		return m.setNotice(collection.LevelError, collection.Message(err))
	}
	m.principal = nil
	m.view = collection.View{}
	m.cursor = 0
	m.filter.SetValue("")
	m.filterPrev = ""
	m.completions = nil
	m.mode = modeLogin
	m.login = newLoginForm()
	return tea.Batch(m.login.focusField(0), m.setNotice(collection.LevelInfo, text))
}

func isUnauthorized(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

func (m Model) View() string {
	var sections []string
	sections = append(sections, m.headerView())

	switch m.mode {
	case modeLogin:
		sections = append(sections, m.loginView())
	case modeHelp:
		sections = append(sections, m.helpView())
	default:
		sections = append(sections, m.listView(), m.footerView())
		if d := m.detailView(); d != "" && m.mode == modeBrowse {
			sections = append(sections, d)
		}
		if p := m.panelView(); p != "" {
			sections = append(sections, p)
		}
	}
	if m.notice.Text != "" {
		style := m.theme.Info
		if m.notice.Level == collection.LevelError {
			style = m.theme.Error
		}
		sections = append(sections, style.Render(m.notice.Text))
	}
	sections = append(sections, m.theme.Help.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := m.theme.Title.Render("Notes")
	var meta []string
	if m.principal != nil {
		meta = append(meta, m.principal.Email)
	}
	if m.view.Search != "" {
		meta = append(meta, fmt.Sprintf("search %q", m.view.Search))
	}
	if m.view.Tag != "" {
		meta = append(meta, "#"+m.view.Tag)
	}
	if len(meta) == 0 {
		return title
	}
	return title + "  " + m.theme.Header.Render(strings.Join(meta, " · "))
}

func (m Model) listView() string {
	if len(m.view.Notes) == 0 {
		if m.view.Loading {
			return m.theme.Dim.Render("  …")
		}
		if m.view.Search != "" || m.view.Tag != "" {
			return m.theme.Dim.Render("  No matching notes")
		}
		return m.theme.Dim.Render("  No notes yet")
	}
	width := m.termWidth - 4
	if width < 20 {
		width = 20
	}
	lines := make([]string, 0, len(m.view.Notes))
	for i, n := range m.view.Notes {
		var tagParts []string
		for _, name := range n.TagNames() {
			tagParts = append(tagParts, m.theme.Tag(name).Render("#"+name))
		}
		tagText := strings.Join(tagParts, " ")
		titleWidth := width - lipgloss.Width(tagText) - 1
		if titleWidth < 10 {
			titleWidth = 10
		}
		title := truncate.StringWithTail(n.Title, uint(titleWidth), "…")
		line := title
		if tagText != "" {
			line += " " + tagText
		}
		if i == m.cursor {
			lines = append(lines, m.theme.Cursor.Render("> ")+m.theme.Selected.Render(line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) footerView() string {
	var parts []string
	if m.view.TotalElements > 0 {
		from, to := m.view.Range(m.svc.Collection.PageSize())
		parts = append(parts, fmt.Sprintf("Showing %d - %d of %d", from, to, m.view.TotalElements))
		if m.view.TotalPages > 1 {
			parts = append(parts, fmt.Sprintf("page %d of %d", m.view.Page+1, m.view.TotalPages))
		}
	}
	footer := m.theme.Dim.Render(strings.Join(parts, "  "))
	if m.view.Loading {
		footer += "  " + m.theme.Loading.Render("Loading…")
	}
	return footer
}

func (m Model) detailView() string {
	n := m.selected()
	if n == nil || strings.TrimSpace(n.Content) == "" {
		return ""
	}
	width := m.termWidth - 4
	if width < 20 {
		width = 20
	}
	body := wordwrap.String(n.Content, width)
	if !n.CreatedAt.IsZero() {
		stamp := n.CreatedAt.Format("2006-01-02 15:04") + " · " + timeutil.Ago(n.CreatedAt.Time, time.Now())
		body = m.theme.Dim.Render(stamp) + "\n" + body
	}
	return m.theme.Panel.Render(body)
}

func (m Model) panelView() string {
	switch m.mode {
	case modeSearch:
		return m.theme.Panel.Render(m.theme.Label.Render("Search") + m.filter.View())
	case modeTag:
		line := m.theme.Label.Render("Tag") + m.filter.View()
		if len(m.completions) > 1 {
			line += "\n" + m.theme.Dim.Render(strings.Join(m.completions, " "))
		}
		return m.theme.Panel.Render(line)
	case modeForm:
		title := "New note"
		if m.editing != nil {
			title = "Edit note " + m.editing.ID.String()
		}
		return m.theme.Panel.Render(m.theme.Title.Render(title) + "\n" + m.noteForm.view(m.theme))
	case modeConfirm:
		if m.confirm == nil {
			return ""
		}
		return m.theme.Panel.Render(fmt.Sprintf("Delete %q? (y/n)", m.confirm.Title))
	}
	return ""
}

func (m Model) loginView() string {
	title := "Log in"
	if m.register {
		title = "Register"
	}
	body := m.theme.Title.Render(title) + "\n" + m.login.view(m.theme)
	if m.busy {
		body += "\n" + m.theme.Loading.Render("Working…")
	}
	return m.theme.Panel.Render(body)
}

var helpRows = [][2]string{
	{"j/k", "move cursor"},
	{"h/l ←/→", "previous / next page"},
	{"/", "search"},
	{"t", "filter by tag (tab completes)"},
	{"a", "add note"},
	{"e", "edit note"},
	{"d", "delete note"},
	{"r", "refresh"},
	{"L", "log out"},
	{"q", "quit"},
}

func (m Model) helpView() string {
	lines := make([]string, 0, len(helpRows))
	for _, r := range helpRows {
		lines = append(lines, m.theme.Label.Render(r[0])+m.theme.Dim.Render(r[1]))
	}
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) helpLine() string {
	switch m.mode {
	case modeLogin:
		return "enter submit · tab next field · ctrl+r toggle register · esc quit"
	case modeSearch, modeTag:
		return "enter keep · esc revert"
	case modeForm:
		return "enter save · tab next field · esc cancel"
	case modeConfirm:
		return "y delete · n cancel"
	case modeHelp:
		return "? close"
	}
	return "j/k move · h/l page · / search · t tag · a add · e edit · d delete · ? help · q quit"
}
