package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"

	"tableflip.dev/notes/pkg/collection"
	"tableflip.dev/notes/pkg/note"
	"tableflip.dev/notes/pkg/timeutil"
)

const (
	titleWidth   = 40
	contentWidth = 80
)

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out    io.Writer
	ShowID bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int64) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " note")
	default:
		_, _ = c.Fprintln(pp.out(), " notes")
	}
}

// Page renders the visible notes as a table followed by the range footer.
func (pp *PrettyPrint) Page(v collection.View, pageSize int) {
	w := pp.out()
	if len(v.Notes) == 0 {
		f := color.New(color.Faint, color.Italic)
		if v.Search != "" || v.Tag != "" {
			_, _ = f.Fprint(w, " No matching notes\n\n")
		} else {
			_, _ = f.Fprint(w, " No notes yet\n\n")
		}
		return
	}

	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	tagColor := color.New(color.FgCyan)

	tbl := uitable.New()
	tbl.Separator = "  "
	if pp.ShowID {
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Title"), bold.Sprint("Tags"), bold.Sprint("Created"))
	} else {
		tbl.AddRow(bold.Sprint("Title"), bold.Sprint("Tags"), bold.Sprint("Created"))
	}
	for i := range v.Notes {
		n := &v.Notes[i]
		title := truncate.StringWithTail(n.Title, titleWidth, "…")
		tags := tagColor.Sprint(strings.Join(hashed(n.TagNames()), " "))
		if pp.ShowID {
			tbl.AddRow(y.Sprint(n.ID), title, tags, n.CreatedAt.String())
		} else {
			tbl.AddRow(title, tags, n.CreatedAt.String())
		}
	}
	_, _ = fmt.Fprintln(w, tbl)

	from, to := v.Range(pageSize)
	c := color.New(color.Faint)
	_, _ = c.Fprintf(w, "\nShowing %d - %d of %d", from, to, v.TotalElements)
	if v.TotalPages > 1 {
		_, _ = c.Fprintf(w, "  (page %d of %d)", v.Page+1, v.TotalPages)
	}
	_, _ = fmt.Fprintln(w, "")
}

// Note renders a single note with its content wrapped.
func (pp *PrettyPrint) Note(n *note.Note) {
	w := pp.out()
	pp.Title(n.Title)
	meta := color.New(color.Faint)
	if pp.ShowID {
		_, _ = meta.Fprintf(w, "id %s  ", n.ID)
	}
	if !n.CreatedAt.IsZero() {
		_, _ = meta.Fprintf(w, "created %s (%s)", n.CreatedAt, timeutil.Ago(n.CreatedAt.Time, time.Now()))
	}
	_, _ = fmt.Fprintln(w, "")
	if tags := n.TagNames(); len(tags) > 0 {
		_, _ = color.New(color.FgCyan).Fprintln(w, strings.Join(hashed(tags), " "))
	}
	_, _ = fmt.Fprintln(w, "")
	if strings.TrimSpace(n.Content) != "" {
		_, _ = fmt.Fprintln(w, wordwrap.String(n.Content, contentWidth))
	}
}

// Tags renders the known tag names, one per row.
func (pp *PrettyPrint) Tags(names []string) {
	w := pp.out()
	if len(names) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(w, " none\n\n")
		return
	}
	tbl := uitable.New()
	tbl.Separator = " "
	for _, name := range names {
		tbl.AddRow("#", name)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// Principal renders the logged in user.
func (pp *PrettyPrint) Principal(p *note.Principal) {
	tbl := uitable.New()
	tbl.Separator = "  "
	bold := color.New(color.Bold)
	tbl.AddRow(bold.Sprint("Email"), p.Email)
	tbl.AddRow(bold.Sprint("ID"), p.ID.String())
	if p.Role != "" {
		tbl.AddRow(bold.Sprint("Role"), p.Role)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// FieldErrors lists per-field validation messages.
func (pp *PrettyPrint) FieldErrors(fields map[string]string) {
	tbl := uitable.New()
	tbl.Separator = "  "
	red := color.New(color.FgRed)
	for _, name := range sortedKeys(fields) {
		tbl.AddRow(red.Sprint(name), fields[name])
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func hashed(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, "#"+n)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
