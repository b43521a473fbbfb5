package teaui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/notes/pkg/note"
)

// field is a labelled input that can show a server-side validation message.
type field struct {
	key   string
	label string
	input textinput.Model
	err   string
}

func newField(key, label, placeholder string) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	return field{key: key, label: label, input: ti}
}

// form is an ordered set of fields with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	return f.fields[i].input.Focus()
}

func (f *form) next() tea.Cmd { return f.focusField(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.focusField(f.focus - 1) }

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return fl.input.Value()
		}
	}
	return ""
}

// setErrors attaches field messages by key. Returns the messages that did
// not match any field.
func (f *form) setErrors(errs map[string]string) []string {
	var rest []string
	matched := map[string]bool{}
	for i := range f.fields {
		f.fields[i].err = errs[f.fields[i].key]
		if f.fields[i].err != "" {
			matched[f.fields[i].key] = true
		}
	}
	for k, v := range errs {
		if !matched[k] {
			rest = append(rest, k+": "+v)
		}
	}
	sort.Strings(rest)
	return rest
}

func (f *form) view(t theme) string {
	var b strings.Builder
	for i, fl := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = t.Cursor.Render("> ")
		}
		b.WriteString(marker)
		b.WriteString(t.Label.Render(fl.label))
		b.WriteString(fl.input.View())
		if fl.err != "" {
			b.WriteString("  ")
			b.WriteString(t.Error.Render(fl.err))
		}
		if i < len(f.fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// newNoteForm returns a title/content/tags form, prefilled from n when
// editing.
func newNoteForm(n *note.Note) form {
	f := form{fields: []field{
		newField("title", "Title", "required"),
		newField("content", "Content", ""),
		newField("tagNames", "Tags", "comma separated"),
	}}
	if n != nil {
		f.fields[0].input.SetValue(n.Title)
		f.fields[1].input.SetValue(n.Content)
		f.fields[2].input.SetValue(strings.Join(n.TagNames(), ", "))
		for i := range f.fields {
			f.fields[i].input.CursorEnd()
		}
	}
	return f
}

func draftFromForm(f *form) note.Draft {
	return note.Draft{
		Title:    f.value("title"),
		Content:  f.value("content"),
		TagNames: strings.Split(f.value("tagNames"), ","),
	}.Normalize()
}

func newLoginForm() form {
	f := form{fields: []field{
		newField("email", "Email", "you@example.com"),
		newField("password", "Password", ""),
	}}
	f.fields[1].input.EchoMode = textinput.EchoPassword
	f.fields[1].input.EchoCharacter = '*'
	return f
}
