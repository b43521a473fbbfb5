package teaui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

type theme struct {
	dark bool

	Title    lipgloss.Style
	Header   lipgloss.Style
	Dim      lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Loading  lipgloss.Style
	Info     lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Panel    lipgloss.Style
	Label    lipgloss.Style
}

func newTheme(dark bool) theme {
	accent := lipgloss.Color("212")
	dim := lipgloss.Color("244")
	if !dark {
		accent = lipgloss.Color("125")
		dim = lipgloss.Color("240")
	}
	return theme{
		dark:     dark,
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Header:   lipgloss.NewStyle().Foreground(dim),
		Dim:      lipgloss.NewStyle().Foreground(dim),
		Selected: lipgloss.NewStyle().Bold(true),
		Cursor:   lipgloss.NewStyle().Foreground(accent),
		Loading:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Label: lipgloss.NewStyle().Foreground(dim).Width(9),
	}
}

// Tag returns a style whose color is derived from the tag name, so a tag
// keeps its color across pages and sessions.
func (t theme) Tag(name string) lipgloss.Style {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	hue := float64(h.Sum32() % 360)
	light := 0.72
	if !t.dark {
		light = 0.42
	}
	c := colorful.Hcl(hue, 0.45, light).Clamped()
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}
