package teaui

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/termenv"

	"tableflip.dev/notes/pkg/app"
)

// Run launches the notes browser in the alternate screen and blocks until
// the user quits.
func Run(svc *app.Service) error {
	m := New(svc)
	m.theme = newTheme(termenv.HasDarkBackground())
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
