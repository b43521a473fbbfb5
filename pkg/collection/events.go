package collection

import (
	"fmt"
)

// PageMsg is emitted whenever a fetched page becomes the visible state.
type PageMsg struct {
	View View
}

// Describe renders the page in a human-friendly format for logs.
func (m PageMsg) Describe() string {
	return fmt.Sprintf(`page:%d/%d notes:%d seq:%d search:%q tag:%q`,
		m.View.Page, m.View.TotalPages, len(m.View.Notes), m.View.Seq, m.View.Search, m.View.Tag)
}

// LoadingMsg is emitted when the loading flag flips.
type LoadingMsg struct {
	Loading bool
}

// Level classifies a notice.
type Level string

const (
	// LevelInfo reports a completed action.
	LevelInfo Level = "info"
	// LevelError reports a failure.
	LevelError Level = "error"
)

// NoticeMsg is a transient, user-facing notification.
type NoticeMsg struct {
	Level Level
	Text  string
}

// Describe renders the notice for logs.
func (m NoticeMsg) Describe() string {
	return fmt.Sprintf(`level:%s text:%q`, m.Level, m.Text)
}
