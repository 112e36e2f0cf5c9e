package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Loading       *lipgloss.Style
	Item          *lipgloss.Style
	FocusedItem   *lipgloss.Style
	Checkbox      *lipgloss.Style
	CheckboxOn    *lipgloss.Style
	CheckboxMixed *lipgloss.Style
	Tag           *lipgloss.Style
	TagOverflow   *lipgloss.Style
	Error         *lipgloss.Style
	Info          *lipgloss.Style
	Footer        *lipgloss.Style
	Filter        *lipgloss.Style
	FilterPrompt  *lipgloss.Style
	Placeholder   *lipgloss.Style
	Cursor        *lipgloss.Style
}

var defaultStyles = Styles{
	Loading:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true)),
	Item:          ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	FocusedItem:   ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true)),
	Checkbox:      ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))),
	CheckboxOn:    ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)),
	CheckboxMixed: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("178"))),
	Tag: ptr(lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("24")).
		Padding(0, 1)),
	TagOverflow:  ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)),
	Error:        ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)),
	Info:         ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	Footer:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	Filter:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	FilterPrompt: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)),
	Placeholder:  ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))),
	Cursor:       ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33"))),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
