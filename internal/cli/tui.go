package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/menuforge/menuforge/pkg/errors"
	"github.com/menuforge/menuforge/pkg/menu"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// FormatListModel is the bubbletea model for interactive format selection.
type FormatListModel struct {
	Formats  []menu.Format
	Cursor   int
	Selected string
}

// NewFormatListModel creates a format list model over the built-in presets.
func NewFormatListModel() FormatListModel {
	names := menu.FormatNames()
	formats := make([]menu.Format, 0, len(names))
	for _, name := range names {
		f, _ := menu.FormatByName(name)
		formats = append(formats, f)
	}
	return FormatListModel{Formats: formats}
}

func (m FormatListModel) Init() tea.Cmd {
	return nil
}

func (m FormatListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Formats)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Formats[m.Cursor].Name
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FormatListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Format"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, f := range m.Formats {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			f.Name,
			fmt.Sprintf("%.0f x %.0f", f.Width, f.Height),
			fmt.Sprintf("%.0f", f.DPI),
			fmt.Sprintf("%.0f", f.Bleed),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Format", "Trim (px)", "DPI", "Bleed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return listSelectedStyle
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Formats))))

	return b.String()
}

// pickFormat runs the interactive format picker and returns the chosen
// preset name. Quitting without a selection is an error.
func pickFormat() (string, error) {
	final, err := tea.NewProgram(NewFormatListModel()).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(FormatListModel)
	if !ok || m.Selected == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no format selected")
	}
	return m.Selected, nil
}
