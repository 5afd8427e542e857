package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todolist/internal/inputmode"
	"todolist/internal/todo"
	"todolist/internal/view"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	buttonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3b82f6"))
	buttonHoverStyle = buttonStyle.Background(lipgloss.Color("#2563eb"))

	filterStyle       = lipgloss.NewStyle().Background(lipgloss.Color("#e5e7eb")).Foreground(lipgloss.Color("#111827"))
	filterActiveStyle = lipgloss.NewStyle().Background(lipgloss.Color("#3b82f6")).Foreground(lipgloss.Color("#ffffff"))
	filterHoverStyle  = filterStyle.Underline(true)

	doneStyle        = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#6b7280"))
	deleteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	deleteHoverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")).Bold(true)

	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Italic(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ec9b0"))
)

func (m Model) View() string {
	lines := make([]string, rowsTop)
	lines[titleLine] = titleStyle.Render("Todo List") + " " + m.renderCounts()
	lines[addLine] = m.renderAddRow()
	lines[filterLine] = m.renderFilters()

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.renderTaskList())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) hoverOn() bool {
	return m.detector != nil && inputmode.HoverEnabled(m.detector.Mode())
}

func (m Model) hovered(z zone, row int) bool {
	return m.hoverOn() && m.hover.zone == z && m.hover.row == row
}

func (m Model) renderCounts() string {
	c := m.proj.Counts()
	return emptyStyle.Render(fmt.Sprintf("%d active • %d completed", c.Active, c.Completed))
}

func (m Model) renderAddRow() string {
	style := buttonStyle
	if m.hovered(zoneAddButton, -1) {
		style = buttonHoverStyle
	}
	return m.addInput.View() + " " + style.Render(addLabel)
}

func (m Model) renderFilters() string {
	current := m.proj.Filter()
	parts := make([]string, 0, len(view.Filters()))
	for _, f := range view.Filters() {
		style := filterStyle
		switch {
		case f == current:
			style = filterActiveStyle
		case m.hoverOn() && m.hover.zone == zoneFilter && m.hover.filter == f:
			style = filterHoverStyle
		}
		parts = append(parts, style.Render(filterText(f)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderTaskList() string {
	visible := m.proj.Visible()
	if len(visible) == 0 {
		return emptyStyle.Render(emptyText(m.proj.Filter())) + "\n"
	}

	start, end := m.window(len(visible))
	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderTask(i, visible[i]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTask(i int, t todo.Task) string {
	cursor := "  "
	if m.cursor == i && m.focus == focusList {
		cursor = "> "
	}
	if m.editor.Editing(t.ID) {
		return cursor + m.editInput.View()
	}

	checkbox := "[ ]"
	if t.Completed {
		checkbox = "[x]"
	}

	text := m.rowText(t.Text)
	if t.Completed {
		text = doneStyle.Render(text)
	}

	del := deleteStyle
	if m.hovered(zoneDelete, i) {
		del = deleteHoverStyle
	}
	return fmt.Sprintf("%s%s %s%s%s", cursor, checkbox, text, strings.Repeat(" ", deleteGap), del.Render(deleteLabel))
}

func emptyText(f view.Filter) string {
	switch f {
	case view.Active:
		return "Nothing left to do."
	case view.Completed:
		return "No completed tasks yet."
	default:
		return "No tasks yet. Type one above and press Enter."
	}
}
