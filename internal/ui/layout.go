package ui

import (
	"github.com/charmbracelet/lipgloss"

	"todolist/internal/todo"
	"todolist/internal/view"
)

// Screen rows. Everything above rowsTop is fixed height so mouse
// coordinates map straight onto controls.
const (
	titleLine  = 0
	addLine    = 2
	filterLine = 4
	rowsTop    = 6

	cursorWidth   = 2
	checkboxWidth = 3
	textStart     = cursorWidth + checkboxWidth + 1
	deleteGap     = 2

	addLabel    = "[Add]"
	deleteLabel = "[Delete]"
)

type zone int

const (
	zoneNone zone = iota
	zoneAddInput
	zoneAddButton
	zoneFilter
	zoneCheckbox
	zoneText
	zoneDelete
	zoneEditRow
)

type hit struct {
	zone   zone
	row    int
	filter view.Filter
}

var noHit = hit{zone: zoneNone, row: -1}

type span struct {
	start, end int // end exclusive
}

func (s span) contains(x int) bool {
	return x >= s.start && x < s.end
}

func filterText(f view.Filter) string {
	return " " + f.Label() + " "
}

func filterSpans() []span {
	spans := make([]span, 0, len(view.Filters()))
	x := 0
	for _, f := range view.Filters() {
		w := lipgloss.Width(filterText(f))
		spans = append(spans, span{start: x, end: x + w})
		x += w + 1
	}
	return spans
}

func (m Model) addButtonSpan() span {
	start := lipgloss.Width(m.addInput.View()) + 1
	return span{start: start, end: start + len(addLabel)}
}

// rowText renders a task on exactly one screen line so rows map one to one
// onto task indexes.
func (m Model) rowText(text string) string {
	return truncate(todo.SingleLine(text), m.maxTextWidth())
}

// footerLines counts what View draws below the rows: a blank line, the
// status line and the help.
func (m Model) footerLines() int {
	return 2 + lipgloss.Height(m.help.View(m.keys))
}

// listHeight is how many task rows fit on screen. Zero means the height is
// not known yet and every row is drawn.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(1, m.height-rowsTop-m.footerLines())
}

// window returns the visible rows that are on screen, as [start, end).
func (m Model) window(n int) (int, int) {
	h := m.listHeight()
	if h == 0 || n <= h {
		return 0, n
	}
	start := min(max(m.offset, 0), n-h)
	return start, start + h
}

// scrollToCursor moves the window the least amount that keeps the cursor
// on screen.
func (m Model) scrollToCursor() Model {
	n := len(m.proj.Visible())
	h := m.listHeight()
	if h == 0 || n <= h {
		m.offset = 0
		return m
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = min(max(m.offset, 0), n-h)
	return m
}

func (m Model) maxTextWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := m.width - textStart - deleteGap - len(deleteLabel)
	if w < 4 {
		w = 4
	}
	return w
}

func (m Model) deleteSpan(text string) span {
	start := textStart + lipgloss.Width(text) + deleteGap
	return span{start: start, end: start + len(deleteLabel)}
}

func (m Model) hitTest(x, y int) hit {
	switch {
	case y == addLine:
		if m.addButtonSpan().contains(x) {
			return hit{zone: zoneAddButton, row: -1}
		}
		return hit{zone: zoneAddInput, row: -1}
	case y == filterLine:
		for i, s := range filterSpans() {
			if s.contains(x) {
				return hit{zone: zoneFilter, row: -1, filter: view.Filters()[i]}
			}
		}
		return noHit
	case y >= rowsTop:
		visible := m.proj.Visible()
		start, end := m.window(len(visible))
		row := start + y - rowsTop
		if row >= end {
			return noHit
		}
		t := visible[row]
		if m.editor.Editing(t.ID) {
			return hit{zone: zoneEditRow, row: row}
		}
		text := m.rowText(t.Text)
		switch {
		case x >= cursorWidth && x < cursorWidth+checkboxWidth:
			return hit{zone: zoneCheckbox, row: row}
		case x >= textStart && x < textStart+lipgloss.Width(text):
			return hit{zone: zoneText, row: row}
		case m.deleteSpan(text).contains(x):
			return hit{zone: zoneDelete, row: row}
		}
		return noHit
	}
	return noHit
}

func truncate(s string, limit int) string {
	if limit <= 0 || lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
