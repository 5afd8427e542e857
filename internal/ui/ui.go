package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"todolist/internal/config"
	"todolist/internal/inputmode"
	"todolist/internal/logging"
	"todolist/internal/todo"
	"todolist/internal/view"
)

const doubleClickWindow = 500 * time.Millisecond

type focus int

const (
	focusList focus = iota
	focusAdd
)

type click struct {
	row int
	id  int64
	at  time.Time
}

type Model struct {
	store       *todo.Store
	proj        *view.Projection
	unsubscribe func()
	detector    inputmode.Detector
	logger      *log.Logger
	keys        keyMap
	help        help.Model

	focus     focus
	addInput  textinput.Model
	editInput textinput.Model
	editor    todo.Editor
	cursor    int
	hover     hit
	lastClick click
	status    string
	width     int
	height    int
	offset    int
	now       func() time.Time
}

// New wires a model to the store. The model subscribes to store changes
// until Close is called.
func New(store *todo.Store, detector inputmode.Detector, keys config.Keymap, logger *log.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	proj := view.NewProjection(store.Tasks())

	add := textinput.New()
	add.Placeholder = "Add a new task"
	add.CharLimit = 256
	add.Width = 40
	add.Focus()

	// No limit: SetValue would otherwise cut long tasks when editing starts.
	edit := textinput.New()
	edit.CharLimit = 0
	edit.Width = 40

	return Model{
		store:       store,
		proj:        proj,
		unsubscribe: store.Subscribe(proj.OnChange),
		detector:    detector,
		logger:      logger,
		keys:        newKeyMap(keys),
		help:        help.New(),
		focus:       focusAdd,
		addInput:    add,
		editInput:   edit,
		hover:       noHit,
		lastClick:   click{row: -1},
		status:      "Type a task and press Enter. Tab moves to the list.",
		now:         time.Now,
	}
}

// Run starts the interactive program and blocks until it exits.
func Run(store *todo.Store, cfg config.Config, configPath string, firstLaunch bool, logger *log.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}
	mode, err := inputmode.ParseMode(cfg.InputMode)
	if err != nil {
		return err
	}
	probe := inputmode.ForMode(mode)
	if probe == nil {
		probe = inputmode.EnvProbe{}
	}
	detector := inputmode.NewHeuristic(probe, inputmode.WithOnChange(func(from, to inputmode.Mode) {
		logger.Info("input type", "from", from, "to", to)
	}))

	m := New(store, detector, cfg.Keys, logger)
	if firstLaunch {
		m.status = fmt.Sprintf("Welcome! Settings live in %s", configPath)
	}
	defer m.Close()

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Close detaches the model from the store and stops pointer observation.
// It is safe to call more than once.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.detector != nil {
		m.detector.Detach()
	}
}

func (m Model) Init() tea.Cmd {
	if m.detector != nil {
		m.detector.Attach()
	}
	return tea.Batch(tea.EnableMouseAllMotion, textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if _, editing := m.editor.Active(); editing {
			return m.updateEditMode(msg)
		}
		if m.focus == focusAdd {
			return m.updateAddMode(msg)
		}
		return m.updateListMode(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.addInput.Width = max(10, msg.Width-len(addLabel)-4)
		m.editInput.Width = max(10, msg.Width-cursorWidth-2)
		m.help.Width = msg.Width
		return m.clamp(), nil
	}

	var cmd tea.Cmd
	if _, editing := m.editor.Active(); editing {
		m.editInput, cmd = m.editInput.Update(msg)
	} else if m.focus == focusAdd {
		m.addInput, cmd = m.addInput.Update(msg)
	}
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if _, editing := m.editor.Active(); editing {
		m = m.saveEdit()
	}
	m.Close()
	return m, tea.Sequence(tea.DisableMouse, tea.Quit)
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.submitAdd(), nil
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Focus):
		return m.focusOn(focusList), nil
	default:
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.proj.Visible()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m.clamp(), nil
	case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Add):
		return m.focusOn(focusAdd), textinput.Blink
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		return m.clamp(), nil
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		return m.clamp(), nil
	case key.Matches(msg, m.keys.Toggle):
		if len(visible) == 0 {
			return m, nil
		}
		return m.toggle(visible[m.cursor].ID), nil
	case key.Matches(msg, m.keys.Delete):
		if len(visible) == 0 {
			return m, nil
		}
		return m.remove(visible[m.cursor].ID), nil
	case key.Matches(msg, m.keys.Edit):
		if len(visible) == 0 {
			return m, nil
		}
		return m.beginEdit(visible[m.cursor])
	case key.Matches(msg, m.keys.Filter):
		return m.setFilter(m.proj.Filter().Next()), nil
	case key.Matches(msg, m.keys.All):
		return m.setFilter(view.All), nil
	case key.Matches(msg, m.keys.Active):
		return m.setFilter(view.Active), nil
	case key.Matches(msg, m.keys.Completed):
		return m.setFilter(view.Completed), nil
	}
	return m, nil
}

// updateEditMode: Enter saves; leaving the field (Esc, Tab) also saves.
func (m Model) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Focus):
		return m.saveEdit(), nil
	default:
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		m.editor.SetBuffer(m.editInput.Value())
		return m, cmd
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionMotion {
		m.hover = m.hitTest(msg.X, msg.Y)
		return m, nil
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		return m.scroll(msg.Button), nil
	case tea.MouseButtonLeft, tea.MouseButtonRight, tea.MouseButtonMiddle:
		if m.detector != nil {
			m.detector.Observe(inputmode.PointerDown{Type: inputmode.PointerMouse})
		}
	default:
		return m, nil
	}
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	target := m.hitTest(msg.X, msg.Y)
	if _, editing := m.editor.Active(); editing && target.zone != zoneEditRow {
		m = m.saveEdit()
		target = m.hitTest(msg.X, msg.Y)
	}

	switch target.zone {
	case zoneAddInput:
		return m.focusOn(focusAdd), textinput.Blink
	case zoneAddButton:
		return m.submitAdd(), nil
	case zoneFilter:
		return m.setFilter(target.filter), nil
	case zoneCheckbox:
		m = m.selectRow(target.row)
		return m.toggle(m.proj.Visible()[target.row].ID), nil
	case zoneDelete:
		m = m.selectRow(target.row)
		return m.remove(m.proj.Visible()[target.row].ID), nil
	case zoneText:
		m = m.selectRow(target.row)
		t := m.proj.Visible()[target.row]
		now := m.now()
		if m.lastClick.id == t.ID && now.Sub(m.lastClick.at) <= doubleClickWindow {
			m.lastClick = click{row: -1}
			return m.beginEdit(t)
		}
		m.lastClick = click{row: target.row, id: t.ID, at: now}
	}
	return m, nil
}

// scroll moves the list selection with the wheel. It is ignored while a
// row is being edited.
func (m Model) scroll(button tea.MouseButton) Model {
	if _, editing := m.editor.Active(); editing {
		return m
	}
	if button == tea.MouseButtonWheelUp {
		m.cursor--
	} else {
		m.cursor++
	}
	m.hover = noHit
	return m.clamp()
}

func (m Model) selectRow(row int) Model {
	m = m.focusOn(focusList)
	m.cursor = clampCursor(row, len(m.proj.Visible()))
	return m
}

func (m Model) focusOn(f focus) Model {
	m.focus = f
	if f == focusAdd {
		m.addInput.Focus()
	} else {
		m.addInput.Blur()
	}
	return m
}

func (m Model) submitAdd() Model {
	t, err := m.store.Add(m.addInput.Value())
	if errors.Is(err, todo.ErrEmptyText) {
		return m
	}
	m.addInput.SetValue("")
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m
	}
	m.status = fmt.Sprintf("Added %q", t.Text)
	return m.clamp()
}

func (m Model) toggle(id int64) Model {
	t, err := m.store.Toggle(id)
	switch {
	case errors.Is(err, todo.ErrNotFound):
		return m
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
	case t.Completed:
		m.status = "Task completed"
	default:
		m.status = "Task reopened"
	}
	return m.clamp()
}

func (m Model) remove(id int64) Model {
	err := m.store.Delete(id)
	switch {
	case errors.Is(err, todo.ErrNotFound):
		return m
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
	default:
		m.status = "Task deleted"
	}
	return m.clamp()
}

func (m Model) beginEdit(t todo.Task) (tea.Model, tea.Cmd) {
	m = m.focusOn(focusList)
	m.editor.Begin(t)
	m.editInput.SetValue(m.editor.Buffer())
	m.editInput.CursorEnd()
	cmd := m.editInput.Focus()
	m.status = "Editing: Enter or Esc to save"
	return m, cmd
}

func (m Model) saveEdit() Model {
	saved, err := m.editor.Save(m.store)
	m.editInput.Blur()
	m.editInput.SetValue("")
	switch {
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
	case saved:
		m.status = "Task updated"
	}
	return m.clamp()
}

func (m Model) setFilter(f view.Filter) Model {
	m.proj.SetFilter(f)
	m.hover = noHit
	return m.clamp()
}

func (m Model) clamp() Model {
	m.cursor = clampCursor(m.cursor, len(m.proj.Visible()))
	return m.scrollToCursor()
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
