package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"todolist/internal/config"
)

type keyMap struct {
	Quit      key.Binding
	Add       key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Edit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Filter    key.Binding
	All       key.Binding
	Active    key.Binding
	Completed key.Binding
	Focus     key.Binding
	Help      key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:      binding(k.Quit, "quit"),
		Add:       binding(k.Add, "add"),
		Up:        binding(k.Up, "up"),
		Down:      binding(k.Down, "down"),
		Toggle:    binding(k.Toggle, "toggle"),
		Delete:    binding(k.Delete, "delete"),
		Edit:      binding(k.Edit, "edit"),
		Confirm:   binding(k.Confirm, "save"),
		Cancel:    binding(k.Cancel, "leave field"),
		Filter:    binding(k.Filter, "next filter"),
		All:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		Completed: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
		Help:      binding(k.Help, "help"),
	}
}

func binding(entry, desc string) key.Binding {
	keys := config.Bindings(entry)
	label := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		label[i] = k
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(label, "/"), desc))
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Add, k.Toggle, k.Edit, k.Delete},
		{k.Filter, k.All, k.Active, k.Completed},
		{k.Confirm, k.Cancel, k.Help, k.Quit},
	}
}
