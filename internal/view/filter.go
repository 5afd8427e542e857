// Package view derives the visible task list from the store.
package view

import (
	"sync"

	"github.com/pkg/errors"

	"todolist/internal/todo"
)

type Filter int

const (
	All Filter = iota
	Active
	Completed
)

func Filters() []Filter {
	return []Filter{All, Active, Completed}
}

func (f Filter) String() string {
	switch f {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "all"
	}
}

// Label is the title-cased name shown on filter controls.
func (f Filter) Label() string {
	switch f {
	case Active:
		return "Active"
	case Completed:
		return "Completed"
	default:
		return "All"
	}
}

func (f Filter) Next() Filter {
	return (f + 1) % Filter(len(Filters()))
}

// ParseFilter accepts only the lowercase filter names.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "all":
		return All, nil
	case "active":
		return Active, nil
	case "completed":
		return Completed, nil
	default:
		return All, errors.Errorf("unknown filter %q (want all, active or completed)", s)
	}
}

// Apply returns the tasks matching f in their original order. The result
// never shares backing storage with tasks.
func Apply(tasks []todo.Task, f Filter) []todo.Task {
	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f Filter) Match(t todo.Task) bool {
	switch f {
	case Active:
		return !t.Completed
	case Completed:
		return t.Completed
	default:
		return true
	}
}

type Counts struct {
	Total     int
	Active    int
	Completed int
}

// Projection keeps the filtered view current. OnChange is meant to be
// registered with todo.Store.Subscribe.
type Projection struct {
	mu      sync.Mutex
	filter  Filter
	tasks   []todo.Task
	visible []todo.Task
}

func NewProjection(tasks []todo.Task) *Projection {
	p := &Projection{}
	p.OnChange(tasks)
	return p
}

func (p *Projection) OnChange(tasks []todo.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append([]todo.Task(nil), tasks...)
	p.visible = Apply(p.tasks, p.filter)
}

func (p *Projection) SetFilter(f Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
	p.visible = Apply(p.tasks, f)
}

func (p *Projection) Filter() Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

func (p *Projection) Visible() []todo.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]todo.Task(nil), p.visible...)
}

func (p *Projection) Counts() Counts {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := Counts{Total: len(p.tasks)}
	for _, t := range p.tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
