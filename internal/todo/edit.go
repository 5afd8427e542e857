package todo

import (
	"strings"

	"github.com/pkg/errors"
)

// Editor is the single in-progress edit. The zero value is idle.
type Editor struct {
	id     int64
	buffer string
	active bool
}

// Begin starts editing t with its current text in the buffer.
func (e *Editor) Begin(t Task) {
	e.id = t.ID
	e.buffer = t.Text
	e.active = true
}

func (e *Editor) Active() (int64, bool) {
	return e.id, e.active
}

func (e *Editor) Editing(id int64) bool {
	return e.active && e.id == id
}

func (e *Editor) Buffer() string {
	return e.buffer
}

func (e *Editor) SetBuffer(text string) {
	if e.active {
		e.buffer = text
	}
}

// Save writes a non-blank buffer back to the task and ends the session.
// A blank buffer is dropped and the task keeps its text. saved reports
// whether the store was changed.
func (e *Editor) Save(s *Store) (saved bool, err error) {
	if !e.active {
		return false, nil
	}
	id, text := e.id, e.buffer
	e.Cancel()

	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	if _, err := s.Edit(id, text); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return true, err
	}
	return true, nil
}

func (e *Editor) Cancel() {
	*e = Editor{}
}
