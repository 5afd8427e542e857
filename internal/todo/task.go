package todo

import (
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
)

var (
	ErrEmptyText = errors.New("task text is empty")
	ErrNotFound  = errors.New("task not found")
)

type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Clock returns the current time. Tests swap it for a fixed one.
type Clock func() time.Time

// idSource hands out creation-time ids in Unix milliseconds, bumped past
// the last id issued so two tasks created in one millisecond still differ.
type idSource struct {
	now  Clock
	last int64
}

func (s *idSource) next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

func (s *idSource) observe(tasks []Task) {
	for _, t := range tasks {
		if t.ID > s.last {
			s.last = t.ID
		}
	}
}

// normalizeText keeps a task on one line: control characters such as
// newlines and tabs become spaces before trimming.
func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(SingleLine(text))
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// SingleLine replaces every control character in s with a space.
func SingleLine(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
