package todo

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// DefaultKey is the storage slot the task list lives in.
const DefaultKey = "todos"

// Slot is the durable storage the list is mirrored to.
type Slot interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Listener receives a copy of the list after each successful mutation.
type Listener func(tasks []Task)

type Option func(*Store)

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now Clock) Option {
	return func(s *Store) {
		if now != nil {
			s.ids.now = now
		}
	}
}

type subscription struct {
	id int
	fn Listener
}

// Store is the in-memory task list. Every mutation is written through to
// the slot in full before listeners run.
type Store struct {
	mu        sync.Mutex
	slot      Slot
	key       string
	tasks     []Task
	ids       idSource
	logger    *log.Logger
	listeners []subscription
	nextSub   int
}

// Load hydrates a store from the slot. A missing value yields an empty
// list; a value that does not decode also yields an empty list and a
// warning. Only a failing read is an error.
func Load(slot Slot, key string, opts ...Option) (*Store, error) {
	if slot == nil {
		return nil, errors.New("slot is nil")
	}
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		slot:   slot,
		key:    key,
		tasks:  []Task{},
		ids:    idSource{now: time.Now},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, found, err := slot.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "load tasks")
	}
	if !found {
		s.logger.Debug("no saved tasks", "key", key)
		return s, nil
	}

	tasks, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("saved tasks unreadable, starting empty", "key", key, "err", err)
		return s, nil
	}
	s.tasks = tasks
	s.ids.observe(tasks)
	s.logger.Debug("loaded tasks", "key", key, "count", len(tasks))
	return s, nil
}

func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Get(id int64) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Add appends a new pending task with trimmed text.
func (s *Store) Add(text string) (Task, error) {
	text, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	t := Task{ID: s.ids.next(), Text: text}
	s.tasks = append(s.tasks, t)
	return t, s.commitLocked("add", t.ID)
}

func (s *Store) Toggle(id int64) (Task, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Task{}, ErrNotFound
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	return t, s.commitLocked("toggle", id)
}

func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return s.commitLocked("delete", id)
}

// Edit replaces the text of a task. Completion and id are kept.
func (s *Store) Edit(id int64, text string) (Task, error) {
	text, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Task{}, ErrNotFound
	}
	s.tasks[i].Text = text
	t := s.tasks[i]
	return t, s.commitLocked("edit", id)
}

// Subscribe registers fn for change notifications. The returned func
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// commitLocked persists the list, releases the lock and notifies
// listeners. The mutation stays applied when the write fails.
func (s *Store) commitLocked(op string, id int64) error {
	snapshot := cloneTasks(s.tasks)
	listeners := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		listeners[i] = sub.fn
	}
	err := s.persistLocked(snapshot)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("persist failed", "op", op, "id", id, "err", err)
	} else {
		s.logger.Debug("task "+op, "id", id, "count", len(snapshot))
	}
	for _, fn := range listeners {
		fn(cloneTasks(snapshot))
	}
	return err
}

func (s *Store) persistLocked(tasks []Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return errors.Wrap(err, "persist tasks")
	}
	if err := s.slot.Set(s.key, string(data)); err != nil {
		return errors.Wrap(err, "persist tasks")
	}
	return nil
}

func (s *Store) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
