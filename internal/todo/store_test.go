package todo

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSlot struct {
	mu      sync.Mutex
	values  map[string]string
	writes  int
	getErr  error
	failSet error
}

func newMemSlot() *memSlot {
	return &memSlot{values: map[string]string{}}
}

func (m *memSlot) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memSlot) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.writes++
	m.values[key] = value
	return nil
}

func fixedClock(ms int64) Clock {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newStore(t *testing.T, slot *memSlot) *Store {
	t.Helper()
	s, err := Load(slot, DefaultKey, WithClock(fixedClock(1000)))
	require.NoError(t, err)
	return s
}

func texts(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestLoadMissingSlotIsEmpty(t *testing.T) {
	s := newStore(t, newMemSlot())
	assert.Empty(t, s.Tasks())
	assert.NotNil(t, s.Tasks())
}

func TestLoadMalformedFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{oops"},
		{name: "object instead of array", raw: `{"id":1}`},
		{name: "string id", raw: `[{"id":"1","text":"a","completed":false}]`},
		{name: "missing text", raw: `[{"id":1,"completed":false}]`},
		{name: "fractional id", raw: `[{"id":1.5,"text":"a","completed":false}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := newMemSlot()
			slot.values[DefaultKey] = tt.raw
			s := newStore(t, slot)
			assert.Empty(t, s.Tasks())
			assert.Equal(t, tt.raw, slot.values[DefaultKey], "load must not rewrite the slot")
		})
	}
}

func TestLoadReadErrorIsReturned(t *testing.T) {
	slot := newMemSlot()
	slot.getErr = errors.New("disk gone")
	_, err := Load(slot, DefaultKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestLoadNilSlot(t *testing.T) {
	_, err := Load(nil, DefaultKey)
	assert.Error(t, err)
}

func TestAdd(t *testing.T) {
	slot := newMemSlot()
	s := newStore(t, slot)

	task, err := s.Add("Buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Text)
	assert.False(t, task.Completed)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task, tasks[0])
	assert.Equal(t, 1, slot.writes)
}

func TestAddTrimsText(t *testing.T) {
	s := newStore(t, newMemSlot())
	task, err := s.Add("  Buy milk \t")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Text)
}

func TestTextIsKeptOnOneLine(t *testing.T) {
	s := newStore(t, newMemSlot())
	task, err := s.Add("first\nsecond\tthird\r\n")
	require.NoError(t, err)
	assert.Equal(t, "first second third", task.Text)

	task, err = s.Edit(task.ID, "a\nb")
	require.NoError(t, err)
	assert.Equal(t, "a b", task.Text)
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "plain", SingleLine("plain"))
	assert.Equal(t, "a b  c", SingleLine("a\nb\r\nc"))
}

func TestAddRejectsBlank(t *testing.T) {
	slot := newMemSlot()
	s := newStore(t, slot)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(text)
		assert.ErrorIs(t, err, ErrEmptyText)
	}
	assert.Empty(t, s.Tasks())
	assert.Zero(t, slot.writes)
}

func TestAddAssignsUniqueMonotonicIDs(t *testing.T) {
	s := newStore(t, newMemSlot())

	var last int64
	for i := 0; i < 5; i++ {
		task, err := s.Add("task")
		require.NoError(t, err)
		assert.Greater(t, task.ID, last)
		last = task.ID
	}
	assert.Equal(t, int64(1004), last)
}

func TestAddIDsUseClock(t *testing.T) {
	now := int64(5000)
	s, err := Load(newMemSlot(), DefaultKey, WithClock(func() time.Time { return time.UnixMilli(now) }))
	require.NoError(t, err)

	first, err := s.Add("a")
	require.NoError(t, err)
	now = 9000
	second, err := s.Add("b")
	require.NoError(t, err)

	assert.Equal(t, int64(5000), first.ID)
	assert.Equal(t, int64(9000), second.ID)
}

func TestAddIDsContinuePastLoaded(t *testing.T) {
	slot := newMemSlot()
	slot.values[DefaultKey] = `[{"id":50000,"text":"old","completed":true}]`
	s := newStore(t, slot)

	task, err := s.Add("new")
	require.NoError(t, err)
	assert.Equal(t, int64(50001), task.ID)
}

func TestToggle(t *testing.T) {
	s := newStore(t, newMemSlot())
	a, _ := s.Add("a")
	_, _ = s.Add("b")

	got, err := s.Toggle(a.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Len(t, s.Tasks(), 2)

	got, err = s.Toggle(a.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Len(t, s.Tasks(), 2)
}

func TestToggleMissing(t *testing.T) {
	slot := newMemSlot()
	s := newStore(t, slot)
	_, _ = s.Add("a")

	_, err := s.Toggle(42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, slot.writes)
}

func TestDelete(t *testing.T) {
	s := newStore(t, newMemSlot())
	a, _ := s.Add("a")
	b, _ := s.Add("b")
	c, _ := s.Add("c")

	require.NoError(t, s.Delete(b.ID))
	tasks := s.Tasks()
	assert.Equal(t, []string{"a", "c"}, texts(tasks))
	assert.Equal(t, a.ID, tasks[0].ID)
	assert.Equal(t, c.ID, tasks[1].ID)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	slot := newMemSlot()
	s := newStore(t, slot)
	_, _ = s.Add("a")
	before := s.Tasks()

	assert.ErrorIs(t, s.Delete(999), ErrNotFound)
	assert.Equal(t, before, s.Tasks())
	assert.Equal(t, 1, slot.writes)
}

func TestEdit(t *testing.T) {
	s := newStore(t, newMemSlot())
	a, _ := s.Add("a")
	_, _ = s.Toggle(a.ID)

	got, err := s.Edit(a.ID, "New text")
	require.NoError(t, err)
	assert.Equal(t, Task{ID: a.ID, Text: "New text", Completed: true}, got)
}

func TestEditRejectsBlank(t *testing.T) {
	s := newStore(t, newMemSlot())
	a, _ := s.Add("a")

	_, err := s.Edit(a.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "a", got.Text)
}

func TestEditMissing(t *testing.T) {
	s := newStore(t, newMemSlot())
	_, err := s.Edit(7, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderPreservedThroughMutations(t *testing.T) {
	s := newStore(t, newMemSlot())
	a, _ := s.Add("a")
	b, _ := s.Add("b")
	_, _ = s.Add("c")

	_, _ = s.Toggle(b.ID)
	_, _ = s.Edit(a.ID, "A")
	assert.Equal(t, []string{"A", "b", "c"}, texts(s.Tasks()))
}

func TestPersistLoadRoundTrip(t *testing.T) {
	slot := newMemSlot()
	s := newStore(t, slot)
	a, _ := s.Add("a")
	_, _ = s.Add("b")
	_, _ = s.Toggle(a.ID)

	reloaded, err := Load(slot, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, s.Tasks(), reloaded.Tasks())
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	slot := newMemSlot()
	s := newStore(t, slot)
	slot.failSet = errors.New("read-only")

	var notified int
	s.Subscribe(func([]Task) { notified++ })

	task, err := s.Add("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.Equal(t, "a", task.Text)
	assert.Len(t, s.Tasks(), 1)
	assert.Equal(t, 1, notified)

	slot.failSet = nil
	_, err = s.Add("b")
	require.NoError(t, err)
	reloaded, err := Load(slot, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts(reloaded.Tasks()))
}

func TestSubscribeNotifiesOnMutationsOnly(t *testing.T) {
	s := newStore(t, newMemSlot())

	var got [][]Task
	unsubscribe := s.Subscribe(func(tasks []Task) { got = append(got, tasks) })

	a, _ := s.Add("a")
	_, _ = s.Add("   ")
	_, _ = s.Toggle(a.ID)
	_, _ = s.Toggle(123)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a"}, texts(got[0]))
	assert.False(t, got[0][0].Completed)
	assert.True(t, got[1][0].Completed)

	unsubscribe()
	unsubscribe()
	_, _ = s.Add("b")
	assert.Len(t, got, 2)
}

func TestSubscribeOrderAndIsolation(t *testing.T) {
	s := newStore(t, newMemSlot())

	var order []string
	s.Subscribe(func(tasks []Task) {
		order = append(order, "first")
		tasks[0].Text = "mutated"
	})
	s.Subscribe(func(tasks []Task) {
		order = append(order, "second:"+tasks[0].Text)
	})

	_, _ = s.Add("a")
	assert.Equal(t, []string{"first", "second:a"}, order)
	assert.Equal(t, "a", s.Tasks()[0].Text)
}

func TestListenerMayReadStore(t *testing.T) {
	s := newStore(t, newMemSlot())
	var seen int
	s.Subscribe(func([]Task) { seen = s.Len() })
	_, _ = s.Add("a")
	assert.Equal(t, 1, seen)
}

func TestTasksReturnsCopy(t *testing.T) {
	s := newStore(t, newMemSlot())
	_, _ = s.Add("a")
	tasks := s.Tasks()
	tasks[0].Text = "changed"
	assert.Equal(t, "a", s.Tasks()[0].Text)
}

func TestTogglesScenario(t *testing.T) {
	s := newStore(t, newMemSlot())
	a, _ := s.Add("A")
	_, _ = s.Add("B")
	_, _ = s.Toggle(a.ID)

	var active, done []string
	for _, task := range s.Tasks() {
		if task.Completed {
			done = append(done, task.Text)
		} else {
			active = append(active, task.Text)
		}
	}
	assert.Equal(t, []string{"B"}, active)
	assert.Equal(t, []string{"A"}, done)
}
