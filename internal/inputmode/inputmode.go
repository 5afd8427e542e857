// Package inputmode guesses whether the user is driving the app with a
// mouse or a touch screen. The guess only decides whether hover styling is
// shown; nothing else depends on it.
package inputmode

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type Mode int

const (
	Unknown Mode = iota
	Mouse
	Touch
)

func (m Mode) String() string {
	switch m {
	case Mouse:
		return "mouse"
	case Touch:
		return "touch"
	default:
		return "unknown"
	}
}

// ParseMode reads a configured mode. "auto" and "" mean Unknown, i.e. let
// the probe decide.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "unknown":
		return Unknown, nil
	case "mouse":
		return Mouse, nil
	case "touch":
		return Touch, nil
	default:
		return Unknown, errors.Errorf("unknown input mode %q (want auto, mouse or touch)", s)
	}
}

// HoverEnabled reports whether hover affordances should be drawn.
func HoverEnabled(m Mode) bool {
	return m == Mouse
}

type PointerType string

const (
	PointerMouse PointerType = "mouse"
	PointerTouch PointerType = "touch"
	PointerPen   PointerType = "pen"
)

type PointerDown struct {
	Type PointerType
}

// Initial classifies a device from its capabilities.
func Initial(c Capabilities) Mode {
	if (c.HoverNone && c.PointerCoarse) || c.MaxTouchPoints > 0 {
		return Touch
	}
	return Mouse
}

// Reduce applies one pointer-down event. Pointer types other than mouse
// and touch leave the mode alone.
func Reduce(m Mode, ev PointerDown) Mode {
	switch ev.Type {
	case PointerMouse:
		return Mouse
	case PointerTouch:
		return Touch
	default:
		return m
	}
}

type Detector interface {
	Mode() Mode
	Observe(ev PointerDown) Mode
	Attach()
	Detach()
}

type Option func(*Heuristic)

// WithOnChange registers a callback run whenever the mode changes.
func WithOnChange(fn func(from, to Mode)) Option {
	return func(h *Heuristic) {
		h.onChange = fn
	}
}

// Heuristic is the default Detector: a one-time capability probe followed
// by pointer-event overrides.
type Heuristic struct {
	mu       sync.Mutex
	probe    Probe
	mode     Mode
	probed   bool
	attached bool
	onChange func(from, to Mode)
}

func NewHeuristic(probe Probe, opts ...Option) *Heuristic {
	if probe == nil {
		probe = EnvProbe{}
	}
	h := &Heuristic{probe: probe}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heuristic) Mode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

func (h *Heuristic) Attached() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attached
}

// Attach starts observing. The probe runs on the first attach only.
func (h *Heuristic) Attach() {
	h.mu.Lock()
	if h.attached {
		h.mu.Unlock()
		return
	}
	h.attached = true
	from, to := h.mode, h.mode
	if !h.probed {
		h.probed = true
		to = Initial(h.probe.Capabilities())
		h.mode = to
	}
	h.mu.Unlock()
	h.notify(from, to)
}

func (h *Heuristic) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached = false
}

// Observe folds ev into the mode. Events arriving while detached are
// dropped.
func (h *Heuristic) Observe(ev PointerDown) Mode {
	h.mu.Lock()
	if !h.attached {
		m := h.mode
		h.mu.Unlock()
		return m
	}
	from := h.mode
	h.mode = Reduce(from, ev)
	to := h.mode
	h.mu.Unlock()
	h.notify(from, to)
	return to
}

func (h *Heuristic) notify(from, to Mode) {
	if from != to && h.onChange != nil {
		h.onChange(from, to)
	}
}
