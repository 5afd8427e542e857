package inputmode

import (
	"os"
	"strconv"
	"strings"
)

// Capabilities mirrors what a device says about its pointer.
type Capabilities struct {
	HoverNone      bool
	PointerCoarse  bool
	MaxTouchPoints int
}

type Probe interface {
	Capabilities() Capabilities
}

type StaticProbe Capabilities

func (p StaticProbe) Capabilities() Capabilities {
	return Capabilities(p)
}

// ForMode returns a probe that makes Initial land on m. Unknown yields nil
// so the caller falls back to its default probe.
func ForMode(m Mode) Probe {
	switch m {
	case Touch:
		return StaticProbe{HoverNone: true, PointerCoarse: true, MaxTouchPoints: 1}
	case Mouse:
		return StaticProbe{}
	default:
		return nil
	}
}

// touchTerminals are TERM_PROGRAM values of terminal apps that run on
// phones and tablets.
var touchTerminals = []string{"termius", "blink", "a-shell", "ish", "juicessh"}

// EnvProbe guesses capabilities from the terminal environment. A terminal
// cannot report hover or touch points, so this is a best guess.
type EnvProbe struct {
	Getenv func(string) string
}

func (p EnvProbe) Capabilities() Capabilities {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var c Capabilities
	if v := getenv("TODOLIST_TOUCH"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			if on {
				c.MaxTouchPoints = 1
			}
			return c
		}
	}
	if getenv("TERMUX_VERSION") != "" {
		c.HoverNone = true
		c.PointerCoarse = true
		c.MaxTouchPoints = 5
		return c
	}
	program := strings.ToLower(getenv("TERM_PROGRAM"))
	for _, name := range touchTerminals {
		if program == name {
			c.HoverNone = true
			c.PointerCoarse = true
			return c
		}
	}
	return c
}
