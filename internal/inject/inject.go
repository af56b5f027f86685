// Package inject sends synthetic keyboard and mouse input to the foreground
// application using github.com/go-vgo/robotgo.
package inject

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Point is a screen position in global display coordinates.
type Point struct {
	X, Y int
}

// Injector issues the synthetic input the selection engine needs.
type Injector interface {
	// SendCopy sends the platform copy shortcut to the focused application.
	SendCopy() error
	// SendPaste sends the platform paste shortcut to the focused application.
	SendPaste() error
	// FocusClick clicks the primary button at p to move focus under the cursor.
	FocusClick(p Point) error
}

// DefaultModifier returns the shortcut modifier for copy/paste on this OS.
func DefaultModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// Robot is the robotgo-backed Injector.
type Robot struct {
	modifier string
}

// New returns a Robot using modifier for the copy/paste shortcuts; an empty
// modifier selects DefaultModifier.
func New(modifier string) *Robot {
	if modifier == "" {
		modifier = DefaultModifier()
	}
	return &Robot{modifier: modifier}
}

// Modifier returns the shortcut modifier in use.
func (r *Robot) Modifier() string { return r.modifier }

func (r *Robot) SendCopy() error {
	if err := robotgo.KeyTap("c", r.modifier); err != nil {
		return fmt.Errorf("inject: key tap %s+c: %w", r.modifier, err)
	}
	return nil
}

func (r *Robot) SendPaste() error {
	if err := robotgo.KeyTap("v", r.modifier); err != nil {
		return fmt.Errorf("inject: key tap %s+v: %w", r.modifier, err)
	}
	return nil
}

// FocusClick moves the pointer to p (it is normally already there) and
// posts a left press/release pair.
func (r *Robot) FocusClick(p Point) error {
	robotgo.Move(p.X, p.Y)
	robotgo.Click("left", false)
	return nil
}
