package input

import (
	"errors"
	"sync"

	"github.com/go-vgo/robotgo"
)

// ErrInterlock is returned when the safety interlock trips: the pointer
// is parked in a guarded screen corner, which by convention means a
// human wants the machine back. Callers treat it as transient.
var ErrInterlock = errors.New("input interlock: pointer parked in guarded screen corner")

// gestureMu serializes every synthetic input gesture in the process, so
// only one is ever in flight regardless of which component produces it.
var gestureMu sync.Mutex

// Gesture runs fn while holding the process-wide input lock.
func Gesture(fn func() error) error {
	gestureMu.Lock()
	defer gestureMu.Unlock()
	return fn()
}

// Controller exposes the raw input primitives. Primitives must be
// invoked inside a Gesture callback; they do not take the lock
// themselves so a multi-step gesture stays atomic.
type Controller interface {
	Click(x, y int) error
	Press(key string) error
}

// RobotController is the production Controller backed by robotgo.
type RobotController struct {
	// interlockMargin is the guarded corner size in pixels.
	interlockMargin int
}

func NewRobotController() *RobotController {
	return &RobotController{interlockMargin: 4}
}

func (c *RobotController) Click(x, y int) error {
	if err := c.checkInterlock(); err != nil {
		return err
	}
	robotgo.MoveMouse(x, y)
	robotgo.Click("left")
	return nil
}

func (c *RobotController) Press(key string) error {
	if err := c.checkInterlock(); err != nil {
		return err
	}
	return robotgo.KeyTap(key)
}

func (c *RobotController) checkInterlock() error {
	px, py := robotgo.Location()
	w, h := robotgo.GetScreenSize()
	m := c.interlockMargin
	nearX := px <= m || px >= w-1-m
	nearY := py <= m || py >= h-1-m
	if nearX && nearY {
		return ErrInterlock
	}
	return nil
}
