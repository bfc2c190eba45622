// Package camera decides whether the map view follows the tracked object.
//
// The mode is an explicit three-state enumeration with a total transition
// function, not a pair of booleans: exactly one mode is active at any time
// and every (state, event) pair has exactly one successor. The controller
// consults its current state at each fix-apply rather than caching follow
// intent earlier, so a gesture processed first in a tick always wins the
// race against a scheduled re-center.
package camera

// State is the camera mode.
type State int

const (
	// Uncentered is the initial mode: no fix has positioned the view yet.
	Uncentered State = iota
	// Following re-centers the view on every new fix.
	Following
	// Free leaves the view under user control until an explicit reset.
	Free
)

func (s State) String() string {
	switch s {
	case Uncentered:
		return "uncentered"
	case Following:
		return "following"
	case Free:
		return "free"
	default:
		return "unknown"
	}
}

// Event is an input to the state machine.
type Event int

const (
	// EventFix is a new live fix arriving.
	EventFix Event = iota
	// EventGesture is a user-initiated pan or zoom.
	EventGesture
	// EventReset is the explicit re-center command.
	EventReset
)

// Action tells the render side what to do with the view.
type Action int

const (
	// ActionNone leaves the view alone.
	ActionNone Action = iota
	// ActionJump snaps the view to the fix immediately.
	ActionJump
	// ActionEase re-centers the view smoothly.
	ActionEase
)

// Next is the total transition function. Following never auto-returns to
// Free; only a gesture moves there, and only a reset moves back.
func Next(s State, ev Event) State {
	switch ev {
	case EventFix:
		if s == Uncentered {
			return Following
		}
		return s
	case EventGesture:
		return Free
	case EventReset:
		return Following
	default:
		return s
	}
}

// Controller holds the current camera mode. Single-owner: only the engine
// loop calls its methods.
type Controller struct {
	state State
}

// NewController starts in Uncentered.
func NewController() *Controller {
	return &Controller{state: Uncentered}
}

// State returns the current mode.
func (c *Controller) State() State {
	return c.state
}

// ApplyFix processes a new live fix and returns the view action: jump on the
// first fix, ease while following, nothing while free.
func (c *Controller) ApplyFix() Action {
	prev := c.state
	c.state = Next(prev, EventFix)

	switch prev {
	case Uncentered:
		return ActionJump
	case Following:
		return ActionEase
	default:
		return ActionNone
	}
}

// Gesture records a user pan/zoom: the view becomes free unconditionally,
// even from Following.
func (c *Controller) Gesture() {
	c.state = Next(c.state, EventGesture)
}

// Reset re-enters Following; the caller re-centers on the latest fix.
func (c *Controller) Reset() Action {
	c.state = Next(c.state, EventReset)
	return ActionJump
}
