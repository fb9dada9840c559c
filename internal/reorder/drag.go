package reorder

import "math"

// DefaultActivationDistance is how far the pointer must travel after a
// press before the gesture counts as a drag rather than a click.
const DefaultActivationDistance = 8

// Gesture is what a press-and-release turned out to be.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureClick
	GestureDrop
)

// Drag tracks one pointer gesture over a list. The zero value is not
// usable; create one with NewDrag.
type Drag struct {
	threshold float64

	pressed bool
	active  bool
	from    int
	x, y    float64
}

// NewDrag returns a tracker that activates after the pointer moves more
// than threshold units. A non-positive threshold uses the default.
func NewDrag(threshold float64) *Drag {
	if threshold <= 0 {
		threshold = DefaultActivationDistance
	}
	return &Drag{threshold: threshold}
}

// Press starts a gesture on the item at index.
func (d *Drag) Press(index int, x, y float64) {
	d.pressed = true
	d.active = false
	d.from = index
	d.x, d.y = x, y
}

// Move updates the pointer position and reports whether the gesture is now
// an active drag.
func (d *Drag) Move(x, y float64) bool {
	if !d.pressed {
		return false
	}
	if !d.active && math.Hypot(x-d.x, y-d.y) > d.threshold {
		d.active = true
	}
	return d.active
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool { return d.active }

// From returns the index of the item the gesture started on.
func (d *Drag) From() int { return d.from }

// Release ends the gesture over the item at index. An active drag released
// over a different item is a drop from From() to index; a gesture that
// never activated is a click.
func (d *Drag) Release(index int) (Gesture, int, int) {
	defer d.Cancel()

	switch {
	case !d.pressed:
		return GestureNone, 0, 0
	case !d.active:
		return GestureClick, d.from, d.from
	case index == d.from:
		return GestureNone, d.from, index
	default:
		return GestureDrop, d.from, index
	}
}

// Cancel abandons the gesture.
func (d *Drag) Cancel() {
	d.pressed = false
	d.active = false
}
