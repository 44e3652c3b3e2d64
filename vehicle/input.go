package vehicle

import (
	"strings"

	"github.com/dozersim/dozersim/game"
)

// Key is a discrete button the simulation reacts to.
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyTab
	KeyT
	KeyG
	KeyY
	KeyH
	KeyU
	KeyJ
	KeyI
	KeyK
	KeyO
	KeyL
	keyCount
)

var keyNames = [keyCount]string{
	KeyUp:    "ArrowUp",
	KeyDown:  "ArrowDown",
	KeyLeft:  "ArrowLeft",
	KeyRight: "ArrowRight",
	KeyTab:   "Tab",
	KeyT:     "KeyT",
	KeyG:     "KeyG",
	KeyY:     "KeyY",
	KeyH:     "KeyH",
	KeyU:     "KeyU",
	KeyJ:     "KeyJ",
	KeyI:     "KeyI",
	KeyK:     "KeyK",
	KeyO:     "KeyO",
	KeyL:     "KeyL",
}

func (k Key) String() string {
	if k >= keyCount {
		return "Unknown"
	}
	return keyNames[k]
}

// ParseKey returns the key with the given name. Names follow the browser KeyboardEvent.code
// values, so "ArrowUp" and "KeyT" are accepted. Single letters are accepted as well.
func ParseKey(name string) (Key, bool) {
	if len(name) == 1 {
		name = "Key" + strings.ToUpper(name)
	}
	for k, n := range keyNames {
		if strings.EqualFold(n, name) {
			return Key(k), true
		}
	}
	return 0, false
}

// InputState is a snapshot of the keys held during a tick.
type InputState struct {
	pressed uint32
}

// NewInputState returns a snapshot with the given keys held.
func NewInputState(keys ...Key) InputState {
	var s InputState
	for _, k := range keys {
		s.Press(k)
	}
	return s
}

// Press marks k as held.
func (s *InputState) Press(k Key) {
	s.pressed |= 1 << k
}

// Release marks k as released.
func (s *InputState) Release(k Key) {
	s.pressed &^= 1 << k
}

// Pressed returns true if k is held.
func (s InputState) Pressed(k Key) bool {
	return s.pressed&(1<<k) != 0
}

// Empty returns true if no key is held.
func (s InputState) Empty() bool {
	return s.pressed == 0
}

// Keys returns the held keys in declaration order.
func (s InputState) Keys() []Key {
	var keys []Key
	for k := Key(0); k < keyCount; k++ {
		if s.Pressed(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Axis returns +1 if only positive is held, -1 if only negative is held and 0 otherwise.
func (s InputState) Axis(positive, negative Key) float32 {
	var v float32
	if s.Pressed(positive) {
		v++
	}
	if s.Pressed(negative) {
		v--
	}
	return v
}

// Command is the translation of an InputState for a standard vehicle.
type Command struct {
	EngineForce   float32
	SteeringAngle float32
}

// TranslateStandard maps the arrow keys to an engine force and a steering angle. Opposite keys
// cancel each other.
func TranslateStandard(input InputState, p Parameters) Command {
	return Command{
		EngineForce:   input.Axis(KeyUp, KeyDown) * p.EngineForce,
		SteeringAngle: input.Axis(KeyLeft, KeyRight) * MaxSteeringAngle,
	}
}

// CrawlerCommand is the translation of an InputState for a crawler vehicle.
type CrawlerCommand struct {
	Base, Left, Right float32
}

// TranslateCrawler maps the arrow keys to track forces. Right drives the left track harder and
// Left the right track.
func TranslateCrawler(input InputState, p Parameters) CrawlerCommand {
	c := CrawlerCommand{Base: input.Axis(KeyUp, KeyDown) * p.EngineForce}
	if input.Pressed(KeyRight) {
		c.Left += p.EngineForce
	}
	if input.Pressed(KeyLeft) {
		c.Right += p.EngineForce
	}
	return c
}

// TrackForces returns the engine force of the left and right track. The turning offset only
// applies in the direction the vehicle is driven, so without forward or back input both tracks
// stay still.
func (c CrawlerCommand) TrackForces() (left, right float32) {
	s := game.Sign(c.Base)
	return c.Base + c.Left*s, c.Base + c.Right*s
}
