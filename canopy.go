package canopy

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector used for positions, offsets, deltas, and sizes
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dimensions is a width/height pair.
type Dimensions struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// TokenKind distinguishes the variants of a Token.
type TokenKind uint8

const (
	TokenShape TokenKind = iota // path-based leaf (rectangle, arc, bezier)
	TokenGroup                  // clip/offset scope owning child tokens
	TokenImage                  // bitmap blitted through a shape matrix
)

// String returns the kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenShape:
		return "shape"
	case TokenGroup:
		return "group"
	case TokenImage:
		return "image"
	default:
		return "unknown"
	}
}

// EventType identifies a kind of pointer event.
type EventType uint8

const (
	EventMouseDown EventType = iota // fires when the pointer button is pressed
	EventMouseMove                  // fires when the pointer moves
	EventMouseUp                    // fires when the pointer button is released

	numEventTypes
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventMouseDown:
		return "down"
	case EventMouseMove:
		return "move"
	case EventMouseUp:
		return "up"
	default:
		return "unknown"
	}
}

// LineCap is the style of stroke end points.
type LineCap uint8

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin is the style of stroke corners.
type LineJoin uint8

const (
	LineJoinRound LineJoin = iota
	LineJoinBevel
	LineJoinMiter
)

// Cursor is a pointer cursor shape suggested by the scene or a hit token.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorMove
	CursorGrab
	CursorText
	CursorCrosshair
	CursorNotAllowed
	CursorNone
)

var cursorNames = [...]string{
	CursorDefault:    "default",
	CursorPointer:    "pointer",
	CursorMove:       "move",
	CursorGrab:       "grab",
	CursorText:       "text",
	CursorCrosshair:  "crosshair",
	CursorNotAllowed: "not-allowed",
	CursorNone:       "none",
}

// String returns the CSS name of the cursor.
func (c Cursor) String() string {
	if int(c) < len(cursorNames) {
		return cursorNames[c]
	}
	return "unknown"
}

// UnmarshalText parses a CSS cursor name.
func (c *Cursor) UnmarshalText(text []byte) error {
	v, err := parseEnum(cursorNames[:], string(text), "cursor")
	if err != nil {
		return err
	}
	*c = Cursor(v)
	return nil
}

func parseEnum(names []string, name, what string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, name)
}
