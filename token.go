package canopy

import (
	"errors"
	"sync/atomic"
)

// ErrNoScene is returned by token constructors given a Context that does not
// belong to a scene.
var ErrNoScene = errors.New("canopy: token used outside a scene")

var globalTokenID atomic.Uint32

func nextTokenID() uint32 {
	return globalTokenID.Add(1)
}

// Token is a resolved drawable: a shape, a group or an image. The function
// fields form its capability table; a nil entry means the token does not
// have that capability.
//
// Tokens are created during resolution and live until the structure that
// declared them changes. Never keep a token beyond that; compare tokens by
// pointer or ID only while they are live.
type Token struct {
	// ID is unique for the lifetime of the process.
	ID uint32
	// Kind tags which variant this token is.
	Kind TokenKind
	// Name is a human-readable label used in logs and test scripts.
	Name string

	// Paint draws the token. The caller saves and restores surface state
	// around the call.
	Paint func(s Surface)
	// DebugPaint draws bounds overlays when the scene is in debug mode.
	DebugPaint func(s Surface)
	// HitTest tests e.Position against the token and may claim the event.
	HitTest func(e *MouseEvent) bool
	// Geometry returns closed paths in the coordinate space of the token's
	// enclosing scope, used by parent groups to build clip regions.
	Geometry func() []Path

	// OnMouseEnter and OnMouseLeave fire when the token becomes or stops
	// being the hovered token.
	OnMouseEnter func(e *MouseEvent)
	OnMouseLeave func(e *MouseEvent)

	// Dragging reports whether the token is currently being dragged.
	Dragging func() bool

	// Variant data. Exactly one is set, matching Kind.
	Shape *Shape
	Group *GroupToken

	owner *Owner
}

// IsDragging reports whether the token has a drag in progress.
func (t *Token) IsDragging() bool {
	return t != nil && t.Dragging != nil && t.Dragging()
}

// Disposed reports whether the token has been dropped by resolution.
func (t *Token) Disposed() bool {
	return t.owner != nil && t.owner.Disposed()
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Name != "" {
		return t.Kind.String() + "(" + t.Name + ")"
	}
	return t.Kind.String()
}

// --- Context ---

// Context is passed by value to every token constructor. It carries the
// enclosing scene, the owner that scopes the token's lifetime, and the
// origin of the enclosing scope. The zero Context belongs to no scene.
type Context struct {
	scene  *Scene
	owner  *Owner
	origin func() Vec2
	depth  int
}

// Valid reports whether the context belongs to a scene.
func (c Context) Valid() bool {
	return c.scene != nil && c.owner != nil
}

// Scene returns the enclosing scene.
func (c Context) Scene() *Scene {
	return c.scene
}

// Owner returns the owner scoping resources created under this context.
func (c Context) Owner() *Owner {
	return c.owner
}

// Runtime returns the reactive runtime of the scene.
func (c Context) Runtime() *Runtime {
	return c.owner.rt
}

// Origin returns the accumulated offset of the enclosing scope: scene pan,
// ancestor group positions and their drag offsets.
func (c Context) Origin() Vec2 {
	if c.origin != nil {
		return c.origin()
	}
	return c.scene.Origin()
}

// Debug reports whether the scene is in debug mode.
func (c Context) Debug() bool {
	return c.scene.debug.Get()
}

// IsSelected reports whether t is the selected token.
func (c Context) IsSelected(t *Token) bool {
	return t != nil && c.scene.selected.Get() == t
}

// IsHovered reports whether t is hovered while nothing is selected.
func (c Context) IsHovered(t *Token) bool {
	return t != nil && c.scene.selected.Get() == nil && c.scene.hovered.Get() == t
}

// AddListener registers fn for events of type typ on the scene. The listener
// is removed when the context's owner is disposed.
func (c Context) AddListener(typ EventType, fn func(e *MouseEvent)) CallbackHandle {
	h := c.scene.AddListener(typ, fn)
	c.owner.OnCleanup(h.Remove)
	return h
}

// OnCleanup registers fn to run when the context's owner is disposed.
func (c Context) OnCleanup(fn func()) {
	c.owner.OnCleanup(fn)
}

// OnFrame registers fn to run at the start of every painted frame with the
// current clock value. It is removed when the context's owner is disposed.
func (c Context) OnFrame(fn func(clock float64)) CallbackHandle {
	h := c.scene.OnFrame(fn)
	c.owner.OnCleanup(h.Remove)
	return h
}

// withOrigin returns a copy whose origin is computed by fn.
func (c Context) withOrigin(fn func() Vec2) Context {
	c.origin = fn
	return c
}

// Depth returns the number of groups enclosing the context.
func (c Context) Depth() int {
	return c.depth
}

// withOwner returns a copy scoped to o.
func (c Context) withOwner(o *Owner) Context {
	c.owner = o
	return c
}

// pointerEventsDefault returns the scene-wide pointer-events default.
func (c Context) pointerEventsDefault() bool {
	return c.scene.pointerEvents
}
