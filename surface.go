package canopy

import "image"

// LineStyle holds the stroke parameters a surface applies to Stroke calls.
type LineStyle struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	Dash       []float64
	DashOffset float64
	MiterLimit float64
}

// defaultLineStyle mirrors the canvas defaults.
var defaultLineStyle = LineStyle{Width: 1, Cap: LineCapButt, Join: LineJoinMiter, MiterLimit: 10}

// Surface is the drawing capability tokens paint onto. Its state (transform,
// alpha, composite, line style, shadow and clip) follows canvas semantics:
// Save pushes a copy, Restore pops it, and Clip only ever narrows the clip
// until the matching Restore.
//
// Paths handed to a surface are in local coordinates; the current transform
// maps their points to device space. Stroke width is not scaled by the
// transform.
type Surface interface {
	Save()
	Restore()
	// Depth returns the number of saved states not yet restored.
	Depth() int

	SetTransform(m Matrix)
	Transform() Matrix
	SetGlobalAlpha(a float64)
	GlobalAlpha() float64
	SetComposite(c Composite)
	Composite() Composite
	SetLineStyle(ls LineStyle)
	LineStyle() LineStyle
	SetShadow(sh *Shadow)

	Fill(p Path, c Color)
	Stroke(p Path, c Color)
	Clip(p Path)
	// DrawImage draws img scaled to size, mapped through m and then the
	// current transform.
	DrawImage(img image.Image, m Matrix, size Dimensions)
	// FillRect fills r (in local coordinates) with c.
	FillRect(r Rect, c Color)
	// ClearRect sets r (in device coordinates) to transparent, ignoring clip
	// and composite.
	ClearRect(r Rect)

	// Size returns the device size of the surface.
	Size() Dimensions
	// Snapshot returns a copy of the current pixels, used as the previous
	// frame by feedback rendering.
	Snapshot() image.Image
}

// --- Shared state stack ---

// surfaceState is one level of the Save/Restore stack. C is the
// implementation's clip representation.
type surfaceState[C any] struct {
	transform Matrix
	alpha     float64
	composite Composite
	line      LineStyle
	shadow    *Shadow
	clip      C
}

// stateStack implements the state half of Surface for any clip
// representation. Surfaces embed it.
type stateStack[C any] struct {
	cur   surfaceState[C]
	saved []surfaceState[C]
}

func newStateStack[C any]() stateStack[C] {
	return stateStack[C]{cur: surfaceState[C]{
		transform: IdentityMatrix,
		alpha:     1,
		composite: CompositeSourceOver,
		line:      defaultLineStyle,
	}}
}

// Save pushes a copy of the current state.
func (st *stateStack[C]) Save() {
	st.saved = append(st.saved, st.cur)
}

// pop restores the last saved state and returns the state it replaced.
// Popping an empty stack is a no-op that returns the current state.
func (st *stateStack[C]) pop() (popped surfaceState[C], ok bool) {
	if len(st.saved) == 0 {
		return st.cur, false
	}
	popped = st.cur
	st.cur = st.saved[len(st.saved)-1]
	st.saved = st.saved[:len(st.saved)-1]
	return popped, true
}

// Depth returns the number of unmatched Save calls.
func (st *stateStack[C]) Depth() int {
	return len(st.saved)
}

func (st *stateStack[C]) SetTransform(m Matrix) { st.cur.transform = m }
func (st *stateStack[C]) Transform() Matrix     { return st.cur.transform }

func (st *stateStack[C]) SetGlobalAlpha(a float64) { st.cur.alpha = clamp01(a) }
func (st *stateStack[C]) GlobalAlpha() float64     { return st.cur.alpha }

// SetComposite sets the composite operation. CompositeInherit leaves the
// current operation unchanged.
func (st *stateStack[C]) SetComposite(c Composite) {
	if c != CompositeInherit {
		st.cur.composite = c
	}
}

func (st *stateStack[C]) Composite() Composite { return st.cur.composite }

func (st *stateStack[C]) SetLineStyle(ls LineStyle) { st.cur.line = ls }
func (st *stateStack[C]) LineStyle() LineStyle      { return st.cur.line }

func (st *stateStack[C]) SetShadow(sh *Shadow) { st.cur.shadow = sh }

// strokeArea returns the device-space area covered by stroking p with ls.
// p must already be in device space.
func strokeArea(p Path, ls LineStyle) Path {
	if len(ls.Dash) > 0 {
		p = p.Dashed(ls.Dash, ls.DashOffset)
	}
	return p.strokeOutline(ls.Width, ls.Cap, ls.Join, ls.MiterLimit)
}

// shadowVisible reports whether sh casts anything.
func shadowVisible(sh *Shadow) bool {
	return sh != nil && !sh.Color.IsTransparent() &&
		(sh.Blur > 0 || sh.Offset != (Vec2{}))
}
