package canopy

// DragOptions configures a DragController.
type DragOptions struct {
	// Disabled turns the controller off; Begin becomes a no-op.
	Disabled bool
	// StartOffset is the initial offset.
	StartOffset Vec2
	// OnDragMove is called after every move that changed the offset.
	OnDragMove func(offset Vec2, e *MouseEvent)
}

// DragController turns a mouse-down claim followed by mouse moves into an
// accumulated offset. It is idle until Begin, then adds the delta of every
// mouse-move to the offset, wherever the pointer is, and claims those
// events. The next mouse-up, anywhere, returns it to idle and freezes the
// offset.
type DragController struct {
	ctx      Context
	opts     DragOptions
	offset   *Signal[Vec2]
	dragging *Signal[bool]
	move, up CallbackHandle
}

// NewDragController creates an idle controller. Its listeners are removed
// when ctx's owner is disposed.
func NewDragController(ctx Context, opts DragOptions) *DragController {
	rt := ctx.Runtime()
	d := &DragController{
		ctx:      ctx,
		opts:     opts,
		offset:   NewSignal(rt, opts.StartOffset),
		dragging: NewSignal(rt, false),
	}
	ctx.OnCleanup(d.end)
	return d
}

// Offset returns the accumulated offset. It is a tracked read.
func (d *DragController) Offset() Vec2 {
	return d.offset.Get()
}

// SetOffset replaces the accumulated offset.
func (d *DragController) SetOffset(v Vec2) {
	d.offset.Set(v)
}

// Dragging reports whether a drag is in progress. It is a tracked read.
func (d *DragController) Dragging() bool {
	return d.dragging.Get()
}

// Enabled reports whether the controller may start dragging.
func (d *DragController) Enabled() bool {
	return !d.opts.Disabled
}

// Begin enters the dragging state. It does nothing when disabled or
// already dragging.
func (d *DragController) Begin() {
	if d.opts.Disabled || d.dragging.Peek() {
		return
	}
	d.dragging.Set(true)
	s := d.ctx.scene
	d.move = s.AddListener(EventMouseMove, d.handleMove)
	d.up = s.AddListener(EventMouseUp, d.handleUp)
}

// HandleDown begins a drag when e is a mouse-down claimed by exactly one
// token. It reports whether dragging started.
func (d *DragController) HandleDown(e *MouseEvent) bool {
	if d.opts.Disabled || e.Type != EventMouseDown || len(e.Targets) != 1 {
		return false
	}
	d.Begin()
	e.Propagation = false
	return true
}

func (d *DragController) handleMove(e *MouseEvent) {
	next := d.offset.Peek().Add(e.Delta)
	d.offset.Set(next)
	e.Propagation = false
	if d.opts.OnDragMove != nil {
		d.opts.OnDragMove(next, e)
	}
}

func (d *DragController) handleUp(*MouseEvent) {
	d.end()
}

func (d *DragController) end() {
	if !d.dragging.Peek() {
		return
	}
	d.move.Remove()
	d.up.Remove()
	d.move, d.up = CallbackHandle{}, CallbackHandle{}
	d.dragging.Set(false)
}
