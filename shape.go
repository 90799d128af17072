package canopy

// ShapeProps holds the properties every leaf shape shares.
type ShapeProps struct {
	// Name labels the token in logs and test scripts.
	Name string
	// Style is merged over DefaultStyle.
	Style Style
	// HoverStyle is merged over Style while the shape is selected, or
	// hovered with nothing selected.
	HoverStyle *Style

	// Draggable lets a mouse-down on the shape start dragging it.
	Draggable bool
	// DragStart is the initial drag offset.
	DragStart Vec2
	// OnDragMove is called with the new offset after every drag move.
	OnDragMove func(offset Vec2, e *MouseEvent)

	// Handlers called when the shape claims an event of their type.
	OnMouseDown func(e *MouseEvent)
	OnMouseMove func(e *MouseEvent)
	OnMouseUp   func(e *MouseEvent)
	// Handlers called when the shape becomes or stops being hovered.
	OnMouseEnter func(e *MouseEvent)
	OnMouseLeave func(e *MouseEvent)
}

// Shape is the variant data of shape and image tokens. Its style, matrix and
// transformed path are memoized: each is recomputed once after any input it
// read changes, and shared by paint, hit testing and parent clips.
type Shape struct {
	ctx      Context
	token    *Token
	props    func() ShapeProps
	style    *Memo[ResolvedStyle]
	matrix   *Memo[Matrix]
	local    *Memo[Path]
	path     *Memo[Path]
	bounds   *Memo[Path]
	drag     *DragController
	paintFn  func(s Surface, sh *Shape)
	boundsFn func(local Path) Rect
}

// shapeDef describes one kind of leaf shape to newShape.
type shapeDef struct {
	kind     TokenKind
	kindName string
	props    func() ShapeProps
	// geometry builds the untransformed path. An error is a geometry fault:
	// it is logged and the shape degrades to an empty path.
	geometry func() (Path, error)
	// localBounds returns the rectangle outlined by the debug overlay.
	// Defaults to the bounds of the untransformed path.
	localBounds func(local Path) Rect
	// paint replaces the default fill-then-stroke painter.
	paint func(s Surface, sh *Shape)
}

func newShape(ctx Context, def shapeDef) (*Token, error) {
	if !ctx.Valid() {
		return nil, ErrNoScene
	}
	o := ctx.owner
	initial := Untrack(ctx.Runtime(), def.props)
	sh := &Shape{
		ctx:      ctx,
		props:    def.props,
		paintFn:  def.paint,
		boundsFn: def.localBounds,
	}
	tok := &Token{
		ID:    nextTokenID(),
		Kind:  def.kind,
		Name:  initial.Name,
		Shape: sh,
	}
	if tok.Name == "" {
		tok.Name = def.kindName
	}
	sh.token = tok
	sh.drag = NewDragController(ctx, DragOptions{
		StartOffset: initial.DragStart,
		OnDragMove: func(offset Vec2, e *MouseEvent) {
			if fn := sh.props().OnDragMove; fn != nil {
				fn(offset, e)
			}
		},
	})

	sh.style = NewMemo(o, func() ResolvedStyle {
		p := sh.props()
		base := DefaultStyle()
		base.PointerEvents = ctx.pointerEventsDefault()
		st := Merge(base, p.Style)
		if p.HoverStyle != nil && (ctx.IsSelected(tok) || ctx.IsHovered(tok)) {
			st = Merge(st, *p.HoverStyle)
		}
		return st
	})
	sh.matrix = NewMemo(o, func() Matrix {
		st := sh.style.Get()
		st.Position = st.Position.Add(sh.drag.Offset())
		return ComputeMatrix(st)
	})
	sh.local = NewMemo(o, func() Path {
		p, err := def.geometry()
		if err != nil {
			Logger.Warn("geometry fault", "token", tok.String(), "id", tok.ID, "err", err)
			return Path{}
		}
		return p
	})
	sh.path = NewMemo(o, func() Path {
		return TransformPath(sh.local.Get(), sh.matrix.Get())
	})
	sh.bounds = NewMemo(o, func() Path {
		local := sh.local.Get()
		r := local.Bounds()
		if sh.boundsFn != nil {
			r = sh.boundsFn(local)
		}
		var b Path
		b.Rect(r.X, r.Y, r.Width, r.Height)
		return b.Transform(sh.matrix.Get())
	})

	tok.Paint = sh.paint
	tok.DebugPaint = sh.debugPaint
	tok.HitTest = sh.hitTest
	tok.Geometry = func() []Path { return []Path{sh.path.Get()} }
	tok.Dragging = sh.drag.Dragging
	tok.OnMouseEnter = func(e *MouseEvent) {
		if fn := sh.props().OnMouseEnter; fn != nil {
			fn(e)
		}
	}
	tok.OnMouseLeave = func(e *MouseEvent) {
		if fn := sh.props().OnMouseLeave; fn != nil {
			fn(e)
		}
	}
	return tok, nil
}

// Style returns the resolved style, hover style included.
func (sh *Shape) Style() ResolvedStyle { return sh.style.Get() }

// Matrix returns the shape's local matrix, drag offset included.
func (sh *Shape) Matrix() Matrix { return sh.matrix.Get() }

// Path returns the transformed path in the coordinate space of the
// enclosing scope.
func (sh *Shape) Path() Path { return sh.path.Get() }

// LocalPath returns the untransformed path.
func (sh *Shape) LocalPath() Path { return sh.local.Get() }

// Bounds returns the transformed bounding outline drawn in debug mode.
func (sh *Shape) Bounds() Path { return sh.bounds.Get() }

// Drag returns the shape's drag controller.
func (sh *Shape) Drag() *DragController { return sh.drag }

// Origin returns the origin of the enclosing scope.
func (sh *Shape) Origin() Vec2 { return sh.ctx.Origin() }

// applyStyle loads st into the surface state, relative to origin.
func applyStyle(s Surface, st ResolvedStyle, origin Vec2) {
	s.SetTransform(TranslateMatrix(origin.X, origin.Y))
	s.SetGlobalAlpha(s.GlobalAlpha() * st.Opacity)
	s.SetComposite(st.Composite)
	s.SetLineStyle(LineStyle{
		Width:      st.LineWidth,
		Cap:        st.LineCap,
		Join:       st.LineJoin,
		Dash:       st.LineDash,
		DashOffset: st.LineDashOffset,
		MiterLimit: st.MiterLimit,
	})
	s.SetShadow(st.Shadow)
}

// fillAndStroke fills then strokes p with st.
func fillAndStroke(s Surface, st ResolvedStyle, p Path) {
	if !st.Fill.IsTransparent() {
		s.Fill(p, st.Fill)
	}
	if !st.Stroke.IsTransparent() && st.LineWidth > 0 {
		s.Stroke(p, st.Stroke)
	}
}

func (sh *Shape) paint(s Surface) {
	st := sh.style.Get()
	applyStyle(s, st, sh.ctx.Origin())
	if sh.paintFn != nil {
		sh.paintFn(s, sh)
		return
	}
	fillAndStroke(s, st, sh.path.Get())
}

func (sh *Shape) debugPaint(s Surface) {
	st := BoundsStyle()
	if sh.ctx.IsSelected(sh.token) || sh.ctx.IsHovered(sh.token) {
		st.LineWidth = 1
	}
	applyStyle(s, st, sh.ctx.Origin())
	fillAndStroke(s, st, sh.bounds.Get())
}

func (sh *Shape) hitTest(e *MouseEvent) bool {
	st := sh.style.Get()
	if !st.PointerEvents || !e.Propagation {
		return false
	}
	local := e.Position.Sub(sh.ctx.Origin())
	p := sh.path.Get()
	if !p.Contains(local) && !p.StrokeContains(local, st.LineWidth/2) {
		return false
	}

	e.Targets = append(e.Targets, sh.token)
	e.Propagation = false
	e.Cursor = st.Cursor

	props := sh.props()
	var handler func(*MouseEvent)
	switch e.Type {
	case EventMouseDown:
		handler = props.OnMouseDown
	case EventMouseMove:
		handler = props.OnMouseMove
	case EventMouseUp:
		handler = props.OnMouseUp
	}
	if handler != nil {
		handler(e)
	}
	if e.Type == EventMouseDown && props.Draggable {
		sh.drag.HandleDown(e)
	}
	return true
}
