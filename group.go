package canopy

// GroupProps configures a group token.
type GroupProps struct {
	Name string
	// Position offsets the group's children.
	Position Vec2
	// Opacity multiplies the alpha of everything in the group. Nil means 1.
	Opacity *float64
	// Fill, if set, paints the group's clipped area before its children.
	Fill *Color
	// Clip declares the clip tree. When it resolves to at least one token,
	// painting and hit testing are restricted to the union of its geometry.
	Clip Child
	// Composite applies to every draw call of the group.
	Composite Composite

	// Draggable lets a mouse-down on any child drag the whole group.
	Draggable  bool
	DragStart  Vec2
	OnDragMove func(offset Vec2, e *MouseEvent)
}

// GroupToken is the variant data of a group: a child token tree scoped to an
// origin offset, optionally clipped by a second token tree.
type GroupToken struct {
	ctx      Context
	childCtx Context
	token    *Token
	props    func() GroupProps
	children *TokenTree
	clip     *TokenTree
	clipPath *Memo[Path]
	drag     *DragController
}

// NewGroup builds a group token whose children are positioned relative to
// the group's origin.
func NewGroup(ctx Context, props func() GroupProps, children ...Child) (*Token, error) {
	if !ctx.Valid() {
		return nil, ErrNoScene
	}
	initial := Untrack(ctx.Runtime(), props)
	g := &GroupToken{ctx: ctx, props: props}
	tok := &Token{
		ID:    nextTokenID(),
		Kind:  TokenGroup,
		Name:  initial.Name,
		Group: g,
	}
	if tok.Name == "" {
		tok.Name = "group"
	}
	g.token = tok
	g.drag = NewDragController(ctx, DragOptions{
		StartOffset: initial.DragStart,
		OnDragMove: func(offset Vec2, e *MouseEvent) {
			if fn := g.props().OnDragMove; fn != nil {
				fn(offset, e)
			}
		},
	})

	g.childCtx = ctx.withOrigin(g.Origin)
	g.childCtx.depth = ctx.depth + 1
	if ctx.scene.debug.Peek() {
		debugCheckGroupDepth(g.childCtx.depth, tok)
	}

	g.children = NewTokenTree(g.childCtx, children...)
	if initial.Clip != nil {
		g.clip = NewTokenTree(g.childCtx, initial.Clip)
		g.clipPath = NewMemo(ctx.owner, func() Path {
			var paths []Path
			for _, t := range g.clip.Tokens() {
				if t.Geometry != nil {
					paths = append(paths, t.Geometry()...)
				}
			}
			return Union(paths...)
		})
	}

	tok.Paint = g.paint
	tok.DebugPaint = g.debugPaint
	tok.HitTest = g.hitTest
	tok.Geometry = g.geometry
	tok.Dragging = g.drag.Dragging
	return tok, nil
}

// Group declares a group of children.
func Group(props func() GroupProps, children ...Child) Child {
	return Element(func(ctx Context) (*Token, error) { return NewGroup(ctx, props, children...) })
}

// Origin returns the origin of the group's children: the enclosing origin
// plus the group position and drag offset.
func (g *GroupToken) Origin() Vec2 {
	return g.ctx.Origin().Add(g.offset())
}

// offset is the group's displacement within its enclosing scope.
func (g *GroupToken) offset() Vec2 {
	return g.props().Position.Add(g.drag.Offset())
}

// Tokens returns the group's resolved children.
func (g *GroupToken) Tokens() []*Token { return g.children.Tokens() }

// ClipTokens returns the resolved clip tree, or nil when the group declares
// no clip.
func (g *GroupToken) ClipTokens() []*Token {
	if g.clip == nil {
		return nil
	}
	return g.clip.Tokens()
}

// Drag returns the group's drag controller.
func (g *GroupToken) Drag() *DragController { return g.drag }

// clipActive reports whether the clip tree resolved to any token.
func (g *GroupToken) clipActive() bool {
	return g.clip != nil && g.clip.Len() > 0
}

func (g *GroupToken) paint(s Surface) {
	p := g.props()
	origin := g.Origin()
	if g.clipActive() {
		s.SetTransform(TranslateMatrix(origin.X, origin.Y))
		s.Clip(g.clipPath.Get())
	}
	if p.Composite != CompositeInherit {
		s.SetComposite(p.Composite)
	}
	if p.Opacity != nil {
		s.SetGlobalAlpha(s.GlobalAlpha() * *p.Opacity)
	}
	if p.Fill != nil {
		s.SetTransform(IdentityMatrix)
		size := s.Size()
		s.FillRect(Rect{Width: size.Width, Height: size.Height}, *p.Fill)
	}

	tokens := g.children.Tokens()
	for _, t := range tokens {
		g.ctx.scene.paintToken(s, t, t.Paint)
	}
	if g.ctx.scene.debug.Get() {
		for _, t := range tokens {
			if t.DebugPaint != nil {
				g.ctx.scene.paintToken(s, t, t.DebugPaint)
			}
		}
	}
}

func (g *GroupToken) debugPaint(s Surface) {
	if !g.clipActive() {
		return
	}
	st := BoundsStyle()
	applyStyle(s, st, g.Origin())
	fillAndStroke(s, st, g.clipPath.Get())
}

func (g *GroupToken) hitTest(e *MouseEvent) bool {
	if !e.Propagation {
		return false
	}
	if g.clipActive() {
		local := e.Position.Sub(g.Origin())
		if !g.clipPath.Get().Contains(local) {
			return false
		}
	}

	before := len(e.Targets)
	tokens := g.children.Tokens()
	for i := len(tokens) - 1; i >= 0 && e.Propagation; i-- {
		if t := tokens[i]; t.HitTest != nil {
			t.HitTest(e)
		}
	}
	if len(e.Targets) == before {
		return false
	}
	e.Targets = append(e.Targets, g.token)

	if e.Type == EventMouseDown && g.props().Draggable && !e.Targets[0].IsDragging() {
		g.drag.Begin()
		e.Propagation = false
	}
	return true
}

// geometry returns the children's geometry in the group's enclosing scope.
func (g *GroupToken) geometry() []Path {
	off := g.offset()
	var out []Path
	for _, t := range g.children.Tokens() {
		if t.Geometry == nil {
			continue
		}
		for _, p := range t.Geometry() {
			out = append(out, p.Translate(off))
		}
	}
	return out
}
