package canopy

// MouseEvent is the record built for one pointer event and shared, mutably,
// by every hit test and listener of that dispatch. Do not retain it after
// the dispatch returns.
type MouseEvent struct {
	Type EventType
	// Position is the pointer position in device coordinates.
	Position Vec2
	// Delta is the movement since the previous event of the gesture. It is
	// zero on the first event after a mouse-up.
	Delta Vec2
	// Propagation starts true. A token that claims the event clears it,
	// which stops the walk and suppresses the scene fallback.
	Propagation bool
	// Targets lists the tokens that claimed the event, closest hit first.
	Targets []*Token
	// Cursor is the cursor the scene shows after the dispatch.
	Cursor Cursor
}

// StopPropagation clears the propagation flag.
func (e *MouseEvent) StopPropagation() {
	e.Propagation = false
}

// Target returns the topmost token that claimed the event, or nil.
func (e *MouseEvent) Target() *Token {
	if len(e.Targets) == 0 {
		return nil
	}
	return e.Targets[0]
}

// --- Callback registry ---

type listener struct {
	id uint32
	fn func(*MouseEvent)
}

type frameCallback struct {
	id uint32
	fn func(clock float64)
}

// CallbackHandle removes a registered listener or frame callback.
type CallbackHandle struct {
	id    uint32
	scene *Scene
	event EventType
	frame bool
}

// Remove unregisters the callback. Removing twice is a no-op.
func (h CallbackHandle) Remove() {
	if h.scene == nil {
		return
	}
	if h.frame {
		h.scene.frameCallbacks = removeByID(h.scene.frameCallbacks, h.id, func(c frameCallback) uint32 { return c.id })
		return
	}
	h.scene.listeners[h.event] = removeByID(h.scene.listeners[h.event], h.id, func(l listener) uint32 { return l.id })
}

func removeByID[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// AddListener registers fn for events of type typ. Listeners run after hit
// testing, in registration order.
func (s *Scene) AddListener(typ EventType, fn func(e *MouseEvent)) CallbackHandle {
	if typ >= numEventTypes {
		panic("canopy: unknown event type")
	}
	s.nextCallbackID++
	id := s.nextCallbackID
	s.listeners[typ] = append(s.listeners[typ], listener{id: id, fn: fn})
	return CallbackHandle{id: id, scene: s, event: typ}
}

// RemoveListener unregisters the listener behind h.
func (s *Scene) RemoveListener(h CallbackHandle) {
	if h.scene != nil && h.scene != s {
		panic("canopy: RemoveListener with a handle from another scene")
	}
	h.Remove()
}

// OnFrame registers fn to run at the start of every painted frame.
func (s *Scene) OnFrame(fn func(clock float64)) CallbackHandle {
	s.nextCallbackID++
	id := s.nextCallbackID
	s.frameCallbacks = append(s.frameCallbacks, frameCallback{id: id, fn: fn})
	return CallbackHandle{id: id, scene: s, frame: true}
}

// --- Dispatch ---

// Dispatch delivers one pointer event to the scene and returns the event
// record after every hit test and listener has seen it.
//
// Tokens are offered the event in reverse declaration order, so the
// visually topmost token is tested first; the walk stops as soon as a token
// clears Propagation. If no token claimed the event, the scene fallback runs
// (panning and the scene-level handlers). Selection, hover and cursor are
// then updated, and finally the listeners for the event type run in
// registration order.
func (s *Scene) Dispatch(typ EventType, pos Vec2) *MouseEvent {
	if typ >= numEventTypes {
		panic("canopy: unknown event type")
	}
	var delta Vec2
	if s.hasLastPos {
		delta = pos.Sub(s.lastPos)
	}
	s.lastPos, s.hasLastPos = pos, true

	if s.panning && typ == EventMouseMove {
		s.origin.Update(func(o Vec2) Vec2 { return o.Add(delta) })
	}

	e := &MouseEvent{
		Type:        typ,
		Position:    pos,
		Delta:       delta,
		Propagation: true,
		Cursor:      CursorMove,
	}

	tokens := s.tree.Tokens()
	debug := s.debug.Peek()
	for i := len(tokens) - 1; i >= 0 && e.Propagation; i-- {
		t := tokens[i]
		if debug {
			debugCheckDisposed(t, "hit test")
		}
		if t.HitTest != nil {
			t.HitTest(e)
		}
	}

	if e.Propagation {
		s.fallback(e)
	}

	s.cursor.Set(e.Cursor)

	switch typ {
	case EventMouseDown:
		if len(e.Targets) > 0 {
			s.selected.Set(e.Targets[0])
		}
	case EventMouseMove:
		s.setHovered(e.Target(), e)
	case EventMouseUp:
		s.selected.Set(nil)
	}

	for _, l := range append([]listener(nil), s.listeners[typ]...) {
		l.fn(e)
	}

	if s.store != nil {
		s.store.EmitEvent(newInteractionEvent(e))
	}

	if typ == EventMouseUp {
		s.hasLastPos = false
		if s.panning {
			s.panning = false
			s.cursor.Set(CursorDefault)
		}
	}
	return e
}

// fallback runs when no token claimed the event.
func (s *Scene) fallback(e *MouseEvent) {
	switch e.Type {
	case EventMouseDown:
		if s.cfg.Draggable {
			s.panning = true
		}
		if s.OnMouseDown != nil {
			local := *e
			local.Position = e.Position.Sub(s.origin.Peek())
			s.OnMouseDown(&local)
			e.Propagation = local.Propagation
			e.Cursor = local.Cursor
		}
	case EventMouseMove:
		switch {
		case len(e.Targets) == 0 && s.cfg.Draggable:
			e.Cursor = CursorMove
		case len(e.Targets) == 0:
			e.Cursor = s.cfg.Cursor
		default:
			e.Cursor = CursorPointer
		}
		if s.OnMouseMove != nil {
			s.OnMouseMove(e)
		}
	case EventMouseUp:
		if s.OnMouseUp != nil {
			s.OnMouseUp(e)
		}
	}
}

// setHovered moves hover to t, firing leave and enter callbacks on change.
func (s *Scene) setHovered(t *Token, e *MouseEvent) {
	prev := s.hovered.Peek()
	if prev == t {
		return
	}
	s.hovered.Set(t)
	if prev != nil && prev.OnMouseLeave != nil && !prev.Disposed() {
		prev.OnMouseLeave(e)
	}
	if t != nil && t.OnMouseEnter != nil {
		t.OnMouseEnter(e)
	}
}

// --- ECS bridge ---

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, every dispatched event is forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type     EventType
	TokenID  uint32 // 0 when no token was hit
	Name     string
	GlobalX  float64
	GlobalY  float64
	DeltaX   float64
	DeltaY   float64
	Targets  int
	Consumed bool // a token cleared propagation
}

func newInteractionEvent(e *MouseEvent) InteractionEvent {
	ie := InteractionEvent{
		Type:     e.Type,
		GlobalX:  e.Position.X,
		GlobalY:  e.Position.Y,
		DeltaX:   e.Delta.X,
		DeltaY:   e.Delta.Y,
		Targets:  len(e.Targets),
		Consumed: !e.Propagation,
	}
	if t := e.Target(); t != nil {
		ie.TokenID = t.ID
		ie.Name = t.Name
	}
	return ie
}

// SetEntityStore sets the ECS bridge that receives interaction events.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}
