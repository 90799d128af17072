package canopy

import "image"

// Feedback configures feedback rendering: instead of starting each frame
// from a cleared surface, the previous frame is drawn back first.
type Feedback struct {
	// Opacity of the redrawn previous frame. Zero is treated as 1.
	Opacity float64 `yaml:"opacity"`
	// Composite used to draw the previous frame.
	Composite Composite `yaml:"composite"`
	// Offset moves the previous frame, in device pixels.
	Offset Vec2 `yaml:"offset"`
	// Paint, if set, replaces the default redraw. prev is nil on the first
	// frame.
	Paint func(s Surface, prev image.Image) `yaml:"-"`
}

// SceneConfig holds the scene-level inputs. The zero value is a valid
// configuration: no pan, no background, default cursor, pointer events on,
// variable clock.
type SceneConfig struct {
	// Origin is the initial offset of the whole scene.
	Origin Vec2 `yaml:"origin"`
	Debug  bool `yaml:"debug"`
	// Draggable lets a mouse-down on empty canvas pan the scene.
	Draggable bool `yaml:"draggable"`
	// Background is painted behind everything.
	Background *Color `yaml:"background"`
	// Cursor shown over empty canvas.
	Cursor Cursor `yaml:"cursor"`
	// PointerEvents is the default of every shape's PointerEvents style.
	// Nil means true.
	PointerEvents *bool `yaml:"pointerEvents"`
	// Clock, if set, selects fixed-clock mode starting at this value: the
	// scene needs a paint only when the clock changes.
	Clock    *float64  `yaml:"clock"`
	Feedback *Feedback `yaml:"feedback"`
	// Width and Height size the window opened by Run.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Scene is the top-level object. It owns the reactive runtime, the mounted
// token tree, selection and hover state, and the listener registry.
type Scene struct {
	rt   *Runtime
	root *Owner
	cfg  SceneConfig
	tree *TokenTree

	// OnMouseDown, OnMouseMove and OnMouseUp run when no token claimed
	// the event. The mouse-down handler receives positions relative to the
	// scene origin.
	OnMouseDown func(e *MouseEvent)
	OnMouseMove func(e *MouseEvent)
	OnMouseUp   func(e *MouseEvent)

	// ScreenshotDir is where queued screenshots are written. Empty means
	// DefaultScreenshotDir.
	ScreenshotDir string

	origin        *Signal[Vec2]
	debug         *Signal[bool]
	cursor        *Signal[Cursor]
	selected      *Signal[*Token]
	hovered       *Signal[*Token]
	clock         *Signal[float64]
	fixedClock    bool
	pointerEvents bool

	listeners      [numEventTypes][]listener
	frameCallbacks []frameCallback
	nextCallbackID uint32
	tweens         []*TweenGroup

	lastPos    Vec2
	hasLastPos bool
	panning    bool

	store EntityStore

	injectQueue     []syntheticEvent
	testRunner      *TestRunner
	screenshotQueue []string

	// Paint tracking.
	paintWatch   *computation
	painted      bool
	paintedClock float64
	frame        uint64
	faults       int
	prevFrame    image.Image
}

// NewScene creates an empty scene.
func NewScene(cfg SceneConfig) *Scene {
	rt := NewRuntime()
	s := &Scene{
		rt:            rt,
		root:          rt.Root(),
		cfg:           cfg,
		pointerEvents: cfg.PointerEvents == nil || *cfg.PointerEvents,
		ScreenshotDir: DefaultScreenshotDir,
	}
	s.origin = NewSignal(rt, cfg.Origin)
	s.debug = NewSignal(rt, cfg.Debug)
	s.cursor = NewSignal(rt, cfg.Cursor)
	s.selected = NewSignal[*Token](rt, nil)
	s.hovered = NewSignal[*Token](rt, nil)
	var clock float64
	if cfg.Clock != nil {
		clock, s.fixedClock = *cfg.Clock, true
	}
	s.clock = NewSignal(rt, clock)
	s.paintWatch = newWatcher(s.root, nil)
	s.tree = NewTokenTree(s.Context())
	return s
}

// Context returns the root context of the scene, for building tokens with
// the New* constructors.
func (s *Scene) Context() Context {
	return Context{scene: s, owner: s.root}
}

// Runtime returns the scene's reactive runtime, for creating signals.
func (s *Scene) Runtime() *Runtime {
	return s.rt
}

// Mount replaces the scene content with children. Tokens of the previous
// content are disposed and selection and hover are cleared.
func (s *Scene) Mount(children ...Child) {
	s.tree.Dispose()
	s.selected.Set(nil)
	s.hovered.Set(nil)
	s.tree = NewTokenTree(s.Context(), children...)
	s.painted = false
}

// Tokens returns the resolved top-level tokens in paint order.
func (s *Scene) Tokens() []*Token {
	return s.tree.Tokens()
}

// Tree returns the mounted top-level token tree.
func (s *Scene) Tree() *TokenTree {
	return s.tree
}

// Origin returns the scene origin: the configured origin plus any pan.
func (s *Scene) Origin() Vec2 {
	return s.origin.Get()
}

// SetOrigin replaces the scene origin.
func (s *Scene) SetOrigin(v Vec2) {
	s.origin.Set(v)
}

// SetDebugMode enables or disables debug mode. When enabled, bounds overlays
// are painted, use of disposed tokens panics, nesting and size warnings are
// logged, and per-frame stats are logged.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug.Set(enabled)
}

// Debug reports whether debug mode is on.
func (s *Scene) Debug() bool {
	return s.debug.Peek()
}

// Selected returns the selected token, or nil.
func (s *Scene) Selected() *Token {
	return s.selected.Peek()
}

// Hovered returns the hovered token, or nil.
func (s *Scene) Hovered() *Token {
	return s.hovered.Peek()
}

// Cursor returns the cursor suggested by the last dispatch.
func (s *Scene) Cursor() Cursor {
	return s.cursor.Peek()
}

// Panning reports whether a scene pan is in progress.
func (s *Scene) Panning() bool {
	return s.panning
}

// Clock returns the current clock value. It is always 0 in variable-clock
// mode.
func (s *Scene) Clock() float64 {
	return s.clock.Peek()
}

// SetClock sets the clock and switches the scene to fixed-clock mode.
func (s *Scene) SetClock(v float64) {
	s.fixedClock = true
	s.clock.Set(v)
}

// FixedClock reports whether the scene runs on a fixed clock.
func (s *Scene) FixedClock() bool {
	return s.fixedClock
}

// NeedsPaint reports whether the next Draw would produce a different frame.
// In fixed-clock mode that is when the clock moved since the last paint;
// otherwise it is when any reactive value read by the last paint changed.
func (s *Scene) NeedsPaint() bool {
	if !s.painted {
		return true
	}
	if s.fixedClock {
		return s.clock.Peek() != s.paintedClock
	}
	return s.paintWatch.dirty
}

// Frame returns the number of frames painted so far.
func (s *Scene) Frame() uint64 {
	return s.frame
}

// Update advances the scene by one tick of dt seconds: the attached test
// runner takes a step, one queued synthetic event is dispatched, and tweens
// advance. Finished tweens are dropped.
func (s *Scene) Update(dt float64) {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjectedInput()

	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(float32(dt))
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live
}

// Dispose releases every token and resource of the scene.
func (s *Scene) Dispose() {
	s.root.Dispose()
	s.tweens = nil
}
