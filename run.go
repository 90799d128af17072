package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title string
	// Width and Height default to the scene config size, then 640×480.
	Width, Height int
	// ShowStats draws an FPS/TPS overlay in the top-left corner.
	ShowStats bool
	// TPS is the update rate. Zero keeps ebiten's default.
	TPS int
}

// Run opens a window and drives the scene with real mouse input until the
// window is closed. Frames are painted only when the scene needs a paint.
func Run(s *Scene, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w == 0 || h == 0 {
		w, h = s.cfg.Width, s.cfg.Height
	}
	if w == 0 || h == 0 {
		w, h = 640, 480
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetScreenClearedEveryFrame(false)

	g := &game{scene: s, width: w, height: h}
	if cfg.ShowStats {
		g.stats = newStatsOverlay()
	}
	defer g.dispose()
	return ebiten.RunGame(g)
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene         *Scene
	surf          *EbitenSurface
	stats         *statsOverlay
	width, height int
	lastCursor    Vec2
	cursor        Cursor
	cursorSet     bool
}

func (g *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	if g.scene.PendingInput() == 0 && g.scene.testRunner == nil {
		g.pollMouse()
	}
	g.scene.Update(dt)
	g.applyCursor()
	if g.stats != nil {
		g.stats.update(dt)
	}
	return nil
}

// pollMouse turns the real mouse state into scene events.
func (g *game) pollMouse() {
	x, y := ebiten.CursorPosition()
	pos := Vec2{float64(x), float64(y)}
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.scene.Dispatch(EventMouseDown, pos)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.scene.Dispatch(EventMouseUp, pos)
	case pos != g.lastCursor:
		g.scene.Dispatch(EventMouseMove, pos)
	}
	g.lastCursor = pos
}

func (g *game) applyCursor() {
	c := g.scene.Cursor()
	if g.cursorSet && c == g.cursor {
		return
	}
	g.cursor, g.cursorSet = c, true
	if c == CursorNone {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
		return
	}
	ebiten.SetCursorMode(ebiten.CursorModeVisible)
	ebiten.SetCursorShape(ebitenCursor(c))
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.surf == nil {
		g.surf = NewEbitenSurface(screen)
	}
	if g.scene.NeedsPaint() || g.stats != nil {
		g.surf.Reset(screen)
		g.scene.Draw(g.surf)
	}
	if g.stats != nil {
		g.stats.draw(screen)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func (g *game) dispose() {
	if g.surf != nil {
		g.surf.Dispose()
	}
	if g.stats != nil {
		g.stats.img.Deallocate()
	}
}

// ebitenCursor maps a scene cursor to the closest ebiten cursor shape.
func ebitenCursor(c Cursor) ebiten.CursorShapeType {
	switch c {
	case CursorPointer:
		return ebiten.CursorShapePointer
	case CursorMove, CursorGrab:
		return ebiten.CursorShapeMove
	case CursorText:
		return ebiten.CursorShapeText
	case CursorCrosshair:
		return ebiten.CursorShapeCrosshair
	case CursorNotAllowed:
		return ebiten.CursorShapeNotAllowed
	default:
		return ebiten.CursorShapeDefault
	}
}
