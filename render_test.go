package canopy

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

// --- Recording surface ---

type paintOp struct {
	kind      string
	color     Color
	composite Composite
	alpha     float64
}

// recordingSurface logs every drawing call before forwarding it to a real
// raster surface.
type recordingSurface struct {
	*RasterSurface
	ops []paintOp
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{RasterSurface: NewRasterSurface(w, h)}
}

func (r *recordingSurface) record(kind string, c Color) {
	r.ops = append(r.ops, paintOp{kind: kind, color: c, composite: r.Composite(), alpha: r.GlobalAlpha()})
}

func (r *recordingSurface) Fill(p Path, c Color) {
	r.record("fill", c)
	r.RasterSurface.Fill(p, c)
}

func (r *recordingSurface) Stroke(p Path, c Color) {
	r.record("stroke", c)
	r.RasterSurface.Stroke(p, c)
}

func (r *recordingSurface) FillRect(rect Rect, c Color) {
	r.record("fillRect", c)
	r.RasterSurface.FillRect(rect, c)
}

func (r *recordingSurface) ClearRect(rect Rect) {
	r.record("clear", Color{})
	r.RasterSurface.ClearRect(rect)
}

func (r *recordingSurface) DrawImage(img image.Image, m Matrix, size Dimensions) {
	r.record("image", Color{})
	r.RasterSurface.DrawImage(img, m, size)
}

func (r *recordingSurface) Clip(p Path) {
	r.record("clip", Color{})
	r.RasterSurface.Clip(p)
}

func (r *recordingSurface) kinds() []string {
	out := make([]string, len(r.ops))
	for i, op := range r.ops {
		out[i] = op.kind
	}
	return out
}

func (r *recordingSurface) indexOf(kind string, c Color) int {
	for i, op := range r.ops {
		if op.kind == kind && op.color == c {
			return i
		}
	}
	return -1
}

var (
	testRed  = Color{1, 0, 0, 1}
	testBlue = Color{0, 0, 1, 1}
)

func filled(c Color) func(p *RectangleProps) {
	return func(p *RectangleProps) {
		p.Style.Fill = Of(c)
		p.Style.Stroke = Of(ColorTransparent)
	}
}

// --- Paint order ---

func TestDrawPaintsInDeclarationOrder(t *testing.T) {
	bg := ColorWhite
	s := NewScene(SceneConfig{Background: &bg})
	s.Mount(
		rectAt("a", 0, 0, 10, 10, filled(testRed)),
		rectAt("b", 5, 5, 10, 10, filled(testBlue)),
	)
	surf := newRecordingSurface(40, 40)
	s.Draw(surf)

	if surf.ops[0].kind != "clear" {
		t.Fatalf("first op = %q, want clear", surf.ops[0].kind)
	}
	red, blue := surf.indexOf("fill", testRed), surf.indexOf("fill", testBlue)
	if red < 0 || blue < 0 || red > blue {
		t.Errorf("fill order red=%d blue=%d, want red first", red, blue)
	}
	last := surf.ops[len(surf.ops)-1]
	if last.kind != "fillRect" || last.color != bg || last.composite != CompositeDestinationOver {
		t.Errorf("last op = %+v, want background behind everything", last)
	}
	if surf.Depth() != 0 {
		t.Errorf("depth = %d after Draw", surf.Depth())
	}
}

func TestDrawDebugPassFollowsPrimaryPaint(t *testing.T) {
	captureLog(t)
	s := NewScene(SceneConfig{Debug: true})
	s.Mount(
		rectAt("a", 0, 0, 10, 10, filled(testRed)),
		rectAt("b", 20, 0, 10, 10, filled(testBlue)),
	)
	surf := newRecordingSurface(40, 40)
	s.Draw(surf)

	blue := surf.indexOf("fill", testBlue)
	firstDebug := surf.indexOf("stroke", ColorGrey)
	if firstDebug < 0 {
		t.Fatalf("no debug overlay painted: %v", surf.kinds())
	}
	if firstDebug < blue {
		t.Errorf("debug overlay at %d painted before last token at %d", firstDebug, blue)
	}
	if op := surf.ops[firstDebug]; op.composite != CompositeDestinationOver {
		t.Errorf("debug composite = %v, want destination-over", op.composite)
	}

	s.SetDebugMode(false)
	surf = newRecordingSurface(40, 40)
	s.Draw(surf)
	if surf.indexOf("stroke", ColorGrey) >= 0 {
		t.Error("debug overlay painted outside debug mode")
	}
}

func TestDrawIsolatesPaintFaults(t *testing.T) {
	buf := captureLog(t)
	s := newTestScene()
	s.Mount(
		rectAt("before", 0, 0, 10, 10, filled(testRed)),
		Element(func(ctx Context) (*Token, error) {
			return &Token{ID: nextTokenID(), Kind: TokenShape, Name: "broken", Paint: func(surf Surface) {
				surf.Save()
				surf.Save()
				surf.SetGlobalAlpha(0.1)
				panic("boom")
			}}, nil
		}),
		rectAt("after", 20, 0, 10, 10, filled(testBlue)),
	)
	surf := newRecordingSurface(40, 40)
	s.Draw(surf)

	if !strings.Contains(buf.String(), "paint fault") || !strings.Contains(buf.String(), "broken") {
		t.Errorf("log = %q", buf.String())
	}
	after := surf.indexOf("fill", testBlue)
	if after < 0 {
		t.Fatal("token after the fault was not painted")
	}
	if got := surf.ops[after].alpha; got != 1 {
		t.Errorf("alpha leaked from faulty token: %v", got)
	}
	if surf.Depth() != 0 {
		t.Errorf("depth = %d after Draw", surf.Depth())
	}
}

// --- Paint tracking ---

func TestNeedsPaintVariableClock(t *testing.T) {
	s := newTestScene()
	fill := NewSignal(s.Runtime(), testRed)
	unrelated := NewSignal(s.Runtime(), 0)
	s.Mount(Rectangle(func() RectangleProps {
		return RectangleProps{
			ShapeProps: ShapeProps{Style: Style{Fill: Of(fill.Get())}},
			Dimensions: Dimensions{Width: 10, Height: 10},
		}
	}))
	if !s.NeedsPaint() {
		t.Fatal("unpainted scene should need a paint")
	}
	surf := NewRasterSurface(20, 20)
	s.Draw(surf)
	if s.NeedsPaint() {
		t.Error("needs paint right after Draw")
	}
	unrelated.Set(1)
	if s.NeedsPaint() {
		t.Error("unread signal triggered a paint")
	}
	fill.Set(testBlue)
	if !s.NeedsPaint() {
		t.Error("change of a painted input not detected")
	}
	s.Draw(surf)
	if s.NeedsPaint() || s.Frame() != 2 {
		t.Errorf("needs paint = %v, frame = %d", s.NeedsPaint(), s.Frame())
	}
	s.Mount()
	if !s.NeedsPaint() {
		t.Error("remount should need a paint")
	}
}

func TestNeedsPaintFixedClock(t *testing.T) {
	s := NewScene(SceneConfig{Clock: Of(0.0)})
	fill := NewSignal(s.Runtime(), testRed)
	s.Mount(Rectangle(func() RectangleProps {
		return RectangleProps{
			ShapeProps: ShapeProps{Style: Style{Fill: Of(fill.Get())}},
			Dimensions: Dimensions{Width: 10, Height: 10},
		}
	}))
	if !s.FixedClock() {
		t.Fatal("configured clock should select fixed mode")
	}
	s.Draw(NewRasterSurface(20, 20))
	fill.Set(testBlue)
	if s.NeedsPaint() {
		t.Error("fixed clock repaints only when the clock moves")
	}
	s.SetClock(0)
	if s.NeedsPaint() {
		t.Error("unchanged clock triggered a paint")
	}
	s.SetClock(1)
	if !s.NeedsPaint() {
		t.Error("clock change not detected")
	}
}

func TestFrameCallbacks(t *testing.T) {
	s := newTestScene()
	var clocks []float64
	visible := NewSignal(s.Runtime(), true)
	s.Mount(When(visible.Get, Element(func(ctx Context) (*Token, error) {
		ctx.OnFrame(func(clock float64) { clocks = append(clocks, clock) })
		return &Token{ID: nextTokenID(), Kind: TokenShape, Name: "ticker"}, nil
	})))
	surf := NewRasterSurface(10, 10)

	s.SetClock(2.5)
	s.Draw(surf)
	s.SetClock(3)
	s.Draw(surf)
	if len(clocks) != 2 || clocks[0] != 2.5 || clocks[1] != 3 {
		t.Fatalf("clocks = %v", clocks)
	}

	visible.Set(false)
	s.Tokens()
	s.Draw(surf)
	if len(clocks) != 2 {
		t.Errorf("callback survived its token: %v", clocks)
	}
}

func TestFrameCallbacksOfNestedTokensRunOnFirstFrame(t *testing.T) {
	s := newTestScene()
	var clocks []float64
	visible := NewSignal(s.Runtime(), false)
	s.Mount(groupAt("g", 0, 0, nil, When(visible.Get, Element(func(ctx Context) (*Token, error) {
		ctx.OnFrame(func(clock float64) { clocks = append(clocks, clock) })
		return &Token{ID: nextTokenID(), Kind: TokenShape, Name: "ticker"}, nil
	}))))
	surf := NewRasterSurface(10, 10)

	s.SetClock(1)
	s.Draw(surf)
	visible.Set(true)
	s.SetClock(2)
	s.Draw(surf)
	if len(clocks) != 1 || clocks[0] != 2 {
		t.Fatalf("clocks = %v, want [2]", clocks)
	}
}

// --- Feedback ---

func TestFeedbackRedrawsPreviousFrame(t *testing.T) {
	s := NewScene(SceneConfig{Feedback: &Feedback{Opacity: 0.5}})
	s.Mount(rectAt("r", 0, 0, 10, 10, filled(testRed)))

	surf := newRecordingSurface(20, 20)
	s.Draw(surf)
	if surf.indexOf("image", Color{}) >= 0 {
		t.Error("first frame has no previous frame to redraw")
	}

	surf.ops = nil
	s.Draw(surf)
	i := surf.indexOf("image", Color{})
	if i < 0 {
		t.Fatalf("previous frame not redrawn: %v", surf.kinds())
	}
	if surf.ops[i].alpha != 0.5 {
		t.Errorf("feedback alpha = %v, want 0.5", surf.ops[i].alpha)
	}
	if surf.ops[0].kind != "clear" {
		t.Errorf("first op = %q, want clear", surf.ops[0].kind)
	}
}

func TestFeedbackCustomPaint(t *testing.T) {
	var prevs []image.Image
	s := NewScene(SceneConfig{Feedback: &Feedback{Paint: func(_ Surface, prev image.Image) {
		prevs = append(prevs, prev)
	}}})
	surf := newRecordingSurface(20, 20)
	s.Draw(surf)
	s.Draw(surf)
	if len(prevs) != 2 || prevs[0] != nil || prevs[1] == nil {
		t.Errorf("prev frames = %v", prevs)
	}
	if surf.indexOf("clear", Color{}) >= 0 {
		t.Error("custom feedback paint should replace the clear")
	}
}

// --- Raster output ---

func TestDrawRasterPixels(t *testing.T) {
	bg := ColorWhite
	s := NewScene(SceneConfig{Background: &bg})
	s.Mount(rectAt("r", 10, 10, 20, 20, filled(testRed)))
	surf := NewRasterSurface(50, 50)
	s.Draw(surf)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{20, 20, color.RGBA{255, 0, 0, 255}},
		{40, 40, color.RGBA{255, 255, 255, 255}},
		{5, 5, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := surf.Image().RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawSceneOriginShiftsContent(t *testing.T) {
	s := NewScene(SceneConfig{Origin: Vec2{20, 0}})
	s.Mount(rectAt("r", 0, 0, 10, 10, filled(testRed)))
	surf := NewRasterSurface(40, 20)
	s.Draw(surf)
	if got := surf.Image().RGBAAt(5, 5); got.A != 0 {
		t.Errorf("unshifted pixel painted: %v", got)
	}
	if got := surf.Image().RGBAAt(25, 5); got.R != 255 {
		t.Errorf("shifted pixel = %v, want red", got)
	}
}

func TestDrawGroupClip(t *testing.T) {
	s := newTestScene()
	s.Mount(groupAt("g", 5, 5, func(p *GroupProps) {
		p.Clip = rectAt("clip", 0, 0, 10, 10, nil)
	}, rectAt("r", 0, 0, 30, 30, filled(testRed))))
	surf := NewRasterSurface(40, 40)
	s.Draw(surf)

	if got := surf.Image().RGBAAt(10, 10); got.R != 255 || got.A != 255 {
		t.Errorf("inside clip = %v, want red", got)
	}
	for _, pt := range []image.Point{{25, 25}, {2, 2}, {10, 20}} {
		if got := surf.Image().RGBAAt(pt.X, pt.Y); got.A != 0 {
			t.Errorf("outside clip %v = %v, want transparent", pt, got)
		}
	}
	if surf.Depth() != 0 {
		t.Errorf("depth = %d", surf.Depth())
	}
}

func TestDrawGroupOpacityAndFill(t *testing.T) {
	green := Color{0, 1, 0, 1}
	s := newTestScene()
	s.Mount(groupAt("g", 0, 0, func(p *GroupProps) {
		p.Opacity = Of(0.5)
		p.Fill = &green
	}))
	surf := newRecordingSurface(10, 10)
	s.Draw(surf)
	i := surf.indexOf("fillRect", green)
	if i < 0 {
		t.Fatalf("group fill not painted: %v", surf.kinds())
	}
	if surf.ops[i].alpha != 0.5 {
		t.Errorf("group fill alpha = %v", surf.ops[i].alpha)
	}
	if got := surf.Image().RGBAAt(5, 5); got.G < 120 || got.G > 135 {
		t.Errorf("half-opaque green = %v", got)
	}
}
