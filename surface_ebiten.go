package canopy

import (
	"image"
	"image/color"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// clipLayer is an offscreen image that collects the draws made while a clip
// is active. On Restore the layer is masked by the clip path and drawn onto
// its parent.
type clipLayer struct {
	img    *ebiten.Image
	mask   *ebiten.Image
	parent *clipLayer
}

// EbitenSurface is a GPU Surface drawing onto an *ebiten.Image. Paths are
// tessellated with ebiten/v2/vector and drawn with DrawTriangles. Clipping
// renders into pooled offscreen layers that are masked when the clip's
// state is restored.
//
// Composite operations inside a clip blend against the layer, not the
// content below it. Shadows are drawn offset but unblurred.
type EbitenSurface struct {
	stateStack[*clipLayer]
	screen   *ebiten.Image
	pool     layerPool
	white    *ebiten.Image
	vs       []ebiten.Vertex
	is       []uint16
	images   map[image.Image]*cachedImage
	uploads  []*ebiten.Image
	snapshot *ebiten.Image
}

// cachedImage is an uploaded copy of a CPU image. used is set when the image
// is drawn and cleared by Reset.
type cachedImage struct {
	img  *ebiten.Image
	used bool
}

// NewEbitenSurface creates a surface drawing onto screen.
func NewEbitenSurface(screen *ebiten.Image) *EbitenSurface {
	return &EbitenSurface{
		stateStack: newStateStack[*clipLayer](),
		screen:     screen,
		images:     make(map[image.Image]*cachedImage),
	}
}

// Reset retargets the surface at screen and drops any unbalanced state.
// Call it at the start of every frame. Uploaded images not drawn since the
// previous Reset are released.
func (s *EbitenSurface) Reset(screen *ebiten.Image) {
	for s.Depth() > 0 {
		s.Restore()
	}
	s.stateStack = newStateStack[*clipLayer]()
	s.screen = screen
	s.evictImages()
}

// ReleaseImage drops the uploaded copy of img, so the next draw uploads its
// current pixels. Call it after mutating an image that is drawn every frame.
func (s *EbitenSurface) ReleaseImage(img image.Image) {
	if c, ok := s.images[img]; ok {
		c.img.Deallocate()
		delete(s.images, img)
	}
}

func (s *EbitenSurface) evictImages() {
	for k, c := range s.images {
		if !c.used {
			c.img.Deallocate()
			delete(s.images, k)
			continue
		}
		c.used = false
	}
	for _, img := range s.uploads {
		img.Deallocate()
	}
	s.uploads = s.uploads[:0]
}

// Dispose releases pooled layers and cached images.
func (s *EbitenSurface) Dispose() {
	s.pool.dispose()
	for k, c := range s.images {
		c.img.Deallocate()
		delete(s.images, k)
	}
	for _, img := range s.uploads {
		img.Deallocate()
	}
	s.uploads = nil
	if s.snapshot != nil {
		s.snapshot.Deallocate()
		s.snapshot = nil
	}
}

// Size returns the size of the screen image.
func (s *EbitenSurface) Size() Dimensions {
	b := s.screen.Bounds()
	return Dimensions{float64(b.Dx()), float64(b.Dy())}
}

// Restore pops the state pushed by the matching Save, flushing any clip
// layers opened since.
func (s *EbitenSurface) Restore() {
	popped, ok := s.pop()
	if !ok {
		return
	}
	for l := popped.clip; l != nil && l != s.cur.clip; l = l.parent {
		s.flushLayer(l)
	}
}

// Fill fills p with c using the non-zero winding rule.
func (s *EbitenSurface) Fill(p Path, c Color) {
	vp := toVectorPath(p.Transform(s.cur.transform))
	s.vs, s.is = vp.AppendVerticesAndIndicesForFilling(s.vs[:0], s.is[:0])
	s.drawTriangles(c, ebiten.FillRuleNonZero)
}

// Stroke strokes p with c using the current line style.
func (s *EbitenSurface) Stroke(p Path, c Color) {
	ls := s.cur.line
	if ls.Width <= 0 {
		return
	}
	dev := p.Transform(s.cur.transform)
	if len(ls.Dash) > 0 {
		dev = dev.Dashed(ls.Dash, ls.DashOffset)
	}
	vp := toVectorPath(dev)
	s.vs, s.is = vp.AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], &vector.StrokeOptions{
		Width:      float32(ls.Width),
		LineCap:    vectorCap(ls.Cap),
		LineJoin:   vectorJoin(ls.Join),
		MiterLimit: float32(ls.MiterLimit),
	})
	s.drawTriangles(c, ebiten.FillRuleFillAll)
}

// Clip opens an offscreen layer masked by p.
func (s *EbitenSurface) Clip(p Path) {
	b := s.screen.Bounds()
	l := &clipLayer{
		img:    s.pool.acquire(b.Size()),
		mask:   s.pool.acquire(b.Size()),
		parent: s.cur.clip,
	}
	vp := toVectorPath(p.Transform(s.cur.transform))
	vs, is := vp.AppendVerticesAndIndicesForFilling(nil, nil)
	s.colorVertices(vs, ColorWhite, 1)
	l.mask.DrawTriangles(vs, is, s.whitePixel(), &ebiten.DrawTrianglesOptions{
		FillRule:  ebiten.FillRuleNonZero,
		AntiAlias: true,
	})
	s.cur.clip = l
}

// FillRect fills r with c.
func (s *EbitenSurface) FillRect(r Rect, c Color) {
	var p Path
	p.Rect(r.X, r.Y, r.Width, r.Height)
	s.Fill(p, c)
}

// ClearRect sets the device rectangle r of the current target to
// transparent.
func (s *EbitenSurface) ClearRect(r Rect) {
	rect := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width+0.5), int(r.Y+r.Height+0.5))
	if sub, ok := s.target().SubImage(rect).(*ebiten.Image); ok {
		sub.Clear()
	}
}

// DrawImage draws img scaled to size, through m and the current transform.
func (s *EbitenSurface) DrawImage(img image.Image, m Matrix, size Dimensions) {
	src := s.ebitenImage(img)
	if src == nil || size.Width <= 0 || size.Height <= 0 {
		return
	}
	b := src.Bounds()
	full := s.cur.transform.Multiply(m)
	if sh := s.cur.shadow; shadowVisible(sh) {
		var outline Path
		outline.Rect(0, 0, size.Width, size.Height)
		s.Save()
		s.cur.shadow = nil
		s.cur.transform = TranslateMatrix(sh.Offset.X, sh.Offset.Y).Multiply(full)
		s.Fill(outline, sh.Color)
		s.Restore()
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(size.Width/float64(b.Dx()), size.Height/float64(b.Dy()))
	op.GeoM.Concat(toGeoM(full))
	op.ColorScale.ScaleAlpha(float32(s.cur.alpha))
	op.Blend = s.cur.composite.EbitenBlend()
	op.Filter = ebiten.FilterLinear
	s.target().DrawImage(src, &op)
}

// Snapshot copies the screen into a reused image. The returned image is
// overwritten by the next call.
func (s *EbitenSurface) Snapshot() image.Image {
	b := s.screen.Bounds()
	if s.snapshot == nil || s.snapshot.Bounds() != b {
		if s.snapshot != nil {
			s.snapshot.Deallocate()
		}
		s.snapshot = ebiten.NewImage(b.Dx(), b.Dy())
	}
	s.snapshot.Clear()
	s.snapshot.DrawImage(s.screen, nil)
	return s.snapshot
}

func (s *EbitenSurface) target() *ebiten.Image {
	if s.cur.clip != nil {
		return s.cur.clip.img
	}
	return s.screen
}

func (s *EbitenSurface) drawTriangles(c Color, rule ebiten.FillRule) {
	if len(s.is) == 0 {
		return
	}
	if sh := s.cur.shadow; shadowVisible(sh) {
		shadow := append([]ebiten.Vertex(nil), s.vs...)
		for i := range shadow {
			shadow[i].DstX += float32(sh.Offset.X)
			shadow[i].DstY += float32(sh.Offset.Y)
		}
		s.colorVertices(shadow, sh.Color, s.cur.alpha)
		s.target().DrawTriangles(shadow, s.is, s.whitePixel(), &ebiten.DrawTrianglesOptions{
			FillRule:  rule,
			AntiAlias: true,
			Blend:     s.cur.composite.EbitenBlend(),
		})
	}
	s.colorVertices(s.vs, c, s.cur.alpha)
	s.target().DrawTriangles(s.vs, s.is, s.whitePixel(), &ebiten.DrawTrianglesOptions{
		FillRule:  rule,
		AntiAlias: true,
		Blend:     s.cur.composite.EbitenBlend(),
	})
}

func (s *EbitenSurface) colorVertices(vs []ebiten.Vertex, c Color, alpha float64) {
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(c.A*alpha)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = r
		vs[i].ColorG = g
		vs[i].ColorB = b
		vs[i].ColorA = a
	}
}

// flushLayer masks l by its clip path and draws it onto its parent target.
func (s *EbitenSurface) flushLayer(l *clipLayer) {
	l.img.DrawImage(l.mask, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn})
	dst := s.screen
	if l.parent != nil {
		dst = l.parent.img
	}
	dst.DrawImage(l.img, nil)
	s.pool.release(l.mask)
	s.pool.release(l.img)
}

// whitePixel returns a 1×1 white sub-image used as the triangle source.
// The 3×3 backing image keeps linear filtering from sampling the border.
func (s *EbitenSurface) whitePixel() *ebiten.Image {
	if s.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		s.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return s.white
}

// ebitenImage returns img as an *ebiten.Image, uploading other image types.
// Comparable image values are cached while they keep being drawn; others
// are uploaded per draw and released at the next Reset.
func (s *EbitenSurface) ebitenImage(img image.Image) *ebiten.Image {
	if img == nil {
		return nil
	}
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	if !reflect.TypeOf(img).Comparable() {
		e := ebiten.NewImageFromImage(img)
		s.uploads = append(s.uploads, e)
		return e
	}
	if c, ok := s.images[img]; ok {
		c.used = true
		return c.img
	}
	e := ebiten.NewImageFromImage(img)
	s.images[img] = &cachedImage{img: e, used: true}
	return e
}

func toVectorPath(p Path) *vector.Path {
	var vp vector.Path
	for _, sp := range p.subs {
		if len(sp.pts) == 0 {
			continue
		}
		vp.MoveTo(float32(sp.pts[0].X), float32(sp.pts[0].Y))
		for _, pt := range sp.pts[1:] {
			vp.LineTo(float32(pt.X), float32(pt.Y))
		}
		if sp.closed {
			vp.Close()
		}
	}
	return &vp
}

func toGeoM(m Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

func vectorCap(c LineCap) vector.LineCap {
	switch c {
	case LineCapRound:
		return vector.LineCapRound
	case LineCapSquare:
		return vector.LineCapSquare
	default:
		return vector.LineCapButt
	}
}

func vectorJoin(j LineJoin) vector.LineJoin {
	switch j {
	case LineJoinBevel:
		return vector.LineJoinBevel
	case LineJoinMiter:
		return vector.LineJoinMiter
	default:
		return vector.LineJoinRound
	}
}
