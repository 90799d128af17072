package canopy

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// RasterSurface is a software Surface backed by an *image.RGBA. It needs no
// GPU or window, which makes it the surface of choice for tests, headless
// rendering and screenshots.
type RasterSurface struct {
	stateStack[*image.Alpha]
	img  *image.RGBA
	rast *vector.Rasterizer
	cov  *image.Alpha
}

// NewRasterSurface creates a transparent w×h surface.
func NewRasterSurface(w, h int) *RasterSurface {
	if w <= 0 || h <= 0 {
		panic("canopy: raster surface dimensions must be positive")
	}
	return &RasterSurface{
		stateStack: newStateStack[*image.Alpha](),
		img:        image.NewRGBA(image.Rect(0, 0, w, h)),
		rast:       vector.NewRasterizer(w, h),
		cov:        image.NewAlpha(image.Rect(0, 0, w, h)),
	}
}

// Image returns the backing image. It is live: later draws modify it.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// Size returns the surface size in pixels.
func (s *RasterSurface) Size() Dimensions {
	b := s.img.Bounds()
	return Dimensions{float64(b.Dx()), float64(b.Dy())}
}

// Restore pops the state pushed by the matching Save.
func (s *RasterSurface) Restore() {
	s.pop()
}

// Fill fills p with c using the non-zero winding rule.
func (s *RasterSurface) Fill(p Path, c Color) {
	dev := p.Transform(s.cur.transform)
	s.drawShadow(dev)
	s.paintCoverage(s.coverage(dev, s.cov), c)
}

// Stroke strokes p with c using the current line style.
func (s *RasterSurface) Stroke(p Path, c Color) {
	if s.cur.line.Width <= 0 {
		return
	}
	dev := strokeArea(p.Transform(s.cur.transform), s.cur.line)
	s.drawShadow(dev)
	s.paintCoverage(s.coverage(dev, s.cov), c)
}

// Clip intersects the clip region with the interior of p.
func (s *RasterSurface) Clip(p Path) {
	mask := image.NewAlpha(s.img.Bounds())
	s.coverage(p.Transform(s.cur.transform), mask)
	if prev := s.cur.clip; prev != nil {
		for i := range mask.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(prev.Pix[i]) / 255)
		}
	}
	s.cur.clip = mask
}

// FillRect fills r with c.
func (s *RasterSurface) FillRect(r Rect, c Color) {
	var p Path
	p.Rect(r.X, r.Y, r.Width, r.Height)
	s.Fill(p, c)
}

// ClearRect sets the device rectangle r to transparent.
func (s *RasterSurface) ClearRect(r Rect) {
	rect := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
	draw.Draw(s.img, rect.Intersect(s.img.Bounds()), image.Transparent, image.Point{}, draw.Src)
}

// DrawImage draws img scaled to size, through m and the current transform.
func (s *RasterSurface) DrawImage(img image.Image, m Matrix, size Dimensions) {
	sb := img.Bounds()
	if sb.Empty() || size.Width <= 0 || size.Height <= 0 {
		return
	}
	full := s.cur.transform.Multiply(m).Multiply(Matrix{
		size.Width / float64(sb.Dx()), 0,
		0, size.Height / float64(sb.Dy()),
		-float64(sb.Min.X) * size.Width / float64(sb.Dx()),
		-float64(sb.Min.Y) * size.Height / float64(sb.Dy()),
	})
	scratch := image.NewRGBA(s.img.Bounds())
	s2d := f64.Aff3{full[0], full[2], full[4], full[1], full[3], full[5]}
	xdraw.BiLinear.Transform(scratch, s2d, img, sb, xdraw.Over, nil)

	var outline Path
	outline.Rect(0, 0, size.Width, size.Height)
	s.drawShadow(outline.Transform(s.cur.transform.Multiply(m)))

	s.blendPixels(s.regionFor(scratch.Bounds()), func(i int) ([4]float64, bool) {
		px := scratch.Pix[i : i+4 : i+4]
		if px[3] == 0 {
			return [4]float64{}, false
		}
		return [4]float64{
			float64(px[0]) / 255, float64(px[1]) / 255,
			float64(px[2]) / 255, float64(px[3]) / 255,
		}, true
	})
}

// Snapshot returns a copy of the current pixels.
func (s *RasterSurface) Snapshot() image.Image {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// coverage rasterizes the device-space path p into dst and returns the
// bounding rectangle of the covered pixels.
func (s *RasterSurface) coverage(p Path, dst *image.Alpha) image.Rectangle {
	b := s.img.Bounds()
	s.rast.Reset(b.Dx(), b.Dy())
	s.rast.DrawOp = draw.Src
	drawn := false
	for _, sp := range p.subs {
		if len(sp.pts) < 2 {
			continue
		}
		drawn = true
		s.rast.MoveTo(float32(sp.pts[0].X), float32(sp.pts[0].Y))
		for _, pt := range sp.pts[1:] {
			s.rast.LineTo(float32(pt.X), float32(pt.Y))
		}
		s.rast.ClosePath()
	}
	if !drawn {
		clear(dst.Pix)
		return image.Rectangle{}
	}
	s.rast.Draw(dst, b, image.Opaque, image.Point{})
	bb := p.Bounds()
	return image.Rect(
		int(math.Floor(bb.X))-1, int(math.Floor(bb.Y))-1,
		int(math.Ceil(bb.X+bb.Width))+1, int(math.Ceil(bb.Y+bb.Height))+1,
	).Intersect(b)
}

// paintCoverage blends c into the image, scaled by the coverage in s.cov.
func (s *RasterSurface) paintCoverage(area image.Rectangle, c Color) {
	if c.IsTransparent() && !s.unbounded() {
		return
	}
	a := clamp01(c.A)
	src := [4]float64{clamp01(c.R) * a, clamp01(c.G) * a, clamp01(c.B) * a, a}
	s.blendPixels(s.regionFor(area), func(i int) ([4]float64, bool) {
		cv := float64(s.cov.Pix[i/4]) / 255
		if cv == 0 {
			return [4]float64{}, false
		}
		return [4]float64{src[0] * cv, src[1] * cv, src[2] * cv, src[3] * cv}, true
	})
}

// drawShadow paints the shadow of the device-space area p, if one is set.
func (s *RasterSurface) drawShadow(p Path) {
	sh := s.cur.shadow
	if !shadowVisible(sh) {
		return
	}
	mask := image.NewAlpha(s.img.Bounds())
	area := s.coverage(p.Translate(sh.Offset), mask)
	if area.Empty() {
		return
	}
	var alpha func(i int) float64
	if sh.Blur > 0 {
		blurred := imaging.Blur(mask, sh.Blur/2)
		alpha = func(i int) float64 { return float64(blurred.Pix[i+3]) / 255 }
		pad := int(math.Ceil(sh.Blur * 2))
		area = area.Inset(-pad).Intersect(s.img.Bounds())
	} else {
		alpha = func(i int) float64 { return float64(mask.Pix[i/4]) / 255 }
	}
	a := clamp01(sh.Color.A)
	col := [4]float64{clamp01(sh.Color.R) * a, clamp01(sh.Color.G) * a, clamp01(sh.Color.B) * a, a}
	s.blendPixels(s.regionFor(area), func(i int) ([4]float64, bool) {
		cv := alpha(i)
		if cv == 0 {
			return [4]float64{}, false
		}
		return [4]float64{col[0] * cv, col[1] * cv, col[2] * cv, col[3] * cv}, true
	})
}

// unbounded reports whether the composite affects pixels outside the source
// shape, as the canvas in/out/copy operations do.
func (s *RasterSurface) unbounded() bool {
	switch s.cur.composite {
	case CompositeSourceIn, CompositeSourceOut, CompositeDestinationIn,
		CompositeDestinationAtop, CompositeCopy:
		return true
	}
	return false
}

func (s *RasterSurface) regionFor(area image.Rectangle) image.Rectangle {
	if s.unbounded() {
		return s.img.Bounds()
	}
	return area
}

// blendPixels composites one premultiplied source pixel per image pixel in
// area. src receives the byte offset of the pixel in an RGBA buffer and
// reports false for a fully transparent source.
func (s *RasterSurface) blendPixels(area image.Rectangle, src func(i int) ([4]float64, bool)) {
	op := s.cur.composite
	alpha := s.cur.alpha
	clip := s.cur.clip
	unbounded := s.unbounded()
	stride := s.img.Stride
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			i := y*stride + x*4
			k := 1.0
			if clip != nil {
				k = float64(clip.Pix[y*clip.Stride+x]) / 255
				if k == 0 {
					continue
				}
			}
			sp, ok := src(i)
			if !ok && !unbounded {
				continue
			}
			for c := range sp {
				sp[c] *= alpha
			}
			px := s.img.Pix[i : i+4 : i+4]
			dp := [4]float64{
				float64(px[0]) / 255, float64(px[1]) / 255,
				float64(px[2]) / 255, float64(px[3]) / 255,
			}
			out := op.blendPremul(sp, dp)
			for c := 0; c < 4; c++ {
				v := dp[c] + (out[c]-dp[c])*k
				px[c] = uint8(math.Round(clamp01(v) * 255))
			}
		}
	}
}
