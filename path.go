package canopy

import (
	"math"

	"cogentcore.org/core/paint/ppath"
	"cogentcore.org/core/paint/ppath/intersect"
	"cogentcore.org/core/paint/ppath/stroke"
	"cogentcore.org/core/styles/sides"
)

// flattenTolerance is the largest distance, in pixels, a flattened curve
// may stray from the true curve.
const flattenTolerance = 0.05

// subpath is a flattened polyline. Fill treats every subpath as closed;
// stroke only draws the closing edge when closed is set.
type subpath struct {
	pts    []Vec2
	closed bool
}

// Path is a flattened 2D path made of one or more polylines. Curves, dashes
// and stroke outlines are built with ppath and flattened at construction
// time, so every consumer (paint, hit test, clip) sees the same geometry.
// The zero value is an empty path.
type Path struct {
	subs []subpath
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.subs = append(p.subs, subpath{pts: []Vec2{{x, y}}})
}

// LineTo appends a straight segment. Starts a subpath if there is none.
func (p *Path) LineTo(x, y float64) {
	if len(p.subs) == 0 || p.last().closed {
		p.MoveTo(x, y)
		return
	}
	s := p.last()
	s.pts = append(s.pts, Vec2{x, y})
}

// QuadTo appends a quadratic bezier from the current point.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.curve(x, y, func(pp *ppath.Path) {
		pp.QuadTo(float32(cx), float32(cy), float32(x), float32(y))
	})
}

// CubicTo appends a cubic bezier from the current point.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.curve(x, y, func(pp *ppath.Path) {
		pp.CubeTo(float32(c1x), float32(c1y), float32(c2x), float32(c2y), float32(x), float32(y))
	})
}

// curve flattens the segment drawn by build from the current point and
// appends it. Without a current point it only moves to (x, y).
func (p *Path) curve(x, y float64, build func(pp *ppath.Path)) {
	a, ok := p.current()
	if !ok {
		p.MoveTo(x, y)
		return
	}
	var pp ppath.Path
	pp.MoveTo(float32(a.X), float32(a.Y))
	build(&pp)
	p.appendSegments(intersect.Flatten(pp, flattenTolerance))
}

// Arc appends a circular arc centered at (cx, cy) from angle start to end
// (radians, clockwise on screen). If the path has a current point, a line
// joins it to the start of the arc. A sweep of 2π or more draws a full
// circle.
func (p *Path) Arc(cx, cy, r, start, end float64) {
	sweep := end - start
	if sweep >= 2*math.Pi || sweep <= -2*math.Pi {
		sweep = 2 * math.Pi
	} else {
		sweep = math.Mod(sweep, 2*math.Pi)
		if sweep < 0 {
			sweep += 2 * math.Pi
		}
	}
	sx, sy := cx+r*math.Cos(start), cy+r*math.Sin(start)
	if _, ok := p.current(); ok {
		p.LineTo(sx, sy)
	} else {
		p.MoveTo(sx, sy)
	}
	var pp ppath.Path
	pp.MoveTo(float32(sx), float32(sy))
	pp.Arc(float32(r), float32(r), 0, float32(start), float32(start+sweep))
	p.appendSegments(intersect.Flatten(pp, flattenTolerance))
}

// Close marks the current subpath as closed.
func (p *Path) Close() {
	if len(p.subs) > 0 {
		p.last().closed = true
	}
}

// Rect appends a closed rectangle subpath.
func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// RoundedRect appends a closed rectangle with the given corner radii
// (top-left, top-right, bottom-right, bottom-left). Radii are clamped to half
// of the shorter side.
func (p *Path) RoundedRect(x, y, w, h float64, radii [4]float64) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	var pp ppath.Path
	pp.RoundedRectangleSides(float32(x), float32(y), float32(w), float32(h),
		sides.NewFloats(float32(radii[0]), float32(radii[1]), float32(radii[2]), float32(radii[3])))
	p.appendPPath(intersect.Flatten(pp, flattenTolerance))
}

// Polygon appends a closed polygon through pts.
func (p *Path) Polygon(pts []Vec2) {
	if len(pts) == 0 {
		return
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
}

// Append adds all subpaths of o to p.
func (p *Path) Append(o Path) {
	for _, s := range o.subs {
		p.subs = append(p.subs, subpath{pts: append([]Vec2(nil), s.pts...), closed: s.closed})
	}
}

// Union concatenates paths into one. Filled with the non-zero rule it
// covers every region any input covers, provided overlapping inputs share a
// winding direction, as every builder here produces.
func Union(paths ...Path) Path {
	var out Path
	for _, p := range paths {
		out.Append(p)
	}
	return out
}

// Empty reports whether the path encloses no area and draws no line.
func (p Path) Empty() bool {
	for _, s := range p.subs {
		if len(s.pts) >= 2 {
			return false
		}
	}
	return true
}

// NumSubpaths returns the number of polylines in the path.
func (p Path) NumSubpaths() int {
	return len(p.subs)
}

// Transform returns a copy of p with every point mapped through m.
func (p Path) Transform(m Matrix) Path {
	out := Path{subs: make([]subpath, len(p.subs))}
	for i, s := range p.subs {
		pts := make([]Vec2, len(s.pts))
		for j, pt := range s.pts {
			pts[j] = m.Apply(pt)
		}
		out.subs[i] = subpath{pts: pts, closed: s.closed}
	}
	return out
}

// Translate returns a copy of p moved by d.
func (p Path) Translate(d Vec2) Path {
	if d == (Vec2{}) {
		return p
	}
	return p.Transform(TranslateMatrix(d.X, d.Y))
}

// Bounds returns the axis-aligned bounding box of all points.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range p.subs {
		for _, pt := range s.pts {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Contains reports whether pt lies inside the filled area of the path using
// the non-zero winding rule. Every subpath is treated as closed.
func (p Path) Contains(pt Vec2) bool {
	winding := 0
	for _, s := range p.subs {
		n := len(s.pts)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			a := s.pts[i]
			b := s.pts[(i+1)%n]
			if a.Y <= pt.Y {
				if b.Y > pt.Y && cross(a, b, pt) > 0 {
					winding++
				}
			} else if b.Y <= pt.Y && cross(a, b, pt) < 0 {
				winding--
			}
		}
	}
	return winding != 0
}

// StrokeContains reports whether pt lies within halfWidth of any drawn edge.
func (p Path) StrokeContains(pt Vec2, halfWidth float64) bool {
	if halfWidth <= 0 {
		return false
	}
	hit := false
	p.eachSegment(func(a, b Vec2) bool {
		if distToSegment(pt, a, b) <= halfWidth {
			hit = true
			return false
		}
		return true
	})
	return hit
}

// Dashed splits the path into open dash subpaths following pattern
// (alternating on/off lengths) starting at phase. An empty, negative or
// all-zero pattern returns p unchanged.
func (p Path) Dashed(pattern []float64, phase float64) Path {
	total := 0.0
	d := make([]float32, len(pattern))
	for i, v := range pattern {
		if v < 0 {
			return p
		}
		total += v
		d[i] = float32(v)
	}
	if total <= 0 {
		return p
	}
	return fromPPath(p.toPPath().Dash(float32(phase), d...))
}

// strokeOutline converts the path's stroke into closed polygons whose
// non-zero fill is the stroked area.
func (p Path) strokeOutline(width float64, lineCap LineCap, join LineJoin, miterLimit float64) Path {
	var out Path
	hw := width / 2
	if hw <= 0 {
		return out
	}
	var dots ppath.Path
	for _, s := range p.subs {
		if len(s.pts) == 0 || !isDot(s.pts) {
			continue
		}
		c := s.pts[0]
		switch lineCap {
		case LineCapRound:
			dots.Circle(float32(c.X), float32(c.Y), float32(hw))
		case LineCapSquare:
			dots.Rectangle(float32(c.X-hw), float32(c.Y-hw), float32(width), float32(width))
		}
	}
	stroked := stroke.Stroke(p.toPPath(), float32(width), capper(lineCap), joiner(join, miterLimit), flattenTolerance)
	out.appendPPath(intersect.Flatten(stroked.Append(dots), flattenTolerance))
	return out
}

func capper(c LineCap) stroke.Capper {
	switch c {
	case LineCapRound:
		return stroke.RoundCap
	case LineCapSquare:
		return stroke.SquareCap
	}
	return stroke.ButtCap
}

func joiner(j LineJoin, miterLimit float64) stroke.Joiner {
	switch j {
	case LineJoinRound:
		return stroke.RoundJoin
	case LineJoinBevel:
		return stroke.BevelJoin
	}
	return stroke.MiterJoiner{GapJoiner: stroke.BevelJoin, Limit: float32(miterLimit)}
}

// isDot reports whether every point of a polyline coincides.
func isDot(pts []Vec2) bool {
	for _, pt := range pts[1:] {
		if pt != pts[0] {
			return false
		}
	}
	return true
}

// toPPath converts the polylines to path commands.
func (p Path) toPPath() ppath.Path {
	var pp ppath.Path
	for _, s := range p.subs {
		if len(s.pts) < 2 || isDot(s.pts) {
			continue
		}
		pp.MoveTo(float32(s.pts[0].X), float32(s.pts[0].Y))
		for _, pt := range s.pts[1:] {
			pp.LineTo(float32(pt.X), float32(pt.Y))
		}
		if s.closed {
			pp.Close()
		}
	}
	return pp
}

// fromPPath converts a path holding only line commands back to polylines.
func fromPPath(pp ppath.Path) Path {
	var out Path
	out.appendPPath(pp)
	return out
}

// appendPPath adds every subpath of the flattened pp.
func (p *Path) appendPPath(pp ppath.Path) {
	sc := pp.Scanner()
	for sc.Scan() {
		e := sc.End()
		switch sc.Cmd() {
		case ppath.MoveTo:
			p.MoveTo(float64(e.X), float64(e.Y))
		case ppath.Close:
			p.Close()
		default:
			p.LineTo(float64(e.X), float64(e.Y))
		}
	}
}

// appendSegments adds the drawn segments of the flattened pp to the current
// subpath, skipping its leading MoveTo.
func (p *Path) appendSegments(pp ppath.Path) {
	sc := pp.Scanner()
	for sc.Scan() {
		if sc.Cmd() == ppath.MoveTo {
			continue
		}
		e := sc.End()
		p.LineTo(float64(e.X), float64(e.Y))
	}
}

func (p *Path) last() *subpath {
	return &p.subs[len(p.subs)-1]
}

func (p *Path) current() (Vec2, bool) {
	if len(p.subs) == 0 {
		return Vec2{}, false
	}
	s := p.last()
	if s.closed || len(s.pts) == 0 {
		return Vec2{}, false
	}
	return s.pts[len(s.pts)-1], true
}

func cross(a, b, p Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}

func distToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.Scale(t))).Len()
}

