package canopy

import (
	"math"
	"testing"
)

func assertNearTol(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}

func assertVecTol(t *testing.T, name string, got, want Vec2, tol float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// hasPoint reports whether pts contains want within tol.
func hasPoint(pts []Vec2, want Vec2, tol float64) bool {
	for _, pt := range pts {
		if pt.Sub(want).Len() <= tol {
			return true
		}
	}
	return false
}

func rectPath(x, y, w, h float64) Path {
	var p Path
	p.Rect(x, y, w, h)
	return p
}

func TestPathContainsRect(t *testing.T) {
	p := rectPath(10, 10, 20, 20)
	tests := []struct {
		pt   Vec2
		want bool
	}{
		{Vec2{15, 15}, true},
		{Vec2{29, 11}, true},
		{Vec2{5, 15}, false},
		{Vec2{35, 15}, false},
		{Vec2{15, 35}, false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.pt); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}
}

func TestPathContainsNonZero(t *testing.T) {
	// Two overlapping rects with the same winding: the overlap stays inside.
	p := Union(rectPath(0, 0, 20, 20), rectPath(10, 10, 20, 20))
	for _, pt := range []Vec2{{5, 5}, {15, 15}, {25, 25}} {
		if !p.Contains(pt) {
			t.Errorf("Contains(%v) = false, want true", pt)
		}
	}

	// A reversed inner square cuts a hole.
	var ring Path
	ring.Rect(0, 0, 30, 30)
	ring.Polygon([]Vec2{{10, 10}, {10, 20}, {20, 20}, {20, 10}})
	if ring.Contains(Vec2{15, 15}) {
		t.Error("hole reported inside")
	}
	if !ring.Contains(Vec2{5, 15}) {
		t.Error("ring body reported outside")
	}
}

func TestPathContainsOpenSubpathIsClosed(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	if !p.Contains(Vec2{8, 2}) {
		t.Error("open triangle should fill as closed")
	}
}

func TestPathStrokeContains(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(100, 0)
	if !p.StrokeContains(Vec2{50, 0.9}, 1) {
		t.Error("point within half width missed")
	}
	if p.StrokeContains(Vec2{50, 1.5}, 1) {
		t.Error("point outside half width hit")
	}
	if p.StrokeContains(Vec2{50, 0}, 0) {
		t.Error("zero width stroke hit")
	}
}

func TestPathArcFullCircle(t *testing.T) {
	var p Path
	p.Arc(10, 10, 10, 0, 2*math.Pi)
	b := p.Bounds()
	assertNearTol(t, "x", b.X, 0, 2*flattenTolerance)
	assertNearTol(t, "y", b.Y, 0, 2*flattenTolerance)
	assertNearTol(t, "w", b.Width, 20, 2*flattenTolerance)
	assertNearTol(t, "h", b.Height, 20, 2*flattenTolerance)
	if !p.Contains(Vec2{10, 10}) {
		t.Error("center not inside")
	}
	if p.Contains(Vec2{1, 1}) {
		t.Error("corner inside circle")
	}
}

func TestPathArcQuarter(t *testing.T) {
	var p Path
	p.Arc(0, 0, 10, 0, math.Pi/2)
	pts := p.subs[0].pts
	assertVecTol(t, "start", pts[0], Vec2{10, 0}, 1e-4)
	assertVecTol(t, "end", pts[len(pts)-1], Vec2{0, 10}, 1e-4)
	for _, pt := range pts {
		assertNearTol(t, "radius", pt.Len(), 10, 2*flattenTolerance)
	}
}

func TestPathRoundedRectClampsRadii(t *testing.T) {
	var p Path
	p.RoundedRect(0, 0, 40, 20, [4]float64{100, 100, 100, 100})
	b := p.Bounds()
	assertNear(t, "w", b.Width, 40)
	assertNear(t, "h", b.Height, 20)
	if p.Contains(Vec2{0.5, 0.5}) {
		t.Error("rounded corner should not contain the corner point")
	}
	if !p.Contains(Vec2{20, 10}) {
		t.Error("center not inside")
	}
}

func TestPathCubicEndpoints(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.CubicTo(0, 50, 100, 50, 100, 0)
	pts := p.subs[0].pts
	if len(pts) < 3 {
		t.Fatalf("points = %d, want a subdivided curve", len(pts))
	}
	assertVec(t, "start", pts[0], Vec2{0, 0})
	assertVec(t, "end", pts[len(pts)-1], Vec2{100, 0})
	// The apex of this symmetric curve is at y = 37.5.
	assertNearTol(t, "apex", p.Bounds().Height, 37.5, flattenTolerance)
}

func TestPathEmpty(t *testing.T) {
	var p Path
	if !p.Empty() {
		t.Error("zero path not empty")
	}
	p.MoveTo(1, 1)
	if !p.Empty() {
		t.Error("lone MoveTo not empty")
	}
	p.LineTo(2, 2)
	if p.Empty() {
		t.Error("segment reported empty")
	}
	if got := (Path{}).Bounds(); got != (Rect{}) {
		t.Errorf("empty bounds = %+v", got)
	}
}

func TestPathDashed(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)

	d := p.Dashed([]float64{2, 3}, 0)
	if d.NumSubpaths() != 2 {
		t.Fatalf("dashes = %d, want 2", d.NumSubpaths())
	}
	assertVecTol(t, "dash 0 end", d.subs[0].pts[1], Vec2{2, 0}, 1e-4)
	assertVecTol(t, "dash 1 start", d.subs[1].pts[0], Vec2{5, 0}, 1e-4)
	assertVecTol(t, "dash 1 end", d.subs[1].pts[1], Vec2{7, 0}, 1e-4)

	shifted := p.Dashed([]float64{2, 3}, 1)
	assertVecTol(t, "phase start", shifted.subs[0].pts[1], Vec2{1, 0}, 1e-4)

	if same := p.Dashed(nil, 0); same.NumSubpaths() != 1 {
		t.Error("empty pattern should leave the path unchanged")
	}
}

func TestPathStrokeOutlineCoversLine(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(20, 0)
	out := strokeArea(p, LineStyle{Width: 4, Cap: LineCapButt, Join: LineJoinMiter, MiterLimit: 10})
	if !out.Contains(Vec2{10, 1.5}) {
		t.Error("stroke body missed")
	}
	if out.Contains(Vec2{-1, 0}) {
		t.Error("butt cap extends past the end")
	}
	square := strokeArea(p, LineStyle{Width: 4, Cap: LineCapSquare, Join: LineJoinMiter, MiterLimit: 10})
	if !square.Contains(Vec2{-1, 0}) {
		t.Error("square cap does not extend past the end")
	}
}

func TestPathStrokeOutlineJoins(t *testing.T) {
	var p Path
	p.MoveTo(0, 20)
	p.LineTo(20, 0)
	p.LineTo(40, 20)
	ls := LineStyle{Width: 4, Cap: LineCapButt, MiterLimit: 10}

	tests := []struct {
		join LineJoin
		tip  bool
	}{
		{LineJoinMiter, true},
		{LineJoinBevel, false},
		{LineJoinRound, false},
	}
	// The miter tip sits 2·√2 above the corner; bevel and round stop short.
	tip := Vec2{20, -2.5}
	for _, tt := range tests {
		ls.Join = tt.join
		out := strokeArea(p, ls)
		if got := out.Contains(tip); got != tt.tip {
			t.Errorf("%v: Contains(tip) = %v, want %v", tt.join, got, tt.tip)
		}
		if !out.Contains(Vec2{20, 0}) {
			t.Errorf("%v: corner not covered", tt.join)
		}
	}

	ls.Join, ls.MiterLimit = LineJoinMiter, 1
	if strokeArea(p, ls).Contains(tip) {
		t.Error("miter past the limit should fall back to a bevel")
	}
}

func TestPathStrokeOutlineClosedHasHole(t *testing.T) {
	out := strokeArea(rectPath(0, 0, 40, 40), LineStyle{Width: 4, Join: LineJoinMiter, MiterLimit: 10})
	if !out.Contains(Vec2{0, 20}) {
		t.Error("edge not covered")
	}
	if out.Contains(Vec2{20, 20}) {
		t.Error("interior of a stroked square is covered")
	}
}

func TestPathStrokeOutlineDot(t *testing.T) {
	var p Path
	p.MoveTo(10, 10)
	p.LineTo(10, 10)
	round := strokeArea(p, LineStyle{Width: 6, Cap: LineCapRound})
	if !round.Contains(Vec2{12, 10}) || round.Contains(Vec2{12.8, 12.8}) {
		t.Error("round cap on a dot should draw a disc")
	}
	square := strokeArea(p, LineStyle{Width: 6, Cap: LineCapSquare})
	if !square.Contains(Vec2{12.8, 12.8}) {
		t.Error("square cap on a dot should draw a square")
	}
	if !strokeArea(p, LineStyle{Width: 6, Cap: LineCapButt}).Empty() {
		t.Error("butt cap on a dot should draw nothing")
	}
}
