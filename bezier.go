package canopy

import "fmt"

// BezierPoint is one anchor of a cubic bezier path. Control and
// OppositeControl are relative to Point: Control shapes the curve arriving
// at Point, OppositeControl the curve leaving it. A nil OppositeControl
// mirrors Control through Point. The first point's Control shapes the curve
// leaving it.
type BezierPoint struct {
	Point           Vec2
	Control         Vec2
	OppositeControl *Vec2
}

// BezierProps configures a bezier token.
type BezierProps struct {
	ShapeProps
	Points []BezierPoint
	// Close joins the last point back to the first.
	Close bool
}

// NewBezier builds a cubic bezier token. Fewer than two points is a geometry
// fault: it is logged and the token paints nothing.
func NewBezier(ctx Context, props func() BezierProps) (*Token, error) {
	return newShape(ctx, shapeDef{
		kind:     TokenShape,
		kindName: "bezier",
		props:    func() ShapeProps { return props().ShapeProps },
		geometry: func() (Path, error) {
			p := props()
			return bezierPath(p.Points, p.Close)
		},
		localBounds: func(Path) Rect {
			return bezierHull(props().Points)
		},
	})
}

// Bezier declares a cubic bezier path.
func Bezier(props func() BezierProps) Child {
	return Element(func(ctx Context) (*Token, error) { return NewBezier(ctx, props) })
}

func bezierPath(pts []BezierPoint, closed bool) (Path, error) {
	var path Path
	if len(pts) < 2 {
		return path, fmt.Errorf("bezier needs at least 2 points, got %d", len(pts))
	}
	first := pts[0]
	path.MoveTo(first.Point.X, first.Point.Y)
	out := first.Point.Add(first.Control)
	for _, bp := range pts[1:] {
		in := bp.Point.Add(bp.Control)
		path.CubicTo(out.X, out.Y, in.X, in.Y, bp.Point.X, bp.Point.Y)
		if bp.OppositeControl != nil {
			out = bp.Point.Add(*bp.OppositeControl)
		} else {
			out = bp.Point.Sub(bp.Control)
		}
	}
	if closed {
		path.Close()
	}
	return path, nil
}

// bezierHull returns the bounds of all anchors and control points.
func bezierHull(pts []BezierPoint) Rect {
	var hull Path
	for _, bp := range pts {
		hull.LineTo(bp.Point.X, bp.Point.Y)
		c := bp.Point.Add(bp.Control)
		hull.LineTo(c.X, c.Y)
		if bp.OppositeControl != nil {
			oc := bp.Point.Add(*bp.OppositeControl)
			hull.LineTo(oc.X, oc.Y)
		}
	}
	return hull.Bounds()
}
