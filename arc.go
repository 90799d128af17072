package canopy

import (
	"fmt"
	"math"
)

// AngleRange is an arc sweep in radians, clockwise on screen.
type AngleRange struct {
	Start, End float64
}

// ArcProps configures an arc token.
type ArcProps struct {
	ShapeProps
	// Radius defaults to 10 when zero.
	Radius float64
	// Angle defaults to a full circle when nil.
	Angle *AngleRange
}

const defaultArcRadius = 10

// NewArc builds an arc token. The arc is centered at (radius, radius), so
// its bounding square starts at the style position.
func NewArc(ctx Context, props func() ArcProps) (*Token, error) {
	resolved := func() (float64, AngleRange) {
		p := props()
		r := p.Radius
		if r == 0 {
			r = defaultArcRadius
		}
		a := AngleRange{0, 2 * math.Pi}
		if p.Angle != nil {
			a = *p.Angle
		}
		return r, a
	}
	return newShape(ctx, shapeDef{
		kind:     TokenShape,
		kindName: "arc",
		props:    func() ShapeProps { return props().ShapeProps },
		geometry: func() (Path, error) {
			r, a := resolved()
			var path Path
			if r < 0 {
				return path, fmt.Errorf("negative arc radius %v", r)
			}
			path.Arc(r, r, r, a.Start, a.End)
			return path, nil
		},
		localBounds: func(Path) Rect {
			r, _ := resolved()
			return Rect{Width: 2 * r, Height: 2 * r}
		},
	})
}

// Arc declares an arc.
func Arc(props func() ArcProps) Child {
	return Element(func(ctx Context) (*Token, error) { return NewArc(ctx, props) })
}
