package canopy

import "fmt"

// RectangleProps configures a rectangle token.
type RectangleProps struct {
	ShapeProps
	Dimensions Dimensions
	// Rounded holds corner radii in canvas roundRect order: one value for
	// all corners; two for top-left/bottom-right and top-right/bottom-left;
	// three for top-left, top-right/bottom-left and bottom-right; four for
	// top-left, top-right, bottom-right and bottom-left.
	Rounded []float64
}

// NewRectangle builds a rectangle token with its top-left corner at the
// style position.
func NewRectangle(ctx Context, props func() RectangleProps) (*Token, error) {
	return newShape(ctx, shapeDef{
		kind:     TokenShape,
		kindName: "rectangle",
		props:    func() ShapeProps { return props().ShapeProps },
		geometry: func() (Path, error) {
			p := props()
			var path Path
			if p.Dimensions.Width < 0 || p.Dimensions.Height < 0 {
				return path, fmt.Errorf("negative rectangle dimensions %vx%v", p.Dimensions.Width, p.Dimensions.Height)
			}
			radii, err := cornerRadii(p.Rounded)
			if err != nil {
				return path, err
			}
			if radii == ([4]float64{}) {
				path.Rect(0, 0, p.Dimensions.Width, p.Dimensions.Height)
			} else {
				path.RoundedRect(0, 0, p.Dimensions.Width, p.Dimensions.Height, radii)
			}
			return path, nil
		},
		localBounds: func(Path) Rect {
			d := props().Dimensions
			return Rect{Width: d.Width, Height: d.Height}
		},
	})
}

// Rectangle declares a rectangle.
func Rectangle(props func() RectangleProps) Child {
	return Element(func(ctx Context) (*Token, error) { return NewRectangle(ctx, props) })
}

func cornerRadii(r []float64) ([4]float64, error) {
	for _, v := range r {
		if v < 0 {
			return [4]float64{}, fmt.Errorf("negative corner radius %v", v)
		}
	}
	switch len(r) {
	case 0:
		return [4]float64{}, nil
	case 1:
		return [4]float64{r[0], r[0], r[0], r[0]}, nil
	case 2:
		return [4]float64{r[0], r[1], r[0], r[1]}, nil
	case 3:
		return [4]float64{r[0], r[1], r[2], r[1]}, nil
	case 4:
		return [4]float64{r[0], r[1], r[2], r[3]}, nil
	default:
		return [4]float64{}, fmt.Errorf("want 1 to 4 corner radii, got %d", len(r))
	}
}
