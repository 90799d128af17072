package canopy

import "image"

// ImageProps configures an image token.
type ImageProps struct {
	ShapeProps
	Image image.Image
	// Dimensions defaults to 100×100 when zero.
	Dimensions Dimensions
	// Background, if not transparent, fills the image rectangle before the
	// image is drawn.
	Background Color
}

var defaultImageDimensions = Dimensions{Width: 100, Height: 100}

// NewImage builds an image token. The image is drawn through the shape
// matrix, scaled to its dimensions. A nil image paints nothing but still
// hit tests as its rectangle.
func NewImage(ctx Context, props func() ImageProps) (*Token, error) {
	dims := func() Dimensions {
		d := props().Dimensions
		if d == (Dimensions{}) {
			return defaultImageDimensions
		}
		return d
	}
	return newShape(ctx, shapeDef{
		kind:     TokenImage,
		kindName: "image",
		props:    func() ShapeProps { return props().ShapeProps },
		geometry: func() (Path, error) {
			d := dims()
			var path Path
			path.Rect(0, 0, d.Width, d.Height)
			return path, nil
		},
		paint: func(s Surface, sh *Shape) {
			p := props()
			if !p.Background.IsTransparent() {
				s.Fill(sh.Path(), p.Background)
			}
			if p.Image == nil {
				return
			}
			s.DrawImage(p.Image, sh.Matrix(), dims())
		},
	})
}

// Image declares an image.
func Image(props func() ImageProps) Child {
	return Element(func(ctx Context) (*Token, error) { return NewImage(ctx, props) })
}
