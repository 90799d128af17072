package canopy

// Shadow describes a drop shadow cast by fills and strokes.
type Shadow struct {
	Blur   float64
	Color  Color
	Offset Vec2
}

// Style is a partial shape style. Nil fields inherit from the layer below
// when merged; a nil LineDash inherits while an empty non-nil slice means a
// solid line.
type Style struct {
	Position       *Vec2
	Rotation       *float64 // radians
	SkewX          *float64 // radians
	SkewY          *float64 // radians
	Fill           *Color
	Stroke         *Color
	LineWidth      *float64
	LineCap        *LineCap
	LineJoin       *LineJoin
	LineDash       []float64
	LineDashOffset *float64
	MiterLimit     *float64
	Opacity        *float64
	Composite      *Composite
	Shadow         *Shadow
	PointerEvents  *bool
	Cursor         *Cursor
}

// Of returns a pointer to v. It keeps partial style literals short:
//
//	canopy.Style{Fill: canopy.Of(canopy.ColorWhite), LineWidth: canopy.Of(4.0)}
func Of[T any](v T) *T {
	return &v
}

// ResolvedStyle is a fully populated style. Every field holds a concrete
// value, so painting never has to guess.
type ResolvedStyle struct {
	Position       Vec2
	Rotation       float64
	SkewX          float64
	SkewY          float64
	Fill           Color
	Stroke         Color
	LineWidth      float64
	LineCap        LineCap
	LineJoin       LineJoin
	LineDash       []float64
	LineDashOffset float64
	MiterLimit     float64
	Opacity        float64
	Composite      Composite
	Shadow         *Shadow
	PointerEvents  bool
	Cursor         Cursor
}

// DefaultStyle returns the style every shape starts from.
func DefaultStyle() ResolvedStyle {
	return ResolvedStyle{
		Stroke:        ColorBlack,
		Fill:          ColorTransparent,
		LineWidth:     2,
		LineCap:       LineCapButt,
		LineJoin:      LineJoinRound,
		MiterLimit:    10,
		Opacity:       1,
		PointerEvents: true,
		Cursor:        CursorPointer,
	}
}

// BoundsStyle returns the style of debug bounds overlays: a thin grey stroke
// painted behind existing content.
func BoundsStyle() ResolvedStyle {
	st := DefaultStyle()
	st.Stroke = ColorGrey
	st.LineWidth = 0.5
	st.Composite = CompositeDestinationOver
	return st
}

// Merge returns base with every non-nil field of over applied.
func Merge(base ResolvedStyle, over Style) ResolvedStyle {
	if over.Position != nil {
		base.Position = *over.Position
	}
	if over.Rotation != nil {
		base.Rotation = *over.Rotation
	}
	if over.SkewX != nil {
		base.SkewX = *over.SkewX
	}
	if over.SkewY != nil {
		base.SkewY = *over.SkewY
	}
	if over.Fill != nil {
		base.Fill = *over.Fill
	}
	if over.Stroke != nil {
		base.Stroke = *over.Stroke
	}
	if over.LineWidth != nil {
		base.LineWidth = *over.LineWidth
	}
	if over.LineCap != nil {
		base.LineCap = *over.LineCap
	}
	if over.LineJoin != nil {
		base.LineJoin = *over.LineJoin
	}
	if over.LineDash != nil {
		base.LineDash = over.LineDash
	}
	if over.LineDashOffset != nil {
		base.LineDashOffset = *over.LineDashOffset
	}
	if over.MiterLimit != nil {
		base.MiterLimit = *over.MiterLimit
	}
	if over.Opacity != nil {
		base.Opacity = *over.Opacity
	}
	if over.Composite != nil {
		base.Composite = *over.Composite
	}
	if over.Shadow != nil {
		sh := *over.Shadow
		base.Shadow = &sh
	}
	if over.PointerEvents != nil {
		base.PointerEvents = *over.PointerEvents
	}
	if over.Cursor != nil {
		base.Cursor = *over.Cursor
	}
	return base
}

// --- Enum names ---

var lineCapNames = [...]string{
	LineCapButt:   "butt",
	LineCapRound:  "round",
	LineCapSquare: "square",
}

// String returns the canvas name of the cap.
func (c LineCap) String() string {
	if int(c) < len(lineCapNames) {
		return lineCapNames[c]
	}
	return "unknown"
}

// UnmarshalText parses a canvas line cap name.
func (c *LineCap) UnmarshalText(text []byte) error {
	v, err := parseEnum(lineCapNames[:], string(text), "line cap")
	if err != nil {
		return err
	}
	*c = LineCap(v)
	return nil
}

var lineJoinNames = [...]string{
	LineJoinRound: "round",
	LineJoinBevel: "bevel",
	LineJoinMiter: "miter",
}

// String returns the canvas name of the join.
func (j LineJoin) String() string {
	if int(j) < len(lineJoinNames) {
		return lineJoinNames[j]
	}
	return "unknown"
}

// UnmarshalText parses a canvas line join name.
func (j *LineJoin) UnmarshalText(text []byte) error {
	v, err := parseEnum(lineJoinNames[:], string(text), "line join")
	if err != nil {
		return err
	}
	*j = LineJoin(v)
	return nil
}
