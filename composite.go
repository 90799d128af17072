package canopy

import "github.com/hajimehoshi/ebiten/v2"

// Composite selects a compositing operation, named after the canvas
// globalCompositeOperation values it mirrors.
type Composite uint8

const (
	CompositeInherit         Composite = iota // keep whatever the enclosing scope set
	CompositeSourceOver                       // standard alpha blending
	CompositeSourceIn                         // source where destination is opaque
	CompositeSourceOut                        // source where destination is transparent
	CompositeSourceAtop                       // source over destination, only inside destination
	CompositeDestinationOver                  // draw behind existing content
	CompositeDestinationIn                    // keep destination where source is opaque
	CompositeDestinationOut                   // punch transparent holes
	CompositeDestinationAtop                  // destination over source, only inside source
	CompositeLighter                          // additive
	CompositeCopy                             // replace destination
	CompositeXor                              // exclusive or of source and destination
	CompositeMultiply                         // source * destination; only darkens
	CompositeScreen                           // 1 - (1-src)*(1-dst); only brightens
)

var compositeNames = [...]string{
	CompositeInherit:         "inherit",
	CompositeSourceOver:      "source-over",
	CompositeSourceIn:        "source-in",
	CompositeSourceOut:       "source-out",
	CompositeSourceAtop:      "source-atop",
	CompositeDestinationOver: "destination-over",
	CompositeDestinationIn:   "destination-in",
	CompositeDestinationOut:  "destination-out",
	CompositeDestinationAtop: "destination-atop",
	CompositeLighter:         "lighter",
	CompositeCopy:            "copy",
	CompositeXor:             "xor",
	CompositeMultiply:        "multiply",
	CompositeScreen:          "screen",
}

// String returns the canvas name of the operation.
func (c Composite) String() string {
	if int(c) < len(compositeNames) {
		return compositeNames[c]
	}
	return "unknown"
}

// UnmarshalText parses a canvas composite operation name.
func (c *Composite) UnmarshalText(text []byte) error {
	v, err := parseEnum(compositeNames[:], string(text), "composite operation")
	if err != nil {
		return err
	}
	*c = Composite(v)
	return nil
}

// EbitenBlend returns the ebiten.Blend value corresponding to this operation.
// CompositeInherit maps to source-over.
func (c Composite) EbitenBlend() ebiten.Blend {
	switch c {
	case CompositeSourceIn:
		return ebiten.BlendSourceIn
	case CompositeSourceOut:
		return ebiten.BlendSourceOut
	case CompositeSourceAtop:
		return ebiten.BlendSourceAtop
	case CompositeDestinationOver:
		return ebiten.BlendDestinationOver
	case CompositeDestinationIn:
		return ebiten.BlendDestinationIn
	case CompositeDestinationOut:
		return ebiten.BlendDestinationOut
	case CompositeDestinationAtop:
		return ebiten.BlendDestinationAtop
	case CompositeLighter:
		return ebiten.BlendLighter
	case CompositeCopy:
		return ebiten.BlendCopy
	case CompositeXor:
		return ebiten.BlendXor
	case CompositeMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case CompositeScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// blendFactors returns the Porter-Duff source and destination factors for
// the given source and destination alphas. Multiply and screen use the same
// factor approximation as EbitenBlend and are special-cased in blendPremul.
func (c Composite) blendFactors(sa, da float64) (fs, fd float64) {
	switch c {
	case CompositeSourceIn:
		return da, 0
	case CompositeSourceOut:
		return 1 - da, 0
	case CompositeSourceAtop:
		return da, 1 - sa
	case CompositeDestinationOver:
		return 1 - da, 1
	case CompositeDestinationIn:
		return 0, sa
	case CompositeDestinationOut:
		return 0, 1 - sa
	case CompositeDestinationAtop:
		return 1 - da, sa
	case CompositeLighter:
		return 1, 1
	case CompositeCopy:
		return 1, 0
	case CompositeXor:
		return 1 - da, 1 - sa
	default:
		return 1, 1 - sa
	}
}

// blendPremul composites one premultiplied source pixel over one
// premultiplied destination pixel.
func (c Composite) blendPremul(src, dst [4]float64) [4]float64 {
	sa, da := src[3], dst[3]
	var out [4]float64
	switch c {
	case CompositeMultiply:
		for i := 0; i < 3; i++ {
			out[i] = src[i]*dst[i] + dst[i]*(1-sa)
		}
		out[3] = sa*da + da*(1-sa)
	case CompositeScreen:
		for i := 0; i < 3; i++ {
			out[i] = src[i] + dst[i]*(1-src[i])
		}
		out[3] = sa + da*(1-sa)
	default:
		fs, fd := c.blendFactors(sa, da)
		for i := 0; i < 4; i++ {
			out[i] = src[i]*fs + dst[i]*fd
		}
	}
	for i := range out {
		out[i] = clamp01(out[i])
	}
	return out
}
