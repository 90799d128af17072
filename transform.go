package canopy

import "math"

// Matrix is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// IdentityMatrix is the identity affine matrix.
var IdentityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// TranslateMatrix returns a pure translation.
func TranslateMatrix(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// RotateMatrix returns a rotation by angle radians (clockwise on screen,
// since Y grows downward).
func RotateMatrix(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// SkewXMatrix returns a horizontal skew by angle radians.
func SkewXMatrix(angle float64) Matrix {
	return Matrix{1, 0, math.Tan(angle), 1, 0, 0}
}

// SkewYMatrix returns a vertical skew by angle radians.
func SkewYMatrix(angle float64) Matrix {
	return Matrix{1, math.Tan(angle), 0, 1, 0, 0}
}

// Multiply returns m * o: o is applied to points first, then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Translate returns m with a translation applied before it.
func (m Matrix) Translate(tx, ty float64) Matrix {
	return m.Multiply(TranslateMatrix(tx, ty))
}

// Invert computes the inverse of the matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func (m Matrix) Invert() Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityMatrix
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply maps a point through the matrix.
func (m Matrix) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == IdentityMatrix
}

// ComputeMatrix builds the local matrix of a shape from its resolved style.
//
// Composition: skew-X, then skew-Y, then a translation that cancels the offset
// the skew introduces at the nominal position, then the position itself, and
// rotation last. Rotation is kept out of the skew correction so rotating does
// not bring the skew offset back.
func ComputeMatrix(st ResolvedStyle) Matrix {
	return composeMatrix(st.Position, st.Rotation, st.SkewX, st.SkewY)
}

func composeMatrix(pos Vec2, rotation, skewX, skewY float64) Matrix {
	m := IdentityMatrix
	if skewX != 0 {
		m = m.Multiply(SkewXMatrix(skewX))
	}
	if skewY != 0 {
		m = m.Multiply(SkewYMatrix(skewY))
	}
	// Translate by the preimage of pos so the skewed local origin lands on it.
	pre := m.Invert().Apply(pos)
	m = m.Translate(pre.X, pre.Y)
	if rotation != 0 {
		m = m.Multiply(RotateMatrix(rotation))
	}
	return m
}

// TransformPath maps every point of p through m. Paint and hit testing both
// consume the result, so visual and interactive bounds agree.
func TransformPath(p Path, m Matrix) Path {
	return p.Transform(m)
}
