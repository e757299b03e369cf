package tweenguide

import "math"

// Vec2 represents a 2D screen-space point or direction vector.
type Vec2 struct {
	X, Y float64
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Length returns the length (magnitude) of the vector.
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to the zero vector.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Lerp performs linear interpolation between two points.
// t=0 returns v, t=1 returns w.
func (v Vec2) Lerp(w Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (w.X-v.X)*t, Y: v.Y + (w.Y-v.Y)*t}
}

// Vec3 represents a 3D world-space position.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the length (magnitude) of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Affine represents a 3D affine transformation as a 3x4 matrix in
// row-major order:
//
//	| A  B  C  Tx |
//	| D  E  F  Ty |
//	| G  H  I  Tz |
//
// This is the shape of a drawable object's local-to-world transform.
type Affine struct {
	A, B, C, Tx float64
	D, E, F, Ty float64
	G, H, I, Tz float64
}

// IdentityAffine returns the identity transformation.
func IdentityAffine() Affine {
	return Affine{
		A: 1, E: 1, I: 1,
	}
}

// TranslateAffine creates a translation transform.
func TranslateAffine(x, y, z float64) Affine {
	m := IdentityAffine()
	m.Tx, m.Ty, m.Tz = x, y, z
	return m
}

// ScaleAffine creates a uniform scaling transform.
func ScaleAffine(s float64) Affine {
	return Affine{A: s, E: s, I: s}
}

// RotateZAffine creates a rotation around the Z axis (angle in radians).
func RotateZAffine(angle float64) Affine {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	m := IdentityAffine()
	m.A, m.B = cos, -sin
	m.D, m.E = sin, cos
	return m
}

// Apply transforms a world-space point by the matrix.
func (m Affine) Apply(p Vec3) Vec3 {
	return Vec3{
		X: m.A*p.X + m.B*p.Y + m.C*p.Z + m.Tx,
		Y: m.D*p.X + m.E*p.Y + m.F*p.Z + m.Ty,
		Z: m.G*p.X + m.H*p.Y + m.I*p.Z + m.Tz,
	}
}

// Mul composes two transforms; applying the result equals applying n
// first and then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A:  m.A*n.A + m.B*n.D + m.C*n.G,
		B:  m.A*n.B + m.B*n.E + m.C*n.H,
		C:  m.A*n.C + m.B*n.F + m.C*n.I,
		Tx: m.A*n.Tx + m.B*n.Ty + m.C*n.Tz + m.Tx,
		D:  m.D*n.A + m.E*n.D + m.F*n.G,
		E:  m.D*n.B + m.E*n.E + m.F*n.H,
		F:  m.D*n.C + m.E*n.F + m.F*n.I,
		Ty: m.D*n.Tx + m.E*n.Ty + m.F*n.Tz + m.Ty,
		G:  m.G*n.A + m.H*n.D + m.I*n.G,
		H:  m.G*n.B + m.H*n.E + m.I*n.H,
		I:  m.G*n.C + m.H*n.F + m.I*n.I,
		Tz: m.G*n.Tx + m.H*n.Ty + m.I*n.Tz + m.Tz,
	}
}
