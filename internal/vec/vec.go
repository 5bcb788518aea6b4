// Package vec provides the float32 vector types the kernel operates on.
package vec

import "math"

// Float3 is a three-component vector.
type Float3 [3]float32

// Float4 is a four-component vector, the element type of the position,
// velocity, and color buffers. W carries mass for positions.
type Float4 [4]float32

// Float4Size is the size of one buffer element in bytes.
const Float4Size = 16

func (a Float3) Add(b Float3) Float3 { return Float3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Float3) Sub(b Float3) Float3 { return Float3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Float3) Scale(s float32) Float3 {
	return Float3{a[0] * s, a[1] * s, a[2] * s}
}

func (a Float3) Dot(b Float3) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a Float3) Cross(b Float3) Float3 {
	return Float3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a Float3) Length() float32 {
	return float32(math.Sqrt(float64(a.Dot(a))))
}

// Normalize returns a unit vector in the direction of a, or a unchanged if it
// has zero length.
func (a Float3) Normalize() Float3 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// XYZ drops the fourth component.
func (a Float4) XYZ() Float3 { return Float3{a[0], a[1], a[2]} }

// Point extends a with w.
func Point(a Float3, w float32) Float4 { return Float4{a[0], a[1], a[2], w} }

// IsFinite reports whether every component is neither NaN nor infinite.
func (a Float4) IsFinite() bool {
	for _, v := range a {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
