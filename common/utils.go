package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// FiniteVec3 reports whether every component of v is finite.
func FiniteVec3(v mgl32.Vec3) bool {
	return Finite(v[0]) && Finite(v[1]) && Finite(v[2])
}

// FinitePose reports whether both the position and rotation of p are finite and the rotation is non-zero.
func FinitePose(p Pose) bool {
	if !FiniteVec3(p.Position) || !FiniteVec3(p.Rotation.V) || !Finite(p.Rotation.W) {
		return false
	}
	return p.Rotation.Len() > directionEpsilon
}
