package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSmoothDamp_ConvergesWithoutOvershoot(t *testing.T) {
	target := mgl32.Vec3{4, -2, 10}
	current := mgl32.Vec3{}
	var vel mgl32.Vec3

	startDist := target.Sub(current).Len()
	prevDist := startDist
	for i := 0; i < 600; i++ {
		current = SmoothDamp(current, target, &vel, 0.3, 1.0/90)
		dist := target.Sub(current).Len()
		assert.LessOrEqual(t, dist, prevDist+1e-5, "frame %d moved away from target", i)
		// the step never crosses the target along the approach direction
		assert.GreaterOrEqual(t, target.Sub(current).Dot(target), float32(-1e-4), "frame %d overshot", i)
		prevDist = dist
	}
	assert.Less(t, prevDist, float32(1e-3))
}

func TestSmoothDamp_VariableFrameRate(t *testing.T) {
	target := mgl32.Vec3{1, 0, 0}
	a, b := mgl32.Vec3{}, mgl32.Vec3{}
	var va, vb mgl32.Vec3

	for i := 0; i < 60; i++ {
		a = SmoothDamp(a, target, &va, 0.5, 1.0/60)
	}
	for i := 0; i < 120; i++ {
		b = SmoothDamp(b, target, &vb, 0.5, 1.0/120)
	}
	assert.InDelta(t, a.X(), b.X(), 0.02, "one second of smoothing lands in the same place at 60Hz and 120Hz")
}

func TestSmoothDamp_ZeroSmoothTimeSnaps(t *testing.T) {
	vel := mgl32.Vec3{3, 3, 3}
	out := SmoothDamp(mgl32.Vec3{}, mgl32.Vec3{1, 2, 3}, &vel, 0, 1.0/60)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, out)
	assert.Equal(t, mgl32.Vec3{}, vel)
}

func TestSmoothDamp_ZeroDeltaHolds(t *testing.T) {
	vel := mgl32.Vec3{1, 0, 0}
	out := SmoothDamp(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{}, &vel, 0.3, 0)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, out)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, vel)
}

func TestSmoothDamp_AtTargetStaysExact(t *testing.T) {
	var vel mgl32.Vec3
	target := mgl32.Vec3{0.123, 1.618, -2.5}
	out := SmoothDamp(target, target, &vel, 0.2, 1.0/72)
	assert.Equal(t, target, out)
}
