package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func TestLocal_ForwardIsNegativeZ(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1, 2, -3}, Local(1, 2, 3))
	assert.Equal(t, AxisForward, Local(0, 0, 1))
}

func TestSafeNormalize(t *testing.T) {
	v, ok := SafeNormalize(mgl32.Vec3{3, 0, 4})
	require.True(t, ok)
	assert.InDelta(t, 1.0, v.Len(), eps)

	_, ok = SafeNormalize(mgl32.Vec3{})
	assert.False(t, ok, "zero vector has no direction")

	nan := float32(math.NaN())
	_, ok = SafeNormalize(mgl32.Vec3{nan, 0, 0})
	assert.False(t, ok, "NaN vector has no direction")
}

func TestClampOrdered_InvertedBounds(t *testing.T) {
	tests := []struct {
		name string
		v    float32
		a, b float32
		want float32
	}{
		{"inside", 1, 0, 2, 1},
		{"below", -1, 0, 2, 0},
		{"above", 3, 0, 2, 2},
		{"inverted below", -5, -0.4, -2.4, -2.4},
		{"inverted above", 5, -0.4, -2.4, -0.4},
		{"zero range", 5, 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClampOrdered(tc.v, tc.a, tc.b))
		})
	}
}

func TestLerp_ClampsFactor(t *testing.T) {
	assert.Equal(t, float32(10), Lerp(10, 20, -1))
	assert.Equal(t, float32(15), Lerp(10, 20, 0.5))
	assert.Equal(t, float32(20), Lerp(10, 20, 7))
}

func TestLookRotation_ForwardAxisMatches(t *testing.T) {
	dirs := []mgl32.Vec3{
		{0, 0, -1},
		{1, 0, 0},
		{0, 0, 1},
		{0.3, -0.2, -0.9},
		{-2, 1, 0.5},
	}
	for _, d := range dirs {
		q, ok := LookRotation(d, AxisUp)
		require.True(t, ok)
		got := q.Rotate(AxisForward)
		want := d.Normalize()
		assert.InDelta(t, 0, got.Sub(want).Len(), eps, "forward %v want %v", got, want)

		right := q.Rotate(AxisRight)
		assert.InDelta(t, 0, right.Y(), eps, "right axis stays horizontal with world up")
	}
}

func TestLookRotation_Degenerate(t *testing.T) {
	q, ok := LookRotation(mgl32.Vec3{}, AxisUp)
	assert.False(t, ok)
	assert.Equal(t, mgl32.QuatIdent(), q)

	q, ok = LookRotation(mgl32.Vec3{0, 5, 0}, AxisUp)
	require.True(t, ok, "parallel to up still has a direction")
	assert.InDelta(t, 0, q.Rotate(AxisForward).Sub(AxisUp).Len(), eps)
}

func TestConeAngle(t *testing.T) {
	c, ok := ConeAngle(mgl32.Vec3{}, mgl32.Vec3{2, 0, 0}, AxisRight)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c, eps)

	c, ok = ConeAngle(mgl32.Vec3{}, mgl32.Vec3{-2, 0, 0}, AxisRight)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c, eps, "absolute cosine")

	c, ok = ConeAngle(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, AxisRight)
	require.True(t, ok)
	assert.InDelta(t, 0.0, c, eps)

	_, ok = ConeAngle(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, AxisRight)
	assert.False(t, ok)
}

func TestAverageCosAngleOfControllers_Bounded(t *testing.T) {
	right := IdentityPose(mgl32.Vec3{0.2, 1.2, -0.3})
	left := IdentityPose(mgl32.Vec3{-0.2, 1.2, -0.3})
	score, ok := AverageCosAngleOfControllers(right, left, mgl32.Vec3{0, 1.6, -5})
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, float32(0))
	assert.LessOrEqual(t, score, mgl32.RadToDeg(1)+eps)
}

func TestYawPitch_RoundTrip(t *testing.T) {
	for _, yp := range [][2]float32{{0, 0}, {0.5, 0}, {-1.2, 0.3}, {2.5, -0.4}} {
		q := YawPitchRotation(yp[0], yp[1])
		yaw, pitch := YawPitch(q)
		assert.InDelta(t, yp[0], yaw, eps)
		assert.InDelta(t, yp[1], pitch, eps)
	}
}

func TestYawPitchRotation_PositiveYawTurnsRight(t *testing.T) {
	f := YawPitchRotation(mgl32.DegToRad(90), 0).Rotate(AxisForward)
	assert.InDelta(t, 0, f.Sub(AxisRight).Len(), eps, "got %v", f)
}

func TestHeadAngularDelta(t *testing.T) {
	prev := YawPitchRotation(0, 0)
	cur := YawPitchRotation(0.1, -0.05)
	d := HeadAngularDelta(prev, cur, 0.1)
	assert.InDelta(t, 1.0, d.X(), 1e-3)
	assert.InDelta(t, -0.5, d.Y(), 1e-3)

	assert.Equal(t, mgl32.Vec2{}, HeadAngularDelta(prev, cur, 0))
}

func TestHeadAngularDelta_WrapsAcrossSeam(t *testing.T) {
	prev := YawPitchRotation(math.Pi-0.05, 0)
	cur := YawPitchRotation(-math.Pi+0.05, 0)
	d := HeadAngularDelta(prev, cur, 1)
	assert.InDelta(t, 0.1, d.X(), 1e-3, "short way round")
}
