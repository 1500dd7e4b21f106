package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// directionEpsilon is the length below which a vector is treated as carrying no direction.
const directionEpsilon = 1e-6

var (
	// AxisRight is the local lateral axis (+X).
	AxisRight = mgl32.Vec3{1, 0, 0}
	// AxisUp is the local and world vertical axis (+Y).
	AxisUp = mgl32.Vec3{0, 1, 0}
	// AxisForward is the local forward axis (-Z, OpenGL convention).
	AxisForward = mgl32.Vec3{0, 0, -1}
)

// Local builds a local-space offset from lateral, vertical and forward components.
// Every offset in the camera behaviors is expressed through Local so that a positive
// forward component always points where the tracked pose is facing.
//
// Parameters:
//   - right: lateral component (positive = right)
//   - up: vertical component (positive = up)
//   - forward: forward component (positive = ahead of the pose)
//
// Returns:
//   - mgl32.Vec3: the offset in local coordinates
func Local(right, up, forward float32) mgl32.Vec3 {
	return mgl32.Vec3{right, up, -forward}
}

// SafeNormalize returns the unit vector of v, or false when v is too short (or not finite)
// to carry a direction. Callers treat a false result as "no signal" for the frame.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - mgl32.Vec3: the normalized vector, zero when not ok
//   - bool: true if v had a usable direction
func SafeNormalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	if !FiniteVec3(v) {
		return mgl32.Vec3{}, false
	}
	l := v.Len()
	if l < directionEpsilon {
		return mgl32.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// ClampOrdered clamps v into the range spanned by a and b regardless of their order.
// Bounds derived from a degenerate (zero or negative) head height may arrive inverted;
// the result still lies between them.
//
// Parameters:
//   - v: the value to clamp
//   - a, b: the range bounds in any order
//
// Returns:
//   - float32: v limited to [min(a,b), max(a,b)]
func ClampOrdered(v, a, b float32) float32 {
	if a > b {
		a, b = b, a
	}
	return mgl32.Clamp(v, a, b)
}

// Clamp01 limits t to the unit interval.
func Clamp01(t float32) float32 {
	return mgl32.Clamp(t, 0, 1)
}

// Lerp linearly interpolates from a to b by t, with t clamped to [0, 1].
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*Clamp01(t)
}

// LookRotation builds the orientation whose forward axis points along forward and whose
// up axis is as close to up as possible. When forward is parallel to up the shortest-arc
// rotation onto forward is used instead.
//
// Parameters:
//   - forward: desired forward direction (need not be normalized)
//   - up: reference up direction
//
// Returns:
//   - mgl32.Quat: the orientation, identity when not ok
//   - bool: false if forward has no direction
func LookRotation(forward, up mgl32.Vec3) (mgl32.Quat, bool) {
	f, ok := SafeNormalize(forward)
	if !ok {
		return mgl32.QuatIdent(), false
	}
	back := f.Mul(-1)

	right, ok := SafeNormalize(up.Cross(back))
	if !ok {
		return mgl32.QuatBetweenVectors(AxisForward, f).Normalize(), true
	}
	trueUp := back.Cross(right)

	m := mgl32.Mat3FromCols(right, trueUp, back).Mat4()
	return mgl32.Mat4ToQuat(m).Normalize(), true
}

// ConeAngle returns the absolute cosine between the direction source→target and axis.
// Despite the name it is a cosine, not an angle; callers scale it to degrees for thresholds.
//
// Parameters:
//   - source: start of the measured direction
//   - target: end of the measured direction
//   - axis: the reference axis (expected to be unit length)
//
// Returns:
//   - float32: |cos| in [0, 1]
//   - bool: false if source and target coincide
func ConeAngle(source, target, axis mgl32.Vec3) (float32, bool) {
	dir, ok := SafeNormalize(target.Sub(source))
	if !ok {
		return 0, false
	}
	return mgl32.Abs(dir.Dot(axis)), true
}

// AverageCosAngleOfControllers scores how well both controllers point at direction, scaled
// by the radians-to-degrees factor. The right controller is measured along its forward axis
// and the left along its backward axis. The result stays within [0, 57.3].
//
// Parameters:
//   - rightHand: right controller pose
//   - leftHand: left controller pose
//   - direction: the reference point both controllers are measured against
//
// Returns:
//   - float32: the scaled average cosine
//   - bool: false if either controller sits exactly on direction
func AverageCosAngleOfControllers(rightHand, leftHand Pose, direction mgl32.Vec3) (float32, bool) {
	rightAngle, ok := ConeAngle(rightHand.Position, direction, rightHand.Forward())
	if !ok {
		return 0, false
	}
	leftAngle, ok := ConeAngle(leftHand.Position, direction, leftHand.Backward())
	if !ok {
		return 0, false
	}
	return mgl32.RadToDeg((leftAngle + rightAngle) / 2), true
}

// YawPitch returns the heading and elevation of the forward axis of q in radians.
// Yaw is positive when turned toward +X (right), pitch is positive when looking up.
func YawPitch(q mgl32.Quat) (yaw, pitch float32) {
	f := q.Rotate(AxisForward)
	yaw = float32(math.Atan2(float64(f.X()), float64(-f.Z())))
	pitch = float32(math.Asin(float64(mgl32.Clamp(f.Y(), -1, 1))))
	return yaw, pitch
}

// HeadAngularDelta derives the horizontal and vertical angular velocity of the head between
// two frames. The yaw difference is wrapped into [-π, π] so a turn across the ±π seam is
// reported as the short way round.
//
// Parameters:
//   - previous: head orientation on the previous frame
//   - current: head orientation on this frame
//   - deltaTime: seconds between the two frames
//
// Returns:
//   - mgl32.Vec2: (horizontal, vertical) in radians per second, zero when deltaTime <= 0
func HeadAngularDelta(previous, current mgl32.Quat, deltaTime float32) mgl32.Vec2 {
	if deltaTime <= 0 {
		return mgl32.Vec2{}
	}
	prevYaw, prevPitch := YawPitch(previous)
	yaw, pitch := YawPitch(current)

	dYaw := float64(yaw - prevYaw)
	for dYaw > math.Pi {
		dYaw -= 2 * math.Pi
	}
	for dYaw < -math.Pi {
		dYaw += 2 * math.Pi
	}
	return mgl32.Vec2{float32(dYaw) / deltaTime, (pitch - prevPitch) / deltaTime}
}

// YawPitchRotation composes a head-style orientation from yaw (positive = right) and pitch
// (positive = up), both in radians.
func YawPitchRotation(yaw, pitch float32) mgl32.Quat {
	yawQ := mgl32.QuatRotate(-yaw, AxisUp)
	pitchQ := mgl32.QuatRotate(pitch, AxisRight)
	return yawQ.Mul(pitchQ).Normalize()
}
