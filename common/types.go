// package common contains the plain data types and pose math shared by the camera director, its behaviors and
// the tracking adapters. They are not interface-wrapped structs, just plain structs that express tracked body data.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a position plus an orientation in world space.
// Rotation must be a unit quaternion; use IdentityPose rather than the zero value.
type Pose struct {
	// Position is the world-space position.
	Position mgl32.Vec3
	// Rotation is the world-space orientation.
	Rotation mgl32.Quat
}

// NewPose creates a Pose at position facing along rotation.
//
// Parameters:
//   - position: world-space position
//   - rotation: world-space orientation
//
// Returns:
//   - Pose: the pose
func NewPose(position mgl32.Vec3, rotation mgl32.Quat) Pose {
	return Pose{Position: position, Rotation: rotation}
}

// IdentityPose returns an unrotated pose at position.
func IdentityPose(position mgl32.Vec3) Pose {
	return Pose{Position: position, Rotation: mgl32.QuatIdent()}
}

// TransformPoint maps a local-space offset (see Local) into world space.
//
// Parameters:
//   - local: the offset relative to the pose
//
// Returns:
//   - mgl32.Vec3: the world-space point
func (p Pose) TransformPoint(local mgl32.Vec3) mgl32.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(local))
}

// Forward returns the world-space forward axis of the pose.
func (p Pose) Forward() mgl32.Vec3 {
	return p.Rotation.Rotate(AxisForward)
}

// Backward returns the world-space backward axis of the pose.
func (p Pose) Backward() mgl32.Vec3 {
	return p.Forward().Mul(-1)
}

// Right returns the world-space right axis of the pose.
func (p Pose) Right() mgl32.Vec3 {
	return p.Rotation.Rotate(AxisRight)
}

// Up returns the world-space up axis of the pose.
func (p Pose) Up() mgl32.Vec3 {
	return p.Rotation.Rotate(AxisUp)
}

// PoseSample is the per-frame snapshot of the tracked body supplied by a tracking provider.
// The director and behaviors only read it.
type PoseSample struct {
	// Head is the tracked head pose.
	Head Pose
	// Waist is the tracked waist pose.
	Waist Pose
	// LeftHand is the left controller pose.
	LeftHand Pose
	// RightHand is the right controller pose.
	RightHand Pose
	// LeftEye is the left eye position.
	LeftEye mgl32.Vec3
	// RightEye is the right eye position.
	RightEye mgl32.Vec3
	// HeadAngularDelta is the (horizontal, vertical) angular velocity of the head since the last frame,
	// in radians per second. Positive horizontal means turning right, positive vertical means looking up.
	HeadAngularDelta mgl32.Vec2
}

// HandAverage returns the midpoint between both controllers.
func (s PoseSample) HandAverage() mgl32.Vec3 {
	return s.LeftHand.Position.Add(s.RightHand.Position).Mul(0.5)
}

// HandDistance returns the distance between both controllers.
func (s PoseSample) HandDistance() float32 {
	return s.RightHand.Position.Sub(s.LeftHand.Position).Len()
}

// Hands returns the dominant and non-dominant controller poses.
//
// Parameters:
//   - rightDominant: true when the right hand is dominant
//
// Returns:
//   - dominant: the dominant controller
//   - nonDominant: the other controller
func (s PoseSample) Hands(rightDominant bool) (dominant, nonDominant Pose) {
	if rightDominant {
		return s.RightHand, s.LeftHand
	}
	return s.LeftHand, s.RightHand
}

// HandDirection returns the unit direction from the dominant to the non-dominant controller.
// It reports false when the controllers coincide.
func (s PoseSample) HandDirection(rightDominant bool) (mgl32.Vec3, bool) {
	dominant, nonDominant := s.Hands(rightDominant)
	return SafeNormalize(nonDominant.Position.Sub(dominant.Position))
}

// DominantEye returns the position of the dominant eye.
func (s PoseSample) DominantEye(rightEye bool) mgl32.Vec3 {
	if rightEye {
		return s.RightEye
	}
	return s.LeftEye
}

// HeadForwardPoint returns a reference point ahead of the head.
//
// Parameters:
//   - distance: how far ahead of the head
//   - vertical: vertical offset in head space
//
// Returns:
//   - mgl32.Vec3: the world-space point
func (s PoseSample) HeadForwardPoint(distance, vertical float32) mgl32.Vec3 {
	return s.Head.TransformPoint(Local(0, vertical, distance))
}

// HeadBackwardPoint returns a reference point behind the head.
//
// Parameters:
//   - distance: how far behind the head
//   - vertical: vertical offset in head space
//
// Returns:
//   - mgl32.Vec3: the world-space point
func (s PoseSample) HeadBackwardPoint(distance, vertical float32) mgl32.Vec3 {
	return s.Head.TransformPoint(Local(0, vertical, -distance))
}
