package common

import "github.com/go-gl/mathgl/mgl32"

// minSmoothTime bounds the damping time constant away from zero for the spring equations.
const minSmoothTime = 1e-4

// SmoothDamp moves current toward target with a critically damped spring. The velocity is
// carried across frames by the caller. A smoothing time of zero (or less) snaps to target
// and zeroes the velocity; a non-positive deltaTime leaves current unchanged.
//
// The result never passes the target: when a step would overshoot, it lands on the target
// and the velocity is cleared.
//
// Parameters:
//   - current: the value being smoothed
//   - target: the value to converge to
//   - velocity: spring velocity, updated in place
//   - smoothTime: approximate time to reach the target, in seconds
//   - deltaTime: frame delta in seconds
//
// Returns:
//   - mgl32.Vec3: the smoothed value for this frame
func SmoothDamp(current, target mgl32.Vec3, velocity *mgl32.Vec3, smoothTime, deltaTime float32) mgl32.Vec3 {
	if smoothTime <= 0 {
		*velocity = mgl32.Vec3{}
		return target
	}
	if deltaTime <= 0 {
		return current
	}
	smoothTime = max(smoothTime, minSmoothTime)

	omega := 2 / smoothTime
	x := omega * deltaTime
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current.Sub(target)
	temp := velocity.Add(change.Mul(omega)).Mul(deltaTime)
	*velocity = velocity.Sub(temp.Mul(omega)).Mul(decay)
	output := target.Add(change.Add(temp).Mul(decay))

	if target.Sub(current).Dot(output.Sub(target)) > 0 {
		*velocity = mgl32.Vec3{}
		return target
	}
	return output
}
