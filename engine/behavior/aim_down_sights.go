package behavior

import (
	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// closeHandsFactor scales the minimum two-handed distance below which vertical hand wobble is damped.
	closeHandsFactor = 1.2
	// sightsReach scales the cached look direction.
	sightsReach = 4
)

// AimDownSights puts the camera at the dominant eye and faces it down the line from the dominant
// to the non-dominant hand, like looking along a rifle.
type AimDownSights struct {
	base
	lookDirection mgl32.Vec3
	hasDirection  bool
}

var _ Behavior = &AimDownSights{}

// NewAimDownSights creates an AimDownSights behavior. It hides the avatar head.
//
// Parameters:
//   - cfg: the initial configuration
//   - options: functional options
//
// Returns:
//   - *AimDownSights: the behavior
func NewAimDownSights(cfg config.Configuration, options ...BehaviorBuilderOption) *AimDownSights {
	a := &AimDownSights{
		base: newBase(KindAimDownSights, append([]BehaviorBuilderOption{WithRemovesHead(true)}, options...)),
	}
	a.SetConfiguration(cfg)
	return a
}

func (a *AimDownSights) SetConfiguration(cfg config.Configuration) {
	a.cfg = cfg
	a.fov = cfg.CameraGunFov
	a.offset = common.Local(0, -cfg.CameraGunEyeVerticalOffset, 0)
	a.smoothingTime = cfg.CameraGunSmoothing
}

// Apply caches the hand direction for Rotation and targets the dominant eye. The direction from the
// previous frame is kept when the hands coincide.
func (a *AimDownSights) Apply(sample common.PoseSample, _ timer.Timers, _ bool) (position, lookAt mgl32.Vec3) {
	if dir, ok := sample.HandDirection(a.cfg.RightHandDominant); ok {
		if sample.HandDistance() < a.cfg.CameraGunMinTwoHandedDistance*closeHandsFactor {
			dir[1] *= 0.5
			dir, ok = common.SafeNormalize(dir)
		}
		if ok {
			a.lookDirection = dir.Mul(sightsReach)
			a.hasDirection = true
		}
	}

	position = sample.DominantEye(a.cfg.RightEyeDominant)
	ahead := sample.Head.Forward()
	if a.hasDirection {
		ahead = a.lookDirection.Mul(1.0 / sightsReach)
	}
	lookAt = position.Add(a.offset).Add(ahead)
	return position, lookAt
}

// Rotation faces along the cached hand direction, rolled with the head.
func (a *AimDownSights) Rotation(_ mgl32.Vec3, sample common.PoseSample) (mgl32.Quat, bool) {
	if !a.hasDirection {
		return mgl32.QuatIdent(), false
	}
	return common.LookRotation(a.lookDirection, sample.Head.Up())
}

// LookDirection returns the cached, scaled hand direction and whether one has been observed yet.
func (a *AimDownSights) LookDirection() (mgl32.Vec3, bool) {
	return a.lookDirection, a.hasDirection
}
