package behavior

import (
	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// firstPersonSmoothing is the smoothing time of the first person camera outside of iron sights.
	firstPersonSmoothing = 0.2
	// sightsHandReach projects the hand average along the hand direction for the iron sights aim score.
	sightsHandReach = 1.2
	// sightsAlignFactor tightens the aim trigger for iron sights relative to the mode classifier.
	sightsAlignFactor = 0.9
)

// FirstPersonWithSights is the first person camera used by the director. On top of the plain first person
// view it watches for a two-handed aiming posture every frame and ramps a blend toward an embedded
// AimDownSights camera while the posture holds.
type FirstPersonWithSights struct {
	FirstPerson
	sights *AimDownSights

	blend      float32
	ironSights bool
}

var _ Behavior = &FirstPersonWithSights{}

// NewFirstPersonWithSights creates the composite first person camera. It hides the avatar head and has
// a zero offset unless options say otherwise.
//
// Parameters:
//   - cfg: the initial configuration
//   - options: functional options applied to the first person part
//
// Returns:
//   - *FirstPersonWithSights: the behavior
func NewFirstPersonWithSights(cfg config.Configuration, options ...BehaviorBuilderOption) *FirstPersonWithSights {
	defaults := []BehaviorBuilderOption{WithSmoothingTime(firstPersonSmoothing), WithRemovesHead(true)}
	f := &FirstPersonWithSights{
		FirstPerson: *NewFirstPerson(cfg, append(defaults, options...)...),
		sights:      NewAimDownSights(cfg),
	}
	return f
}

func (f *FirstPersonWithSights) SetConfiguration(cfg config.Configuration) {
	f.FirstPerson.SetConfiguration(cfg)
	f.sights.SetConfiguration(cfg)
}

// Apply delegates to the sights camera while the iron sights posture holds and to the first person
// camera otherwise, ramping the blend up or down by the frame delta.
func (f *FirstPersonWithSights) Apply(sample common.PoseSample, timers timer.Timers, placed bool) (position, lookAt mgl32.Vec3) {
	dt := timers.DeltaTime()
	if !(dt > 0) {
		dt = 0
	}
	rate := f.cfg.CameraGunSmoothing

	if f.SightsTriggered(sample) {
		f.ironSights = true
		position, lookAt = f.sights.Apply(sample, timers, placed)
		if rate > 0 {
			f.blend += rate * dt
		} else {
			f.blend = 1
		}
	} else {
		f.ironSights = false
		// outside the sights the head alone places the camera, without the height clamp or
		// waist averaging of the plain first person camera
		position = sample.Head.TransformPoint(f.offset)
		if f.cfg.UseEyePosition {
			position = sample.DominantEye(f.cfg.RightEyeDominant)
		}
		lookAt = sample.Head.TransformPoint(f.lookAtOffset)
		if rate > 0 {
			f.blend -= dt / rate
		} else {
			f.blend = 0
		}
	}

	f.blend = common.Clamp01(f.blend)
	return position, lookAt
}

// SightsTriggered reports whether the body is in the iron sights posture: head steady, both hands
// on the weapon, hands close to the head and the hand line pointing away from the head.
//
// Parameters:
//   - sample: the tracked body
//
// Returns:
//   - bool: true when every condition holds; false on any degenerate direction
func (f *FirstPersonWithSights) SightsTriggered(sample common.PoseSample) bool {
	cfg := f.cfg
	if mgl32.Abs(sample.HeadAngularDelta.X()) >= cfg.ControlMovementThreshold {
		return false
	}

	handDistance := sample.HandDistance()
	if handDistance <= cfg.CameraGunMinTwoHandedDistance || handDistance >= cfg.CameraGunMaxTwoHandedDistance {
		return false
	}

	handAverage := sample.HandAverage()
	if handAverage.Sub(sample.Head.Position).Len() >= cfg.CameraGunHeadDistanceTrigger {
		return false
	}

	direction, ok := sample.HandDirection(cfg.RightHandDominant)
	if !ok {
		return false
	}
	right, ok := common.SafeNormalize(sample.Head.Right())
	if !ok {
		return false
	}
	behind := sample.HeadBackwardPoint(cfg.ForwardHorizontalOffset, cfg.ForwardVerticalOffset)
	score, ok := common.ConeAngle(behind, handAverage.Add(direction.Mul(sightsHandReach)), right)
	if !ok {
		return false
	}
	return mgl32.RadToDeg(score) < cfg.CameraGunHeadAlignAngleTrigger*sightsAlignFactor
}

func (f *FirstPersonWithSights) FieldOfView() float32 {
	if f.cfg.CameraFovLerp {
		return common.Lerp(f.fov, f.sights.FieldOfView(), f.blend)
	}
	if f.ironSights {
		return f.sights.FieldOfView()
	}
	return f.fov
}

func (f *FirstPersonWithSights) SmoothingTime() float32 {
	if f.cfg.CameraSmoothingLerp {
		return common.Lerp(f.smoothingTime, f.sights.SmoothingTime(), f.blend)
	}
	if f.ironSights {
		return f.sights.SmoothingTime()
	}
	return f.smoothingTime
}

// Rotation interpolates from the head orientation toward the sights orientation by the blend.
func (f *FirstPersonWithSights) Rotation(lookDirection mgl32.Vec3, sample common.PoseSample) (mgl32.Quat, bool) {
	head, headOK := common.LookRotation(sample.Head.Forward(), sample.Head.Up())
	sights, sightsOK := f.sights.Rotation(lookDirection, sample)
	switch {
	case !sightsOK:
		return head, headOK
	case !headOK:
		return sights, true
	}
	if head.Dot(sights) < 0 {
		sights = sights.Scale(-1)
	}
	return mgl32.QuatSlerp(head, sights, f.blend).Normalize(), true
}

// Blend returns the current iron sights blend in [0, 1].
func (f *FirstPersonWithSights) Blend() float32 {
	return f.blend
}

// IronSights reports whether the iron sights posture held on the last Apply.
func (f *FirstPersonWithSights) IronSights() bool {
	return f.ironSights
}

// Sights returns the embedded aim-down-sights camera.
func (f *FirstPersonWithSights) Sights() *AimDownSights {
	return f.sights
}
