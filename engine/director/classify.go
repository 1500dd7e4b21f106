package director

import (
	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// controllerThrottle is how often (seconds of controller timer) the mode classifier runs.
	controllerThrottle = 0.5

	classifierHeadForward = 0.2
	classifierHeadBack    = 0.1
	handsAboveMargin      = 0.15
	classifierHandReach   = 2

	// shoulderAlignmentCutoff is compared against a degree-scaled cosine that never exceeds ~57.3,
	// so the alignment part of the over-shoulder rule always passes.
	shoulderAlignmentCutoff = 80
)

// Decision is the outcome of one mode classification.
type Decision int

const (
	// DecisionNone keeps the active camera.
	DecisionNone Decision = iota
	// DecisionFirstPerson switches to the first person camera.
	DecisionFirstPerson
	// DecisionOverShoulder switches to the over-shoulder camera.
	DecisionOverShoulder
)

func (d Decision) String() string {
	switch d {
	case DecisionFirstPerson:
		return "first_person"
	case DecisionOverShoulder:
		return "over_shoulder"
	default:
		return "none"
	}
}

// Classification is the result of Classify with the intermediate signals kept for logging and tests.
type Classification struct {
	Decision Decision
	// HandsAbove is true when the hand average is above a point just ahead of and below the head.
	HandsAbove bool
	// Aiming is true when the two-handed aim score is under the align trigger.
	Aiming bool
	// AimScore is the two-handed aim score in degree-scaled cosine units.
	AimScore float32
	// Alignment is the controller alignment score against the head forward reference point.
	Alignment float32
	// CanSwap is true once the global timer has passed the swap lock.
	CanSwap bool
}

// Classify decides whether the body posture calls for the first person or the over-shoulder camera.
// It is a pure function of its inputs. No switch is ever requested while globalTimer is at or below
// the configured swap lock.
//
// Parameters:
//   - sample: the tracked body
//   - cfg: the active configuration
//   - globalTimer: seconds since the last mode switch
//
// Returns:
//   - Classification: the decision and the signals behind it
//   - bool: false when a required direction is degenerate; the caller skips this tick
func Classify(sample common.PoseSample, cfg config.Configuration, globalTimer float32) (Classification, bool) {
	var c Classification
	c.CanSwap = globalTimer > cfg.CameraSwapTimeLock

	handDirection, ok := sample.HandDirection(cfg.RightHandDominant)
	if !ok {
		return c, false
	}
	headRight, ok := common.SafeNormalize(sample.Head.Right())
	if !ok {
		return c, false
	}

	handAverage := sample.HandAverage()
	headForward := sample.HeadForwardPoint(classifierHeadForward, 0)
	headBack := sample.HeadBackwardPoint(classifierHeadBack, 0)

	c.HandsAbove = headForward.Y()-handsAboveMargin < handAverage.Y()

	aim, ok := common.ConeAngle(headBack, handAverage.Add(handDirection.Mul(classifierHandReach)), headRight)
	if !ok {
		return c, false
	}
	c.AimScore = mgl32.RadToDeg(aim)
	c.Aiming = c.AimScore < cfg.CameraGunHeadAlignAngleTrigger

	dx := mgl32.Abs(sample.HeadAngularDelta.X())
	dy := mgl32.Abs(sample.HeadAngularDelta.Y())

	if c.HandsAbove && dx < cfg.ControlMovementThreshold && dy < cfg.ControlVerticalMovementThreshold && c.CanSwap {
		c.Decision = DecisionFirstPerson
		return c, true
	}

	forwardReference := sample.HeadForwardPoint(cfg.ForwardDistance, cfg.ForwardVerticalOffset)
	alignment, ok := common.AverageCosAngleOfControllers(sample.RightHand, sample.LeftHand, forwardReference)
	if !ok {
		return c, false
	}
	c.Alignment = alignment

	if alignment < shoulderAlignmentCutoff && dx > cfg.ControlMovementThreshold && c.CanSwap && !(c.Aiming && c.HandsAbove) {
		c.Decision = DecisionOverShoulder
	}
	return c, true
}
