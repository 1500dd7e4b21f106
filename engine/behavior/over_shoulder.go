package behavior

import (
	"log/slog"
	"math"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	shoulderLookAhead = 5
	shoulderLift      = 0.5
	shoulderFloor     = -0.5
	shoulderCeiling   = 1
)

// OverShoulder follows the head from behind one shoulder. Fast head turns toward the other side swap
// the shoulder; while a swap is in flight an embedded between camera directly behind the body can take over.
//
// Side-swap states:
//
//	Settled(side) --|Δx| > sensitivity, action timer > smoothing, SideOf(Δx) != side--> Swapping(side, to)
//	Swapping(side, to) --action timer > smoothing--> Settled(to)
type OverShoulder struct {
	base
	lookAtOffset mgl32.Vec3
	between      *FirstPerson

	side        Side
	destination Side
	swapping    bool
}

var _ Behavior = &OverShoulder{}

// NewOverShoulder creates an OverShoulder behavior settled on the right side.
//
// Parameters:
//   - cfg: the initial configuration
//   - options: functional options
//
// Returns:
//   - *OverShoulder: the behavior
func NewOverShoulder(cfg config.Configuration, options ...BehaviorBuilderOption) *OverShoulder {
	o := &OverShoulder{
		base:         newBase(KindOverShoulder, options),
		lookAtOffset: common.Local(0, 0, shoulderLookAhead),
		side:         SideRight,
		destination:  SideRight,
	}
	o.between = NewFirstPerson(cfg, WithKind(KindBetween))
	o.SetConfiguration(cfg)
	return o
}

// SetConfiguration re-derives the shoulder offset, smoothing time and the between camera.
// Side and swap state are kept.
func (o *OverShoulder) SetConfiguration(cfg config.Configuration) {
	o.base.SetConfiguration(cfg)

	smoothing := cfg.CameraShoulderPositioningTime
	if cfg.InBetweenCameraEnabled {
		smoothing /= 2
	}
	o.smoothingTime = smoothing

	o.between.SetConfiguration(cfg)
	o.between.smoothingTime = smoothing
	o.between.offset = common.Local(0, -cfg.CameraBodyVerticalTargetOffset, -cfg.CameraShoulderDistance)

	angle := float64(mgl32.DegToRad(cfg.CameraShoulderAngle))
	d := float64(cfg.CameraShoulderDistance)
	o.offset = common.Local(float32(math.Sin(angle)*d), shoulderLift, -float32(math.Cos(angle)*d))
}

func (o *OverShoulder) Apply(sample common.PoseSample, timers timer.Timers, placed bool) (position, lookAt mgl32.Vec3) {
	o.advanceSwap(sample.HeadAngularDelta.X(), timers)

	if o.swapping && o.cfg.InBetweenCameraEnabled {
		return o.between.Apply(sample, timers, placed)
	}

	reverse := float32(1)
	if o.cfg.ReverseShoulder {
		reverse = -1
	}
	offset := o.offset
	offset[0] = -float32(o.side) * mgl32.Abs(offset[0]) * reverse

	head := sample.Head
	headHeight := head.Position.Y()
	position = head.TransformPoint(offset)
	lookAt = head.TransformPoint(o.lookAtOffset)

	if o.cfg.CameraVerticalLock {
		lookAt[1] = (sample.Waist.Position.Y() + headHeight) / 2
		position[1] = common.ClampOrdered(position.Y(), headHeight*firstPersonMinHeight, headHeight+shoulderCeiling)
	} else {
		lookAt[1] = common.ClampOrdered(lookAt.Y(), shoulderFloor, headHeight+shoulderCeiling)
		position[1] = common.ClampOrdered(position.Y(), shoulderFloor, headHeight+shoulderCeiling)
	}
	return position, lookAt
}

// advanceSwap runs one step of the side-swap state machine.
func (o *OverShoulder) advanceSwap(horizontalDelta float32, timers timer.Timers) {
	if o.swapping {
		if timers.CameraAction() > o.smoothingTime {
			o.swapping = false
			o.side = o.destination
			timers.ResetCameraAction()
			o.logger.Debug("shoulder swap done", slog.String("side", o.side.String()))
		}
		return
	}
	if mgl32.Abs(horizontalDelta) > o.cfg.CameraShoulderSensitivity {
		o.BeginSwap(SideOf(horizontalDelta), timers)
	}
}

// BeginSwap starts a swap toward to when the camera is settled on the other side and the action timer
// has run past the smoothing time. Swapping toward the current side, or while already swapping, changes nothing.
//
// Parameters:
//   - to: the destination side
//   - timers: the frame timers; the camera action timer is reset when the swap starts
//
// Returns:
//   - bool: true if a swap started
func (o *OverShoulder) BeginSwap(to Side, timers timer.Timers) bool {
	if o.swapping || to == o.side || timers.CameraAction() <= o.smoothingTime {
		return false
	}
	o.swapping = true
	o.destination = to
	timers.ResetCameraAction()
	o.logger.Debug("shoulder swap", slog.String("from", o.side.String()), slog.String("to", to.String()))
	return true
}

// Side returns the shoulder the camera is settled on (the origin side while swapping).
func (o *OverShoulder) Side() Side {
	return o.side
}

// Destination returns the side of the swap in flight, or the current side when settled.
func (o *OverShoulder) Destination() Side {
	return o.destination
}

// Swapping reports whether a side swap is in flight.
func (o *OverShoulder) Swapping() bool {
	return o.swapping
}

// Between returns the transitional camera used while swapping.
func (o *OverShoulder) Between() *FirstPerson {
	return o.between
}
