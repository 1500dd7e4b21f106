package behavior

import (
	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	firstPersonLookAhead = 0.25
	firstPersonMinHeight = 0.2
	firstPersonMaxHeight = 1.2
)

// FirstPerson places the camera at a fixed offset from the head and looks ahead of the body.
// The look-at point averages a point ahead of the head with one ahead of the waist so head tilts
// do not whip the view around.
type FirstPerson struct {
	base
	lookAtOffset mgl32.Vec3
}

var _ Behavior = &FirstPerson{}

// NewFirstPerson creates a FirstPerson behavior.
//
// Parameters:
//   - cfg: the initial configuration
//   - options: functional options (offset, smoothing time, kind, ...)
//
// Returns:
//   - *FirstPerson: the behavior
func NewFirstPerson(cfg config.Configuration, options ...BehaviorBuilderOption) *FirstPerson {
	f := &FirstPerson{
		base:         newBase(KindFirstPerson, options),
		lookAtOffset: common.Local(0, 0, firstPersonLookAhead),
	}
	f.SetConfiguration(cfg)
	return f
}

func (f *FirstPerson) Apply(sample common.PoseSample, _ timer.Timers, _ bool) (position, lookAt mgl32.Vec3) {
	head, waist := sample.Head, sample.Waist

	position = head.TransformPoint(f.offset)
	lookAt = head.TransformPoint(f.lookAtOffset).Add(waist.TransformPoint(f.lookAtOffset)).Mul(0.5)

	if f.cfg.CameraVerticalLock {
		lookAt[1] = (waist.Position.Y() + head.Position.Y()) / 2
	}

	position[1] = clampToHead(position.Y(), head.Position.Y())
	return position, lookAt
}

// clampToHead keeps a first person height within [0.2h, 1.2h] of the head height h.
func clampToHead(y, headHeight float32) float32 {
	return common.ClampOrdered(y, headHeight*firstPersonMinHeight, headHeight*firstPersonMaxHeight)
}
