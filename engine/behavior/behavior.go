// Package behavior contains the camera behaviors the director switches between. Each behavior turns a
// PoseSample into an unsmoothed camera target (position and look-at) and owns whatever sub-state it needs
// between frames, such as the shoulder side or the iron sights blend.
package behavior

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

// Behavior computes camera targets from the tracked body.
// Implementations may mutate only their own sub-state inside Apply.
type Behavior interface {
	// Kind returns the name of the behavior.
	//
	// Returns:
	//   - Kind: the behavior kind
	Kind() Kind

	// Apply evaluates the behavior for one frame.
	//
	// Parameters:
	//   - sample: the tracked body for this frame
	//   - timers: the frame timers; behaviors read DeltaTime and may reset the camera action timer
	//   - placed: true when the camera has already settled under this behavior
	//
	// Returns:
	//   - position: the unsmoothed camera position target
	//   - lookAt: the unsmoothed look-at target
	Apply(sample common.PoseSample, timers timer.Timers, placed bool) (position, lookAt mgl32.Vec3)

	// Rotation returns the final camera orientation for the smoothed look direction.
	//
	// Parameters:
	//   - lookDirection: smoothed look-at minus smoothed position
	//   - sample: the tracked body for this frame
	//
	// Returns:
	//   - mgl32.Quat: the camera orientation
	//   - bool: false when there is no directional signal this frame
	Rotation(lookDirection mgl32.Vec3, sample common.PoseSample) (mgl32.Quat, bool)

	// FieldOfView returns the vertical field of view in degrees.
	FieldOfView() float32

	// SmoothingTime returns the smoothing time constant in seconds. Zero means snap.
	SmoothingTime() float32

	// RemovesHead reports whether the avatar head (or avatar) must be hidden under this behavior.
	RemovesHead() bool

	// Static reports whether the behavior is a non-interpolated camera.
	Static() bool

	// SetConfiguration replaces the configuration and re-derives any cached values.
	//
	// Parameters:
	//   - cfg: the new configuration
	SetConfiguration(cfg config.Configuration)
}

// base carries the fields shared by every behavior.
type base struct {
	kind          Kind
	cfg           config.Configuration
	offset        mgl32.Vec3
	fov           float32
	smoothingTime float32
	removesHead   bool
	static        bool
	logger        *slog.Logger
}

func newBase(kind Kind, options []BehaviorBuilderOption) base {
	b := base{
		kind:          kind,
		fov:           90,
		smoothingTime: 1,
	}
	for _, option := range options {
		option(&b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With(slog.String("behavior", string(b.kind)))
	return b
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) FieldOfView() float32 {
	return b.fov
}

func (b *base) SmoothingTime() float32 {
	return b.smoothingTime
}

func (b *base) RemovesHead() bool {
	return b.removesHead
}

func (b *base) Static() bool {
	return b.static
}

// Offset returns the local-space camera offset relative to the head.
func (b *base) Offset() mgl32.Vec3 {
	return b.offset
}

// Configuration returns the configuration the behavior currently uses.
func (b *base) Configuration() config.Configuration {
	return b.cfg
}

// Rotation faces the camera along lookDirection with world up.
func (b *base) Rotation(lookDirection mgl32.Vec3, _ common.PoseSample) (mgl32.Quat, bool) {
	return common.LookRotation(lookDirection, common.AxisUp)
}

func (b *base) SetConfiguration(cfg config.Configuration) {
	b.cfg = cfg
	b.fov = cfg.CameraDefaultFov
}
