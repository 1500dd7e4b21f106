// Package director drives the camera: it classifies the tracked posture into a camera mode, evaluates
// the active behavior, smooths the result and hands the final pose to a sink once per frame.
package director

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/behavior"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/logging"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

// PoseSink receives the final camera pose and field of view once per frame.
type PoseSink interface {
	UpdateCameraPose(position mgl32.Vec3, rotation mgl32.Quat)
	UpdateFov(fov float32)
}

// AvatarVisibility receives the avatar visibility chosen by the active behavior.
type AvatarVisibility interface {
	SetShowHead(show bool)
	SetShowAvatar(show bool)
}

// CameraState is the smoothed camera owned by the director.
type CameraState struct {
	Position         mgl32.Vec3
	LookAt           mgl32.Vec3
	PositionVelocity mgl32.Vec3
	LookAtVelocity   mgl32.Vec3
	PositionTarget   mgl32.Vec3
	LookAtTarget     mgl32.Vec3
	Rotation         mgl32.Quat
	FieldOfView      float32
}

type directorImpl struct {
	cfg    config.Configuration
	timers timer.Timers
	logger *slog.Logger

	firstPerson  *behavior.FirstPersonWithSights
	overShoulder *behavior.OverShoulder

	active   behavior.Behavior
	previous behavior.Behavior
	static   bool
	switches int

	state                 CameraState
	savedPositionVelocity mgl32.Vec3
	savedLookAtVelocity   mgl32.Vec3

	last    common.PoseSample
	hasLast bool

	avatar AvatarVisibility
	sink   PoseSink
}

// Director selects and drives the camera behavior each frame.
// It is frame-driven and not safe for concurrent use; the engine owns it on its tick goroutine.
type Director interface {
	// SelectCamera runs mode classification when the controller timer has reached the sampling
	// interval, switches camera on a decision, and then always calls HandleCameraView.
	//
	// Parameters:
	//   - sample: the tracked body for this frame
	SelectCamera(sample common.PoseSample)

	// HandleCameraView evaluates the active behavior, updates avatar visibility, advances the smoothing
	// by the frame delta and emits the pose and field of view to the sink.
	//
	// Parameters:
	//   - sample: the tracked body for this frame
	HandleCameraView(sample common.PoseSample)

	// SetCamera switches the active behavior. Switching to the active behavior does nothing.
	//
	// Parameters:
	//   - b: the behavior to activate
	//   - preserveHistory: remember the outgoing behavior for RevertCamera
	//   - timerOverride: when > 0, the global timer is set to this value after the reset
	SetCamera(b behavior.Behavior, preserveHistory bool, timerOverride float32)

	// SnapCamera cuts the camera to the targets of b evaluated against the last observed sample.
	// With revert false the current velocities are saved and zeroed; with revert true the saved
	// velocities are restored.
	//
	// Parameters:
	//   - b: the behavior to evaluate
	//   - revert: restore rather than save the smoothing velocities
	SnapCamera(b behavior.Behavior, revert bool)

	// RevertCamera switches back to the previous behavior without overwriting history and restores
	// the velocities saved by the last SnapCamera.
	//
	// Returns:
	//   - bool: false if there is no previous behavior
	RevertCamera() bool

	// SetConfiguration replaces the configuration of the director and every behavior it owns.
	// Smoothing state and shoulder side are kept.
	//
	// Parameters:
	//   - cfg: the new configuration
	SetConfiguration(cfg config.Configuration)

	// Configuration returns the active configuration.
	Configuration() config.Configuration

	// Active returns the active behavior.
	Active() behavior.Behavior

	// Previous returns the remembered previous behavior, or nil.
	Previous() behavior.Behavior

	// FirstPerson returns the first person camera owned by the director.
	FirstPerson() *behavior.FirstPersonWithSights

	// OverShoulder returns the over-shoulder camera owned by the director.
	OverShoulder() *behavior.OverShoulder

	// State returns a copy of the smoothed camera state.
	State() CameraState

	// Switches returns how many camera switches have happened.
	Switches() int

	// Timers returns the timer service the director reads and resets.
	Timers() timer.Timers

	// SetAvatar attaches (or with nil detaches) the avatar visibility sink.
	SetAvatar(avatar AvatarVisibility)

	// SetSink attaches (or with nil detaches) the camera pose sink.
	SetSink(sink PoseSink)
}

var _ Director = &directorImpl{}

// NewDirector creates a Director owning a first person and an over-shoulder camera.
// The over-shoulder camera starts active.
//
// Parameters:
//   - cfg: the initial configuration
//   - options: functional options (timers, sinks, logger)
//
// Returns:
//   - Director: the newly created director
func NewDirector(cfg config.Configuration, options ...DirectorBuilderOption) Director {
	d := &directorImpl{
		cfg:    cfg,
		logger: slog.Default(),
		state: CameraState{
			Rotation:    mgl32.QuatIdent(),
			FieldOfView: cfg.CameraDefaultFov,
		},
	}
	for _, option := range options {
		option(d)
	}
	if d.timers == nil {
		d.timers = timer.NewTimers()
	}
	d.logger = logging.Component(d.logger, "director")

	d.firstPerson = behavior.NewFirstPersonWithSights(cfg, behavior.WithLogger(d.logger))
	d.overShoulder = behavior.NewOverShoulder(cfg, behavior.WithLogger(d.logger))
	d.active = d.overShoulder
	return d
}

func (d *directorImpl) SelectCamera(sample common.PoseSample) {
	if d.timers.Controller() >= controllerThrottle {
		c, ok := Classify(sample, d.cfg, d.timers.Global())
		switch {
		case !ok:
			d.logger.Debug("classification skipped, no directional signal")
		case c.Decision == DecisionFirstPerson:
			d.SetCamera(d.firstPerson, true, 0)
			d.timers.ResetSights()
		case c.Decision == DecisionOverShoulder:
			d.SetCamera(d.overShoulder, true, 0)
		}
		d.timers.ResetController()
	}
	d.HandleCameraView(sample)
}

func (d *directorImpl) HandleCameraView(sample common.PoseSample) {
	d.last, d.hasLast = sample, true

	active := d.active
	d.state.PositionTarget, d.state.LookAtTarget = active.Apply(sample, d.timers, d.static)
	d.static = active.Static()

	if d.avatar != nil {
		show := !active.RemovesHead()
		if d.cfg.RemoveAvatarInsteadOfHead {
			d.avatar.SetShowAvatar(show)
		} else {
			d.avatar.SetShowHead(show)
		}
		d.timers.ResetRemoveAvatar()
	}

	smoothing := active.SmoothingTime()
	dt := d.timers.DeltaTime()
	d.state.Position = common.SmoothDamp(d.state.Position, d.state.PositionTarget, &d.state.PositionVelocity, smoothing, dt)
	d.state.LookAt = common.SmoothDamp(d.state.LookAt, d.state.LookAtTarget, &d.state.LookAtVelocity, smoothing, dt)

	if rotation, ok := active.Rotation(d.state.LookAt.Sub(d.state.Position), sample); ok {
		d.state.Rotation = rotation
	}
	d.state.FieldOfView = active.FieldOfView()

	if d.sink != nil {
		d.sink.UpdateCameraPose(d.state.Position, d.state.Rotation)
		d.sink.UpdateFov(d.state.FieldOfView)
	}
}

func (d *directorImpl) SetCamera(b behavior.Behavior, preserveHistory bool, timerOverride float32) {
	if b == nil || b == d.active {
		return
	}
	from := d.active
	if preserveHistory {
		d.previous = from
	}
	d.active = b
	d.static = false
	d.timers.ResetGlobal()
	d.timers.ResetCameraAction()
	if timerOverride > 0 {
		d.timers.SetGlobal(timerOverride)
	}
	d.switches++
	d.logger.Info("camera switched",
		slog.String("from", string(from.Kind())),
		slog.String("to", string(b.Kind())),
		slog.Int("switches", d.switches),
	)
}

func (d *directorImpl) SnapCamera(b behavior.Behavior, revert bool) {
	if b == nil {
		return
	}
	if !d.hasLast {
		d.logger.Debug("snap ignored before the first frame", slog.String("camera", string(b.Kind())))
		return
	}
	d.state.PositionTarget, d.state.LookAtTarget = b.Apply(d.last, d.timers, d.static)

	if revert {
		d.state.PositionVelocity = d.savedPositionVelocity
		d.state.LookAtVelocity = d.savedLookAtVelocity
	} else {
		d.savedPositionVelocity = d.state.PositionVelocity
		d.savedLookAtVelocity = d.state.LookAtVelocity
		d.state.PositionVelocity = mgl32.Vec3{}
		d.state.LookAtVelocity = mgl32.Vec3{}
	}

	d.state.Position = d.state.PositionTarget
	d.state.LookAt = d.state.LookAtTarget
}

func (d *directorImpl) RevertCamera() bool {
	if d.previous == nil {
		return false
	}
	d.SetCamera(d.previous, false, 0)
	d.state.PositionVelocity = d.savedPositionVelocity
	d.state.LookAtVelocity = d.savedLookAtVelocity
	return true
}

func (d *directorImpl) SetConfiguration(cfg config.Configuration) {
	d.cfg = cfg
	d.firstPerson.SetConfiguration(cfg)
	d.overShoulder.SetConfiguration(cfg)
	if !d.owns(d.active) {
		d.active.SetConfiguration(cfg)
	}
	d.logger.Debug("configuration replaced", slog.Any("configuration", cfg))
}

// owns reports whether b is one of the director's own behaviors (including the embedded sights camera).
func (d *directorImpl) owns(b behavior.Behavior) bool {
	switch b {
	case d.firstPerson, d.overShoulder, d.firstPerson.Sights():
		return true
	}
	return false
}

func (d *directorImpl) Configuration() config.Configuration {
	return d.cfg
}

func (d *directorImpl) Active() behavior.Behavior {
	return d.active
}

func (d *directorImpl) Previous() behavior.Behavior {
	return d.previous
}

func (d *directorImpl) FirstPerson() *behavior.FirstPersonWithSights {
	return d.firstPerson
}

func (d *directorImpl) OverShoulder() *behavior.OverShoulder {
	return d.overShoulder
}

func (d *directorImpl) State() CameraState {
	return d.state
}

func (d *directorImpl) Switches() int {
	return d.switches
}

func (d *directorImpl) Timers() timer.Timers {
	return d.timers
}

func (d *directorImpl) SetAvatar(avatar AvatarVisibility) {
	d.avatar = avatar
}

func (d *directorImpl) SetSink(sink PoseSink) {
	d.sink = sink
}
