package scenario

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/avatar"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/behavior"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/camera"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/director"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/logging"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
	"github.com/go-gl/mathgl/mgl32"
)

// Report is the outcome of one scenario run.
type Report struct {
	Name     string
	Frames   uint64
	Seconds  float32
	Switches int
	// Failures lists every expectation that did not hold, in order.
	Failures []string
	Final    behavior.Kind
	Camera   mgl32.Vec3
	Fov      float32
	// HeadVisible and AvatarVisible are the avatar visibility at the end of the run.
	HeadVisible   bool
	AvatarVisible bool
}

// Passed reports whether every expectation held.
func (r Report) Passed() bool {
	return len(r.Failures) == 0
}

func (r Report) String() string {
	var b strings.Builder
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "%s %s: %d frames (%.2fs), %d switches, final %s",
		status, r.Name, r.Frames, r.Seconds, r.Switches, r.Final)
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  - %s", f)
	}
	return b.String()
}

// runner plays one scenario.
type runner struct {
	cfg       config.Configuration
	frameRate float64
	logger    *slog.Logger
	recorder  *tracking.TraceWriter

	pose     PoseChange
	sample   common.PoseSample
	elapsed  float32
	director director.Director
	engine   engine.Engine
	camera   camera.Camera
	avatar   avatar.Avatar
	report   Report
}

// Run plays scn through a fresh director at a fixed frame rate, with a camera.Camera as the pose sink
// and an avatar.Avatar as the visibility sink. Failed expectations are collected in the report;
// an error is returned only when a step cannot be played at all.
//
// Parameters:
//   - scn: the scenario
//   - options: functional options (frame rate, base configuration, logger, recorder)
//
// Returns:
//   - Report: what happened
//   - error: error wrapping ErrInvalidScenario, or the recorder's write error
func Run(scn *Scenario, options ...RunOption) (Report, error) {
	r := &runner{
		cfg:       config.Default(),
		frameRate: 90,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return Report{Name: scn.Name}, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	base := r.logger.With(slog.String("scenario", scn.Name))
	r.logger = logging.Component(base, "scenario")
	r.report = Report{Name: scn.Name}

	r.camera = camera.NewCamera()
	r.avatar = avatar.NewAvatar()
	r.director = director.NewDirector(r.cfg,
		director.WithTimers(timer.NewTimers()),
		director.WithSink(r.camera),
		director.WithAvatar(r.avatar),
		director.WithLogger(base),
	)

	r.pose = standingPose()
	r.sample = r.pose.sample(r.pose)

	var provider tracking.Provider = tracking.ProviderFunc(func(float32) (common.PoseSample, error) {
		return r.sample, nil
	})
	if r.recorder != nil {
		provider = tracking.Record(provider, r.recorder)
	}
	r.engine = engine.NewEngine(
		engine.WithDirector(r.director),
		engine.WithProvider(provider),
		engine.WithRealtime(false),
		engine.WithTickRate(r.frameRate),
		engine.WithLogger(base),
	)

	for i, step := range scn.Steps {
		if err := r.play(step); err != nil {
			return r.finish(), fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
	}
	return r.finish(), nil
}

func (r *runner) play(step Step) error {
	switch step.Kind {
	case StepConfig:
		cfg, err := r.cfg.Apply(step.Overrides)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		if err := r.engine.SetConfiguration(cfg); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		r.cfg = cfg

	case StepPose:
		r.sample = step.Pose.sample(r.pose)
		r.pose = step.Pose.merge(r.pose)

	case StepHold:
		dt := float32(1 / r.frameRate)
		frames := int(math.Round(float64(step.Seconds) * r.frameRate))
		if frames == 0 && step.Seconds > 0 {
			frames = 1
		}
		for range frames {
			if err := r.engine.Step(dt); err != nil {
				return err
			}
			r.elapsed += dt
		}

	case StepExpect:
		if got := r.director.Active().Kind(); got != step.Camera {
			r.fail("expected %s camera at %.2fs, got %s", step.Camera, r.elapsed, got)
		}

	case StepExpectSide:
		if got := r.director.OverShoulder().Side(); got != step.Side {
			r.fail("expected %s shoulder at %.2fs, got %s", step.Side, r.elapsed, got)
		}

	case StepSnap:
		b, err := r.behavior(step.Camera)
		if err != nil {
			return err
		}
		r.director.SetCamera(b, true, 0)
		r.director.SnapCamera(b, false)

	case StepRevert:
		if !r.director.RevertCamera() {
			r.fail("nothing to revert to at %.2fs", r.elapsed)
		}

	default:
		return fmt.Errorf("%w: unknown step %q", ErrInvalidScenario, step.Kind)
	}
	return nil
}

// behavior maps a kind onto one of the director's own cameras.
func (r *runner) behavior(kind behavior.Kind) (behavior.Behavior, error) {
	switch kind {
	case behavior.KindFirstPerson:
		return r.director.FirstPerson(), nil
	case behavior.KindAimDownSights:
		return r.director.FirstPerson().Sights(), nil
	case behavior.KindOverShoulder:
		return r.director.OverShoulder(), nil
	default:
		return nil, fmt.Errorf("%w: cannot snap to %s", ErrInvalidScenario, kind)
	}
}

func (r *runner) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Warn("expectation failed", slog.String("detail", msg))
	r.report.Failures = append(r.report.Failures, msg)
}

func (r *runner) finish() Report {
	if r.recorder != nil {
		if err := r.recorder.Flush(); err != nil {
			r.logger.Error("flush trace", slog.Any("error", err))
		}
	}
	r.report.Frames = r.engine.Frames()
	r.report.Seconds = r.elapsed
	r.report.Switches = r.director.Switches()
	r.report.Final = r.director.Active().Kind()
	r.report.Camera = r.camera.Position()
	r.report.Fov = r.camera.Fov()
	r.report.HeadVisible = r.avatar.HeadVisible()
	r.report.AvatarVisible = r.avatar.AvatarVisible()
	return r.report
}

func standingPose() PoseChange {
	head := mgl32.Vec3{0, 1.7, 0}
	waist := mgl32.Vec3{0, 1, 0}
	left := mgl32.Vec3{-0.3, 1, -0.2}
	right := mgl32.Vec3{0.3, 1, -0.2}
	var yaw, pitch float32
	return PoseChange{Head: &head, Waist: &waist, LeftHand: &left, RightHand: &right, HeadYaw: &yaw, HeadPitch: &pitch}
}

// merge returns base with every field set in p replaced. Delta is never carried over.
func (p PoseChange) merge(base PoseChange) PoseChange {
	out := base
	out.Head = common.Coalesce(p.Head, base.Head)
	out.Waist = common.Coalesce(p.Waist, base.Waist)
	out.LeftHand = common.Coalesce(p.LeftHand, base.LeftHand)
	out.RightHand = common.Coalesce(p.RightHand, base.RightHand)
	out.HeadYaw = common.Coalesce(p.HeadYaw, base.HeadYaw)
	out.HeadPitch = common.Coalesce(p.HeadPitch, base.HeadPitch)
	out.Delta = p.Delta
	return out
}

// sample builds the tracked body for p applied on top of base.
func (p PoseChange) sample(base PoseChange) common.PoseSample {
	full := p.merge(base)
	rotation := common.YawPitchRotation(mgl32.DegToRad(*full.HeadYaw), mgl32.DegToRad(*full.HeadPitch))
	head := common.NewPose(*full.Head, rotation)
	s := common.PoseSample{
		Head:      head,
		Waist:     common.NewPose(*full.Waist, rotation),
		LeftHand:  common.NewPose(*full.LeftHand, rotation),
		RightHand: common.NewPose(*full.RightHand, rotation),
	}
	s.LeftEye, s.RightEye = tracking.EyesFromHead(head, tracking.DefaultIPD)
	if full.Delta != nil {
		s.HeadAngularDelta = *full.Delta
	}
	return s
}
