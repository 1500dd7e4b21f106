package director

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/behavior"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/logging"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = float32(1.0 / 90)

type fakeSink struct {
	poses    int
	position mgl32.Vec3
	rotation mgl32.Quat
	fov      float32
}

func (s *fakeSink) UpdateCameraPose(position mgl32.Vec3, rotation mgl32.Quat) {
	s.poses++
	s.position, s.rotation = position, rotation
}

func (s *fakeSink) UpdateFov(fov float32) {
	s.fov = fov
}

type fakeAvatar struct {
	head, avatar *bool
}

func (a *fakeAvatar) SetShowHead(show bool)   { a.head = &show }
func (a *fakeAvatar) SetShowAvatar(show bool) { a.avatar = &show }

func standing() common.PoseSample {
	return common.PoseSample{
		Head:      common.IdentityPose(mgl32.Vec3{0, 1.7, 0}),
		Waist:     common.IdentityPose(mgl32.Vec3{0, 1.0, 0}),
		LeftHand:  common.IdentityPose(mgl32.Vec3{-0.3, 1.0, -0.2}),
		RightHand: common.IdentityPose(mgl32.Vec3{0.3, 1.0, -0.2}),
		LeftEye:   mgl32.Vec3{-0.032, 1.75, -0.08},
		RightEye:  mgl32.Vec3{0.032, 1.75, -0.08},
	}
}

// handsUp raises both hands above the head, steady.
func handsUp() common.PoseSample {
	s := standing()
	s.RightHand.Position = mgl32.Vec3{0.2, 1.9, -0.2}
	s.LeftHand.Position = mgl32.Vec3{-0.2, 1.9, -0.2}
	return s
}

// aimingHigh holds a rifle line pointing forward with the hands above the threshold.
func aimingHigh() common.PoseSample {
	s := standing()
	s.RightHand.Position = mgl32.Vec3{0.05, 1.9, -0.15}
	s.LeftHand.Position = mgl32.Vec3{0.05, 1.85, -0.6}
	return s
}

// lookingAround turns the head quickly with the hands low.
func lookingAround() common.PoseSample {
	s := standing()
	s.HeadAngularDelta = mgl32.Vec2{1.5, 0}
	return s
}

func newTestDirector(cfg config.Configuration, timers timer.Timers, options ...DirectorBuilderOption) Director {
	return NewDirector(cfg, append([]DirectorBuilderOption{WithTimers(timers), WithLogger(logging.Discard())}, options...)...)
}

func TestClassify(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name   string
		sample common.PoseSample
		global float32
		want   Decision
		aiming bool
	}{
		{"hands up and steady", handsUp(), 4, DecisionFirstPerson, false},
		{"hands up within lock", handsUp(), 2, DecisionNone, false},
		{"hands up at exactly the lock", handsUp(), 3, DecisionNone, false},
		{"hands up but turning", func() common.PoseSample { s := handsUp(); s.HeadAngularDelta = mgl32.Vec2{1.5, 0}; return s }(), 4, DecisionOverShoulder, false},
		{"hands up but nodding", func() common.PoseSample { s := handsUp(); s.HeadAngularDelta = mgl32.Vec2{0, 2.5}; return s }(), 4, DecisionNone, false},
		{"looking around", lookingAround(), 4, DecisionOverShoulder, false},
		{"looking around within lock", lookingAround(), 1, DecisionNone, false},
		{"aiming while turning stays", func() common.PoseSample { s := aimingHigh(); s.HeadAngularDelta = mgl32.Vec2{1.5, 0}; return s }(), 4, DecisionNone, true},
		{"standing still", standing(), 4, DecisionNone, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := Classify(tc.sample, cfg, tc.global)
			require.True(t, ok)
			assert.Equal(t, tc.want, c.Decision, "got %s", c.Decision)
			assert.Equal(t, tc.aiming, c.Aiming)
		})
	}
}

func TestClassify_AlignmentCutoffAlwaysPasses(t *testing.T) {
	for _, s := range []common.PoseSample{standing(), handsUp(), aimingHigh(), lookingAround()} {
		c, ok := Classify(s, config.Default(), 4)
		require.True(t, ok)
		if c.Decision != DecisionFirstPerson {
			assert.Less(t, c.Alignment, float32(shoulderAlignmentCutoff))
		}
	}
}

func TestClassify_DegenerateIsNoSignal(t *testing.T) {
	s := handsUp()
	s.LeftHand.Position = s.RightHand.Position
	c, ok := Classify(s, config.Default(), 10)
	assert.False(t, ok)
	assert.Equal(t, DecisionNone, c.Decision)
}

func TestSelectCamera_FirstPersonScenario(t *testing.T) {
	timers := timer.NewTimers(timer.WithGlobal(4), timer.WithController(1), timer.WithCameraAction(2))
	d := newTestDirector(config.Default(), timers)
	require.Equal(t, behavior.KindOverShoulder, d.Active().Kind())

	timers.AddTime(frame)
	d.SelectCamera(handsUp())

	assert.Same(t, d.FirstPerson(), d.Active())
	assert.Same(t, d.OverShoulder(), d.Previous())
	assert.Equal(t, 1, d.Switches())
	assert.Zero(t, timers.CameraAction())
	assert.Zero(t, timers.Global())
	assert.Zero(t, timers.Controller())
	assert.Zero(t, timers.Sights())
}

func TestSelectCamera_ThrottledByControllerTimer(t *testing.T) {
	timers := timer.NewTimers(timer.WithGlobal(4))
	d := newTestDirector(config.Default(), timers)

	timers.AddTime(0.2)
	d.SelectCamera(handsUp())
	assert.Same(t, d.OverShoulder(), d.Active())
	assert.InDelta(t, 0.2, timers.Controller(), 1e-6, "controller timer untouched between samples")

	timers.AddTime(0.3)
	d.SelectCamera(handsUp())
	assert.Same(t, d.FirstPerson(), d.Active())
}

func TestSelectCamera_DegenerateStillResetsController(t *testing.T) {
	timers := timer.NewTimers(timer.WithGlobal(10), timer.WithController(1))
	d := newTestDirector(config.Default(), timers)

	s := handsUp()
	s.LeftHand.Position = s.RightHand.Position
	timers.AddTime(frame)
	d.SelectCamera(s)

	assert.Same(t, d.OverShoulder(), d.Active())
	assert.Zero(t, timers.Controller())
	st := d.State()
	assert.True(t, common.FiniteVec3(st.Position))
	assert.True(t, common.FiniteVec3(st.LookAt))
}

func TestSelectCamera_Hysteresis(t *testing.T) {
	cfg := config.Default()
	timers := timer.NewTimers()
	d := newTestDirector(cfg, timers)

	var now, lastSwitch float32
	switches := 0
	for i := 0; i < 90*20; i++ {
		timers.AddTime(frame)
		now += frame

		// always present the posture that asks for the other camera
		s := handsUp()
		if d.Active() == behavior.Behavior(d.FirstPerson()) {
			s = lookingAround()
		}
		d.SelectCamera(s)

		if d.Switches() != switches {
			assert.Greater(t, now-lastSwitch, cfg.CameraSwapTimeLock-1e-3, "switch %d came too early", d.Switches())
			switches = d.Switches()
			lastSwitch = now
		}
	}
	assert.GreaterOrEqual(t, switches, 3)
}

func TestHandleCameraView_Converges(t *testing.T) {
	timers := timer.NewTimers()
	sink := &fakeSink{}
	d := newTestDirector(config.Default(), timers, WithSink(sink))

	s := standing()
	prev := float32(-1)
	for i := 0; i < 600; i++ {
		timers.AddTime(frame)
		d.HandleCameraView(s)
		st := d.State()
		dist := st.PositionTarget.Sub(st.Position).Len()
		if prev >= 0 {
			assert.LessOrEqual(t, dist, prev+1e-5, "frame %d", i)
		}
		prev = dist
	}
	st := d.State()
	assert.Less(t, prev, float32(1e-3))
	assert.Less(t, st.LookAtTarget.Sub(st.LookAt).Len(), float32(1e-3))

	assert.Equal(t, 600, sink.poses)
	assert.Equal(t, st.Position, sink.position)
	assert.Equal(t, float32(80), sink.fov)
	assert.InDelta(t, 0, sink.rotation.Rotate(common.AxisForward).Sub(st.LookAt.Sub(st.Position).Normalize()).Len(), 1e-3)
}

func TestHandleCameraView_ZeroDeltaHoldsPosition(t *testing.T) {
	timers := timer.NewTimers()
	d := newTestDirector(config.Default(), timers)

	d.HandleCameraView(standing())
	st := d.State()
	assert.Equal(t, mgl32.Vec3{}, st.Position)
	assert.NotEqual(t, mgl32.Vec3{}, st.PositionTarget)
}

func TestSnapCamera_ThenTick(t *testing.T) {
	timers := timer.NewTimers()
	d := newTestDirector(config.Default(), timers)
	s := standing()

	timers.AddTime(frame)
	d.HandleCameraView(s)

	ads := d.FirstPerson().Sights()
	d.SetCamera(ads, true, 0)
	d.SnapCamera(ads, false)
	st := d.State()
	assert.Equal(t, st.PositionTarget, st.Position)
	assert.Equal(t, mgl32.Vec3{}, st.PositionVelocity)

	timers.AddTime(frame)
	d.HandleCameraView(s)
	st = d.State()
	assert.Equal(t, st.PositionTarget, st.Position)
	assert.Equal(t, s.RightEye, st.Position)
	assert.Equal(t, st.LookAtTarget, st.LookAt)
}

func TestSnapCamera_BeforeFirstFrameIgnored(t *testing.T) {
	d := newTestDirector(config.Default(), timer.NewTimers())
	d.SnapCamera(d.OverShoulder(), false)
	assert.Equal(t, mgl32.Vec3{}, d.State().Position)
}

func TestRevertCamera_RestoresVelocities(t *testing.T) {
	timers := timer.NewTimers()
	d := newTestDirector(config.Default(), timers)
	assert.False(t, d.RevertCamera(), "nothing to revert to")

	s := standing()
	for i := 0; i < 5; i++ {
		timers.AddTime(frame)
		d.HandleCameraView(s)
	}
	moving := d.State()
	require.NotEqual(t, mgl32.Vec3{}, moving.PositionVelocity)

	ads := d.FirstPerson().Sights()
	d.SetCamera(ads, true, 0)
	d.SnapCamera(ads, false)
	require.Equal(t, mgl32.Vec3{}, d.State().PositionVelocity)

	require.True(t, d.RevertCamera())
	assert.Same(t, d.OverShoulder(), d.Active())
	assert.Same(t, d.OverShoulder(), d.Previous(), "reverting keeps history")
	assert.Equal(t, moving.PositionVelocity, d.State().PositionVelocity)
	assert.Equal(t, moving.LookAtVelocity, d.State().LookAtVelocity)

	d.SnapCamera(ads, true)
	assert.Equal(t, moving.PositionVelocity, d.State().PositionVelocity)
}

func TestSetCamera(t *testing.T) {
	timers := timer.NewTimers(timer.WithGlobal(9), timer.WithCameraAction(9))
	d := newTestDirector(config.Default(), timers)

	d.SetCamera(d.OverShoulder(), true, 0)
	assert.Equal(t, 0, d.Switches(), "already active")
	assert.Equal(t, float32(9), timers.Global())

	d.SetCamera(d.FirstPerson(), false, 2.5)
	assert.Equal(t, 1, d.Switches())
	assert.Nil(t, d.Previous())
	assert.Equal(t, float32(2.5), timers.Global())
	assert.Zero(t, timers.CameraAction())

	d.SetCamera(nil, true, 0)
	assert.Same(t, d.FirstPerson(), d.Active())
}

func TestAvatarVisibility(t *testing.T) {
	cfg := config.Default()
	timers := timer.NewTimers(timer.WithDeltaTime(frame))
	avatar := &fakeAvatar{}
	d := newTestDirector(cfg, timers, WithAvatar(avatar))

	d.HandleCameraView(standing())
	require.NotNil(t, avatar.avatar)
	assert.True(t, *avatar.avatar)
	assert.Nil(t, avatar.head)

	d.SetCamera(d.FirstPerson(), true, 0)
	d.HandleCameraView(standing())
	assert.False(t, *avatar.avatar)

	cfg.RemoveAvatarInsteadOfHead = false
	d.SetConfiguration(cfg)
	d.HandleCameraView(standing())
	require.NotNil(t, avatar.head)
	assert.False(t, *avatar.head)

	d.SetAvatar(nil)
	assert.NotPanics(t, func() { d.HandleCameraView(standing()) })
}

func TestSetConfiguration_KeepsState(t *testing.T) {
	timers := timer.NewTimers(timer.WithCameraAction(1))
	d := newTestDirector(config.Default(), timers)

	s := standing()
	s.HeadAngularDelta = mgl32.Vec2{-5, 0}
	timers.AddTime(frame)
	d.HandleCameraView(s)
	require.True(t, d.OverShoulder().Swapping())
	before := d.State()

	cfg := config.Default()
	cfg.CameraDefaultFov = 60
	cfg.CameraShoulderDistance = 4
	d.SetConfiguration(cfg)

	assert.Equal(t, cfg, d.Configuration())
	assert.True(t, d.OverShoulder().Swapping())
	assert.Equal(t, before.Position, d.State().Position)
	assert.Equal(t, before.PositionVelocity, d.State().PositionVelocity)
	assert.Equal(t, float32(60), d.FirstPerson().FieldOfView())
	assert.Equal(t, float32(60), d.OverShoulder().FieldOfView())
}

func TestSetConfiguration_ForeignActiveBehavior(t *testing.T) {
	d := newTestDirector(config.Default(), timer.NewTimers())
	custom := behavior.NewFirstPerson(config.Default(), behavior.WithKind(behavior.KindBetween))
	d.SetCamera(custom, true, 0)

	cfg := config.Default()
	cfg.CameraDefaultFov = 100
	d.SetConfiguration(cfg)
	assert.Equal(t, float32(100), custom.FieldOfView())
}

func TestRotation_KeptWithoutSignal(t *testing.T) {
	timers := timer.NewTimers(timer.WithDeltaTime(frame))
	d := newTestDirector(config.Default(), timers)

	s := standing()
	d.HandleCameraView(s)
	want := d.State().Rotation

	together := s
	together.LeftHand.Position = together.RightHand.Position
	ads := d.FirstPerson().Sights()
	d.SetCamera(ads, true, 0)
	d.HandleCameraView(together)
	assert.Equal(t, want, d.State().Rotation, "sights camera has no direction while the hands coincide")
}
