// Package engine runs the camera director frame by frame against a tracking provider.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fpscam/common"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/behavior"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/director"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/logging"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
)

// ErrNoProvider is returned by Step and Run when the engine has no tracking provider.
var ErrNoProvider = errors.New("engine has no tracking provider")

// Frame describes one completed engine frame.
type Frame struct {
	Index     uint64
	DeltaTime float32
	Sample    common.PoseSample
	Active    behavior.Kind
	State     director.CameraState
	// Skipped is true when the sample was not finite and the director did not run.
	Skipped bool
}

// engine implements the Engine interface.
// Owns the director and timers on the tick goroutine.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	configChannel   chan config.Configuration

	running     atomic.Bool
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	provider tracking.Provider
	director director.Director
	timers   timer.Timers
	logger   *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	realtime       bool
	frameCallback  func(frame Frame)

	frames uint64
}

// Engine is the main entry point for the engine.
// It pulls one pose sample per tick, drives the director with it and reports the frame.
type Engine interface {
	// Director returns the director the engine drives.
	//
	// Returns:
	//   - director.Director: the director instance
	Director() director.Director

	// Timers returns the timer service advanced by the engine each frame.
	Timers() timer.Timers

	// Frames returns the number of completed frames.
	Frames() uint64

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// While running, the change is queued and applied before the next frame.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 90 if <= 0)
	SetTickRate(fps float64)

	// SetConfiguration validates cfg and queues it for the director. It is applied at the start of
	// the next frame; a newer call replaces a pending one.
	//
	// Parameters:
	//   - cfg: the new configuration
	//
	// Returns:
	//   - error: error wrapping config.ErrInvalidConfiguration if cfg is invalid
	SetConfiguration(cfg config.Configuration) error

	// SetFrameCallback registers the function called after every frame.
	//
	// Parameters:
	//   - callback: function receiving the completed frame
	SetFrameCallback(callback func(frame Frame))

	// Step runs one frame: applies any queued configuration, pulls a sample, advances the timers
	// and hands the sample to the director. A provider implementing tracking.Clock overrides
	// deltaTime with the delta its frame was recorded at.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - error: the provider error, io.EOF included
	Step(deltaTime float32) error

	// Run steps at the tick rate until the provider reports io.EOF or Quit is called.
	// Without realtime pacing it steps as fast as possible with the nominal tick interval as delta.
	//
	// Returns:
	//   - error: nil on io.EOF or Quit, otherwise the provider error
	Run() error

	// Quit stops Run.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Without WithDirector, a director with the default configuration is created over the engine timers.
//
// Parameters:
//   - options: functional options for engine configuration (provider, director, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		configChannel:   make(chan config.Configuration, 1),
		quitChannel:     make(chan struct{}),
		logger:          slog.Default(),
		engineTickRate:  time.Second / 90,
		realtime:        true,
	}

	for _, opt := range options {
		opt(e)
	}

	base := e.logger
	e.logger = logging.Component(base, "engine")
	switch {
	case e.director != nil:
		e.timers = e.director.Timers()
	default:
		if e.timers == nil {
			e.timers = timer.NewTimers()
		}
		e.director = director.NewDirector(config.Default(), director.WithTimers(e.timers), director.WithLogger(base))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(logging.Component(base, "profiler")))
	}
	return e
}

func (e *engine) Director() director.Director {
	return e.director
}

func (e *engine) Timers() timer.Timers {
	return e.timers
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Step(deltaTime float32) error {
	if e.provider == nil {
		return ErrNoProvider
	}
	e.drainConfiguration()

	if !common.Finite(deltaTime) || deltaTime < 0 {
		deltaTime = 0
	}
	sample, err := e.provider.Sample(deltaTime)
	if err != nil {
		return err
	}
	if clock, ok := e.provider.(tracking.Clock); ok {
		if recorded, ok := clock.FrameDeltaTime(); ok {
			deltaTime = recorded
		}
	}
	e.timers.AddTime(deltaTime)

	frame := Frame{Index: e.frames, DeltaTime: deltaTime, Sample: sample}
	if finiteSample(sample) {
		e.director.SelectCamera(sample)
	} else {
		frame.Skipped = true
		e.logger.Warn("skipping non-finite sample", slog.Uint64("frame", e.frames))
	}
	e.frames++

	if e.profilingEnabled.Load() {
		e.profiler.Tick(deltaTime, e.director.Switches())
	}
	if e.frameCallback != nil {
		frame.Active = e.director.Active().Kind()
		frame.State = e.director.State()
		e.frameCallback(frame)
	}
	return nil
}

func (e *engine) Run() error {
	if e.provider == nil {
		return ErrNoProvider
	}
	e.running.Store(true)
	defer e.running.Store(false)
	e.logger.Info("engine started", slog.Duration("tick", e.engineTickRate), slog.Bool("realtime", e.realtime))

	if !e.realtime {
		return e.runUnpaced()
	}

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return e.stopped(nil)
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if err := e.Step(dt); err != nil {
				return e.stopped(err)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// runUnpaced steps back to back using the nominal tick interval as the frame delta.
func (e *engine) runUnpaced() error {
	for {
		select {
		case <-e.quitChannel:
			return e.stopped(nil)
		case newRate := <-e.tickRateChannel:
			e.engineTickRate = newRate
		default:
			if err := e.Step(float32(e.engineTickRate.Seconds())); err != nil {
				return e.stopped(err)
			}
		}
	}
}

// stopped logs the end of a run and maps the clean endings to nil.
func (e *engine) stopped(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		e.logger.Info("engine stopped", slog.Uint64("frames", e.frames), slog.Int("switches", e.director.Switches()))
		return nil
	}
	e.logger.Error("engine failed", slog.Uint64("frames", e.frames), slog.Any("error", err))
	return fmt.Errorf("frame %d: %w", e.frames, err)
}

// Quit signals Run to return.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect on the next loop iteration.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if e.running.Load() {
		replacePending(e.tickRateChannel, newRate)
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

func (e *engine) SetConfiguration(cfg config.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	replacePending(e.configChannel, cfg)
	return nil
}

// SetFrameCallback registers the function called after every frame.
func (e *engine) SetFrameCallback(callback func(frame Frame)) {
	e.frameCallback = callback
}

// drainConfiguration applies a queued configuration, if any.
func (e *engine) drainConfiguration() {
	select {
	case cfg := <-e.configChannel:
		e.director.SetConfiguration(cfg)
		e.logger.Info("configuration applied", slog.Any("configuration", cfg))
	default:
	}
}

// replacePending sends v without blocking, replacing a value still waiting in ch.
func replacePending[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-ch:
			default:
			}
		}
	}
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 90
	}
	return time.Duration(float64(time.Second) / fps)
}

func finiteSample(s common.PoseSample) bool {
	return common.FinitePose(s.Head) && common.FinitePose(s.Waist) &&
		common.FinitePose(s.LeftHand) && common.FinitePose(s.RightHand) &&
		common.FiniteVec3(s.LeftEye) && common.FiniteVec3(s.RightEye) &&
		common.Finite(s.HeadAngularDelta.X()) && common.Finite(s.HeadAngularDelta.Y())
}
