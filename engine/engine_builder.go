package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fpscam/engine/director"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler sets the profiler used when profiling is enabled.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (90Hz).
//
// Parameters:
//   - fps: target ticks per second (default 90)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithRealtime paces Run with a wall clock ticker (default). Disabled, Run replays as fast as
// possible and every frame advances by exactly one tick interval.
//
// Parameters:
//   - realtime: whether to pace Run in real time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRealtime(realtime bool) EngineBuilderOption {
	return func(e *engine) {
		e.realtime = realtime
	}
}

// WithProvider sets the tracking provider the engine pulls samples from.
//
// Parameters:
//   - p: the provider
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProvider(p tracking.Provider) EngineBuilderOption {
	return func(e *engine) {
		e.provider = p
	}
}

// WithDirector sets a pre-configured director. Its timer service becomes the engine's.
//
// Parameters:
//   - d: the director
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDirector(d director.Director) EngineBuilderOption {
	return func(e *engine) {
		e.director = d
	}
}

// WithTimers sets the timer service for the default director. Ignored when WithDirector is used.
func WithTimers(t timer.Timers) EngineBuilderOption {
	return func(e *engine) {
		e.timers = t
	}
}

// WithFrameCallback registers the per-frame callback during construction.
func WithFrameCallback(callback func(frame Frame)) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
