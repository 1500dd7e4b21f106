package scenario

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fpscam/engine/config"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
)

// RunOption is a functional option for configuring a scenario run.
type RunOption func(*runner)

// WithFrameRate sets the fixed frame rate the scenario is played at. Defaults to 90.
//
// Parameters:
//   - fps: frames per second, ignored when not positive
//
// Returns:
//   - RunOption: option function to apply
func WithFrameRate(fps float64) RunOption {
	return func(r *runner) {
		if fps > 0 {
			r.frameRate = fps
		}
	}
}

// WithConfiguration sets the configuration the run starts from. Defaults to config.Default().
func WithConfiguration(cfg config.Configuration) RunOption {
	return func(r *runner) {
		r.cfg = cfg
	}
}

// WithLogger sets the logger for the run and its director.
func WithLogger(logger *slog.Logger) RunOption {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder records every played frame to w. The writer is flushed when the run ends.
//
// Parameters:
//   - w: the trace writer
//
// Returns:
//   - RunOption: option function to apply
func WithRecorder(w *tracking.TraceWriter) RunOption {
	return func(r *runner) {
		r.recorder = w
	}
}
