package director

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fpscam/engine/timer"
)

// DirectorBuilderOption is a functional option for configuring a Director.
type DirectorBuilderOption func(*directorImpl)

// WithTimers sets the timer service the director reads and resets. A fresh one is created when omitted.
//
// Parameters:
//   - timers: the timer service, advanced by the caller once per frame
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithTimers(timers timer.Timers) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.timers = timers
	}
}

// WithAvatar attaches an avatar visibility sink.
//
// Parameters:
//   - avatar: the avatar to show or hide
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithAvatar(avatar AvatarVisibility) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.avatar = avatar
	}
}

// WithSink attaches a camera pose sink.
//
// Parameters:
//   - sink: the camera to drive
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithSink(sink PoseSink) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.sink = sink
	}
}

// WithLogger sets the logger for camera switches and behavior transitions.
func WithLogger(logger *slog.Logger) DirectorBuilderOption {
	return func(d *directorImpl) {
		if logger != nil {
			d.logger = logger
		}
	}
}
