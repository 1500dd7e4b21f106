package behavior

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// BehaviorBuilderOption is a functional option for configuring a behavior at construction.
// Options that overlap with configuration-derived values (such as the aim-down-sights smoothing time)
// are overwritten by SetConfiguration.
type BehaviorBuilderOption func(*base)

// WithOffset sets the local-space camera offset relative to the head. Build it with common.Local.
//
// Parameters:
//   - offset: the local offset
//
// Returns:
//   - BehaviorBuilderOption: option function to apply
func WithOffset(offset mgl32.Vec3) BehaviorBuilderOption {
	return func(b *base) {
		b.offset = offset
	}
}

// WithSmoothingTime sets the smoothing time constant in seconds.
//
// Parameters:
//   - seconds: the time constant, 0 to snap
//
// Returns:
//   - BehaviorBuilderOption: option function to apply
func WithSmoothingTime(seconds float32) BehaviorBuilderOption {
	return func(b *base) {
		b.smoothingTime = seconds
	}
}

// WithRemovesHead marks the behavior as hiding the avatar head.
//
// Parameters:
//   - removes: true to hide the head
//
// Returns:
//   - BehaviorBuilderOption: option function to apply
func WithRemovesHead(removes bool) BehaviorBuilderOption {
	return func(b *base) {
		b.removesHead = removes
	}
}

// WithStatic marks the behavior as a non-interpolated camera.
//
// Parameters:
//   - static: true for a static camera
//
// Returns:
//   - BehaviorBuilderOption: option function to apply
func WithStatic(static bool) BehaviorBuilderOption {
	return func(b *base) {
		b.static = static
	}
}

// WithKind overrides the kind reported by the behavior.
func WithKind(kind Kind) BehaviorBuilderOption {
	return func(b *base) {
		b.kind = kind
	}
}

// WithLogger sets the logger used for behavior state transitions.
func WithLogger(logger *slog.Logger) BehaviorBuilderOption {
	return func(b *base) {
		b.logger = logger
	}
}
